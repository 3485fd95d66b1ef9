package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/avdonin/gw-code-review/internal/logger"
	"github.com/avdonin/gw-code-review/internal/services"
)

// Loginer defines the interface that the login service must implement.
type Loginer interface {
	Login(ctx context.Context, username, password string) (string, uuid.UUID, error)
}

// LoginRequest represents the JSON body for user login
// swagger:model LoginRequest
type LoginRequest struct {
	// Username
	// required: true
	// example: john_doe
	Username string `json:"username"`

	// Password
	// required: true
	// example: secret123
	Password string `json:"password"`
}

// LoginResponse represents a successful login response
// swagger:model LoginResponse
type LoginResponse struct {
	// Message
	// example: Login successful
	Message string `json:"message"`

	// Signed session token, expires after 7 days
	// example: JWT_TOKEN
	Token string `json:"token"`

	// User identifier
	// example: 6f1c0be5-2b3a-41f7-9cb9-1f9f6f6f6f6f
	UserID string `json:"userId"`
}

// NewLoginHandler returns an HTTP handler for user login.
// @Summary User login
// @Description Authenticate a user and return a signed session token. Unknown usernames and wrong passwords yield the same response.
// @Tags auth
// @Accept json
// @Produce json
// @Param loginRequest body handlers.LoginRequest true "Login request"
// @Success 200 {object} handlers.LoginResponse "Token and user ID returned"
// @Failure 401 {object} handlers.MessageResponse "Invalid username or password"
// @Failure 500 {object} handlers.MessageResponse "Server error or missing signing secret"
// @Router /api/login [post]
func NewLoginHandler(svc Loginer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			// An unreadable body cannot name a valid user.
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(MessageResponse{
				Message: "Invalid username or password.",
			})
			return
		}

		token, userID, err := svc.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidCredentials):
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(MessageResponse{
					Message: "Invalid username or password.",
				})
			case errors.Is(err, services.ErrServerMisconfigured):
				logger.Log.Errorw("login rejected: server misconfigured")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(MessageResponse{
					Message: "Server misconfiguration: signing secret is not set.",
				})
			default:
				logger.Log.Errorw("login failed", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(MessageResponse{
					Message: "Server error during login.",
				})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(LoginResponse{
			Message: "Login successful",
			Token:   token,
			UserID:  userID.String(),
		})
	}
}
