package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/avdonin/gw-code-review/internal/logger"
	"github.com/avdonin/gw-code-review/internal/services"
)

// Registerer defines the interface that the registration service must implement.
type Registerer interface {
	Register(ctx context.Context, username, email, password string) error
}

// RegisterRequest represents the JSON body for user registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	// Username
	// required: true
	// example: john_doe
	Username string `json:"username"`

	// Email
	// required: true
	// example: john@example.com
	Email string `json:"email"`

	// Password
	// required: true
	// example: secret123
	Password string `json:"password"`
}

// MessageResponse represents a response carrying a single message
// swagger:model MessageResponse
type MessageResponse struct {
	// Message
	// example: Registration successful. Please log in.
	Message string `json:"message"`
}

// NewRegisterHandler returns an HTTP handler for user registration.
// @Summary Register a new user
// @Description Creates a new user account. Username and email must be unique. The password is hashed before storing.
// @Tags auth
// @Accept json
// @Produce json
// @Param registerRequest body handlers.RegisterRequest true "User registration request"
// @Success 201 {object} handlers.MessageResponse "Registration successful"
// @Failure 400 {object} handlers.MessageResponse "Missing fields / invalid request"
// @Failure 409 {object} handlers.MessageResponse "Username or email already exists"
// @Failure 500 {object} handlers.MessageResponse "Server error"
// @Router /api/register [post]
func NewRegisterHandler(svc Registerer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(MessageResponse{
				Message: "All fields are required.",
			})
			return
		}

		username := strings.TrimSpace(req.Username)
		email := strings.TrimSpace(req.Email)
		if username == "" || email == "" || req.Password == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(MessageResponse{
				Message: "All fields are required.",
			})
			return
		}

		err := svc.Register(r.Context(), username, email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUserAlreadyExists):
				w.WriteHeader(http.StatusConflict)
				json.NewEncoder(w).Encode(MessageResponse{
					Message: "Username or Email already exists.",
				})
			default:
				logger.Log.Errorw("registration failed", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(MessageResponse{
					Message: "Server error during registration.",
				})
			}
			return
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(MessageResponse{
			Message: "Registration successful. Please log in.",
		})
	}
}
