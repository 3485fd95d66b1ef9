package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/avdonin/gw-code-review/internal/facades"
	"github.com/avdonin/gw-code-review/internal/logger"
)

// Reviewer defines the interface that the review service must implement.
type Reviewer interface {
	GetReview(ctx context.Context, code string) (string, error)
}

// ReviewRequest represents the JSON body for a code review request
// swagger:model ReviewRequest
type ReviewRequest struct {
	// Code snippet to review
	// required: true
	// example: func main() {}
	Code string `json:"code"`
}

// ReviewErrorResponse represents an error response for a review request
// swagger:model ReviewErrorResponse
type ReviewErrorResponse struct {
	// Error message
	// example: Internal Server Error: Failed to process review.
	Message string `json:"message"`

	// Operator-facing detail, never contains secrets
	// example: generative api error (INVALID_ARGUMENT): API key not valid
	Details string `json:"details,omitempty"`
}

// NewReviewHandler returns an HTTP handler producing AI code reviews.
// @Summary Generate a code review
// @Description Forwards the code snippet to the generative model and returns its review as plain text.
// @Tags ai
// @Accept json
// @Produce plain
// @Param reviewRequest body handlers.ReviewRequest true "Code review request"
// @Success 200 {string} string "Review text, possibly markdown-formatted"
// @Failure 400 {object} handlers.ReviewErrorResponse "Missing or empty code"
// @Failure 500 {object} handlers.ReviewErrorResponse "Upstream or configuration failure"
// @Router /ai/get-review [post]
// @Security BearerAuth
func NewReviewHandler(svc Reviewer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ReviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Code) == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ReviewErrorResponse{
				Message: "Code property is required in the request body.",
			})
			return
		}

		review, err := svc.GetReview(r.Context(), req.Code)
		if err != nil {
			logger.Log.Errorw("review generation failed", "err", err)

			details := "Check the generative API key and model configuration."
			if errors.Is(err, facades.ErrTimeout) {
				details = "The generative API call timed out."
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(ReviewErrorResponse{
				Message: "Internal Server Error: Failed to process review.",
				Details: details,
			})
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(review))
	}
}
