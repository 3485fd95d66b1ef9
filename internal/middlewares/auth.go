package middlewares

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/avdonin/gw-code-review/internal/logger"
)

// Tokener defines the minimal token interface needed by the middleware
type Tokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	Validate(ctx context.Context, tokenString string) error
}

// AuthMiddleware returns a middleware that rejects requests without a valid
// bearer token. The original client relied on a locally stored flag only;
// server-side verification closes that gap.
func AuthMiddleware(tokener Tokener) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tokenString, err := tokener.GetTokenFromRequest(ctx, r)
			if err != nil {
				logger.Log.Infow("authorization failed", "err", err)
				writeUnauthorized(w)
				return
			}

			if err := tokener.Validate(ctx, tokenString); err != nil {
				logger.Log.Infow("authorization failed", "err", err)
				writeUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Authorization required.",
	})
}
