package services

import (
	"context"
	"errors"

	"github.com/avdonin/gw-code-review/internal/facades"
	"github.com/avdonin/gw-code-review/internal/logger"
)

// FallbackReview is returned with a 200 status when the model answers
// successfully but yields no extractable text. Keeping this a soft failure
// keeps the client usable when the model declines to answer.
const FallbackReview = "Failed to generate code review. Please provide valid code."

// ReviewGenerator defines the upstream model call.
type ReviewGenerator interface {
	GenerateReview(ctx context.Context, code string) (string, error)
}

// ReviewCache defines cached review lookups keyed by the snippet.
type ReviewCache interface {
	Get(ctx context.Context, code string) (string, error)
	Set(ctx context.Context, code, review string) error
}

// ReviewService produces code reviews via the generative model, with an
// optional cache in front of it.
type ReviewService struct {
	generator ReviewGenerator
	cache     ReviewCache
}

// NewReviewService creates a new ReviewService. cache may be nil.
func NewReviewService(generator ReviewGenerator, cache ReviewCache) *ReviewService {
	return &ReviewService{
		generator: generator,
		cache:     cache,
	}
}

// GetReview returns the review text for the snippet. Cache errors fall
// through to the upstream; an empty upstream answer degrades to
// FallbackReview rather than an error.
func (svc *ReviewService) GetReview(ctx context.Context, code string) (string, error) {
	if svc.cache != nil {
		if cached, err := svc.cache.Get(ctx, code); err == nil && cached != "" {
			return cached, nil
		}
	}

	review, err := svc.generator.GenerateReview(ctx, code)
	if err != nil {
		if errors.Is(err, facades.ErrNoContent) {
			return FallbackReview, nil
		}
		logger.Log.Errorw("failed to generate review", "err", err)
		return "", err
	}

	if svc.cache != nil {
		if err := svc.cache.Set(ctx, code, review); err != nil {
			logger.Log.Warnw("failed to cache review", "err", err)
		}
	}

	return review, nil
}
