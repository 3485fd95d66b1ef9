package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/avdonin/gw-code-review/internal/facades"
	"github.com/avdonin/gw-code-review/internal/services"
)

func TestReviewService_GetReview(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	const code = "func main() {}"

	tests := []struct {
		name        string
		cacheHit    string
		cacheErr    error
		upstream    string
		upstreamErr error
		wantText    string
		wantErr     bool
	}{
		{
			name:     "cache hit skips upstream",
			cacheHit: "cached review",
			wantText: "cached review",
		},
		{
			name:     "cache miss calls upstream",
			upstream: "fresh review",
			wantText: "fresh review",
		},
		{
			name:     "cache error falls through to upstream",
			cacheErr: errors.New("redis down"),
			upstream: "fresh review",
			wantText: "fresh review",
		},
		{
			name:        "empty upstream answer degrades to fallback",
			upstreamErr: facades.ErrNoContent,
			wantText:    services.FallbackReview,
		},
		{
			name:        "upstream failure is surfaced",
			upstreamErr: errors.New("api key invalid"),
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockGen := services.NewMockReviewGenerator(ctrl)
			mockCache := services.NewMockReviewCache(ctrl)

			svc := services.NewReviewService(mockGen, mockCache)

			mockCache.EXPECT().Get(gomock.Any(), code).Return(tt.cacheHit, tt.cacheErr)

			if tt.cacheHit == "" {
				mockGen.EXPECT().GenerateReview(gomock.Any(), code).Return(tt.upstream, tt.upstreamErr)
				if tt.upstreamErr == nil {
					mockCache.EXPECT().Set(gomock.Any(), code, tt.upstream).Return(nil)
				}
			}

			text, err := svc.GetReview(context.Background(), code)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, text)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.wantText, text)
		})
	}
}

func TestReviewService_NilCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockGen := services.NewMockReviewGenerator(ctrl)
	svc := services.NewReviewService(mockGen, nil)

	mockGen.EXPECT().GenerateReview(gomock.Any(), "snippet").Return("review", nil)

	text, err := svc.GetReview(context.Background(), "snippet")
	assert.NoError(t, err)
	assert.Equal(t, "review", text)
}

// A failed cache write must not fail the request.
func TestReviewService_CacheWriteFailureIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockGen := services.NewMockReviewGenerator(ctrl)
	mockCache := services.NewMockReviewCache(ctrl)
	svc := services.NewReviewService(mockGen, mockCache)

	mockCache.EXPECT().Get(gomock.Any(), "snippet").Return("", nil)
	mockGen.EXPECT().GenerateReview(gomock.Any(), "snippet").Return("review", nil)
	mockCache.EXPECT().Set(gomock.Any(), "snippet", "review").Return(errors.New("redis down"))

	text, err := svc.GetReview(context.Background(), "snippet")
	assert.NoError(t, err)
	assert.Equal(t, "review", text)
}
