package repositories

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avdonin/gw-code-review/internal/logger"
)

// ReviewCacheRepository caches generated code reviews in Redis, keyed by a
// digest of the reviewed snippet. A cache failure is never fatal to the
// caller; the service falls through to the upstream model.
type ReviewCacheRepository struct {
	client *redis.Client
	exp    time.Duration // expiration for cached reviews
}

// NewReviewCacheRepository creates a new repository instance with the given TTL
func NewReviewCacheRepository(client *redis.Client, expiration time.Duration) *ReviewCacheRepository {
	return &ReviewCacheRepository{
		client: client,
		exp:    expiration,
	}
}

// Get returns the cached review for the snippet, or "" when absent.
func (r *ReviewCacheRepository) Get(ctx context.Context, code string) (string, error) {
	key := reviewKey(code)

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		logger.Log.Warnw("review cache get failed", "key", key, "error", err)
		return "", err
	}

	logger.Log.Debugw("review cache hit", "key", key)
	return val, nil
}

// Set caches a review for the snippet with the configured expiration.
func (r *ReviewCacheRepository) Set(ctx context.Context, code, review string) error {
	key := reviewKey(code)
	err := r.client.Set(ctx, key, review, r.exp).Err()

	if err != nil {
		logger.Log.Warnw("review cache set failed", "key", key, "error", err)
	}
	return err
}

func reviewKey(code string) string {
	sum := sha256.Sum256([]byte(code))
	return fmt.Sprintf("review:%s", hex.EncodeToString(sum[:]))
}
