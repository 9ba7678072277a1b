package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/eventdesk/eventdesk/app/dto"
	"github.com/eventdesk/eventdesk/storage"
	"github.com/eventdesk/eventdesk/utils"
)

// RateLimitPolicy bounds one operation to Max requests per sliding Window.
type RateLimitPolicy struct {
	Window time.Duration
	Max    int
}

// RateLimiter enforces per-actor sliding-window quotas. Allow consumes one
// unit of quota when the request is admitted; rejected requests consume
// nothing, so a saturated actor recovers as soon as old entries age out.
//
// The limiter fails open: when the cache scope is unreachable the request is
// admitted and the failure logged. Quota accounting is advisory, losing it
// must not take the application down with it.
type RateLimiter interface {
	Allow(ctx context.Context, operation, actor string) (*dto.RateLimitInfo, error)
	Policy(operation string) RateLimitPolicy
}

type RateLimiterImpl struct {
	cache         storage.CacheStore
	policies      map[string]RateLimitPolicy
	defaultPolicy RateLimitPolicy
	now           func() time.Time
}

// NewRateLimiter creates a limiter over the cache scope. policies maps
// operation names to their budgets; unrecognized operations fall back to
// defaultPolicy. A zero or negative defaultPolicy field falls back to the
// built-in constants.
func NewRateLimiter(cache storage.CacheStore, policies map[string]RateLimitPolicy, defaultPolicy RateLimitPolicy) RateLimiter {
	if defaultPolicy.Window <= 0 {
		defaultPolicy.Window = utils.DefaultRateLimitWindow
	}
	if defaultPolicy.Max <= 0 {
		defaultPolicy.Max = utils.DefaultRateLimitMax
	}
	return &RateLimiterImpl{
		cache:         cache,
		policies:      policies,
		defaultPolicy: defaultPolicy,
		now:           utils.UTCNow,
	}
}

func (r *RateLimiterImpl) Policy(operation string) RateLimitPolicy {
	if p, ok := r.policies[operation]; ok {
		return p
	}
	return r.defaultPolicy
}

func rateLimitKey(operation, actor string) string {
	return fmt.Sprintf("ratelimit:%s:%s", operation, actor)
}

func (r *RateLimiterImpl) Allow(ctx context.Context, operation, actor string) (*dto.RateLimitInfo, error) {
	policy := r.Policy(operation)
	key := rateLimitKey(operation, actor)
	now := r.now()

	raw, err := r.cache.Get(ctx, key)
	if err != nil {
		log.Printf("rate limiter: cache read failed for %s, allowing request: %v", key, err)
		return &dto.RateLimitInfo{Allowed: true, Remaining: policy.Max - 1}, nil
	}

	var stamps []int64
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &stamps); err != nil {
			// A malformed window resets the actor rather than locking it out.
			log.Printf("rate limiter: malformed window for %s, resetting: %v", key, err)
			stamps = nil
		}
	}

	cutoff := now.Add(-policy.Window).UnixMilli()
	kept := stamps[:0]
	for _, ts := range stamps {
		if ts > cutoff {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= policy.Max {
		oldest := kept[0]
		retryAfter := time.UnixMilli(oldest).Add(policy.Window).Sub(now)
		seconds := int((retryAfter + time.Second - 1) / time.Second)
		if seconds < 1 {
			seconds = 1
		}
		return &dto.RateLimitInfo{Allowed: false, Remaining: 0, RetryAfterSeconds: seconds}, nil
	}

	kept = append(kept, now.UnixMilli())
	encoded, err := json.Marshal(kept)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rate limit window: %w", err)
	}
	if err := r.cache.Put(ctx, key, string(encoded), policy.Window); err != nil {
		log.Printf("rate limiter: cache write failed for %s, allowing request: %v", key, err)
	}

	return &dto.RateLimitInfo{Allowed: true, Remaining: policy.Max - len(kept)}, nil
}
