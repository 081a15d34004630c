package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	redis "github.com/redis/go-redis/v9"
	"github.com/ryu-qqq/setof-commerce-sub024/internal/config"
)

const (
	keyEvaluateSeller = "pricing:evaluate:seller:%s"
	keyReleaseDedup   = "pricing:release:%s"
)

// PricingLimiter throttles evaluate calls per seller and marks release
// requests as seen so a retried cancellation does not give back usage twice.
type PricingLimiter struct {
	bucket *TokenBucket
	claims *claimStore

	evaluateRate  float64
	evaluateBurst int
}

// NewPricingLimiter returns nil when rate limiting is disabled.
func NewPricingLimiter(cfg config.Config, client redis.UniversalClient) (*PricingLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}
	if client == nil {
		return nil, errors.New("rate limiting requires REDIS_ADDR")
	}
	if limitCfg.EvaluateRate <= 0 || limitCfg.EvaluateBurst <= 0 {
		return nil, errors.New("evaluate rate limit must be positive")
	}
	if limitCfg.ReleaseDedupTTL <= 0 {
		return nil, errors.New("release dedup ttl must be positive")
	}

	return &PricingLimiter{
		bucket:        NewTokenBucket(client),
		claims:        newClaimStore(client, limitCfg.ReleaseDedupTTL),
		evaluateRate:  limitCfg.EvaluateRate,
		evaluateBurst: limitCfg.EvaluateBurst,
	}, nil
}

func (l *PricingLimiter) Enabled() bool {
	return l != nil
}

func (l *PricingLimiter) AllowEvaluate(ctx context.Context, sellerID snowflake.ID) (Result, error) {
	if !l.Enabled() {
		return Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyEvaluateSeller, sellerID), l.evaluateRate, l.evaluateBurst)
}

// FirstRelease claims requestKey for the dedup window. It reports false when
// the key was already claimed. An empty key is never deduplicated.
func (l *PricingLimiter) FirstRelease(ctx context.Context, requestKey string) (string, bool, error) {
	requestKey = strings.TrimSpace(requestKey)
	if !l.Enabled() || requestKey == "" {
		return "", true, nil
	}
	c, err := l.claims.take(ctx, fmt.Sprintf(keyReleaseDedup, requestKey))
	if err != nil {
		return "", false, err
	}
	return c.Token, c.First, nil
}

// ForgetRelease drops a claim taken by FirstRelease so a failed release can
// be retried.
func (l *PricingLimiter) ForgetRelease(ctx context.Context, requestKey, token string) error {
	requestKey = strings.TrimSpace(requestKey)
	if !l.Enabled() || requestKey == "" {
		return nil
	}
	return l.claims.drop(ctx, fmt.Sprintf(keyReleaseDedup, requestKey), token)
}
