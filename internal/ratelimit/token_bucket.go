package ratelimit

import (
	"context"
	"errors"
	"math"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// takeTokenScript refills the bucket from Redis TIME and takes one token.
// Fractional tokens are kept in the hash; the reply carries whole tokens left
// and, on denial, the milliseconds until the next token.
const takeTokenScript = `
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])

local clock = redis.call("TIME")
local nowMs = clock[1] * 1000 + math.floor(clock[2] / 1000)

local state = redis.call("HMGET", KEYS[1], "tokens", "refilled_at")
local tokens = tonumber(state[1]) or burst
local refilledAt = tonumber(state[2]) or nowMs

local elapsed = math.max(0, nowMs - refilledAt)
tokens = math.min(burst, tokens + elapsed * rate / 1000)

local allowed = 0
local waitMs = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
else
  waitMs = math.ceil((1 - tokens) * 1000 / rate)
end

redis.call("HSET", KEYS[1], "tokens", tostring(tokens), "refilled_at", nowMs)
redis.call("PEXPIRE", KEYS[1], ARGV[3])

return {allowed, math.floor(tokens), waitMs}
`

// TokenBucket is a shared token bucket per key, refilled at rate tokens per
// second up to burst.
type TokenBucket struct {
	client redis.UniversalClient
	script *redis.Script
}

type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

func NewTokenBucket(client redis.UniversalClient) *TokenBucket {
	return &TokenBucket{
		client: client,
		script: redis.NewScript(takeTokenScript),
	}
}

func (t *TokenBucket) Allow(ctx context.Context, key string, rate float64, burst int) (Result, error) {
	switch {
	case key == "":
		return Result{}, errors.New("bucket key is empty")
	case rate <= 0 || burst <= 0:
		return Result{}, errors.New("bucket rate and burst must be positive")
	}

	reply, err := t.script.Run(ctx, t.client, []string{key}, rate, burst, idleExpiry(rate, burst).Milliseconds()).Int64Slice()
	if err != nil {
		return Result{}, err
	}
	if len(reply) != 3 {
		return Result{}, errors.New("unexpected token bucket reply")
	}

	return Result{
		Allowed:    reply[0] == 1,
		Limit:      burst,
		Remaining:  int(reply[1]),
		RetryAfter: time.Duration(reply[2]) * time.Millisecond,
	}, nil
}

// idleExpiry keeps a bucket around for twice the time it needs to refill
// completely; an expired bucket starts full again.
func idleExpiry(rate float64, burst int) time.Duration {
	fill := time.Duration(math.Ceil(2 * float64(burst) / rate * float64(time.Second)))
	return max(fill, time.Second)
}
