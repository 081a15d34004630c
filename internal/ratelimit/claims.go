package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// forgetClaimScript deletes a claim only while it still carries the caller's
// token, so a slow request cannot drop a claim re-taken after expiry.
const forgetClaimScript = `
if redis.call("GET", KEYS[1]) ~= ARGV[1] then
  return 0
end
return redis.call("DEL", KEYS[1])
`

// claim is the outcome of marking an idempotency key as seen.
type claim struct {
	Token string
	First bool
}

// claimStore remembers idempotency keys for a fixed window.
type claimStore struct {
	client redis.UniversalClient
	forget *redis.Script
	ttl    time.Duration
}

func newClaimStore(client redis.UniversalClient, ttl time.Duration) *claimStore {
	return &claimStore{
		client: client,
		forget: redis.NewScript(forgetClaimScript),
		ttl:    ttl,
	}
}

func (s *claimStore) take(ctx context.Context, key string) (claim, error) {
	if key == "" {
		return claim{}, errors.New("claim key is empty")
	}
	token := uuid.NewString()
	stored, err := s.client.SetNX(ctx, key, token, s.ttl).Result()
	if err != nil {
		return claim{}, err
	}
	if !stored {
		return claim{First: false}, nil
	}
	return claim{Token: token, First: true}, nil
}

func (s *claimStore) drop(ctx context.Context, key, token string) error {
	if key == "" || token == "" {
		return nil
	}
	return s.forget.Run(ctx, s.client, []string{key}, token).Err()
}
