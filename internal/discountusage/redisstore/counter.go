package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	redis "github.com/redis/go-redis/v9"
	usagedomain "github.com/ryu-qqq/setof-commerce-sub024/internal/discountusage/domain"
)

// Both keys of a policy share the {policyID} hash tag so the scripts stay
// within one cluster slot.
const (
	keyUsageMember = "discount:usage:{%d}:member:%d"
	keyUsageTotal  = "discount:usage:{%d}:total"
)

const (
	reserveAccepted         = 0
	reserveRejectedCustomer = 1
	reserveRejectedTotal    = 2
)

// ARGV[1] per-customer ceiling, ARGV[2] total ceiling; -1 means unlimited.
// KEYS[2] is empty when the member is anonymous.
const reserveScript = `
local memberLimit = tonumber(ARGV[1])
local totalLimit = tonumber(ARGV[2])
local trackMember = KEYS[2] ~= nil and KEYS[2] ~= ""

if trackMember and memberLimit >= 0 then
  local used = tonumber(redis.call("GET", KEYS[2]) or "0")
  if used >= memberLimit then
    return 1
  end
end

if totalLimit >= 0 then
  local used = tonumber(redis.call("GET", KEYS[1]) or "0")
  if used >= totalLimit then
    return 2
  end
end

redis.call("INCR", KEYS[1])
if trackMember then
  redis.call("INCR", KEYS[2])
end
return 0
`

const releaseScript = `
for _, key in ipairs(KEYS) do
  local used = tonumber(redis.call("GET", key) or "0")
  if used > 0 then
    redis.call("DECR", key)
  end
end
return 1
`

// Counter keeps usage counters in Redis. Durability follows the server's
// persistence settings, so deployments must run with AOF enabled.
type Counter struct {
	client  redis.UniversalClient
	reserve *redis.Script
	release *redis.Script
}

func NewCounter(client redis.UniversalClient) *Counter {
	if client == nil {
		return nil
	}
	return &Counter{
		client:  client,
		reserve: redis.NewScript(reserveScript),
		release: redis.NewScript(releaseScript),
	}
}

func (c *Counter) Reserve(ctx context.Context, r usagedomain.Reservation) (usagedomain.Decision, error) {
	if c == nil || c.client == nil {
		return usagedomain.Decision{}, usagedomain.ErrStoreUnavailable
	}
	if r.PolicyID == 0 {
		return usagedomain.Decision{}, usagedomain.ErrInvalidPolicy
	}

	res, err := c.reserve.Run(ctx, c.client, keys(r.PolicyID, r.MemberID), limitArg(r.MaxPerCustomer), limitArg(r.MaxTotal)).Int64()
	if err != nil {
		return usagedomain.Decision{}, fmt.Errorf("reserve script: %w", err)
	}

	switch res {
	case reserveAccepted:
		return usagedomain.Accepted(), nil
	case reserveRejectedCustomer:
		return usagedomain.Rejected(usagedomain.ReasonPerCustomerLimit), nil
	case reserveRejectedTotal:
		return usagedomain.Rejected(usagedomain.ReasonTotalLimit), nil
	default:
		return usagedomain.Decision{}, errors.New("invalid reserve script response")
	}
}

func (c *Counter) Release(ctx context.Context, policyID, memberID snowflake.ID) error {
	if c == nil || c.client == nil {
		return usagedomain.ErrStoreUnavailable
	}
	if policyID == 0 {
		return usagedomain.ErrInvalidPolicy
	}
	return c.release.Run(ctx, c.client, keys(policyID, memberID)).Err()
}

// Used returns the current per-customer and total counts.
func (c *Counter) Used(ctx context.Context, policyID, memberID snowflake.ID) (member, total int64, err error) {
	k := keys(policyID, memberID)
	total, err = getInt(ctx, c.client, k[0])
	if err != nil || len(k) == 1 {
		return 0, total, err
	}
	member, err = getInt(ctx, c.client, k[1])
	return member, total, err
}

func keys(policyID, memberID snowflake.ID) []string {
	out := []string{fmt.Sprintf(keyUsageTotal, policyID)}
	if memberID != usagedomain.TotalMemberID {
		out = append(out, fmt.Sprintf(keyUsageMember, policyID, memberID))
	}
	return out
}

func limitArg(limit *int64) int64 {
	if limit == nil {
		return -1
	}
	return *limit
}

func getInt(ctx context.Context, client redis.UniversalClient, key string) (int64, error) {
	v, err := client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}
