package redisstore

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/bwmarrin/snowflake"
	redis "github.com/redis/go-redis/v9"
	usagedomain "github.com/ryu-qqq/setof-commerce-sub024/internal/discountusage/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeysShareHashTag(t *testing.T) {
	k := keys(42, 7)
	require.Len(t, k, 2)
	assert.Equal(t, "discount:usage:{42}:total", k[0])
	assert.Equal(t, "discount:usage:{42}:member:7", k[1])

	assert.Equal(t, []string{"discount:usage:{42}:total"}, keys(42, usagedomain.TotalMemberID))
}

func TestLimitArg(t *testing.T) {
	limit := int64(3)
	assert.Equal(t, int64(-1), limitArg(nil))
	assert.Equal(t, int64(3), limitArg(&limit))
}

func TestNilCounterIsUnavailable(t *testing.T) {
	var counter *Counter
	_, err := counter.Reserve(context.Background(), usagedomain.Reservation{PolicyID: 1})
	assert.True(t, errors.Is(err, usagedomain.ErrStoreUnavailable))
	assert.Nil(t, NewCounter(nil))
}

func TestReserveAgainstRedis(t *testing.T) {
	client := redisClient(t)
	counter := NewCounter(client)
	ctx := context.Background()
	policyID := snowflake.ID(910001)
	limit := int64(1)

	first, err := counter.Reserve(ctx, usagedomain.Reservation{PolicyID: policyID, MemberID: 1, MaxPerCustomer: &limit})
	require.NoError(t, err)
	assert.True(t, first.Accepted)

	second, err := counter.Reserve(ctx, usagedomain.Reservation{PolicyID: policyID, MemberID: 1, MaxPerCustomer: &limit})
	require.NoError(t, err)
	assert.Equal(t, usagedomain.ReasonPerCustomerLimit, second.Reason)

	require.NoError(t, counter.Release(ctx, policyID, 1))
	require.NoError(t, counter.Release(ctx, policyID, 1))

	member, total, err := counter.Used(ctx, policyID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), member)
	assert.Equal(t, int64(0), total)
}

func TestReserveTotalLimitAgainstRedis(t *testing.T) {
	client := redisClient(t)
	counter := NewCounter(client)
	ctx := context.Background()
	policyID := snowflake.ID(910002)
	limit := int64(5)

	var (
		wg       sync.WaitGroup
		accepted atomic.Int64
	)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(member snowflake.ID) {
			defer wg.Done()
			decision, err := counter.Reserve(ctx, usagedomain.Reservation{PolicyID: policyID, MemberID: member, MaxTotal: &limit})
			if err == nil && decision.Accepted {
				accepted.Add(1)
			}
		}(snowflake.ID(i + 1))
	}
	wg.Wait()

	assert.Equal(t, limit, accepted.Load())
}

func redisClient(t *testing.T) redis.UniversalClient {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	require.NoError(t, client.FlushDB(ctx).Err())
	t.Cleanup(func() {
		_ = client.FlushDB(context.Background()).Err()
		_ = client.Close()
	})
	return client
}
