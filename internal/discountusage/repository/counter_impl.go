package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cenkalti/backoff/v4"
	"github.com/ryu-qqq/setof-commerce-sub024/internal/clock"
	"github.com/ryu-qqq/setof-commerce-sub024/internal/config"
	usagedomain "github.com/ryu-qqq/setof-commerce-sub024/internal/discountusage/domain"
	pkgdb "github.com/ryu-qqq/setof-commerce-sub024/pkg/db"
	"github.com/ryu-qqq/setof-commerce-sub024/pkg/log/ctxlogger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errVersionConflict = errors.New("usage_counter_version_conflict")

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Clock  clock.Clock
	Tuning *config.PricingTuningHolder
}

// Counter keeps usage counters in discount_usage_counters. Each reservation
// runs one transaction that compare-and-increments both rows by version and
// is retried with exponential backoff when another writer got there first.
type Counter struct {
	db     *gorm.DB
	log    *zap.Logger
	clock  clock.Clock
	tuning *config.PricingTuningHolder
}

func NewCounter(p Params) *Counter {
	return &Counter{
		db:     p.DB,
		log:    p.Log.Named("discountusage.repository"),
		clock:  p.Clock,
		tuning: p.Tuning,
	}
}

func (c *Counter) Reserve(ctx context.Context, r usagedomain.Reservation) (usagedomain.Decision, error) {
	if r.PolicyID == 0 {
		return usagedomain.Decision{}, usagedomain.ErrInvalidPolicy
	}

	var decision usagedomain.Decision
	attempts := 0
	op := func() error {
		attempts++
		d, err := c.tryReserve(ctx, r)
		if err != nil {
			if isConflict(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		decision = d
		return nil
	}

	if err := backoff.Retry(op, c.newBackOff(ctx)); err != nil {
		if isConflict(err) {
			ctxlogger.WithContext(ctx, c.log).Warn("usage reservation contended",
				zap.String("policy_id", r.PolicyID.String()),
				zap.String("member_id", r.MemberID.String()),
				zap.Int("attempts", attempts),
			)
			return usagedomain.Decision{}, fmt.Errorf("policy %s: %w", r.PolicyID, usagedomain.ErrReservationContended)
		}
		return usagedomain.Decision{}, err
	}
	return decision, nil
}

func (c *Counter) tryReserve(ctx context.Context, r usagedomain.Reservation) (usagedomain.Decision, error) {
	decision := usagedomain.Accepted()
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := c.clock.Now()

		members := []snowflake.ID{usagedomain.TotalMemberID}
		if r.MemberID != usagedomain.TotalMemberID {
			members = append(members, r.MemberID)
		}

		records := make(map[snowflake.ID]usagedomain.UsageRecord, len(members))
		for _, memberID := range members {
			if err := ensureRow(tx, r.PolicyID, memberID, now); err != nil {
				return err
			}
			record, err := findRecord(tx, r.PolicyID, memberID)
			if err != nil {
				return err
			}
			records[memberID] = record
		}

		if r.MemberID != usagedomain.TotalMemberID && r.MaxPerCustomer != nil &&
			records[r.MemberID].UsedCount >= *r.MaxPerCustomer {
			decision = usagedomain.Rejected(usagedomain.ReasonPerCustomerLimit)
			return nil
		}
		if r.MaxTotal != nil && records[usagedomain.TotalMemberID].UsedCount >= *r.MaxTotal {
			decision = usagedomain.Rejected(usagedomain.ReasonTotalLimit)
			return nil
		}

		for _, memberID := range members {
			record := records[memberID]
			res := tx.Exec(
				`UPDATE discount_usage_counters
				 SET used_count = used_count + 1, version = version + 1, updated_at = ?
				 WHERE policy_id = ? AND member_id = ? AND version = ?`,
				now,
				record.PolicyID,
				record.MemberID,
				record.Version,
			)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errVersionConflict
			}
		}
		return nil
	})
	if err != nil {
		return usagedomain.Decision{}, err
	}
	return decision, nil
}

// Release gives back one use of the policy by the member. Counters never go
// below zero.
func (c *Counter) Release(ctx context.Context, policyID, memberID snowflake.ID) error {
	if policyID == 0 {
		return usagedomain.ErrInvalidPolicy
	}

	members := []snowflake.ID{usagedomain.TotalMemberID}
	if memberID != usagedomain.TotalMemberID {
		members = append(members, memberID)
	}

	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := c.clock.Now()
		for _, id := range members {
			err := tx.Exec(
				`UPDATE discount_usage_counters
				 SET used_count = used_count - 1, version = version + 1, updated_at = ?
				 WHERE policy_id = ? AND member_id = ? AND used_count > 0`,
				now,
				policyID,
				id,
			).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Find returns the counter row, or a zero record when none exists yet.
func (c *Counter) Find(ctx context.Context, policyID, memberID snowflake.ID) (usagedomain.UsageRecord, error) {
	return findRecord(c.db.WithContext(ctx), policyID, memberID)
}

func (c *Counter) newBackOff(ctx context.Context) backoff.BackOff {
	attempts := c.tuning.Get().ReserveMaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 5 * time.Millisecond
	exp.MaxInterval = 100 * time.Millisecond
	exp.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)
}

func ensureRow(tx *gorm.DB, policyID, memberID snowflake.ID, now time.Time) error {
	insert := `INSERT INTO discount_usage_counters (policy_id, member_id, used_count, version, updated_at)
		 VALUES (?, ?, 0, 0, ?) ON CONFLICT (policy_id, member_id) DO NOTHING`
	if tx.Dialector.Name() == "mysql" {
		insert = `INSERT IGNORE INTO discount_usage_counters (policy_id, member_id, used_count, version, updated_at)
		 VALUES (?, ?, 0, 0, ?)`
	}
	return tx.Exec(insert, policyID, memberID, now).Error
}

func findRecord(tx *gorm.DB, policyID, memberID snowflake.ID) (usagedomain.UsageRecord, error) {
	var record usagedomain.UsageRecord
	err := tx.Raw(
		`SELECT policy_id, member_id, used_count, version, updated_at
		 FROM discount_usage_counters
		 WHERE policy_id = ? AND member_id = ?`,
		policyID,
		memberID,
	).Scan(&record).Error
	if err != nil {
		return usagedomain.UsageRecord{}, err
	}
	if record.PolicyID == 0 {
		return usagedomain.UsageRecord{PolicyID: policyID, MemberID: memberID}, nil
	}
	return record, nil
}

func isConflict(err error) bool {
	return errors.Is(err, errVersionConflict) || pkgdb.IsRetryableErr(err)
}
