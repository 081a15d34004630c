package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// TotalMemberID keys the policy-wide counter row. Per-customer rows use the
// member id, which is never zero for a known customer.
const TotalMemberID snowflake.ID = 0

// UsageRecord is one counter row: per (policy, member) or, with
// TotalMemberID, per policy.
type UsageRecord struct {
	PolicyID  snowflake.ID `json:"policy_id" gorm:"primaryKey;column:policy_id"`
	MemberID  snowflake.ID `json:"member_id" gorm:"primaryKey;column:member_id"`
	UsedCount int64        `json:"used_count" gorm:"not null;default:0"`
	Version   int64        `json:"version" gorm:"not null;default:0"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (UsageRecord) TableName() string { return "discount_usage_counters" }

// Reservation asks for one more use of a policy by a member. A nil ceiling
// means that counter is unlimited. MemberID zero skips the per-customer row.
type Reservation struct {
	PolicyID       snowflake.ID
	MemberID       snowflake.ID
	MaxPerCustomer *int64
	MaxTotal       *int64
}

type RejectReason string

const (
	ReasonPerCustomerLimit RejectReason = "per_customer_limit"
	ReasonTotalLimit       RejectReason = "total_limit"
	ReasonContended        RejectReason = "reservation_contended"
)

// Decision is the outcome of a reservation. Reason is set only when the
// reservation was not accepted.
type Decision struct {
	Accepted bool
	Reason   RejectReason
}

func Accepted() Decision {
	return Decision{Accepted: true}
}

func Rejected(reason RejectReason) Decision {
	return Decision{Reason: reason}
}
