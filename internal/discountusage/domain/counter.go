package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

//go:generate mockgen -source=counter.go -destination=../mocks/mock_counter.go -package=mocks

// Counter is the only shared mutable state of the pricing pipeline. Reserve
// checks both ceilings and increments both counters as one atomic step.
type Counter interface {
	Reserve(ctx context.Context, r Reservation) (Decision, error)
	Release(ctx context.Context, policyID, memberID snowflake.ID) error
}
