package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

//go:generate mockgen -source=service.go -destination=../mocks/mock_service.go -package=mocks

type Service interface {
	Evaluate(ctx context.Context, line OrderLine, memberID snowflake.ID) (*PricingResult, error)
	Release(ctx context.Context, policyID, memberID snowflake.ID) error
}
