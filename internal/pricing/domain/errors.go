package domain

import "errors"

var (
	ErrInvalidLineAmount = errors.New("invalid_line_amount")
	ErrInvalidQuantity   = errors.New("invalid_quantity")
	ErrMissingMember     = errors.New("missing_member")
	ErrInvalidPolicy     = errors.New("invalid_policy")
)
