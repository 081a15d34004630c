package domain

import "errors"

var (
	ErrReservationContended = errors.New("reservation_contended")
	ErrInvalidPolicy        = errors.New("invalid_policy")
	ErrStoreUnavailable     = errors.New("usage_store_unavailable")
)
