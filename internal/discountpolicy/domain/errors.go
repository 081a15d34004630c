package domain

import "errors"

var (
	ErrInvalidDiscountGroup = errors.New("invalid_discount_group")
	ErrInvalidDiscountType  = errors.New("invalid_discount_type")
	ErrInvalidTargetType    = errors.New("invalid_target_type")
	ErrMissingTarget        = errors.New("missing_target_id")
	ErrMissingRate          = errors.New("missing_rate")
	ErrInvalidRate          = errors.New("invalid_rate")
	ErrMissingFixedAmount   = errors.New("missing_fixed_amount")
	ErrNegativeAmount       = errors.New("negative_amount")
	ErrInvalidWindow        = errors.New("invalid_validity_window")
	ErrInvalidPriority      = errors.New("invalid_priority")
	ErrInvalidCostShare     = errors.New("invalid_cost_share_ratio")
	ErrMissingTiers         = errors.New("missing_tiers")
	ErrInvalidTier          = errors.New("invalid_tier")
)

var validationErrors = []error{
	ErrInvalidDiscountGroup,
	ErrInvalidDiscountType,
	ErrInvalidTargetType,
	ErrMissingTarget,
	ErrMissingRate,
	ErrInvalidRate,
	ErrMissingFixedAmount,
	ErrNegativeAmount,
	ErrInvalidWindow,
	ErrInvalidPriority,
	ErrInvalidCostShare,
	ErrMissingTiers,
	ErrInvalidTier,
}

// ViolationCode returns the code of the validation error wrapped in err, or
// "unknown".
func ViolationCode(err error) string {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return "unknown"
}
