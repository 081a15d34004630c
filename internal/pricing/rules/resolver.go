package rules

import (
	policydomain "github.com/ryu-qqq/setof-commerce-sub024/internal/discountpolicy/domain"
	"github.com/samber/lo"
)

// Candidate is a matched policy with its computed discount.
type Candidate struct {
	Policy policydomain.DiscountPolicy
	Amount int64
}

// Resolve keeps one winner per discount group: the lowest priority value,
// then the lowest policy id. Candidates worth nothing never win. Winners are
// returned in group order.
func Resolve(candidates []Candidate) []Candidate {
	eligible := lo.Filter(candidates, func(c Candidate, _ int) bool {
		return c.Amount > 0
	})
	groups := lo.GroupBy(eligible, func(c Candidate) policydomain.DiscountGroup {
		return c.Policy.DiscountGroup
	})

	winners := make([]Candidate, 0, len(groups))
	for _, group := range policydomain.DiscountGroups {
		members, ok := groups[group]
		if !ok {
			continue
		}
		winners = append(winners, lo.MinBy(members, outranks))
	}
	return winners
}

func outranks(a, b Candidate) bool {
	if a.Policy.Priority != b.Policy.Priority {
		return a.Policy.Priority < b.Policy.Priority
	}
	return a.Policy.ID < b.Policy.ID
}
