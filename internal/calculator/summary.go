package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
)

// MemberSummary totals one member's position across all of their groups.
type MemberSummary struct {
	MemberID string

	// TotalOwed is what the member owes others (sum of negative balances).
	TotalOwed decimal.Decimal

	// TotalOwedToMember is what others owe the member (sum of positive balances).
	TotalOwedToMember decimal.Decimal

	// Groups is the number of groups the member belongs to.
	Groups int
}

// Net returns TotalOwedToMember - TotalOwed.
func (s MemberSummary) Net() decimal.Decimal {
	return s.TotalOwedToMember.Sub(s.TotalOwed)
}

// SummarizeMember computes a member's totals over every group they belong to.
// expenses may span several groups; each group only sees its own expenses.
//
// Only memberID's own balance in each group is counted. Debts between other
// members of the same groups are deliberately left out, so TotalOwed is what
// this member pays and TotalOwedToMember is what this member receives.
func SummarizeMember(memberID string, groups []models.Group, expenses []models.Expense) MemberSummary {
	summary := MemberSummary{
		MemberID:          memberID,
		TotalOwed:         decimal.Zero,
		TotalOwedToMember: decimal.Zero,
	}

	byGroup := make(map[string][]models.Expense)
	for _, e := range expenses {
		byGroup[e.GroupID] = append(byGroup[e.GroupID], e)
	}

	for _, group := range groups {
		if !group.HasMember(memberID) {
			continue
		}
		summary.Groups++

		balance := ComputeBalances(group, byGroup[group.ID]).Get(memberID)
		if balance.IsNegative() {
			summary.TotalOwed = summary.TotalOwed.Add(balance.Abs())
		} else {
			summary.TotalOwedToMember = summary.TotalOwedToMember.Add(balance)
		}
	}

	return summary
}
