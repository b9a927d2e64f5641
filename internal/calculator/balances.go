package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
)

// Balances maps member IDs to signed net amounts for one group.
// Positive = owed money, negative = owes money.
//
// Iteration order is explicit: group members in membership order, followed by
// any other member IDs in the order they were first seen.
type Balances struct {
	order   []string
	amounts map[string]decimal.Decimal
}

// NewBalances returns balances seeded at zero for the given member IDs.
func NewBalances(memberIDs ...string) *Balances {
	b := &Balances{amounts: make(map[string]decimal.Decimal, len(memberIDs))}
	for _, id := range memberIDs {
		b.ensure(id)
	}
	return b
}

func (b *Balances) ensure(id string) {
	if _, exists := b.amounts[id]; !exists {
		b.order = append(b.order, id)
		b.amounts[id] = decimal.Zero
	}
}

// Add adjusts a member's balance by amount (negative amounts subtract).
func (b *Balances) Add(id string, amount decimal.Decimal) {
	b.ensure(id)
	b.amounts[id] = b.amounts[id].Add(amount)
}

// Get returns a member's balance. Unknown members have a zero balance.
func (b *Balances) Get(id string) decimal.Decimal {
	if b == nil {
		return decimal.Zero
	}
	return b.amounts[id]
}

// Members returns member IDs in iteration order.
func (b *Balances) Members() []string {
	if b == nil {
		return nil
	}
	return append([]string(nil), b.order...)
}

// Len returns the number of members with a balance entry.
func (b *Balances) Len() int {
	if b == nil {
		return 0
	}
	return len(b.order)
}

// NonZero returns the number of members whose balance is not zero.
func (b *Balances) NonZero() int {
	n := 0
	for _, id := range b.Members() {
		if !b.amounts[id].IsZero() {
			n++
		}
	}
	return n
}

// Sum returns the total of all balances. It is zero for consistent expenses.
func (b *Balances) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, id := range b.Members() {
		total = total.Add(b.amounts[id])
	}
	return total
}

// Map returns a copy of the balances as a plain map.
func (b *Balances) Map() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, b.Len())
	for _, id := range b.Members() {
		out[id] = b.amounts[id]
	}
	return out
}

// ComputeBalances reduces a group's expenses to net balances per member.
//
// Algorithm:
//   - Every group member starts at zero, even without transactions
//   - Settled expenses and expenses of other groups are skipped
//   - Each payer contribution adds to the payer's balance
//   - Each split obligation subtracts from the member's balance
//
// Members referenced by expenses but missing from the group are tolerated and
// appended after the group members.
func ComputeBalances(group models.Group, expenses []models.Expense) *Balances {
	balances := NewBalances(group.MemberIDs()...)

	for _, expense := range expenses {
		if expense.Settled {
			continue
		}
		if expense.GroupID != "" && group.ID != "" && expense.GroupID != group.ID {
			continue
		}

		for _, paid := range expense.PaidBy {
			balances.Add(paid.MemberID, paid.Amount)
		}
		for _, owed := range expense.SplitBetween {
			balances.Add(owed.MemberID, owed.Amount.Neg())
		}
	}

	return balances
}
