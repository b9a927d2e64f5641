package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// SplitMethod records how the split obligations of an expense were derived.
// It is informational once the obligations are resolved to amounts.
type SplitMethod string

const (
	SplitEqual      SplitMethod = "equal"
	SplitExact      SplitMethod = "exact"
	SplitShares     SplitMethod = "shares"
	SplitPercentage SplitMethod = "percentage"
)

// Valid reports whether m is a known split method.
func (m SplitMethod) Valid() bool {
	switch m {
	case SplitEqual, SplitExact, SplitShares, SplitPercentage:
		return true
	}
	return false
}

// SumTolerance is the largest accepted difference between an expense amount and
// the sum of its payer contributions or split obligations.
var SumTolerance = decimal.New(1, -2)

var (
	ErrMissingTitle  = errors.New("title is required")
	ErrMissingGroup  = errors.New("group_id is required")
	ErrInvalidAmount = errors.New("amount must be positive with at most two decimal places")
	ErrNoPayers      = errors.New("at least one payer is required")
	ErrNoSplits      = errors.New("at least one split entry is required")
	ErrMissingMember = errors.New("member id is required")
	ErrNegativeEntry = errors.New("entry amounts cannot be negative")
	ErrPaidMismatch  = errors.New("paid amounts do not add up to the expense amount")
	ErrSplitMismatch = errors.New("split amounts do not add up to the expense amount")
	ErrUnknownMethod = errors.New("unknown split method")
)

// Split is one member's part of an expense: either a payer contribution or a
// split obligation. Shares and Percentage keep the inputs the amount was
// derived from and are zero for equal and exact splits.
type Split struct {
	MemberID   string
	Amount     decimal.Decimal
	Shares     decimal.Decimal
	Percentage decimal.Decimal
}

// Expense is a shared expense within a group.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the owning group.
	GroupID string

	// Title is a short description (e.g., "Hotel Booking").
	Title string

	// Amount is the expense total.
	Amount decimal.Decimal

	// PaidBy lists payer contributions. Amounts add up to Amount.
	PaidBy []Split

	// SplitBetween lists split obligations. Amounts add up to Amount.
	SplitBetween []Split

	// SplitMethod is how SplitBetween was derived.
	SplitMethod SplitMethod

	// Date is the Unix timestamp of when the expense happened.
	Date int64

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64

	// Category and Notes are optional.
	Category string
	Notes    string

	// Settled excludes the expense from balances. It only ever moves from false to true.
	Settled bool
}

// Validate checks the expense invariants enforced when an expense is added.
func (e *Expense) Validate() error {
	if e.Title == "" {
		return ErrMissingTitle
	}
	if e.GroupID == "" {
		return ErrMissingGroup
	}
	if !e.Amount.IsPositive() || !e.Amount.Equal(e.Amount.Round(2)) {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, e.Amount)
	}
	if !e.SplitMethod.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownMethod, e.SplitMethod)
	}
	if len(e.PaidBy) == 0 {
		return ErrNoPayers
	}
	if len(e.SplitBetween) == 0 {
		return ErrNoSplits
	}

	paid, err := sumEntries(e.PaidBy)
	if err != nil {
		return fmt.Errorf("invalid paid_by: %w", err)
	}
	if paid.Sub(e.Amount).Abs().GreaterThan(SumTolerance) {
		return fmt.Errorf("%w: paid %s, amount %s", ErrPaidMismatch, paid, e.Amount)
	}

	owed, err := sumEntries(e.SplitBetween)
	if err != nil {
		return fmt.Errorf("invalid split_between: %w", err)
	}
	if owed.Sub(e.Amount).Abs().GreaterThan(SumTolerance) {
		return fmt.Errorf("%w: split %s, amount %s", ErrSplitMismatch, owed, e.Amount)
	}

	return nil
}

// Participants returns every member referenced by the expense, payers first,
// without duplicates.
func (e *Expense) Participants() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, entries := range [][]Split{e.PaidBy, e.SplitBetween} {
		for _, s := range entries {
			if !seen[s.MemberID] {
				seen[s.MemberID] = true
				ids = append(ids, s.MemberID)
			}
		}
	}
	return ids
}

func sumEntries(entries []Split) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, s := range entries {
		if s.MemberID == "" {
			return decimal.Zero, ErrMissingMember
		}
		if s.Amount.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: %s for %s", ErrNegativeEntry, s.Amount, s.MemberID)
		}
		if !s.Amount.Equal(s.Amount.Round(2)) {
			return decimal.Zero, fmt.Errorf("%w: %s for %s", ErrInvalidAmount, s.Amount, s.MemberID)
		}
		total = total.Add(s.Amount)
	}
	return total, nil
}
