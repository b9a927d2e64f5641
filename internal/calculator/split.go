package calculator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
)

var (
	ErrNoParticipants  = errors.New("must have at least one participant")
	ErrNegativeInput   = errors.New("split inputs cannot be negative")
	ErrZeroShares      = errors.New("total shares must be positive")
	ErrPercentageTotal = errors.New("percentages must add up to 100")
)

var (
	oneCent        = decimal.New(1, -2)
	hundredPercent = decimal.NewFromInt(100)
)

// ResolveSplit computes each member's obligation for an expense of the given total.
//
// Methods:
//   - equal: total / n per member
//   - shares: total × shares / total_shares
//   - percentage: total × percentage / 100 (percentages must add up to 100 ± 0.01)
//   - exact: amounts are taken as given
//
// Derived amounts are floored to cents; leftover cents go one at a time to the
// first members in order, so the result always adds up to the total exactly.
func ResolveSplit(method models.SplitMethod, total decimal.Decimal, entries []models.Split) ([]models.Split, error) {
	if len(entries) == 0 {
		return nil, ErrNoParticipants
	}
	if total.IsNegative() {
		return nil, fmt.Errorf("%w: total %s", ErrNegativeInput, total)
	}

	weights := make([]decimal.Decimal, len(entries))
	switch method {
	case models.SplitEqual:
		stripped := make([]models.Split, len(entries))
		for i, e := range entries {
			stripped[i] = models.Split{MemberID: e.MemberID}
			weights[i] = decimal.NewFromInt(1)
		}
		return allocate(total, stripped, weights), nil

	case models.SplitShares:
		for i, e := range entries {
			if e.Shares.IsNegative() {
				return nil, fmt.Errorf("%w: %s shares for %s", ErrNegativeInput, e.Shares, e.MemberID)
			}
			weights[i] = e.Shares
		}
		if !decimal.Sum(decimal.Zero, weights...).IsPositive() {
			return nil, ErrZeroShares
		}
		return allocate(total, entries, weights), nil

	case models.SplitPercentage:
		for i, e := range entries {
			if e.Percentage.IsNegative() {
				return nil, fmt.Errorf("%w: %s%% for %s", ErrNegativeInput, e.Percentage, e.MemberID)
			}
			weights[i] = e.Percentage
		}
		sum := decimal.Sum(decimal.Zero, weights...)
		if sum.Sub(hundredPercent).Abs().GreaterThan(models.SumTolerance) {
			return nil, fmt.Errorf("%w: got %s", ErrPercentageTotal, sum)
		}
		return allocate(total, entries, weights), nil

	case models.SplitExact:
		out := make([]models.Split, len(entries))
		for i, e := range entries {
			if e.Amount.IsNegative() {
				return nil, fmt.Errorf("%w: %s for %s", ErrNegativeInput, e.Amount, e.MemberID)
			}
			out[i] = models.Split{MemberID: e.MemberID, Amount: e.Amount}
		}
		return out, nil
	}

	return nil, fmt.Errorf("%w: %q", models.ErrUnknownMethod, method)
}

// allocate distributes total proportionally to weights, in whole cents.
// weights must contain at least one positive value.
func allocate(total decimal.Decimal, entries []models.Split, weights []decimal.Decimal) []models.Split {
	totalCents := total.Shift(2).Floor()
	weightSum := decimal.Sum(decimal.Zero, weights...)

	out := make([]models.Split, len(entries))
	allocated := decimal.Zero
	for i, e := range entries {
		cents := totalCents.Mul(weights[i]).Div(weightSum).Floor()
		out[i] = models.Split{
			MemberID:   e.MemberID,
			Amount:     cents.Shift(-2),
			Shares:     e.Shares,
			Percentage: e.Percentage,
		}
		allocated = allocated.Add(cents)
	}

	// Hand out leftover cents to members with a positive weight, in order.
	remainder := totalCents.Sub(allocated).IntPart()
	for i := 0; remainder > 0; i = (i + 1) % len(out) {
		if weights[i].IsPositive() {
			out[i].Amount = out[i].Amount.Add(oneCent)
			remainder--
		}
	}

	return out
}
