package calculator

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
)

// ResidualPolicy decides what happens to an amount left unmatched after
// settlement matching. Residue only appears when balances do not sum to zero.
type ResidualPolicy string

const (
	// ResidualIgnore silently drops the residue.
	ResidualIgnore ResidualPolicy = "ignore"
	// ResidualAbsorb adds a residue within tolerance to the last settlement
	// when only that settlement's members hold it.
	ResidualAbsorb ResidualPolicy = "absorb"
	// ResidualError reports any residue as a *ResidueError.
	ResidualError ResidualPolicy = "error"
)

// ParseResidualPolicy converts a config value into a ResidualPolicy.
func ParseResidualPolicy(s string) (ResidualPolicy, error) {
	switch p := ResidualPolicy(s); p {
	case ResidualIgnore, ResidualAbsorb, ResidualError:
		return p, nil
	case "":
		return ResidualIgnore, nil
	}
	return "", fmt.Errorf("unknown residual policy %q (want ignore, absorb or error)", s)
}

// ResidueError reports an amount the reducer could not match.
type ResidueError struct {
	// Residue is the total unmatched amount (always positive).
	Residue decimal.Decimal
	// MemberIDs are the members left holding the residue.
	MemberIDs []string
}

func (e *ResidueError) Error() string {
	return fmt.Sprintf("unmatched settlement residue of %s for %v", e.Residue, e.MemberIDs)
}

// ReducerConfig configures a Reducer. Zero values select defaults, so a zero
// Tolerance means DefaultTolerance.
type ReducerConfig struct {
	Policy    ResidualPolicy
	Tolerance decimal.Decimal
	NewID     func() string
	Now       func() time.Time
}

// DefaultTolerance is the largest residue ResidualAbsorb will fold into a settlement.
var DefaultTolerance = decimal.New(1, -2)

// Reducer turns balances into suggested settlements.
type Reducer struct {
	cfg ReducerConfig
}

// NewReducer creates a Reducer, filling unset fields with defaults.
func NewReducer(cfg ReducerConfig) *Reducer {
	if cfg.Policy == "" {
		cfg.Policy = ResidualIgnore
	}
	if cfg.Tolerance.IsZero() {
		cfg.Tolerance = DefaultTolerance
	}
	if cfg.NewID == nil {
		cfg.NewID = func() string { return uuid.New().String() }
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Reducer{cfg: cfg}
}

// Policy returns the configured residual policy.
func (r *Reducer) Policy() ResidualPolicy {
	return r.cfg.Policy
}

var defaultReducer = NewReducer(ReducerConfig{})

// ComputeSettlements suggests payments that settle the given balances, dropping
// any unmatched residue.
func ComputeSettlements(group models.Group, balances *Balances) []models.Settlement {
	settlements, _ := defaultReducer.Reduce(group, balances)
	return settlements
}

// position is a debtor's or creditor's outstanding amount during matching.
type position struct {
	memberID  string
	remaining decimal.Decimal
}

// Reduce suggests payments that settle the given balances.
//
// Algorithm (greedy front-pair matching):
//   - Debtors (negative balance) and creditors (positive balance) keep the
//     balances iteration order; they are not sorted by magnitude
//   - The first debtor pays the first creditor min(owed, due)
//   - A debtor or creditor leaves the front once its remaining amount hits zero
//   - Matching stops when either side runs out
//
// With balances summing to zero this emits at most (non-zero members - 1)
// settlements. Any leftover is handled by the residual policy; settlements are
// returned even when an error is.
func (r *Reducer) Reduce(group models.Group, balances *Balances) ([]models.Settlement, error) {
	var debtors, creditors []*position
	for _, id := range balances.Members() {
		amount := balances.Get(id)
		switch {
		case amount.IsNegative():
			debtors = append(debtors, &position{memberID: id, remaining: amount.Neg()})
		case amount.IsPositive():
			creditors = append(creditors, &position{memberID: id, remaining: amount})
		}
	}

	var settlements []models.Settlement
	for len(debtors) > 0 && len(creditors) > 0 {
		debtor, creditor := debtors[0], creditors[0]

		amount := decimal.Min(debtor.remaining, creditor.remaining)
		if amount.IsPositive() {
			settlements = append(settlements, r.newSettlement(group, debtor.memberID, creditor.memberID, amount))
			debtor.remaining = debtor.remaining.Sub(amount)
			creditor.remaining = creditor.remaining.Sub(amount)
		}

		if !debtor.remaining.IsPositive() {
			debtors = debtors[1:]
		}
		if !creditor.remaining.IsPositive() {
			creditors = creditors[1:]
		}
	}

	residue := decimal.Zero
	var holders []string
	for _, p := range append(debtors, creditors...) {
		residue = residue.Add(p.remaining)
		holders = append(holders, p.memberID)
	}
	if residue.IsZero() {
		return settlements, nil
	}

	switch r.cfg.Policy {
	case ResidualAbsorb:
		if residue.LessThanOrEqual(r.cfg.Tolerance) && len(settlements) > 0 {
			last := &settlements[len(settlements)-1]
			if heldBy(holders, last.From.ID, last.To.ID) {
				last.Amount = last.Amount.Add(residue)
				return settlements, nil
			}
		}
		return settlements, &ResidueError{Residue: residue, MemberIDs: holders}
	case ResidualError:
		return settlements, &ResidueError{Residue: residue, MemberIDs: holders}
	default:
		return settlements, nil
	}
}

// heldBy reports whether every holder is one of the given members.
func heldBy(holders []string, members ...string) bool {
	for _, h := range holders {
		if !slices.Contains(members, h) {
			return false
		}
	}
	return true
}

func (r *Reducer) newSettlement(group models.Group, fromID, toID string, amount decimal.Decimal) models.Settlement {
	return models.Settlement{
		ID:        r.cfg.NewID(),
		GroupID:   group.ID,
		From:      resolveMember(group, fromID),
		To:        resolveMember(group, toID),
		Amount:    amount,
		CreatedAt: r.cfg.Now().Unix(),
		Status:    models.SettlementPending,
	}
}

// resolveMember looks up a member by ID, falling back to the ID as the name.
func resolveMember(group models.Group, id string) models.Member {
	if m, ok := group.Member(id); ok {
		return m
	}
	return models.Member{ID: id, Name: id}
}
