package models

import "github.com/shopspring/decimal"

// SettlementStatus is the state of a suggested payment.
type SettlementStatus string

const (
	SettlementPending   SettlementStatus = "pending"
	SettlementCompleted SettlementStatus = "completed"
)

// Settlement is a suggested payment between group members to clear debts.
// Settlements are derived from balances on demand and are never persisted;
// the ID is regenerated on every computation.
type Settlement struct {
	// ID is a freshly generated identifier (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// From is the member who pays (debtor).
	From Member

	// To is the member who receives the payment (creditor).
	To Member

	// Amount is the payment amount. Always positive.
	Amount decimal.Decimal

	// CreatedAt is the Unix timestamp when the settlement was computed.
	CreatedAt int64

	// Status is pending for every computed settlement.
	Status SettlementStatus
}
