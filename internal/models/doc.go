// Package models defines the core domain models for SettleUp.
//
// # Models
//
//   - Member: a person taking part in a group (id + display name)
//   - User: a registered account; participates in groups as the Member with the same ID
//   - Group: an ordered list of Members that share expenses
//   - Expense: an amount paid by one or more members and split between members
//   - Settlement: a suggested payment from a debtor to a creditor (derived, never stored)
//
// # Money
//
// Amounts are decimal.Decimal values so that balance arithmetic is exact. They are
// persisted as integer cents and travel over the wire as decimal strings.
//
// # Design Principles
//
// 1. **Explicit order**: Group.Members order is membership order and drives the
// iteration order of every derived result.
// 2. **Avoid circular references**: use ID strings instead of pointers for relationships.
// 3. **Immutable history**: expenses only ever change their Settled flag.
package models
