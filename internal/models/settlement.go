package models

import "github.com/shopspring/decimal"

// SettlementStatus is the payment state of a settlement.
type SettlementStatus string

const (
	SettlementPending SettlementStatus = "PENDING"
	SettlementPaid    SettlementStatus = "PAID"
)

// Settlement is a directed payment recommendation: FromUserID owes ToUserID
// the given amount within a scope (a group ledger or a one-off expense).
//
// Settlements are a derived view, not authoritative state. Whenever the
// balances underlying a scope change, every settlement row for that scope is
// deleted and a fresh PENDING set is inserted, including rows already marked
// PAID. The authoritative state is GroupBalance (group scope) or the
// expense's own participants (one-off scope).
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// Scope is the group ledger or one-off expense this settlement covers.
	Scope Scope

	// FromUserID is the debtor who should pay.
	FromUserID string

	// ToUserID is the creditor who should be paid.
	ToUserID string

	// Amount is the recommended payment, always greater than money.Tolerance.
	Amount decimal.Decimal

	// Status starts PENDING and moves one-way to PAID.
	Status SettlementStatus

	// CreatedAt is the Unix timestamp when this settlement set was computed.
	CreatedAt int64
}
