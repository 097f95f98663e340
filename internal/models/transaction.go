package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single personal income or expense entry.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string

	// UserID is the owner of the transaction.
	UserID string

	// CategoryID references the category this transaction is recorded against.
	CategoryID string

	// Type mirrors the category type; denormalized so listings don't need a join.
	Type CategoryType

	// Amount is the transaction amount, always positive.
	Amount decimal.Decimal

	// Description is an optional free-text note.
	Description string

	// Date is when the transaction occurred (not when it was recorded).
	Date time.Time

	// CreatedAt is the Unix timestamp when the transaction was recorded.
	CreatedAt int64
}
