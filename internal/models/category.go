package models

import "github.com/shopspring/decimal"

// CategoryType distinguishes income categories from expense categories.
type CategoryType string

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
)

// Valid reports whether the category type is one of the known values.
func (t CategoryType) Valid() bool {
	return t == CategoryIncome || t == CategoryExpense
}

// Category is a per-user budget bucket that transactions are recorded against.
type Category struct {
	// ID is the unique identifier for the category (UUID format).
	ID string

	// UserID is the owner of the category.
	UserID string

	// Name is the display name (e.g., "Groceries", "Salary").
	Name string

	// Type marks the category as income or expense.
	Type CategoryType

	// Budget is the optional monthly budget for this category.
	// Invalid (unset) means no budget has been assigned.
	Budget decimal.NullDecimal

	// CreatedAt is the Unix timestamp when the category was created.
	CreatedAt int64
}
