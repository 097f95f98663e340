package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SplitType tags how an expense's shares were chosen by the client.
// The core never re-derives shares from the tag; participants carry the
// authoritative paid/share amounts either way.
type SplitType string

const (
	SplitEqual  SplitType = "equal"
	SplitCustom SplitType = "custom"
)

// Valid reports whether the split type is one of the known values.
func (t SplitType) Valid() bool {
	return t == SplitEqual || t == SplitCustom
}

// Expense is a single spending event shared between participants.
// It is either posted to a group ledger (GroupID set) or stands alone as a
// one-off expense settled directly against its own participants.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the owning group, or empty for a one-off expense.
	// Use Scope for exhaustive handling of the two cases.
	GroupID string

	// PayerID is the user who fronted the expense. Must be a participant.
	PayerID string

	// Amount is the total expense amount, always positive.
	Amount decimal.Decimal

	// Description is a free-text note.
	Description string

	// SplitType records whether shares were split equally or customized.
	SplitType SplitType

	// Date is when the expense occurred.
	Date time.Time

	// Participants is every member's stake in this expense. Created and
	// destroyed together with the expense.
	Participants []Participant

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// Scope returns the settlement scope this expense belongs to: the group
// ledger if the expense is grouped, otherwise the expense itself.
func (e *Expense) Scope() Scope {
	if e.GroupID != "" {
		return GroupScope(e.GroupID)
	}
	return ExpenseScope(e.ID)
}

// IsGrouped reports whether the expense is posted to a group ledger.
func (e *Expense) IsGrouped() bool {
	return e.GroupID != ""
}

// NetBalances returns each participant's net position for this expense.
func (e *Expense) NetBalances() []UserAmount {
	nets := make([]UserAmount, len(e.Participants))
	for i, p := range e.Participants {
		nets[i] = UserAmount{UserID: p.UserID, Amount: p.NetBalance()}
	}
	return nets
}

// Participant is one user's stake in one expense.
type Participant struct {
	ExpenseID string
	UserID    string

	// Paid is what this user actually contributed toward the expense.
	Paid decimal.Decimal

	// Share is what this user is responsible for.
	Share decimal.Decimal
}

// NetBalance is paid minus share: positive means the user is a creditor for
// this expense, negative a debtor.
func (p *Participant) NetBalance() decimal.Decimal {
	return p.Paid.Sub(p.Share)
}

// UserAmount pairs a user with a signed decimal amount. Used for ledger
// deltas and as the settlement solver's input.
type UserAmount struct {
	UserID string
	Amount decimal.Decimal
}
