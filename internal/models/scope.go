package models

// Scope identifies the boundary over which settlements are computed and
// replaced as a unit: either a group's whole ledger, or one one-off expense.
// It is a tagged variant rather than a pair of nullable foreign keys so that
// callers can't construct a settlement belonging to both or neither.
type Scope struct {
	kind scopeKind
	id   string
}

type scopeKind uint8

const (
	scopeGroup scopeKind = iota + 1
	scopeExpense
)

// GroupScope returns the scope covering groupID's ledger.
func GroupScope(groupID string) Scope {
	return Scope{kind: scopeGroup, id: groupID}
}

// ExpenseScope returns the scope covering a single one-off expense.
func ExpenseScope(expenseID string) Scope {
	return Scope{kind: scopeExpense, id: expenseID}
}

// GroupID returns the group ID and true when the scope is a group ledger.
func (s Scope) GroupID() (string, bool) {
	if s.kind == scopeGroup {
		return s.id, true
	}
	return "", false
}

// ExpenseID returns the expense ID and true when the scope is a one-off expense.
func (s Scope) ExpenseID() (string, bool) {
	if s.kind == scopeExpense {
		return s.id, true
	}
	return "", false
}

// IsZero reports whether the scope is the zero value (no scope).
func (s Scope) IsZero() bool {
	return s.kind == 0
}

// String renders the scope for logs.
func (s Scope) String() string {
	switch s.kind {
	case scopeGroup:
		return "group:" + s.id
	case scopeExpense:
		return "expense:" + s.id
	default:
		return "none"
	}
}
