// Package ledger maintains per-group running balances.
//
// Balances are an accumulator: expense mutations post signed deltas, they are
// never recomputed from the full expense history. Creating an expense posts
// each participant's net position, deleting posts the negation, and editing
// posts both merged into a single batch so the group ledger moves atomically
// from the old state to the new one.
package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"spendsplit/internal/models"
	"spendsplit/internal/storage"
)

// Accumulator posts expense-derived balance deltas to a group ledger.
type Accumulator struct {
	store storage.LedgerStore
}

// NewAccumulator creates an accumulator backed by the given store.
func NewAccumulator(store storage.LedgerStore) *Accumulator {
	return &Accumulator{store: store}
}

// ApplyExpense posts each participant's net position (paid minus share) to the
// expense's group ledger. One-off expenses carry no group and are a no-op.
func (a *Accumulator) ApplyExpense(ctx context.Context, expense *models.Expense) error {
	if !expense.IsGrouped() {
		return nil
	}
	if err := a.store.ApplyBalanceDeltas(ctx, expense.GroupID, expense.NetBalances()); err != nil {
		return fmt.Errorf("failed to apply expense %s to ledger: %w", expense.ID, err)
	}
	return nil
}

// ReverseExpense posts the negation of each participant's net position,
// undoing the expense's effect on the group ledger.
func (a *Accumulator) ReverseExpense(ctx context.Context, expense *models.Expense) error {
	if !expense.IsGrouped() {
		return nil
	}
	if err := a.store.ApplyBalanceDeltas(ctx, expense.GroupID, negate(expense.NetBalances())); err != nil {
		return fmt.Errorf("failed to reverse expense %s from ledger: %w", expense.ID, err)
	}
	return nil
}

// ReplaceExpense swaps an edited expense's ledger contribution: the old
// version's negated deltas and the new version's deltas are merged per user
// and posted as one batch. A participant unchanged between versions nets to
// zero and a reader can never observe the ledger with the expense half
// removed.
func (a *Accumulator) ReplaceExpense(ctx context.Context, oldExpense, newExpense *models.Expense) error {
	if oldExpense.GroupID != newExpense.GroupID {
		return fmt.Errorf("expense %s cannot move between groups", newExpense.ID)
	}
	if !newExpense.IsGrouped() {
		return nil
	}

	merged := merge(negate(oldExpense.NetBalances()), newExpense.NetBalances())
	if len(merged) == 0 {
		return nil
	}
	if err := a.store.ApplyBalanceDeltas(ctx, newExpense.GroupID, merged); err != nil {
		return fmt.Errorf("failed to replace expense %s in ledger: %w", newExpense.ID, err)
	}
	return nil
}

// GroupBalances returns the group's current balances as solver input.
func (a *Accumulator) GroupBalances(ctx context.Context, groupID string) ([]models.UserAmount, error) {
	rows, err := a.store.ListGroupBalances(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group %s balances: %w", groupID, err)
	}

	balances := make([]models.UserAmount, len(rows))
	for i, row := range rows {
		balances[i] = models.UserAmount{UserID: row.UserID, Amount: row.Balance}
	}
	return balances, nil
}

func negate(deltas []models.UserAmount) []models.UserAmount {
	negated := make([]models.UserAmount, len(deltas))
	for i, d := range deltas {
		negated[i] = models.UserAmount{UserID: d.UserID, Amount: d.Amount.Neg()}
	}
	return negated
}

// merge sums deltas per user, preserving first-seen order, and drops users
// whose deltas cancel exactly.
func merge(batches ...[]models.UserAmount) []models.UserAmount {
	totals := make(map[string]decimal.Decimal)
	var order []string

	for _, batch := range batches {
		for _, d := range batch {
			if _, seen := totals[d.UserID]; !seen {
				order = append(order, d.UserID)
			}
			totals[d.UserID] = totals[d.UserID].Add(d.Amount)
		}
	}

	merged := make([]models.UserAmount, 0, len(order))
	for _, userID := range order {
		if totals[userID].IsZero() {
			continue
		}
		merged = append(merged, models.UserAmount{UserID: userID, Amount: totals[userID]})
	}
	return merged
}
