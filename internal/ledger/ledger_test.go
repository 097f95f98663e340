package ledger

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendsplit/internal/models"
)

// fakeLedgerStore records every delta batch and keeps running balances.
type fakeLedgerStore struct {
	batches  [][]models.UserAmount
	balances map[string]decimal.Decimal
}

func newFakeLedgerStore() *fakeLedgerStore {
	return &fakeLedgerStore{balances: make(map[string]decimal.Decimal)}
}

func (f *fakeLedgerStore) ApplyBalanceDeltas(_ context.Context, _ string, deltas []models.UserAmount) error {
	f.batches = append(f.batches, deltas)
	for _, d := range deltas {
		f.balances[d.UserID] = f.balances[d.UserID].Add(d.Amount)
	}
	return nil
}

func (f *fakeLedgerStore) ListGroupBalances(_ context.Context, groupID string) ([]*models.GroupBalance, error) {
	var rows []*models.GroupBalance
	for userID, balance := range f.balances {
		rows = append(rows, &models.GroupBalance{GroupID: groupID, UserID: userID, Balance: balance})
	}
	return rows, nil
}

func (f *fakeLedgerStore) sum() decimal.Decimal {
	total := decimal.Zero
	for _, b := range f.balances {
		total = total.Add(b)
	}
	return total
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func groupExpense(id, groupID string, participants []models.Participant) *models.Expense {
	total := decimal.Zero
	for _, p := range participants {
		total = total.Add(p.Paid)
	}
	return &models.Expense{
		ID:           id,
		GroupID:      groupID,
		PayerID:      participants[0].UserID,
		Amount:       total,
		SplitType:    models.SplitCustom,
		Participants: participants,
	}
}

func TestApplyExpensePostsNetPositions(t *testing.T) {
	store := newFakeLedgerStore()
	acc := NewAccumulator(store)

	expense := groupExpense("e1", "g1", []models.Participant{
		{UserID: "alice", Paid: dec("90"), Share: dec("30")},
		{UserID: "bob", Paid: dec("0"), Share: dec("30")},
		{UserID: "carol", Paid: dec("0"), Share: dec("30")},
	})

	require.NoError(t, acc.ApplyExpense(context.Background(), expense))

	assert.True(t, store.balances["alice"].Equal(dec("60")))
	assert.True(t, store.balances["bob"].Equal(dec("-30")))
	assert.True(t, store.balances["carol"].Equal(dec("-30")))
	assert.True(t, store.sum().IsZero(), "group balances must sum to zero")
}

func TestApplyExpenseIgnoresOneOff(t *testing.T) {
	store := newFakeLedgerStore()
	acc := NewAccumulator(store)

	expense := groupExpense("e1", "", []models.Participant{
		{UserID: "alice", Paid: dec("40"), Share: dec("20")},
		{UserID: "bob", Paid: dec("0"), Share: dec("20")},
	})

	require.NoError(t, acc.ApplyExpense(context.Background(), expense))
	assert.Empty(t, store.batches, "one-off expenses never touch a group ledger")
}

func TestReverseExpenseRestoresLedger(t *testing.T) {
	store := newFakeLedgerStore()
	acc := NewAccumulator(store)
	ctx := context.Background()

	expense := groupExpense("e1", "g1", []models.Participant{
		{UserID: "alice", Paid: dec("50"), Share: dec("25")},
		{UserID: "bob", Paid: dec("0"), Share: dec("25")},
	})

	require.NoError(t, acc.ApplyExpense(ctx, expense))
	require.NoError(t, acc.ReverseExpense(ctx, expense))

	assert.True(t, store.balances["alice"].IsZero())
	assert.True(t, store.balances["bob"].IsZero())
}

func TestReplaceExpenseIsOneBatch(t *testing.T) {
	store := newFakeLedgerStore()
	acc := NewAccumulator(store)
	ctx := context.Background()

	oldExpense := groupExpense("e1", "g1", []models.Participant{
		{UserID: "alice", Paid: dec("60"), Share: dec("20")},
		{UserID: "bob", Paid: dec("0"), Share: dec("20")},
		{UserID: "carol", Paid: dec("0"), Share: dec("20")},
	})
	require.NoError(t, acc.ApplyExpense(ctx, oldExpense))

	// Edit: total drops to 30, carol leaves, dave joins.
	newExpense := groupExpense("e1", "g1", []models.Participant{
		{UserID: "alice", Paid: dec("30"), Share: dec("10")},
		{UserID: "bob", Paid: dec("0"), Share: dec("10")},
		{UserID: "dave", Paid: dec("0"), Share: dec("10")},
	})
	require.NoError(t, acc.ReplaceExpense(ctx, oldExpense, newExpense))

	require.Len(t, store.batches, 2, "replace posts one merged batch, not reverse then apply")

	assert.True(t, store.balances["alice"].Equal(dec("20")))
	assert.True(t, store.balances["bob"].Equal(dec("-10")))
	assert.True(t, store.balances["carol"].IsZero(), "removed participant returns to zero")
	assert.True(t, store.balances["dave"].Equal(dec("-10")))
	assert.True(t, store.sum().IsZero(), "group balances must sum to zero")
}

func TestReplaceExpenseDropsCancelledDeltas(t *testing.T) {
	store := newFakeLedgerStore()
	acc := NewAccumulator(store)
	ctx := context.Background()

	expense := groupExpense("e1", "g1", []models.Participant{
		{UserID: "alice", Paid: dec("40"), Share: dec("20")},
		{UserID: "bob", Paid: dec("0"), Share: dec("20")},
	})
	require.NoError(t, acc.ApplyExpense(ctx, expense))

	// Description-only edit: identical participants, no ledger movement.
	unchanged := groupExpense("e1", "g1", []models.Participant{
		{UserID: "alice", Paid: dec("40"), Share: dec("20")},
		{UserID: "bob", Paid: dec("0"), Share: dec("20")},
	})
	require.NoError(t, acc.ReplaceExpense(ctx, expense, unchanged))

	require.Len(t, store.batches, 1, "fully cancelled replacement posts nothing")
}

func TestReplaceExpenseRejectsGroupMove(t *testing.T) {
	store := newFakeLedgerStore()
	acc := NewAccumulator(store)

	oldExpense := groupExpense("e1", "g1", []models.Participant{
		{UserID: "alice", Paid: dec("10"), Share: dec("10")},
	})
	newExpense := groupExpense("e1", "g2", []models.Participant{
		{UserID: "alice", Paid: dec("10"), Share: dec("10")},
	})

	err := acc.ReplaceExpense(context.Background(), oldExpense, newExpense)
	assert.Error(t, err)
	assert.Empty(t, store.batches)
}

func TestGroupBalances(t *testing.T) {
	store := newFakeLedgerStore()
	acc := NewAccumulator(store)
	ctx := context.Background()

	expense := groupExpense("e1", "g1", []models.Participant{
		{UserID: "alice", Paid: dec("30"), Share: dec("15")},
		{UserID: "bob", Paid: dec("0"), Share: dec("15")},
	})
	require.NoError(t, acc.ApplyExpense(ctx, expense))

	balances, err := acc.GroupBalances(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, balances, 2)

	byUser := map[string]decimal.Decimal{}
	for _, b := range balances {
		byUser[b.UserID] = b.Amount
	}
	assert.True(t, byUser["alice"].Equal(dec("15")))
	assert.True(t, byUser["bob"].Equal(dec("-15")))
}
