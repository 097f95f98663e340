package settle

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"spendsplit/internal/models"
	"spendsplit/internal/money"
)

func bal(userID, amount string) models.UserAmount {
	return models.UserAmount{UserID: userID, Amount: decimal.RequireFromString(amount)}
}

// applyPayments plays the solver's output back onto the input balances:
// paying raises the debtor's balance and lowers the creditor's.
func applyPayments(balances []models.UserAmount, payments []Payment) map[string]decimal.Decimal {
	remaining := make(map[string]decimal.Decimal, len(balances))
	for _, b := range balances {
		remaining[b.UserID] = b.Amount
	}
	for _, p := range payments {
		remaining[p.FromUserID] = remaining[p.FromUserID].Add(p.Amount)
		remaining[p.ToUserID] = remaining[p.ToUserID].Sub(p.Amount)
	}
	return remaining
}

func TestSolveSinglePayerThreeWaySplit(t *testing.T) {
	// One expense of 90 paid entirely by A, split 30 each:
	// A is +60, B and C are -30 each. Exactly two payments, both to A.
	balances := []models.UserAmount{
		bal("A", "60"),
		bal("B", "-30"),
		bal("C", "-30"),
	}

	payments := Solve(balances)
	require.Len(t, payments, 2)
	for _, p := range payments {
		assert.Equal(t, "A", p.ToUserID)
		assert.True(t, p.Amount.Equal(decimal.NewFromInt(30)), "amount = %s", p.Amount)
	}
	assert.NotEqual(t, payments[0].FromUserID, payments[1].FromUserID)
}

func TestSolveOneCreditorTwoDebtors(t *testing.T) {
	balances := []models.UserAmount{
		bal("A", "50"),
		bal("B", "-20"),
		bal("C", "-30"),
	}

	payments := Solve(balances)
	require.Len(t, payments, 2)

	total := decimal.Zero
	for _, p := range payments {
		assert.Equal(t, "A", p.ToUserID)
		total = total.Add(p.Amount)
	}
	assert.True(t, total.Equal(decimal.NewFromInt(50)), "total = %s", total)

	// Smallest debt settles first.
	assert.Equal(t, "B", payments[0].FromUserID)
	assert.True(t, payments[0].Amount.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, "C", payments[1].FromUserID)
	assert.True(t, payments[1].Amount.Equal(decimal.NewFromInt(30)))
}

func TestSolveAllSettled(t *testing.T) {
	balances := []models.UserAmount{
		bal("A", "0"),
		bal("B", "0.005"),
		bal("C", "-0.005"),
	}
	assert.Empty(t, Solve(balances))
}

func TestSolveEmptyInput(t *testing.T) {
	assert.Empty(t, Solve(nil))
	assert.Empty(t, Solve([]models.UserAmount{}))
}

func TestSolveDropsNearZeroParticipants(t *testing.T) {
	balances := []models.UserAmount{
		bal("A", "10"),
		bal("B", "-10"),
		bal("C", "0.009"),
		bal("D", "-0.009"),
	}

	payments := Solve(balances)
	require.Len(t, payments, 1)
	assert.Equal(t, "B", payments[0].FromUserID)
	assert.Equal(t, "A", payments[0].ToUserID)
	for _, p := range payments {
		assert.NotEqual(t, "C", p.FromUserID)
		assert.NotEqual(t, "C", p.ToUserID)
		assert.NotEqual(t, "D", p.FromUserID)
		assert.NotEqual(t, "D", p.ToUserID)
	}
}

func TestSolveDeterministicForSameInput(t *testing.T) {
	balances := []models.UserAmount{
		bal("A", "25"),
		bal("B", "25"),
		bal("C", "-25"),
		bal("D", "-25"),
	}

	first := Solve(balances)
	second := Solve(balances)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].FromUserID, second[i].FromUserID)
		assert.Equal(t, first[i].ToUserID, second[i].ToUserID)
		assert.True(t, first[i].Amount.Equal(second[i].Amount))
	}
}

func TestSolveMinimality(t *testing.T) {
	// Five participants with nonzero balances must settle in at most four payments.
	balances := []models.UserAmount{
		bal("A", "100"),
		bal("B", "-40"),
		bal("C", "-25"),
		bal("D", "-20"),
		bal("E", "-15"),
	}

	payments := Solve(balances)
	assert.LessOrEqual(t, len(payments), len(balances)-1)

	remaining := applyPayments(balances, payments)
	for userID, r := range remaining {
		assert.True(t, money.IsSettled(r), "user %s left with %s", userID, r)
	}
}

func TestSolveCentAmounts(t *testing.T) {
	balances := []models.UserAmount{
		bal("A", "33.34"),
		bal("B", "-16.67"),
		bal("C", "-16.67"),
	}

	payments := Solve(balances)
	require.Len(t, payments, 2)
	for _, p := range payments {
		assert.True(t, p.Amount.GreaterThan(money.Tolerance))
	}

	remaining := applyPayments(balances, payments)
	for userID, r := range remaining {
		assert.True(t, money.IsSettled(r), "user %s left with %s", userID, r)
	}
}

// TestSolveProperties checks the solver's algebraic guarantees on random
// zero-sum balance sets: every emitted amount exceeds the tolerance, the
// payment count stays under the participant count, and applying all payments
// settles every balance. Residuals are bounded by the tolerance slack the
// solver deliberately drops, at most one tolerance unit per participant.
func TestSolveProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 12).Draw(t, "participants")

		balances := make([]models.UserAmount, 0, n)
		sum := decimal.Zero
		for i := 0; i < n-1; i++ {
			cents := rapid.Int64Range(-500000, 500000).Draw(t, fmt.Sprintf("cents%d", i))
			amount := decimal.New(cents, -2)
			balances = append(balances, models.UserAmount{
				UserID: fmt.Sprintf("user%d", i),
				Amount: amount,
			})
			sum = sum.Add(amount)
		}
		// Last participant absorbs the remainder so the set sums to zero.
		balances = append(balances, models.UserAmount{
			UserID: fmt.Sprintf("user%d", n-1),
			Amount: sum.Neg(),
		})

		payments := Solve(balances)

		unsettled := 0
		for _, b := range balances {
			if !money.IsSettled(b.Amount) {
				unsettled++
			}
		}
		if unsettled > 0 && len(payments) > unsettled-1 {
			t.Fatalf("emitted %d payments for %d unsettled participants", len(payments), unsettled)
		}

		for _, p := range payments {
			if !p.Amount.GreaterThan(money.Tolerance) {
				t.Fatalf("payment %s -> %s below tolerance: %s", p.FromUserID, p.ToUserID, p.Amount)
			}
			if p.FromUserID == p.ToUserID {
				t.Fatalf("self-payment emitted for %s", p.FromUserID)
			}
		}

		slack := money.Tolerance.Mul(decimal.NewFromInt(int64(n)))
		remaining := applyPayments(balances, payments)
		for userID, r := range remaining {
			if r.Abs().GreaterThan(slack) {
				t.Fatalf("user %s left with balance %s after settling", userID, r)
			}
		}
	})
}
