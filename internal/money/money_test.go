package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestIsSettled(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   bool
	}{
		{"zero", "0", true},
		{"just under tolerance", "0.009", true},
		{"exactly tolerance", "0.01", true},
		{"just over tolerance", "0.011", false},
		{"negative within tolerance", "-0.005", true},
		{"negative beyond tolerance", "-0.02", false},
		{"large balance", "42.50", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			assert.Equal(t, tt.want, IsSettled(amount))
		})
	}
}

func TestCreditDebtPartition(t *testing.T) {
	credit := decimal.RequireFromString("10.00")
	debt := decimal.RequireFromString("-10.00")
	settled := decimal.RequireFromString("0.005")

	assert.True(t, IsCredit(credit))
	assert.False(t, IsDebt(credit))

	assert.True(t, IsDebt(debt))
	assert.False(t, IsCredit(debt))

	// Near-zero balances are neither creditors nor debtors.
	assert.False(t, IsCredit(settled))
	assert.False(t, IsDebt(settled))
	assert.False(t, IsCredit(settled.Neg()))
	assert.False(t, IsDebt(settled.Neg()))
}

func TestMin(t *testing.T) {
	a := decimal.RequireFromString("3.50")
	b := decimal.RequireFromString("7.25")
	assert.True(t, Min(a, b).Equal(a))
	assert.True(t, Min(b, a).Equal(a))
	assert.True(t, Min(a, a).Equal(a))
}
