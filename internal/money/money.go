// Package money holds the shared decimal helpers used by the ledger and the
// settlement solver. All currency arithmetic in the core goes through
// shopspring decimals; floats only appear at the JSON boundary.
package money

import "github.com/shopspring/decimal"

// Tolerance is the threshold below which a balance or settlement amount is
// treated as zero: one cent. Balances within Tolerance of zero are considered
// settled everywhere; residual slack under it is deliberately dropped.
var Tolerance = decimal.NewFromFloat(0.01)

// IsSettled reports whether the signed amount is within Tolerance of zero.
func IsSettled(amount decimal.Decimal) bool {
	return amount.Abs().LessThanOrEqual(Tolerance)
}

// IsCredit reports whether the balance is owed money beyond Tolerance.
func IsCredit(balance decimal.Decimal) bool {
	return balance.GreaterThan(Tolerance)
}

// IsDebt reports whether the balance owes money beyond Tolerance.
func IsDebt(balance decimal.Decimal) bool {
	return balance.LessThan(Tolerance.Neg())
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
