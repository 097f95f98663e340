// Package settle implements the debt-minimization settlement solver.
//
// Given a set of signed per-user balances that sum to approximately zero, the
// solver produces a minimal list of directed payments that bring every balance
// within money.Tolerance of zero. The greedy strategy repeatedly matches the
// debtor with the smallest remaining debt against the creditor with the
// largest remaining credit, so each match fully settles at least one party.
// That bounds the output at one payment fewer than the number of unsettled
// participants.
//
// The result is deterministic for identical input order. When two parties
// have equal magnitude, insertion order breaks the tie, so reordering the
// input can produce a different (equally minimal) pairing.
package settle

import (
	"container/heap"

	"github.com/shopspring/decimal"

	"spendsplit/internal/models"
	"spendsplit/internal/money"
)

// Payment is one recommended transfer: FromUserID pays ToUserID the amount.
type Payment struct {
	FromUserID string
	ToUserID   string
	Amount     decimal.Decimal
}

// Solve computes the minimal payment set for the given balances.
// Balances within money.Tolerance of zero are dropped as already settled.
// Because the caller guarantees the balances sum to ~0, the debtor and
// creditor sides exhaust together; any residual slack under the tolerance is
// discarded rather than paid out.
func Solve(balances []models.UserAmount) []Payment {
	debtors := &debtorHeap{}
	creditors := &creditorHeap{}

	for i, b := range balances {
		switch {
		case money.IsCredit(b.Amount):
			heap.Push(creditors, party{userID: b.UserID, remaining: b.Amount, seq: i})
		case money.IsDebt(b.Amount):
			heap.Push(debtors, party{userID: b.UserID, remaining: b.Amount.Neg(), seq: i})
		}
	}

	var payments []Payment
	for debtors.Len() > 0 && creditors.Len() > 0 {
		debtor := heap.Pop(debtors).(party)
		creditor := heap.Pop(creditors).(party)

		amount := money.Min(debtor.remaining, creditor.remaining)
		if amount.GreaterThan(money.Tolerance) {
			payments = append(payments, Payment{
				FromUserID: debtor.userID,
				ToUserID:   creditor.userID,
				Amount:     amount,
			})
		}

		debtor.remaining = debtor.remaining.Sub(amount)
		creditor.remaining = creditor.remaining.Sub(amount)

		if debtor.remaining.GreaterThan(money.Tolerance) {
			heap.Push(debtors, debtor)
		}
		if creditor.remaining.GreaterThan(money.Tolerance) {
			heap.Push(creditors, creditor)
		}
	}

	return payments
}

// party is one side of a match with its remaining unsettled magnitude.
// seq preserves input order for deterministic tie-breaking.
type party struct {
	userID    string
	remaining decimal.Decimal
	seq       int
}

type partyHeap []party

func (h partyHeap) Len() int            { return len(h) }
func (h partyHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *partyHeap) Push(x interface{}) { *h = append(*h, x.(party)) }

func (h *partyHeap) Pop() interface{} {
	old := *h
	n := len(old)
	p := old[n-1]
	*h = old[:n-1]
	return p
}

// debtorHeap pops the smallest remaining debt first.
type debtorHeap struct{ partyHeap }

func (h debtorHeap) Less(i, j int) bool {
	a, b := h.partyHeap[i], h.partyHeap[j]
	if a.remaining.Equal(b.remaining) {
		return a.seq < b.seq
	}
	return a.remaining.LessThan(b.remaining)
}

// creditorHeap pops the largest remaining credit first.
type creditorHeap struct{ partyHeap }

func (h creditorHeap) Less(i, j int) bool {
	a, b := h.partyHeap[i], h.partyHeap[j]
	if a.remaining.Equal(b.remaining) {
		return a.seq < b.seq
	}
	return a.remaining.GreaterThan(b.remaining)
}
