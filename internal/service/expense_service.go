package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"spendsplit/internal/ledger"
	"spendsplit/internal/metrics"
	"spendsplit/internal/models"
	"spendsplit/internal/money"
	"spendsplit/internal/settle"
	"spendsplit/internal/storage"
)

// ExpenseService orchestrates expense mutations: each create, update or
// delete posts ledger deltas and then recomputes the settlement set for the
// affected scope. Recomputes for the same scope are serialized by a keyed
// mutex so the read-balances/solve/replace sequence never interleaves.
type ExpenseService struct {
	store   storage.Store
	ledger  *ledger.Accumulator
	metrics *metrics.Metrics

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(store storage.Store, acc *ledger.Accumulator, m *metrics.Metrics) *ExpenseService {
	return &ExpenseService{
		store:   store,
		ledger:  acc,
		metrics: m,
		locks:   make(map[string]*sync.Mutex),
	}
}

// scopeLock returns the mutex serializing mutations for one scope.
func (s *ExpenseService) scopeLock(scope models.Scope) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := scope.String()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

// ParticipantInput is one participant's stake as supplied by the caller.
type ParticipantInput struct {
	UserID string
	Paid   decimal.Decimal
	Share  decimal.Decimal
}

// ExpenseInput carries the caller-supplied fields for create and update.
type ExpenseInput struct {
	GroupID      string
	PayerID      string
	Amount       decimal.Decimal
	Description  string
	SplitType    models.SplitType
	Date         time.Time
	Participants []ParticipantInput
}

// validate checks the input against the shared-expense invariants. For group
// expenses it also loads the group and checks that the acting user, the payer
// and every participant are members.
func (s *ExpenseService) validate(ctx context.Context, userID string, in ExpenseInput) error {
	if !in.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalid)
	}
	if len(in.Participants) == 0 {
		return fmt.Errorf("%w: at least one participant required", ErrInvalid)
	}
	if !in.SplitType.Valid() {
		return fmt.Errorf("%w: split type must be equal or custom", ErrInvalid)
	}
	if in.PayerID == "" {
		return fmt.Errorf("%w: payer required", ErrInvalid)
	}

	totalPaid, totalShare := decimal.Zero, decimal.Zero
	payerIsParticipant := false
	actorIsParticipant := false
	seen := make(map[string]bool, len(in.Participants))
	for _, p := range in.Participants {
		if seen[p.UserID] {
			return fmt.Errorf("%w: duplicate participant %s", ErrInvalid, p.UserID)
		}
		seen[p.UserID] = true
		if p.Paid.IsNegative() || p.Share.IsNegative() {
			return fmt.Errorf("%w: paid and share must not be negative", ErrInvalid)
		}
		totalPaid = totalPaid.Add(p.Paid)
		totalShare = totalShare.Add(p.Share)
		if p.UserID == in.PayerID {
			payerIsParticipant = true
		}
		if p.UserID == userID {
			actorIsParticipant = true
		}
	}

	if !payerIsParticipant {
		return fmt.Errorf("%w: payer must be a participant", ErrInvalid)
	}
	if !money.IsSettled(totalPaid.Sub(in.Amount)) {
		return fmt.Errorf("%w: paid amounts must sum to the expense amount", ErrInvalid)
	}
	if !money.IsSettled(totalShare.Sub(in.Amount)) {
		return fmt.Errorf("%w: shares must sum to the expense amount", ErrInvalid)
	}

	if in.GroupID == "" {
		if !actorIsParticipant {
			return fmt.Errorf("%w: you must be a participant of a one-off expense", ErrForbidden)
		}
		return nil
	}

	group, err := s.store.GetGroup(ctx, in.GroupID)
	if err != nil {
		return err
	}
	if !group.HasMember(userID) {
		return fmt.Errorf("%w: not a member of this group", ErrForbidden)
	}
	for id := range seen {
		if !group.HasMember(id) {
			return fmt.Errorf("%w: participant %s is not a group member", ErrInvalid, id)
		}
	}
	return nil
}

func buildExpense(in ExpenseInput) *models.Expense {
	participants := make([]models.Participant, len(in.Participants))
	for i, p := range in.Participants {
		participants[i] = models.Participant{UserID: p.UserID, Paid: p.Paid, Share: p.Share}
	}
	return &models.Expense{
		GroupID:      in.GroupID,
		PayerID:      in.PayerID,
		Amount:       in.Amount,
		Description:  in.Description,
		SplitType:    in.SplitType,
		Date:         in.Date,
		Participants: participants,
	}
}

// Create validates and persists a new expense, posts its ledger deltas and
// recomputes the settlements for its scope.
func (s *ExpenseService) Create(ctx context.Context, userID string, in ExpenseInput) (*models.Expense, error) {
	if err := s.validate(ctx, userID, in); err != nil {
		return nil, err
	}

	expense := buildExpense(in)

	if expense.IsGrouped() {
		lock := s.scopeLock(expense.Scope())
		lock.Lock()
		defer lock.Unlock()
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}
	if err := s.ledger.ApplyExpense(ctx, expense); err != nil {
		return nil, err
	}
	if err := s.recompute(ctx, expense); err != nil {
		return nil, err
	}

	s.countMutation("create", expense)
	slog.Info("Expense created", "expense_id", expense.ID, "scope", expense.Scope().String(), "amount", expense.Amount)
	return expense, nil
}

// Update validates and persists an edited expense, swaps its ledger
// contribution in one delta batch and recomputes the scope's settlements.
// An expense cannot move between scopes.
func (s *ExpenseService) Update(ctx context.Context, userID, expenseID string, in ExpenseInput) (*models.Expense, error) {
	old, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, userID, old); err != nil {
		return nil, err
	}
	if in.GroupID != old.GroupID {
		return nil, fmt.Errorf("%w: expense cannot change scope", ErrInvalid)
	}
	if err := s.validate(ctx, userID, in); err != nil {
		return nil, err
	}

	updated := buildExpense(in)
	updated.ID = old.ID
	updated.CreatedAt = old.CreatedAt
	if updated.Date.IsZero() {
		updated.Date = old.Date
	}

	lock := s.scopeLock(updated.Scope())
	lock.Lock()
	defer lock.Unlock()

	if err := s.store.UpdateExpense(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}
	if err := s.ledger.ReplaceExpense(ctx, old, updated); err != nil {
		return nil, err
	}
	if err := s.recompute(ctx, updated); err != nil {
		return nil, err
	}

	s.countMutation("update", updated)
	slog.Info("Expense updated", "expense_id", updated.ID, "scope", updated.Scope().String())
	return updated, nil
}

// Delete removes an expense, reverses its ledger deltas and recomputes the
// scope's settlements. A one-off expense's settlements are removed together
// with the expense row.
func (s *ExpenseService) Delete(ctx context.Context, userID, expenseID string) error {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, userID, expense); err != nil {
		return err
	}

	lock := s.scopeLock(expense.Scope())
	lock.Lock()
	defer lock.Unlock()

	if err := s.store.DeleteExpense(ctx, expenseID); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if err := s.ledger.ReverseExpense(ctx, expense); err != nil {
		return err
	}
	if expense.IsGrouped() {
		if err := s.recomputeGroup(ctx, expense.GroupID); err != nil {
			return err
		}
	}

	s.countMutation("delete", expense)
	slog.Info("Expense deleted", "expense_id", expenseID, "scope", expense.Scope().String())
	return nil
}

// Get returns an expense with its scope's current settlements.
func (s *ExpenseService) Get(ctx context.Context, userID, expenseID string) (*models.Expense, []*models.Settlement, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.authorize(ctx, userID, expense); err != nil {
		return nil, nil, err
	}

	settlements, err := s.store.ListSettlements(ctx, expense.Scope())
	if err != nil {
		return nil, nil, err
	}
	return expense, settlements, nil
}

// MarkSettlementPaid marks a settlement PAID. Only the paying or receiving
// party may do so. Marking an already paid settlement is a no-op.
func (s *ExpenseService) MarkSettlementPaid(ctx context.Context, userID, settlementID string) error {
	settlement, err := s.store.GetSettlement(ctx, settlementID)
	if err != nil {
		return err
	}
	if settlement.FromUserID != userID && settlement.ToUserID != userID {
		return fmt.Errorf("%w: not a party to this settlement", ErrForbidden)
	}
	if settlement.Status == models.SettlementPaid {
		return nil
	}
	if err := s.store.MarkSettlementPaid(ctx, settlementID); err != nil {
		return err
	}
	slog.Info("Settlement marked paid", "settlement_id", settlementID)
	return nil
}

// authorize checks the acting user may touch the expense: a participant for
// one-off expenses, any group member for grouped ones.
func (s *ExpenseService) authorize(ctx context.Context, userID string, expense *models.Expense) error {
	if expense.IsGrouped() {
		ok, err := s.store.IsGroupMember(ctx, expense.GroupID, userID)
		if err != nil {
			return fmt.Errorf("failed to check group membership: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: not a member of this group", ErrForbidden)
		}
		return nil
	}
	for _, p := range expense.Participants {
		if p.UserID == userID {
			return nil
		}
	}
	return fmt.Errorf("%w: not a participant of this expense", ErrForbidden)
}

// recompute rebuilds the settlement set for the expense's scope: group
// settlements solve over the group's running balances, one-off settlements
// over the expense's own participant net positions.
func (s *ExpenseService) recompute(ctx context.Context, expense *models.Expense) error {
	if expense.IsGrouped() {
		return s.recomputeGroup(ctx, expense.GroupID)
	}

	start := time.Now()
	payments := settle.Solve(expense.NetBalances())
	err := s.store.ReplaceSettlements(ctx, expense.Scope(), toSettlements(payments))
	if err != nil {
		return fmt.Errorf("failed to replace settlements: %w", err)
	}
	s.observeRecompute("expense", start, len(payments))
	return nil
}

func (s *ExpenseService) recomputeGroup(ctx context.Context, groupID string) error {
	start := time.Now()
	balances, err := s.ledger.GroupBalances(ctx, groupID)
	if err != nil {
		return err
	}
	payments := settle.Solve(balances)
	if err := s.store.ReplaceSettlements(ctx, models.GroupScope(groupID), toSettlements(payments)); err != nil {
		return fmt.Errorf("failed to replace settlements: %w", err)
	}
	s.observeRecompute("group", start, len(payments))
	return nil
}

func toSettlements(payments []settle.Payment) []*models.Settlement {
	settlements := make([]*models.Settlement, len(payments))
	for i, p := range payments {
		settlements[i] = &models.Settlement{
			FromUserID: p.FromUserID,
			ToUserID:   p.ToUserID,
			Amount:     p.Amount,
		}
	}
	return settlements
}

func scopeLabel(expense *models.Expense) string {
	if expense.IsGrouped() {
		return "group"
	}
	return "expense"
}

func (s *ExpenseService) countMutation(op string, expense *models.Expense) {
	if s.metrics == nil {
		return
	}
	s.metrics.ExpenseMutations.WithLabelValues(op, scopeLabel(expense)).Inc()
}

func (s *ExpenseService) observeRecompute(scope string, start time.Time, emitted int) {
	if s.metrics == nil {
		return
	}
	s.metrics.SettlementRecomputeDuration.WithLabelValues(scope).Observe(time.Since(start).Seconds())
	s.metrics.SettlementsEmitted.Observe(float64(emitted))
}
