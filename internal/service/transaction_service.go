package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"spendsplit/internal/models"
	"spendsplit/internal/storage"
)

// TransactionService manages personal income/expense entries.
type TransactionService struct {
	store storage.Store
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(store storage.Store) *TransactionService {
	return &TransactionService{store: store}
}

// TransactionInput carries the caller-supplied fields for create and update.
type TransactionInput struct {
	CategoryID  string
	Amount      decimal.Decimal
	Description string
	Date        time.Time
}

func (s *TransactionService) validate(ctx context.Context, userID string, in TransactionInput) (*models.Category, error) {
	if strings.TrimSpace(in.CategoryID) == "" {
		return nil, fmt.Errorf("%w: category required", ErrInvalid)
	}
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalid)
	}

	// The category lookup doubles as the ownership check.
	category, err := s.store.GetCategory(ctx, in.CategoryID, userID)
	if err != nil {
		return nil, err
	}
	return category, nil
}

// Create records a new transaction against one of the user's categories.
// The transaction type is taken from the category.
func (s *TransactionService) Create(ctx context.Context, userID string, in TransactionInput) (*models.Transaction, error) {
	category, err := s.validate(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		UserID:      userID,
		CategoryID:  category.ID,
		Type:        category.Type,
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		Date:        in.Date,
	}
	if txn.Date.IsZero() {
		txn.Date = time.Now().UTC()
	}

	if err := s.store.CreateTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return txn, nil
}

// Get returns the user's transaction by ID.
func (s *TransactionService) Get(ctx context.Context, userID, id string) (*models.Transaction, error) {
	return s.store.GetTransaction(ctx, id, userID)
}

// List returns all of the user's transactions, newest first.
func (s *TransactionService) List(ctx context.Context, userID string) ([]*models.Transaction, error) {
	return s.store.ListTransactions(ctx, userID)
}

// Update replaces the user's transaction fields.
func (s *TransactionService) Update(ctx context.Context, userID, id string, in TransactionInput) (*models.Transaction, error) {
	existing, err := s.store.GetTransaction(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	category, err := s.validate(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	existing.CategoryID = category.ID
	existing.Type = category.Type
	existing.Amount = in.Amount
	existing.Description = strings.TrimSpace(in.Description)
	if !in.Date.IsZero() {
		existing.Date = in.Date
	}

	if err := s.store.UpdateTransaction(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}
	return existing, nil
}

// Delete removes the user's transaction.
func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	return s.store.DeleteTransaction(ctx, id, userID)
}
