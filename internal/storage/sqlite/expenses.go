package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"spendsplit/internal/models"
	"spendsplit/internal/storage"
)

// CreateExpense persists an expense and its participants in one transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.Date.IsZero() {
		expense.Date = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, payer_id, amount, description, split_type, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, nullString(expense.GroupID), expense.PayerID, expense.Amount.String(),
		expense.Description, string(expense.SplitType), expense.Date.Unix(), expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertParticipants(ctx, tx, expense); err != nil {
		return err
	}

	return tx.Commit()
}

// GetExpense retrieves an expense with its participants.
func (s *SQLiteStore) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, payer_id, amount, description, split_type, date, created_at
		 FROM expenses WHERE id = ?`,
		id,
	)

	expense, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadParticipants(ctx, expense); err != nil {
		return nil, err
	}

	return expense, nil
}

// ListExpensesByGroup returns a group's expenses with participants, newest first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, payer_id, amount, description, split_type, date, created_at
		 FROM expenses WHERE group_id = ? ORDER BY date DESC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for _, expense := range expenses {
		if err := s.loadParticipants(ctx, expense); err != nil {
			return nil, err
		}
	}

	return expenses, nil
}

// UpdateExpense replaces the expense row and its whole participant set in one
// transaction.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE expenses SET payer_id = ?, amount = ?, description = ?, split_type = ?, date = ?
		 WHERE id = ?`,
		expense.PayerID, expense.Amount.String(), expense.Description,
		string(expense.SplitType), expense.Date.Unix(), expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check expense update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("expense %s: %w", expense.ID, storage.ErrNotFound)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM expense_participants WHERE expense_id = ?`, expense.ID)
	if err != nil {
		return fmt.Errorf("failed to delete old participants: %w", err)
	}

	if err := insertParticipants(ctx, tx, expense); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteExpense removes the expense. Participants and expense-scoped
// settlements go with it via ON DELETE CASCADE.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check expense delete: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("expense %s: %w", id, storage.ErrNotFound)
	}

	return nil
}

func insertParticipants(ctx context.Context, tx *sql.Tx, expense *models.Expense) error {
	for i := range expense.Participants {
		p := &expense.Participants[i]
		p.ExpenseID = expense.ID

		_, err := tx.ExecContext(ctx,
			`INSERT INTO expense_participants (expense_id, user_id, paid, share) VALUES (?, ?, ?, ?)`,
			p.ExpenseID, p.UserID, p.Paid.String(), p.Share.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) loadParticipants(ctx context.Context, expense *models.Expense) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT expense_id, user_id, paid, share FROM expense_participants
		 WHERE expense_id = ? ORDER BY user_id ASC`,
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Participant
		var paid, share string
		if err := rows.Scan(&p.ExpenseID, &p.UserID, &paid, &share); err != nil {
			return fmt.Errorf("failed to scan participant: %w", err)
		}
		if p.Paid, err = decimal.NewFromString(paid); err != nil {
			return fmt.Errorf("failed to parse participant paid: %w", err)
		}
		if p.Share, err = decimal.NewFromString(share); err != nil {
			return fmt.Errorf("failed to parse participant share: %w", err)
		}
		expense.Participants = append(expense.Participants, p)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate participants: %w", err)
	}

	return nil
}

func scanExpense(row scanner) (*models.Expense, error) {
	expense := &models.Expense{}
	var groupID sql.NullString
	var amount, splitType string
	var date int64

	err := row.Scan(&expense.ID, &groupID, &expense.PayerID, &amount,
		&expense.Description, &splitType, &date, &expense.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan expense: %w", err)
	}

	if groupID.Valid {
		expense.GroupID = groupID.String
	}
	expense.SplitType = models.SplitType(splitType)
	expense.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse expense amount: %w", err)
	}
	expense.Date = time.Unix(date, 0).UTC()

	return expense, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
