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

// ReplaceSettlements deletes every settlement for the scope and inserts the
// new set as PENDING rows, all in one transaction, so readers never observe a
// half-replaced settlement set.
func (s *SQLiteStore) ReplaceSettlements(ctx context.Context, scope models.Scope, settlements []*models.Settlement) error {
	column, scopeID, err := scopeColumn(scope)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM settlements WHERE `+column+` = ?`, scopeID)
	if err != nil {
		return fmt.Errorf("failed to delete old settlements: %w", err)
	}

	now := time.Now().Unix()
	for _, settlement := range settlements {
		if settlement.ID == "" {
			settlement.ID = uuid.New().String()
		}
		if settlement.CreatedAt == 0 {
			settlement.CreatedAt = now
		}
		settlement.Scope = scope
		settlement.Status = models.SettlementPending

		var groupID, expenseID interface{}
		if id, ok := scope.GroupID(); ok {
			groupID = id
		}
		if id, ok := scope.ExpenseID(); ok {
			expenseID = id
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO settlements (id, group_id, expense_id, from_user_id, to_user_id, amount, status, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			settlement.ID, groupID, expenseID, settlement.FromUserID, settlement.ToUserID,
			settlement.Amount.String(), string(settlement.Status), settlement.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert settlement: %w", err)
		}
	}

	return tx.Commit()
}

// ListSettlements returns the scope's settlements, newest first.
func (s *SQLiteStore) ListSettlements(ctx context.Context, scope models.Scope) ([]*models.Settlement, error) {
	column, scopeID, err := scopeColumn(scope)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, expense_id, from_user_id, to_user_id, amount, status, created_at
		 FROM settlements WHERE `+column+` = ? ORDER BY created_at DESC, id ASC`,
		scopeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, err
		}
		settlements = append(settlements, settlement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, id string) (*models.Settlement, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, expense_id, from_user_id, to_user_id, amount, status, created_at
		 FROM settlements WHERE id = ?`,
		id,
	)

	settlement, err := scanSettlement(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("settlement %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return settlement, nil
}

// MarkSettlementPaid transitions a settlement to PAID.
func (s *SQLiteStore) MarkSettlementPaid(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE settlements SET status = ? WHERE id = ?`,
		string(models.SettlementPaid), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark settlement paid: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check settlement update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("settlement %s: %w", id, storage.ErrNotFound)
	}

	return nil
}

func scopeColumn(scope models.Scope) (column, id string, err error) {
	if groupID, ok := scope.GroupID(); ok {
		return "group_id", groupID, nil
	}
	if expenseID, ok := scope.ExpenseID(); ok {
		return "expense_id", expenseID, nil
	}
	return "", "", fmt.Errorf("settlement scope is empty")
}

func scanSettlement(row scanner) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var groupID, expenseID sql.NullString
	var amount, status string

	err := row.Scan(&settlement.ID, &groupID, &expenseID, &settlement.FromUserID,
		&settlement.ToUserID, &amount, &status, &settlement.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan settlement: %w", err)
	}

	switch {
	case groupID.Valid:
		settlement.Scope = models.GroupScope(groupID.String)
	case expenseID.Valid:
		settlement.Scope = models.ExpenseScope(expenseID.String)
	}
	settlement.Status = models.SettlementStatus(status)
	settlement.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse settlement amount: %w", err)
	}

	return settlement, nil
}
