package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"spendsplit/internal/models"
)

// ApplyBalanceDeltas upserts each (user, delta) into the group's balances
// within one transaction. The addition happens in Go on exact decimals; the
// balance column stores the decimal string, so SQL never does float math on
// money. SQLite's single-writer transaction makes the read-add-write atomic
// per row, which keeps concurrent expense creation from losing increments.
func (s *SQLiteStore) ApplyBalanceDeltas(ctx context.Context, groupID string, deltas []models.UserAmount) error {
	if len(deltas) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, delta := range deltas {
		var current string
		err := tx.QueryRowContext(ctx,
			`SELECT balance FROM group_balances WHERE group_id = ? AND user_id = ?`,
			groupID, delta.UserID,
		).Scan(&current)

		switch {
		case err == sql.ErrNoRows:
			_, err = tx.ExecContext(ctx,
				`INSERT INTO group_balances (group_id, user_id, balance) VALUES (?, ?, ?)`,
				groupID, delta.UserID, delta.Amount.String(),
			)
			if err != nil {
				return fmt.Errorf("failed to insert balance: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to read balance: %w", err)
		default:
			balance, err := decimal.NewFromString(current)
			if err != nil {
				return fmt.Errorf("failed to parse balance: %w", err)
			}
			_, err = tx.ExecContext(ctx,
				`UPDATE group_balances SET balance = ? WHERE group_id = ? AND user_id = ?`,
				balance.Add(delta.Amount).String(), groupID, delta.UserID,
			)
			if err != nil {
				return fmt.Errorf("failed to update balance: %w", err)
			}
		}
	}

	return tx.Commit()
}

// ListGroupBalances returns every balance row for the group.
func (s *SQLiteStore) ListGroupBalances(ctx context.Context, groupID string) ([]*models.GroupBalance, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT group_id, user_id, balance FROM group_balances
		 WHERE group_id = ? ORDER BY user_id ASC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list group balances: %w", err)
	}
	defer rows.Close()

	var balances []*models.GroupBalance
	for rows.Next() {
		balance := &models.GroupBalance{}
		var value string
		if err := rows.Scan(&balance.GroupID, &balance.UserID, &value); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		if balance.Balance, err = decimal.NewFromString(value); err != nil {
			return nil, fmt.Errorf("failed to parse balance: %w", err)
		}
		balances = append(balances, balance)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balances: %w", err)
	}

	return balances, nil
}
