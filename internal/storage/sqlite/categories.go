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

// CreateCategory inserts a new category.
func (s *SQLiteStore) CreateCategory(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	if category.CreatedAt == 0 {
		category.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, user_id, name, type, budget, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		category.ID, category.UserID, category.Name, string(category.Type),
		budgetValue(category.Budget), category.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// CreateCategories inserts a batch of categories in one transaction.
// Used by the default-category bootstrap.
func (s *SQLiteStore) CreateCategories(ctx context.Context, categories []*models.Category) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, category := range categories {
		if category.ID == "" {
			category.ID = uuid.New().String()
		}
		if category.CreatedAt == 0 {
			category.CreatedAt = now
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO categories (id, user_id, name, type, budget, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			category.ID, category.UserID, category.Name, string(category.Type),
			budgetValue(category.Budget), category.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create category %q: %w", category.Name, err)
		}
	}

	return tx.Commit()
}

// ListCategories returns all categories owned by the user, sorted by name.
func (s *SQLiteStore) ListCategories(ctx context.Context, userID string) ([]*models.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, type, budget, created_at
		 FROM categories WHERE user_id = ? ORDER BY name ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return categories, nil
}

// GetCategory retrieves a category by ID scoped to its owner.
func (s *SQLiteStore) GetCategory(ctx context.Context, id, userID string) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, type, budget, created_at
		 FROM categories WHERE id = ? AND user_id = ?`,
		id, userID,
	)

	category, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("category %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return category, nil
}

// UpdateCategoryBudget sets the budget of the user's category.
func (s *SQLiteStore) UpdateCategoryBudget(ctx context.Context, id, userID string, budget decimal.Decimal) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE categories SET budget = ? WHERE id = ? AND user_id = ?`,
		budget.String(), id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update category budget: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check category update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("category %s: %w", id, storage.ErrNotFound)
	}

	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCategory(row scanner) (*models.Category, error) {
	category := &models.Category{}
	var catType string
	var budget sql.NullString

	err := row.Scan(&category.ID, &category.UserID, &category.Name, &catType, &budget, &category.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan category: %w", err)
	}

	category.Type = models.CategoryType(catType)
	if budget.Valid {
		value, err := decimal.NewFromString(budget.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse category budget: %w", err)
		}
		category.Budget = decimal.NewNullDecimal(value)
	}

	return category, nil
}

func budgetValue(budget decimal.NullDecimal) interface{} {
	if !budget.Valid {
		return nil
	}
	return budget.Decimal.String()
}
