package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"spendsplit/internal/models"
	"spendsplit/internal/storage"
)

// defaultCategories is the starter set created for a fresh account.
var defaultCategories = []struct {
	Name string
	Type models.CategoryType
}{
	{"Salary", models.CategoryIncome},
	{"Other Income", models.CategoryIncome},
	{"Groceries", models.CategoryExpense},
	{"Dining", models.CategoryExpense},
	{"Transport", models.CategoryExpense},
	{"Rent", models.CategoryExpense},
	{"Utilities", models.CategoryExpense},
	{"Entertainment", models.CategoryExpense},
	{"Other", models.CategoryExpense},
}

// CategoryService manages per-user budget categories.
type CategoryService struct {
	store storage.Store
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(store storage.Store) *CategoryService {
	return &CategoryService{store: store}
}

// List returns the user's categories sorted by name.
func (s *CategoryService) List(ctx context.Context, userID string) ([]*models.Category, error) {
	return s.store.ListCategories(ctx, userID)
}

// Create adds a category for the user.
func (s *CategoryService) Create(ctx context.Context, userID, name string, categoryType models.CategoryType) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name required", ErrInvalid)
	}
	if !categoryType.Valid() {
		return nil, fmt.Errorf("%w: category type must be income or expense", ErrInvalid)
	}

	category := &models.Category{
		UserID: userID,
		Name:   name,
		Type:   categoryType,
	}
	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

// SetBudget assigns a monthly budget to the user's category.
func (s *CategoryService) SetBudget(ctx context.Context, userID, categoryID string, budget decimal.Decimal) error {
	if budget.IsNegative() {
		return fmt.Errorf("%w: budget must not be negative", ErrInvalid)
	}
	return s.store.UpdateCategoryBudget(ctx, categoryID, userID, budget)
}

// EnsureDefaults creates the starter categories for users that have none.
// Calling it again is a no-op.
func (s *CategoryService) EnsureDefaults(ctx context.Context, userID string) error {
	existing, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	categories := make([]*models.Category, len(defaultCategories))
	for i, d := range defaultCategories {
		categories[i] = &models.Category{
			UserID: userID,
			Name:   d.Name,
			Type:   d.Type,
		}
	}
	if err := s.store.CreateCategories(ctx, categories); err != nil {
		return fmt.Errorf("failed to create default categories: %w", err)
	}
	return nil
}
