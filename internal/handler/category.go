package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"spendsplit/internal/middleware"
	"spendsplit/internal/models"
)

type categoryJSON struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Budget    *string `json:"budget"`
	CreatedAt int64   `json:"created_at"`
}

func toCategoryJSON(c *models.Category) categoryJSON {
	out := categoryJSON{
		ID:        c.ID,
		Name:      c.Name,
		Type:      string(c.Type),
		CreatedAt: c.CreatedAt,
	}
	if c.Budget.Valid {
		budget := c.Budget.Decimal.String()
		out.Budget = &budget
	}
	return out
}

// ListCategories returns the user's categories.
func (h *Handler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.categories.List(c.Context(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}

	out := make([]categoryJSON, len(categories))
	for i, category := range categories {
		out[i] = toCategoryJSON(category)
	}
	return c.JSON(fiber.Map{"categories": out})
}

type createCategoryRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// CreateCategory adds a category.
func (h *Handler) CreateCategory(c *fiber.Ctx) error {
	var req createCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	category, err := h.categories.Create(c.Context(), middleware.UserID(c), req.Name, models.CategoryType(req.Type))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toCategoryJSON(category))
}

type setBudgetRequest struct {
	Budget decimal.Decimal `json:"budget"`
}

// SetCategoryBudget assigns a monthly budget to a category.
func (h *Handler) SetCategoryBudget(c *fiber.Ctx) error {
	var req setBudgetRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	if err := h.categories.SetBudget(c.Context(), middleware.UserID(c), c.Params("id"), req.Budget); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// BootstrapCategories creates the default category set when the user has none.
func (h *Handler) BootstrapCategories(c *fiber.Ctx) error {
	if err := h.categories.EnsureDefaults(c.Context(), middleware.UserID(c)); err != nil {
		return fail(c, err)
	}
	return h.ListCategories(c)
}
