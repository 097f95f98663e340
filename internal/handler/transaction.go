package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"spendsplit/internal/middleware"
	"spendsplit/internal/models"
	"spendsplit/internal/service"
)

type transactionJSON struct {
	ID          string `json:"id"`
	CategoryID  string `json:"category_id"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Date        string `json:"date"`
	CreatedAt   int64  `json:"created_at"`
}

func toTransactionJSON(t *models.Transaction) transactionJSON {
	return transactionJSON{
		ID:          t.ID,
		CategoryID:  t.CategoryID,
		Type:        string(t.Type),
		Amount:      t.Amount.String(),
		Description: t.Description,
		Date:        t.Date.Format("2006-01-02"),
		CreatedAt:   t.CreatedAt,
	}
}

type transactionRequest struct {
	CategoryID  string          `json:"category_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
}

func (r transactionRequest) toInput() (service.TransactionInput, error) {
	in := service.TransactionInput{
		CategoryID:  r.CategoryID,
		Amount:      r.Amount,
		Description: r.Description,
	}
	if r.Date != "" {
		date, err := parseDate(r.Date)
		if err != nil {
			return in, err
		}
		in.Date = date
	}
	return in, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// ListTransactions returns the user's transactions, newest first.
func (h *Handler) ListTransactions(c *fiber.Ctx) error {
	transactions, err := h.transactions.List(c.Context(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}

	out := make([]transactionJSON, len(transactions))
	for i, t := range transactions {
		out[i] = toTransactionJSON(t)
	}
	return c.JSON(fiber.Map{"transactions": out})
}

// CreateTransaction records a new transaction.
func (h *Handler) CreateTransaction(c *fiber.Ctx) error {
	var req transactionRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	in, err := req.toInput()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be YYYY-MM-DD"})
	}

	txn, err := h.transactions.Create(c.Context(), middleware.UserID(c), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransactionJSON(txn))
}

// UpdateTransaction replaces a transaction's fields.
func (h *Handler) UpdateTransaction(c *fiber.Ctx) error {
	var req transactionRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	in, err := req.toInput()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be YYYY-MM-DD"})
	}

	txn, err := h.transactions.Update(c.Context(), middleware.UserID(c), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(toTransactionJSON(txn))
}

// DeleteTransaction removes a transaction.
func (h *Handler) DeleteTransaction(c *fiber.Ctx) error {
	if err := h.transactions.Delete(c.Context(), middleware.UserID(c), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
