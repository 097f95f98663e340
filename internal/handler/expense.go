package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"spendsplit/internal/middleware"
	"spendsplit/internal/models"
	"spendsplit/internal/service"
)

type participantJSON struct {
	UserID string `json:"user_id"`
	Paid   string `json:"paid"`
	Share  string `json:"share"`
}

type expenseJSON struct {
	ID           string            `json:"id"`
	GroupID      string            `json:"group_id,omitempty"`
	PayerID      string            `json:"payer_id"`
	Amount       string            `json:"amount"`
	Description  string            `json:"description"`
	SplitType    string            `json:"split_type"`
	Date         string            `json:"date"`
	Participants []participantJSON `json:"participants"`
	CreatedAt    int64             `json:"created_at"`
}

func toExpenseJSON(e *models.Expense) expenseJSON {
	out := expenseJSON{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PayerID:     e.PayerID,
		Amount:      e.Amount.String(),
		Description: e.Description,
		SplitType:   string(e.SplitType),
		Date:        e.Date.Format("2006-01-02"),
		CreatedAt:   e.CreatedAt,
	}
	for _, p := range e.Participants {
		out.Participants = append(out.Participants, participantJSON{
			UserID: p.UserID,
			Paid:   p.Paid.String(),
			Share:  p.Share.String(),
		})
	}
	return out
}

type participantRequest struct {
	UserID string          `json:"user_id"`
	Paid   decimal.Decimal `json:"paid"`
	Share  decimal.Decimal `json:"share"`
}

type expenseRequest struct {
	PayerID      string               `json:"payer_id"`
	Amount       decimal.Decimal      `json:"amount"`
	Description  string               `json:"description"`
	SplitType    string               `json:"split_type"`
	Date         string               `json:"date"`
	Participants []participantRequest `json:"participants"`
}

func (r expenseRequest) toInput(groupID string) (service.ExpenseInput, error) {
	in := service.ExpenseInput{
		GroupID:     groupID,
		PayerID:     r.PayerID,
		Amount:      r.Amount,
		Description: r.Description,
		SplitType:   models.SplitType(r.SplitType),
	}
	if r.Date != "" {
		date, err := parseDate(r.Date)
		if err != nil {
			return in, err
		}
		in.Date = date
	}
	for _, p := range r.Participants {
		in.Participants = append(in.Participants, service.ParticipantInput{
			UserID: p.UserID,
			Paid:   p.Paid,
			Share:  p.Share,
		})
	}
	return in, nil
}

func (h *Handler) createExpense(c *fiber.Ctx, groupID string) error {
	var req expenseRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	in, err := req.toInput(groupID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be YYYY-MM-DD"})
	}

	expense, err := h.expenses.Create(c.Context(), middleware.UserID(c), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toExpenseJSON(expense))
}

// CreateGroupExpense posts a new expense to a group ledger.
func (h *Handler) CreateGroupExpense(c *fiber.Ctx) error {
	return h.createExpense(c, c.Params("id"))
}

// CreateOneOffExpense records a standalone expense settled against its own
// participants.
func (h *Handler) CreateOneOffExpense(c *fiber.Ctx) error {
	return h.createExpense(c, "")
}

// GetExpense returns an expense together with its scope's settlements.
func (h *Handler) GetExpense(c *fiber.Ctx) error {
	expense, settlements, err := h.expenses.Get(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}

	out := make([]settlementJSON, len(settlements))
	for i, s := range settlements {
		out[i] = toSettlementJSON(s)
	}
	return c.JSON(fiber.Map{
		"expense":     toExpenseJSON(expense),
		"settlements": out,
	})
}

// UpdateExpense edits an expense in place. The expense keeps its scope.
func (h *Handler) UpdateExpense(c *fiber.Ctx) error {
	var req expenseRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	userID := middleware.UserID(c)
	expenseID := c.Params("id")

	// The scope comes from the stored expense, not the request.
	existing, _, err := h.expenses.Get(c.Context(), userID, expenseID)
	if err != nil {
		return fail(c, err)
	}

	in, err := req.toInput(existing.GroupID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be YYYY-MM-DD"})
	}

	expense, err := h.expenses.Update(c.Context(), userID, expenseID, in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(toExpenseJSON(expense))
}

// DeleteExpense removes an expense and recomputes its scope.
func (h *Handler) DeleteExpense(c *fiber.Ctx) error {
	if err := h.expenses.Delete(c.Context(), middleware.UserID(c), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// MarkSettlementPaid transitions a settlement to PAID.
func (h *Handler) MarkSettlementPaid(c *fiber.Ctx) error {
	if err := h.expenses.MarkSettlementPaid(c.Context(), middleware.UserID(c), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
