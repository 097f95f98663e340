package handler

import (
	"github.com/gofiber/fiber/v2"

	"spendsplit/internal/middleware"
	"spendsplit/internal/models"
)

type groupMemberJSON struct {
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	JoinedAt int64  `json:"joined_at"`
}

type groupJSON struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Members   []groupMemberJSON `json:"members,omitempty"`
	CreatedAt int64             `json:"created_at"`
}

func toGroupJSON(g *models.Group) groupJSON {
	out := groupJSON{ID: g.ID, Name: g.Name, CreatedAt: g.CreatedAt}
	for _, m := range g.Members {
		out.Members = append(out.Members, groupMemberJSON{
			UserID:   m.UserID,
			Role:     string(m.Role),
			JoinedAt: m.JoinedAt,
		})
	}
	return out
}

type balanceJSON struct {
	UserID  string `json:"user_id"`
	Balance string `json:"balance"`
}

type settlementJSON struct {
	ID         string `json:"id"`
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
	Amount     string `json:"amount"`
	Status     string `json:"status"`
	CreatedAt  int64  `json:"created_at"`
}

func toSettlementJSON(s *models.Settlement) settlementJSON {
	return settlementJSON{
		ID:         s.ID,
		FromUserID: s.FromUserID,
		ToUserID:   s.ToUserID,
		Amount:     s.Amount.String(),
		Status:     string(s.Status),
		CreatedAt:  s.CreatedAt,
	}
}

// ListGroups returns the groups the user belongs to.
func (h *Handler) ListGroups(c *fiber.Ctx) error {
	groups, err := h.groups.List(c.Context(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}

	out := make([]groupJSON, len(groups))
	for i, g := range groups {
		out[i] = toGroupJSON(g)
	}
	return c.JSON(fiber.Map{"groups": out})
}

type createGroupRequest struct {
	Name      string   `json:"name"`
	MemberIDs []string `json:"member_ids"`
}

// CreateGroup makes a group with the caller as admin.
func (h *Handler) CreateGroup(c *fiber.Ctx) error {
	var req createGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	group, err := h.groups.Create(c.Context(), middleware.UserID(c), req.Name, req.MemberIDs)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toGroupJSON(group))
}

// GetGroup returns the group with its members.
func (h *Handler) GetGroup(c *fiber.Ctx) error {
	group, err := h.groups.Get(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(toGroupJSON(group))
}

// ListGroupExpenses returns the group's expenses, newest first.
func (h *Handler) ListGroupExpenses(c *fiber.Ctx) error {
	expenses, err := h.groups.ListExpenses(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}

	out := make([]expenseJSON, len(expenses))
	for i, e := range expenses {
		out[i] = toExpenseJSON(e)
	}
	return c.JSON(fiber.Map{"expenses": out})
}

// GetGroupBalances returns the group's running net balances.
func (h *Handler) GetGroupBalances(c *fiber.Ctx) error {
	balances, err := h.groups.Balances(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}

	out := make([]balanceJSON, len(balances))
	for i, b := range balances {
		out[i] = balanceJSON{UserID: b.UserID, Balance: b.Balance.String()}
	}
	return c.JSON(fiber.Map{"balances": out})
}

// GetGroupSettlements returns the group's current settlement recommendations.
func (h *Handler) GetGroupSettlements(c *fiber.Ctx) error {
	settlements, err := h.groups.Settlements(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}

	out := make([]settlementJSON, len(settlements))
	for i, s := range settlements {
		out[i] = toSettlementJSON(s)
	}
	return c.JSON(fiber.Map{"settlements": out})
}
