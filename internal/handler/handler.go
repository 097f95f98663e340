// Package handler exposes the service layer as a JSON HTTP API.
package handler

import (
	"github.com/gofiber/fiber/v2"

	"spendsplit/internal/auth"
	"spendsplit/internal/middleware"
	"spendsplit/internal/service"
)

// Handler wires the HTTP routes to the service layer.
type Handler struct {
	auth         *service.AuthService
	users        auth.UserStorage
	categories   *service.CategoryService
	transactions *service.TransactionService
	friends      *service.FriendService
	groups       *service.GroupService
	expenses     *service.ExpenseService
	voice        *service.VoiceService
	tokens       *auth.JWTManager
}

// New creates a Handler over the given services. voice may be nil when no
// Gemini API key is configured; the voice route then answers 503.
func New(
	authService *service.AuthService,
	users auth.UserStorage,
	categories *service.CategoryService,
	transactions *service.TransactionService,
	friends *service.FriendService,
	groups *service.GroupService,
	expenses *service.ExpenseService,
	voice *service.VoiceService,
	tokens *auth.JWTManager,
) *Handler {
	return &Handler{
		auth:         authService,
		users:        users,
		categories:   categories,
		transactions: transactions,
		friends:      friends,
		groups:       groups,
		expenses:     expenses,
		voice:        voice,
		tokens:       tokens,
	}
}

// Register mounts all API routes on the app.
func (h *Handler) Register(app *fiber.App) {
	api := app.Group("/api")

	api.Post("/auth/signup", h.Signup)
	api.Post("/auth/login", h.Login)

	protected := api.Use(middleware.Protected(h.tokens))

	protected.Get("/me", h.Me)

	protected.Get("/transactions", h.ListTransactions)
	protected.Post("/transactions", h.CreateTransaction)
	protected.Put("/transactions/:id", h.UpdateTransaction)
	protected.Delete("/transactions/:id", h.DeleteTransaction)

	protected.Get("/categories", h.ListCategories)
	protected.Post("/categories", h.CreateCategory)
	protected.Put("/categories/:id/budget", h.SetCategoryBudget)
	protected.Post("/categories/defaults", h.BootstrapCategories)

	protected.Get("/friends", h.ListFriends)
	protected.Post("/friends/invite", h.InviteFriend)
	protected.Get("/friends/requests", h.ListFriendRequests)
	protected.Post("/friends/requests/:id", h.RespondFriendRequest)

	protected.Get("/groups", h.ListGroups)
	protected.Post("/groups", h.CreateGroup)
	protected.Get("/groups/:id", h.GetGroup)
	protected.Get("/groups/:id/expenses", h.ListGroupExpenses)
	protected.Post("/groups/:id/expenses", h.CreateGroupExpense)
	protected.Get("/groups/:id/balances", h.GetGroupBalances)
	protected.Get("/groups/:id/settlements", h.GetGroupSettlements)

	protected.Post("/expenses", h.CreateOneOffExpense)
	protected.Get("/expenses/:id", h.GetExpense)
	protected.Put("/expenses/:id", h.UpdateExpense)
	protected.Delete("/expenses/:id", h.DeleteExpense)

	protected.Patch("/settlements/:id", h.MarkSettlementPaid)

	protected.Post("/voice-transactions", h.ParseVoiceTransaction)
}
