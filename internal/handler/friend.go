package handler

import (
	"github.com/gofiber/fiber/v2"

	"spendsplit/internal/middleware"
)

type friendJSON struct {
	FriendshipID string   `json:"friendship_id"`
	User         userJSON `json:"user"`
}

// ListFriends returns the user's accepted friends.
func (h *Handler) ListFriends(c *fiber.Ctx) error {
	friends, err := h.friends.ListFriends(c.Context(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}

	out := make([]friendJSON, len(friends))
	for i, f := range friends {
		out[i] = friendJSON{FriendshipID: f.FriendshipID, User: toUserJSON(f.User)}
	}
	return c.JSON(fiber.Map{"friends": out})
}

type inviteRequest struct {
	Email string `json:"email"`
}

// InviteFriend sends a friend request to the user behind the email.
func (h *Handler) InviteFriend(c *fiber.Ctx) error {
	var req inviteRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	friendship, err := h.friends.Invite(c.Context(), middleware.UserID(c), req.Email)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"friendship_id": friendship.ID,
		"status":        friendship.Status,
	})
}

type friendRequestJSON struct {
	FriendshipID string   `json:"friendship_id"`
	Requester    userJSON `json:"requester"`
}

// ListFriendRequests returns invites awaiting the user's response.
func (h *Handler) ListFriendRequests(c *fiber.Ctx) error {
	requests, err := h.friends.ListPending(c.Context(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}

	out := make([]friendRequestJSON, len(requests))
	for i, r := range requests {
		out[i] = friendRequestJSON{FriendshipID: r.FriendshipID, Requester: toUserJSON(r.Requester)}
	}
	return c.JSON(fiber.Map{"requests": out})
}

type respondRequest struct {
	Accept bool `json:"accept"`
}

// RespondFriendRequest accepts or declines a pending invite.
func (h *Handler) RespondFriendRequest(c *fiber.Ctx) error {
	var req respondRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	if err := h.friends.Respond(c.Context(), middleware.UserID(c), c.Params("id"), req.Accept); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
