package handler

import (
	"github.com/gofiber/fiber/v2"

	"spendsplit/internal/middleware"
)

type voiceRequest struct {
	Transcription string `json:"transcription"`
}

type suggestionJSON struct {
	Type         string  `json:"type"`
	Amount       string  `json:"amount"`
	Description  string  `json:"description"`
	CategoryID   string  `json:"category_id,omitempty"`
	CategoryName string  `json:"category_name"`
	Date         string  `json:"date"`
	Confidence   float64 `json:"confidence"`
}

// ParseVoiceTransaction turns a transcription into a transaction suggestion.
// Nothing is persisted; the client confirms and posts a regular transaction.
func (h *Handler) ParseVoiceTransaction(c *fiber.Ctx) error {
	if h.voice == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "voice parsing is not configured"})
	}

	var req voiceRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	suggestion, err := h.voice.Parse(c.Context(), middleware.UserID(c), req.Transcription)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(suggestionJSON{
		Type:         string(suggestion.Type),
		Amount:       suggestion.Amount.String(),
		Description:  suggestion.Description,
		CategoryID:   suggestion.CategoryID,
		CategoryName: suggestion.CategoryName,
		Date:         suggestion.Date.Format("2006-01-02"),
		Confidence:   suggestion.Confidence,
	})
}
