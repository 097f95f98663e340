package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"spendsplit/internal/gemini"
	"spendsplit/internal/models"
)

// TransactionParser extracts transaction fields from a transcription.
// Implemented by the gemini client; abstracted for testing.
type TransactionParser interface {
	ParseTransaction(ctx context.Context, transcription string, categories []string) (*gemini.TransactionData, error)
}

// VoiceService turns spoken-entry transcriptions into transaction
// suggestions the client can confirm and post as a regular transaction.
type VoiceService struct {
	parser     TransactionParser
	categories *CategoryService
}

// NewVoiceService creates a new VoiceService.
func NewVoiceService(parser TransactionParser, categories *CategoryService) *VoiceService {
	return &VoiceService{parser: parser, categories: categories}
}

// Suggestion is a parsed transaction awaiting user confirmation. CategoryID
// is set when the model's suggested category matched one of the user's own.
type Suggestion struct {
	Type         models.CategoryType
	Amount       decimal.Decimal
	Description  string
	CategoryID   string
	CategoryName string
	Date         time.Time
	Confidence   float64
}

// Parse extracts a transaction suggestion from the transcription.
func (s *VoiceService) Parse(ctx context.Context, userID, transcription string) (*Suggestion, error) {
	if strings.TrimSpace(transcription) == "" {
		return nil, fmt.Errorf("%w: transcription required", ErrInvalid)
	}

	categories, err := s.categories.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}

	data, err := s.parser.ParseTransaction(ctx, transcription, names)
	if err != nil {
		return nil, err
	}

	suggestion := &Suggestion{
		Type:        models.CategoryType(data.Type),
		Amount:      data.Amount,
		Description: data.Description,
		Date:        data.Date,
		Confidence:  data.Confidence,
	}

	// Match the model's pick against the user's categories of the same type.
	for _, c := range categories {
		if c.Type == suggestion.Type && strings.EqualFold(c.Name, data.SuggestedCategory) {
			suggestion.CategoryID = c.ID
			suggestion.CategoryName = c.Name
			break
		}
	}
	if suggestion.CategoryName == "" {
		suggestion.CategoryName = data.SuggestedCategory
	}

	return suggestion, nil
}
