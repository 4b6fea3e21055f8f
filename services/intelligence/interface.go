// File: services/intelligence/interface.go
package ai

import (
	"context"
	"errors"

	"aira/models"
)

var (
	// ErrMalformedOutput is returned when the model reply cannot be parsed.
	ErrMalformedOutput = errors.New("malformed model output")
	// ErrModelUnavailable is returned while the circuit breaker is open.
	ErrModelUnavailable = errors.New("language model temporarily unavailable")
)

// LanguageModel is everything the dialogue layer needs from the model provider.
type LanguageModel interface {
	// Generate replies to the last message of history under systemPrompt.
	Generate(ctx context.Context, history []models.ChatMessage, systemPrompt string) (string, error)
	// ExtractEntities returns only the fields mentioned in text.
	ExtractEntities(ctx context.Context, text, language string) (models.Entities, error)
	// DetectIntent returns one of the models.Intent* labels.
	DetectIntent(ctx context.Context, text, language string) (string, error)
}

// TextGenerator is a raw chat completion backend.
type TextGenerator interface {
	GenerateText(ctx context.Context, history []models.ChatMessage, systemPrompt string) (string, error)
}
