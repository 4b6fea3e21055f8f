package ai

import (
	"context"
	"fmt"
	"time"

	"aira/metrics"
	"aira/models"

	"go.uber.org/zap"
)

const entityPrompt = `You are an entity extraction assistant for a dental clinic appointment system.
Extract the following entities from the user's message:
- patient_name: Full name of the patient
- phone: Phone number
- email: Email address
- appointment_date: Date in YYYY-MM-DD format
- appointment_time: Time in HH:MM format (24-hour)
- reason: Reason for appointment

Language: %s
Current date: %s

Resolve relative dates such as "tomorrow" against the current date.
Return ONLY a JSON object with extracted entities. Use null for missing entities.
Example: {"patient_name": "John Doe", "phone": "+919876543210", "email": null, "appointment_date": "2024-03-15", "appointment_time": "10:00", "reason": "dental checkup"}`

const intentPrompt = `You are an intent detection assistant for a dental clinic.
Detect the primary intent from the user's message.

Possible intents:
- book_appointment: User wants to book an appointment
- cancel_appointment: User wants to cancel
- reschedule_appointment: User wants to reschedule
- inquiry: General inquiry about services
- emergency: Dental emergency
- greeting: Just greeting
- other: Other intents

Language: %s

Return ONLY the intent name, nothing else.`

// ModelService implements LanguageModel on top of a TextGenerator.
type ModelService struct {
	gen      TextGenerator
	metrics  *metrics.AssistantMetrics
	logger   *zap.Logger
	location *time.Location
	now      func() time.Time
}

func NewModelService(gen TextGenerator, m *metrics.AssistantMetrics, logger *zap.Logger, loc *time.Location) *ModelService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ModelService{gen: gen, metrics: m, logger: logger, location: loc, now: time.Now}
}

func (s *ModelService) call(ctx context.Context, op string, history []models.ChatMessage, systemPrompt string) (string, error) {
	start := time.Now()
	out, err := s.gen.GenerateText(ctx, history, systemPrompt)
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.ObserveModelCall(op, status, time.Since(start).Seconds())
	if err != nil {
		s.logger.Warn("model call failed", zap.String("operation", op), zap.Error(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func (s *ModelService) Generate(ctx context.Context, history []models.ChatMessage, systemPrompt string) (string, error) {
	return s.call(ctx, "generate", history, systemPrompt)
}

func (s *ModelService) ExtractEntities(ctx context.Context, text, language string) (models.Entities, error) {
	today := s.now().In(s.location).Format("2006-01-02")
	prompt := fmt.Sprintf(entityPrompt, language, today)
	out, err := s.call(ctx, "extract_entities", []models.ChatMessage{{Role: models.RoleUser, Content: text}}, prompt)
	if err != nil {
		return nil, err
	}
	entities, err := parseEntities(out)
	if err != nil {
		s.logger.Warn("unparsable entity output", zap.String("output", truncate(out, 200)), zap.Error(err))
		return nil, err
	}
	s.logger.Debug("extracted entities", zap.Any("entities", entities))
	return entities, nil
}

func (s *ModelService) DetectIntent(ctx context.Context, text, language string) (string, error) {
	out, err := s.call(ctx, "detect_intent", []models.ChatMessage{{Role: models.RoleUser, Content: text}}, fmt.Sprintf(intentPrompt, language))
	if err != nil {
		return "", err
	}
	return normalizeIntent(out), nil
}
