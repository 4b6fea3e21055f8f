// File: services/dialogue/state.go
package dialogue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"aira/models"
	"aira/services/booking"
	ai "aira/services/intelligence"
	"aira/services/language"

	"go.uber.org/zap"
)

// MachineConfig tunes a StateMachine.
type MachineConfig struct {
	// FieldPriority orders the required fields; unknown names are ignored
	// and required fields it omits keep their default order at the end.
	FieldPriority []string
	// MaxHistoryTurns bounds the chat history sent to the model, counted in
	// user+assistant pairs. Zero means 20.
	MaxHistoryTurns int
	// Slots, when set, vets each newly proposed date/time before it is
	// accepted into the collected data.
	Slots SlotChecker
	// SlotSuggestions caps the alternatives offered for a taken slot.
	// Zero means 3.
	SlotSuggestions int
	Clock           func() time.Time
}

// SlotChecker answers availability questions for proposed slots.
type SlotChecker interface {
	CheckAvailability(ctx context.Context, date, hhmm string) (bool, error)
	GetAvailableSlots(ctx context.Context, date string, slotDuration int) ([]string, error)
}

// slotRejection describes a proposed slot that could not be accepted.
type slotRejection struct {
	date         string
	time         string
	invalid      bool
	alternatives []string
}

// StateMachine runs the booking dialogue of one session. Turns must not
// overlap; reads are safe from any goroutine.
type StateMachine struct {
	model   ai.LanguageModel
	content *language.Content
	logger  *zap.Logger

	required    []string
	maxHistory  int
	slots       SlotChecker
	suggestions int
	now         func() time.Time

	mu    sync.RWMutex
	state models.ConversationState
}

func NewStateMachine(model ai.LanguageModel, content *language.Content, lang string, cfg MachineConfig, logger *zap.Logger) *StateMachine {
	return RestoreStateMachine(model, content, models.ConversationState{Language: lang}, cfg, logger)
}

// RestoreStateMachine resumes a machine from a saved state.
func RestoreStateMachine(model ai.LanguageModel, content *language.Content, state models.ConversationState, cfg MachineConfig, logger *zap.Logger) *StateMachine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxHistoryTurns <= 0 {
		cfg.MaxHistoryTurns = 20
	}
	if cfg.SlotSuggestions <= 0 {
		cfg.SlotSuggestions = 3
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if state.Stage == "" {
		state.Stage = models.StageGreeting
	}
	state.CollectedData = copyData(state.CollectedData)
	state.History = append([]models.ChatMessage(nil), state.History...)
	return &StateMachine{
		model:       model,
		content:     content,
		logger:      logger,
		required:    orderFields(cfg.FieldPriority),
		maxHistory:  cfg.MaxHistoryTurns * 2,
		slots:       cfg.Slots,
		suggestions: cfg.SlotSuggestions,
		now:         cfg.Clock,
		state:       state,
	}
}

func orderFields(priority []string) []string {
	required := map[string]bool{}
	for _, f := range models.DefaultRequiredFields {
		required[f] = true
	}
	out := make([]string, 0, len(models.DefaultRequiredFields))
	for _, f := range priority {
		f = strings.TrimSpace(f)
		if required[f] {
			out = append(out, f)
			delete(required, f)
		}
	}
	for _, f := range models.DefaultRequiredFields {
		if required[f] {
			out = append(out, f)
		}
	}
	return out
}

func copyData(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// ProcessMessage runs one turn. Collected data and stage change only when
// the whole turn succeeds. A model failure yields the localized error reply
// with intent "error"; an expired deadline yields ErrTurnTimeout.
func (m *StateMachine) ProcessMessage(ctx context.Context, text string) (*models.TurnResult, error) {
	m.mu.RLock()
	stage := m.state.Stage
	lang := m.state.Language
	collected := copyData(m.state.CollectedData)
	history := append([]models.ChatMessage(nil), m.state.History...)
	m.mu.RUnlock()

	intent, err := m.model.DetectIntent(ctx, text, lang)
	if err != nil {
		return m.failTurn(ctx, err)
	}
	entities, err := m.model.ExtractEntities(ctx, text, lang)
	if err != nil {
		return m.failTurn(ctx, err)
	}

	merged := copyData(collected)
	for k, v := range entities {
		if strings.TrimSpace(v) != "" {
			merged[k] = strings.TrimSpace(v)
		}
	}
	rejected, err := m.vetSlot(ctx, collected, merged)
	if err != nil {
		return m.failTurn(ctx, err)
	}
	missing := m.missingFrom(merged)

	systemPrompt := m.content.SystemPrompt(lang, m.now()) + m.directive(stage, merged, missing, intent, lang, rejected)
	history = append(history, models.ChatMessage{Role: models.RoleUser, Content: text})
	reply, err := m.model.Generate(ctx, history, systemPrompt)
	if err != nil {
		return m.failTurn(ctx, err)
	}
	history = append(history, models.ChatMessage{Role: models.RoleAssistant, Content: reply})
	if len(history) > m.maxHistory {
		history = history[len(history)-m.maxHistory:]
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.CollectedData = merged
	m.state.History = history
	switch {
	case len(missing) == 0 && m.state.Stage != models.StageConfirming && m.state.Stage != models.StageClosing:
		m.state.Stage = models.StageConfirming
	case len(missing) > 0 && stage == models.StageGreeting && m.state.Stage == models.StageGreeting:
		m.state.Stage = models.StageCollectingInfo
	}

	if entities == nil {
		entities = models.Entities{}
	}
	return &models.TurnResult{
		Response:      reply,
		Intent:        intent,
		Entities:      entities,
		CollectedData: copyData(m.state.CollectedData),
		Stage:         m.state.Stage,
		Language:      m.state.Language,
	}, nil
}

func (m *StateMachine) failTurn(ctx context.Context, err error) (*models.TurnResult, error) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %v", ErrTurnTimeout, err)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	m.logger.Error("turn failed",
		zap.String("stage", string(m.state.Stage)),
		zap.String("language", m.state.Language),
		zap.Error(err))
	return &models.TurnResult{
		Response:      m.content.ErrorMessage(m.state.Language),
		Intent:        models.IntentError,
		Entities:      models.Entities{},
		CollectedData: copyData(m.state.CollectedData),
		Stage:         m.state.Stage,
		Language:      m.state.Language,
	}, nil
}

// vetSlot checks a date/time pair that is new or changed this turn. A taken
// or malformed slot is removed from merged and described in the returned
// rejection; when the whole day is full the date goes too.
func (m *StateMachine) vetSlot(ctx context.Context, collected, merged map[string]string) (*slotRejection, error) {
	date, hhmm := merged[models.FieldAppointmentDate], merged[models.FieldAppointmentTime]
	if m.slots == nil || date == "" || hhmm == "" {
		return nil, nil
	}
	if date == collected[models.FieldAppointmentDate] && hhmm == collected[models.FieldAppointmentTime] {
		return nil, nil
	}

	ok, err := m.slots.CheckAvailability(ctx, date, hhmm)
	var verr *booking.ValidationError
	switch {
	case errors.As(err, &verr):
		m.logger.Debug("proposed slot rejected", zap.String("date", date), zap.String("time", hhmm), zap.Error(err))
	case err != nil:
		return nil, err
	case ok:
		return nil, nil
	}

	rejected := &slotRejection{date: date, time: hhmm}
	delete(merged, models.FieldAppointmentTime)
	if verr != nil {
		rejected.invalid = true
		if verr.Field == "appointmentDate" {
			delete(merged, models.FieldAppointmentDate)
		}
		return rejected, nil
	}

	free, err := m.slots.GetAvailableSlots(ctx, date, 0)
	if err != nil {
		return nil, err
	}
	rejected.alternatives = nearestSlots(free, hhmm, m.suggestions)
	if len(rejected.alternatives) == 0 {
		delete(merged, models.FieldAppointmentDate)
	}
	return rejected, nil
}

// nearestSlots picks up to n free slots at or after hhmm, falling back to
// the earliest of the day.
func nearestSlots(free []string, hhmm string, n int) []string {
	i := sort.SearchStrings(free, hhmm)
	if i == len(free) {
		i = 0
	}
	after := free[i:]
	if len(after) > n {
		after = after[:n]
	}
	return append([]string(nil), after...)
}

func (m *StateMachine) missingFrom(data map[string]string) []string {
	var missing []string
	for _, f := range m.required {
		if data[f] == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

func (m *StateMachine) directive(stage models.ConversationStage, collected map[string]string, missing []string, intent, lang string, rejected *slotRejection) string {
	collectedJSON, _ := json.Marshal(collected)
	missingJSON, _ := json.Marshal(missing)

	var b strings.Builder
	fmt.Fprintf(&b, "\nConversation Stage: %s\n", stage)
	fmt.Fprintf(&b, "Collected Information: %s\n", collectedJSON)
	fmt.Fprintf(&b, "Missing Information: %s\n", missingJSON)
	fmt.Fprintf(&b, "User Intent: %s\n\n", intent)
	if intent == models.IntentEmergency {
		b.WriteString("The caller reports a dental emergency. Advise an immediate visit or emergency services first.\n")
	}
	if rejected != nil {
		switch {
		case rejected.invalid:
			fmt.Fprintf(&b, "The requested slot %s %s is not a valid appointment time.\n", rejected.date, rejected.time)
		case len(rejected.alternatives) > 0:
			fmt.Fprintf(&b, "The requested slot %s %s is not available.\n", rejected.date, rejected.time)
			fmt.Fprintf(&b, "Offer these free times on %s instead: %s\n", rejected.date, strings.Join(rejected.alternatives, ", "))
		default:
			fmt.Fprintf(&b, "The requested slot %s %s is not available and no free times remain that day. Ask for another date.\n", rejected.date, rejected.time)
		}
	}
	if len(missing) > 0 {
		fmt.Fprintf(&b, "Ask for the next missing field: %s\n", missing[0])
		if phrasing := m.content.FieldPrompt(missing[0], lang); phrasing != "" {
			fmt.Fprintf(&b, "Suggested phrasing: %s\n", phrasing)
		}
	} else {
		b.WriteString("All information collected. Confirm the appointment details.\n")
	}
	return b.String()
}

// Reset returns the dialogue to a fresh greeting, keeping the language.
func (m *StateMachine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = models.ConversationState{
		Stage:         models.StageGreeting,
		CollectedData: map[string]string{},
		Language:      m.state.Language,
	}
}

// Close ends the dialogue and returns the localized goodbye.
func (m *StateMachine) Close() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Stage = models.StageClosing
	return m.content.Closing(m.state.Language)
}

func (m *StateMachine) IsAppointmentReady() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.missingFrom(m.state.CollectedData)) == 0
}

func (m *StateMachine) MissingFields() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.missingFrom(m.state.CollectedData)
}

// CollectedData returns a copy of the collected fields.
func (m *StateMachine) CollectedData() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyData(m.state.CollectedData)
}

func (m *StateMachine) Stage() models.ConversationStage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Stage
}

func (m *StateMachine) Language() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Language
}

func (m *StateMachine) SetLanguage(lang string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Language = lang
}

// State returns a deep copy for persistence.
func (m *StateMachine) State() models.ConversationState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.state
	s.CollectedData = copyData(m.state.CollectedData)
	s.History = append([]models.ChatMessage(nil), m.state.History...)
	return s
}
