package dialogue

import (
	"context"
	"fmt"
	"sync"
	"time"

	conversationRepo "aira/database/repository/conversation"
	"aira/models"
	"aira/services/language"
)

// fakeModel replays scripted entities, one set per ExtractEntities call.
type fakeModel struct {
	mu       sync.Mutex
	intent   string
	entities []models.Entities
	reply    string
	genErr   error
	blockGen bool
	hold     time.Duration

	prompts  []string
	inflight int
	maxSeen  int
}

func (f *fakeModel) Generate(ctx context.Context, history []models.ChatMessage, systemPrompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, systemPrompt)
	f.inflight++
	if f.inflight > f.maxSeen {
		f.maxSeen = f.inflight
	}
	block, hold, err, reply := f.blockGen, f.hold, f.genErr, f.reply
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inflight--
		f.mu.Unlock()
	}()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if hold > 0 {
		time.Sleep(hold)
	}
	if err != nil {
		return "", err
	}
	if reply == "" {
		reply = fmt.Sprintf("reply to %q", history[len(history)-1].Content)
	}
	return reply, nil
}

func (f *fakeModel) ExtractEntities(_ context.Context, _ string, _ string) (models.Entities, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.entities) == 0 {
		return models.Entities{}, nil
	}
	out := f.entities[0]
	f.entities = f.entities[1:]
	return out, nil
}

func (f *fakeModel) DetectIntent(_ context.Context, _ string, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.intent == "" {
		return models.IntentBook, nil
	}
	return f.intent, nil
}

func (f *fakeModel) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func testContent() *language.Content {
	catalog := language.NewCatalog([]string{"en", "ml", "hi", "ta"}, "en", "ml", true)
	return language.NewContent(catalog, language.ClinicInfo{Name: "Smile Dental", Phone: "+914933000000"}, nil)
}

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC) }
}

// memConversations is an in-memory conversation store.
type memConversations struct {
	mu       sync.Mutex
	convs    map[string]*models.Conversation
	messages []models.ConversationMessage
	seq      int
}

func newMemConversations() *memConversations {
	return &memConversations{convs: map[string]*models.Conversation{}}
}

func (m *memConversations) Create(_ context.Context, conv *models.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	conv.ID = fmt.Sprintf("conv-%d", m.seq)
	cp := *conv
	m.convs[conv.SessionID] = &cp
	return nil
}

func (m *memConversations) find(pred func(*models.Conversation) bool) (*models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.convs {
		if pred(c) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, conversationRepo.ErrNotFound
}

func (m *memConversations) GetBySession(_ context.Context, sessionID string) (*models.Conversation, error) {
	return m.find(func(c *models.Conversation) bool { return c.SessionID == sessionID })
}

func (m *memConversations) GetByCallSID(_ context.Context, callSID string) (*models.Conversation, error) {
	return m.find(func(c *models.Conversation) bool { return c.CallSID != "" && c.CallSID == callSID })
}

func (m *memConversations) GetByRoom(_ context.Context, roomName string) (*models.Conversation, error) {
	return m.find(func(c *models.Conversation) bool { return c.RoomName != "" && c.RoomName == roomName })
}

func (m *memConversations) AddMessage(_ context.Context, msg *models.ConversationMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *memConversations) Messages(_ context.Context, conversationID string, limit int64) ([]models.ConversationMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ConversationMessage{}
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID && (limit <= 0 || int64(len(out)) < limit) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memConversations) End(_ context.Context, sessionID, appointmentID string, endedAt time.Time) (*models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.convs[sessionID]
	if !ok {
		return nil, conversationRepo.ErrNotFound
	}
	c.EndedAt = &endedAt
	c.DurationSeconds = int(endedAt.Sub(c.StartedAt).Seconds())
	if appointmentID != "" {
		c.AppointmentID = appointmentID
		c.AppointmentCreated = true
	}
	cp := *c
	return &cp, nil
}

func (m *memConversations) UpdateTranscript(_ context.Context, sessionID, transcript string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.convs[sessionID]
	if !ok {
		return conversationRepo.ErrNotFound
	}
	c.Transcript = transcript
	return nil
}

func (m *memConversations) EnsureIndexes(context.Context) error { return nil }

type fakeBooker struct {
	mu     sync.Mutex
	inputs []models.AppointmentInput
	err    error
	appts  map[string]*models.Appointment
}

func (b *fakeBooker) CreateAppointment(_ context.Context, in models.AppointmentInput) (*models.Appointment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return nil, b.err
	}
	b.inputs = append(b.inputs, in)
	appt := &models.Appointment{
		ID:              fmt.Sprintf("appt-%d", len(b.inputs)),
		PatientName:     in.PatientName,
		PatientPhone:    in.PatientPhone,
		AppointmentDate: in.AppointmentDate,
		AppointmentTime: in.AppointmentTime,
		Status:          models.StatusPending,
		SessionID:       in.SessionID,
	}
	if b.appts == nil {
		b.appts = map[string]*models.Appointment{}
	}
	b.appts[appt.ID] = appt
	return appt, nil
}

func (b *fakeBooker) GetAppointment(_ context.Context, id string) (*models.Appointment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	appt, ok := b.appts[id]
	if !ok {
		return nil, fmt.Errorf("appointment %s not found", id)
	}
	return appt, nil
}

type fakeMedia struct {
	mu      sync.Mutex
	rooms   map[string]string
	deleted []string
}

func newFakeMedia() *fakeMedia { return &fakeMedia{rooms: map[string]string{}} }

func (f *fakeMedia) RoomName(sessionID string) string { return "dental-" + sessionID }

func (f *fakeMedia) CreateRoom(_ context.Context, name, metadata string) (*models.RoomInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rooms[name] = metadata
	return &models.RoomInfo{Name: name, SID: "RM_" + name}, nil
}

func (f *fakeMedia) GetRoom(_ context.Context, name string) (*models.RoomInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rooms[name]; !ok {
		return nil, fmt.Errorf("room %s missing", name)
	}
	return &models.RoomInfo{Name: name}, nil
}

func (f *fakeMedia) DeleteRoom(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rooms, name)
	f.deleted = append(f.deleted, name)
	return nil
}

func (f *fakeMedia) ListRooms(context.Context) ([]models.RoomInfo, error) { return nil, nil }

func (f *fakeMedia) ListParticipants(context.Context, string) ([]models.ParticipantInfo, error) {
	return nil, nil
}

func (f *fakeMedia) JoinToken(identity, name, room string, _ map[string]string) (string, error) {
	return "token:" + identity + ":" + room, nil
}

func (f *fakeMedia) URL() string { return "wss://media.test" }

// fakeSlots reports the listed date/time pairs as taken.
type fakeSlots struct {
	mu     sync.Mutex
	taken  map[string]bool
	free   []string
	err    error
	checks []string
}

func (f *fakeSlots) CheckAvailability(_ context.Context, date, hhmm string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checks = append(f.checks, date+" "+hhmm)
	if f.err != nil {
		return false, f.err
	}
	return !f.taken[date+" "+hhmm], nil
}

func (f *fakeSlots) GetAvailableSlots(_ context.Context, _ string, _ int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]string(nil), f.free...), nil
}

func (f *fakeSlots) checkCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.checks)
}
