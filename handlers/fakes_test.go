package handlers

import (
	"context"
	"net/http"
	"sync"

	"aira/models"
	"aira/services/booking"
	"aira/services/dialogue"

	"github.com/gin-gonic/gin"
	"github.com/livekit/protocol/livekit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAppointments struct {
	mu      sync.Mutex
	appts   map[string]*models.Appointment
	created []models.AppointmentInput
	filter  models.AppointmentFilter
	slots   []string
	free    bool
	err     error
}

func newFakeAppointments() *fakeAppointments {
	return &fakeAppointments{appts: map[string]*models.Appointment{}}
}

func (f *fakeAppointments) CreateAppointment(_ context.Context, in models.AppointmentInput) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, in)
	appt := &models.Appointment{
		ID:              "appt-1",
		PatientName:     in.PatientName,
		PatientPhone:    in.PatientPhone,
		AppointmentDate: in.AppointmentDate,
		AppointmentTime: in.AppointmentTime,
		Status:          models.StatusPending,
	}
	f.appts[appt.ID] = appt
	return appt, nil
}

func (f *fakeAppointments) GetAppointment(_ context.Context, id string) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	appt, ok := f.appts[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	return appt, nil
}

func (f *fakeAppointments) ListAppointments(_ context.Context, filter models.AppointmentFilter) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter = filter
	var out []models.Appointment
	for _, a := range f.appts {
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeAppointments) UpdateAppointment(_ context.Context, id string, upd models.AppointmentUpdate) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	appt, ok := f.appts[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	if f.err != nil {
		return nil, f.err
	}
	if upd.AppointmentTime != nil {
		appt.AppointmentTime = *upd.AppointmentTime
	}
	return appt, nil
}

func (f *fakeAppointments) setStatus(id string, to models.AppointmentStatus) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	appt, ok := f.appts[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	if !appt.Status.IsActive() {
		return nil, booking.ErrInvalidTransition
	}
	appt.Status = to
	return appt, nil
}

func (f *fakeAppointments) CancelAppointment(_ context.Context, id, reason string) (*models.Appointment, error) {
	appt, err := f.setStatus(id, models.StatusCancelled)
	if err == nil {
		appt.Notes = reason
	}
	return appt, err
}

func (f *fakeAppointments) ConfirmAppointment(_ context.Context, id string) (*models.Appointment, error) {
	return f.setStatus(id, models.StatusConfirmed)
}

func (f *fakeAppointments) Stats(context.Context) (*models.AppointmentStats, error) {
	return &models.AppointmentStats{Total: 3, Pending: 2, Cancelled: 1}, nil
}

func (f *fakeAppointments) CheckAvailability(_ context.Context, date, hhmm string) (bool, error) {
	return f.free, f.err
}

func (f *fakeAppointments) GetAvailableSlots(_ context.Context, date string, slotDuration int) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.slots, nil
}

// fakeVoice records calls against one known session id.
type fakeVoice struct {
	mu        sync.Mutex
	sessionID string
	language  string
	texts     []string
	turnErr   error
	bookErr   error
	ended     []string
	endErr    error
}

func newFakeVoice() *fakeVoice {
	return &fakeVoice{sessionID: "s1", language: "en"}
}

func (f *fakeVoice) known(id string) error {
	if id != f.sessionID {
		return dialogue.ErrSessionNotFound
	}
	return nil
}

func (f *fakeVoice) StartSession(_ context.Context, in models.StartSessionInput) (*models.SessionInfo, error) {
	if !booking.ValidPhone(booking.NormalizePhone(in.CallerPhone)) {
		return nil, &booking.ValidationError{Field: "callerPhone", Reason: "invalid phone number"}
	}
	return &models.SessionInfo{
		SessionID: f.sessionID,
		Language:  f.language,
		Greeting:  "Welcome to Smile Dental",
		RoomName:  "dental-" + f.sessionID,
		Token:     "token",
	}, nil
}

func (f *fakeVoice) ProcessMessage(_ context.Context, sessionID, text string) (*models.TurnResult, error) {
	if err := f.known(sessionID); err != nil {
		return nil, err
	}
	if f.turnErr != nil {
		return nil, f.turnErr
	}
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()
	return &models.TurnResult{Response: "echo: " + text, Intent: models.IntentBook, Stage: models.StageCollectingInfo, Language: f.language}, nil
}

func (f *fakeVoice) IsAppointmentReady(_ context.Context, sessionID string) (bool, error) {
	return false, f.known(sessionID)
}

func (f *fakeVoice) CollectedData(_ context.Context, sessionID string) (map[string]string, error) {
	if err := f.known(sessionID); err != nil {
		return nil, err
	}
	return map[string]string{models.FieldPatientName: "Asha"}, nil
}

func (f *fakeVoice) SessionLanguage(_ context.Context, sessionID string) (string, error) {
	return f.language, f.known(sessionID)
}

func (f *fakeVoice) ResetSession(_ context.Context, sessionID string) (string, error) {
	return "Welcome to Smile Dental", f.known(sessionID)
}

func (f *fakeVoice) SetLanguage(_ context.Context, sessionID, code string) (string, error) {
	if err := f.known(sessionID); err != nil {
		return "", err
	}
	f.language = code
	return code, nil
}

func (f *fakeVoice) BookSession(_ context.Context, sessionID string) (*models.BookingResult, error) {
	if err := f.known(sessionID); err != nil {
		return nil, err
	}
	if f.bookErr != nil {
		return nil, f.bookErr
	}
	return &models.BookingResult{Appointment: &models.Appointment{ID: "appt-9"}, Message: "booked"}, nil
}

func (f *fakeVoice) EndSession(_ context.Context, sessionID string) (*models.SessionEnd, error) {
	if err := f.known(sessionID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.ended = append(f.ended, sessionID)
	f.mu.Unlock()
	return &models.SessionEnd{SessionID: sessionID, Message: "Goodbye"}, f.endErr
}

func (f *fakeVoice) EndSessionByRoom(ctx context.Context, room string) (*models.SessionEnd, error) {
	if room != "dental-"+f.sessionID {
		return nil, dialogue.ErrSessionNotFound
	}
	return f.EndSession(ctx, f.sessionID)
}

func (f *fakeVoice) EndSessionByCallSID(ctx context.Context, callSID string) (*models.SessionEnd, error) {
	if callSID != "CA1" {
		return nil, dialogue.ErrSessionNotFound
	}
	return f.EndSession(ctx, f.sessionID)
}

func (f *fakeVoice) ActiveSessions() []models.SessionSummary {
	return []models.SessionSummary{{SessionID: f.sessionID, Language: f.language}}
}

func (f *fakeVoice) SessionMessages(_ context.Context, sessionID string, limit int64) ([]models.ConversationMessage, error) {
	if err := f.known(sessionID); err != nil {
		return nil, err
	}
	return []models.ConversationMessage{{Role: models.RoleAssistant, Content: "Welcome"}}, nil
}

func (f *fakeVoice) endedSessions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ended...)
}

type fakeTranscriber struct {
	text string
	lang string
	err  error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, wav []byte, lang string) (string, error) {
	f.lang = lang
	return f.text, f.err
}

type fakeReceiver struct {
	event *livekit.WebhookEvent
	err   error
}

func (f *fakeReceiver) ReceiveWebhook(*http.Request) (*livekit.WebhookEvent, error) {
	return f.event, f.err
}
