// File: services/dialogue/orchestrator.go
package dialogue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	conversationRepo "aira/database/repository/conversation"
	patientRepo "aira/database/repository/patient"
	"aira/metrics"
	"aira/models"
	"aira/services/booking"
	ai "aira/services/intelligence"
	"aira/services/language"
	"aira/services/media"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	archiveTimeout     = 5 * time.Second
	transcriptMessages = 500
)

// Booker creates appointments from a finished dialogue.
type Booker interface {
	CreateAppointment(ctx context.Context, in models.AppointmentInput) (*models.Appointment, error)
	GetAppointment(ctx context.Context, id string) (*models.Appointment, error)
}

// OrchestratorDeps wires an Orchestrator. Media and Patients are optional.
type OrchestratorDeps struct {
	Model         ai.LanguageModel
	Content       *language.Content
	Store         SnapshotStore
	Conversations conversationRepo.ConversationRepository
	Patients      patientRepo.PatientRepository
	Media         media.Provider
	Booker        Booker
	Metrics       *metrics.AssistantMetrics
	Logger        *zap.Logger

	Machine     MachineConfig
	TurnTimeout time.Duration
	IdleTimeout time.Duration
	Clock       func() time.Time
}

// Orchestrator drives caller sessions: it owns the session registry, runs
// turns through each session's state machine and archives the exchange.
type Orchestrator struct {
	model         ai.LanguageModel
	content       *language.Content
	conversations conversationRepo.ConversationRepository
	patients      patientRepo.PatientRepository
	media         media.Provider
	booker        Booker
	registry      *Registry
	metrics       *metrics.AssistantMetrics
	logger        *zap.Logger

	machineCfg  MachineConfig
	turnTimeout time.Duration
	now         func() time.Time
}

func NewOrchestrator(d OrchestratorDeps) *Orchestrator {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Machine.Clock == nil {
		d.Machine.Clock = d.Clock
	}

	o := &Orchestrator{
		model:         d.Model,
		content:       d.Content,
		conversations: d.Conversations,
		patients:      d.Patients,
		media:         d.Media,
		booker:        d.Booker,
		metrics:       d.Metrics,
		logger:        d.Logger,
		machineCfg:    d.Machine,
		turnTimeout:   d.TurnTimeout,
		now:           d.Clock,
	}
	o.registry = NewRegistry(d.Store, d.IdleTimeout, d.Metrics, d.Logger)
	o.registry.now = d.Clock
	o.registry.restore = o.restoreSession
	return o
}

func (o *Orchestrator) Registry() *Registry { return o.registry }

func (o *Orchestrator) restoreSession(snap *models.SessionSnapshot) *Session {
	machine := RestoreStateMachine(o.model, o.content, snap.State, o.machineCfg, o.logger)
	s := newSession(snap.SessionID, machine, o.now())
	s.ConversationID = snap.ConversationID
	s.CallerPhone = snap.CallerPhone
	s.CallSID = snap.CallSID
	s.RoomName = snap.RoomName
	s.LanguageExplicit = snap.LanguageExplicit
	s.appointmentID = snap.AppointmentID
	s.turns = snap.Turns
	return s
}

// StartSession opens a session for an incoming caller and returns the
// greeting to play.
func (o *Orchestrator) StartSession(ctx context.Context, in models.StartSessionInput) (*models.SessionInfo, error) {
	phone := booking.NormalizePhone(in.CallerPhone)
	if !booking.ValidPhone(phone) {
		return nil, &booking.ValidationError{Field: "callerPhone", Reason: "must be a valid phone number"}
	}

	catalog := o.content.Catalog()
	explicit := strings.TrimSpace(in.Language) != ""
	lang := catalog.InitialLanguage(phone)
	if explicit {
		lang = catalog.Resolve(in.Language)
	}

	id := uuid.New().String()
	info := &models.SessionInfo{SessionID: id, Language: lang}

	if o.media != nil {
		room := o.media.RoomName(id)
		meta, _ := json.Marshal(map[string]string{"sessionId": id, "callerPhone": phone, "language": lang})
		if _, err := o.media.CreateRoom(ctx, room, string(meta)); err != nil {
			return nil, err
		}
		name := in.CallerName
		if name == "" {
			name = phone
		}
		token, err := o.media.JoinToken("caller-"+id, name, room, map[string]string{"sessionId": id, "language": lang})
		if err != nil {
			o.dropRoom(room)
			return nil, err
		}
		info.RoomName = room
		info.Token = token
		info.MediaURL = o.media.URL()
	}

	conv := &models.Conversation{
		SessionID:   id,
		CallerPhone: phone,
		Language:    lang,
		RoomName:    info.RoomName,
		CallSID:     in.CallSID,
		StartedAt:   o.now().UTC(),
	}
	if err := o.conversations.Create(ctx, conv); err != nil {
		if info.RoomName != "" {
			o.dropRoom(info.RoomName)
		}
		return nil, err
	}
	info.ConversationID = conv.ID

	if o.patients != nil {
		if _, err := o.patients.GetOrCreate(ctx, phone, in.CallerName, lang); err != nil {
			o.logger.Warn("failed to record patient contact", zap.String("sessionID", id), zap.Error(err))
		}
	}

	s := newSession(id, NewStateMachine(o.model, o.content, lang, o.machineCfg, o.logger), o.now())
	s.ConversationID = conv.ID
	s.CallerPhone = phone
	s.CallSID = in.CallSID
	s.RoomName = info.RoomName
	s.LanguageExplicit = explicit
	o.registry.Add(s)
	if err := o.registry.Save(ctx, s); err != nil {
		o.logger.Warn("failed to snapshot new session", zap.String("sessionID", id), zap.Error(err))
	}

	info.Greeting = o.content.Greeting(lang)
	o.archive(ctx, conv.ID, models.RoleAssistant, info.Greeting, lang)

	o.logger.Info("session started",
		zap.String("sessionID", id),
		zap.String("conversationID", conv.ID),
		zap.String("language", lang),
		zap.Bool("media", info.RoomName != ""))
	return info, nil
}

func (o *Orchestrator) dropRoom(room string) {
	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()
	if err := o.media.DeleteRoom(ctx, room); err != nil {
		o.logger.Warn("failed to delete media room", zap.String("room", room), zap.Error(err))
	}
}

// lock returns the session held exclusively by the caller. Sessions that
// left the registry while we waited are looked up again.
func (o *Orchestrator) lock(ctx context.Context, id string) (*Session, error) {
	for {
		s, err := o.registry.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := s.acquire(ctx); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: waiting for session %s", ErrTurnTimeout, id)
			}
			return nil, err
		}
		if !s.isDetached() {
			return s, nil
		}
		s.release()
	}
}

// ProcessMessage runs one caller utterance through the session. Turns of
// one session are serialized; the turn timeout includes the wait.
func (o *Orchestrator) ProcessMessage(ctx context.Context, sessionID, text string) (*models.TurnResult, error) {
	start := time.Now()
	if o.turnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.turnTimeout)
		defer cancel()
	}

	s, err := o.lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer s.release()

	o.detectLanguage(s, text)

	result, err := s.machine.ProcessMessage(ctx, text)
	if err != nil {
		o.logger.Warn("turn aborted",
			zap.String("sessionID", s.ID),
			zap.String("stage", string(s.machine.Stage())),
			zap.Error(err))
		return nil, err
	}

	s.mu.Lock()
	s.turns++
	s.lastActive = o.now()
	s.mu.Unlock()

	o.archive(ctx, s.ConversationID, models.RoleUser, text, result.Language)
	o.archive(ctx, s.ConversationID, models.RoleAssistant, result.Response, result.Language)
	if err := o.registry.Save(context.WithoutCancel(ctx), s); err != nil {
		o.logger.Warn("failed to snapshot session", zap.String("sessionID", s.ID), zap.Error(err))
	}

	o.metrics.ObserveTurn(result.Language, result.Intent, time.Since(start).Seconds())
	o.logger.Debug("turn processed",
		zap.String("sessionID", s.ID),
		zap.String("intent", result.Intent),
		zap.String("stage", string(result.Stage)))
	return result, nil
}

// detectLanguage switches the session to the script of the caller's first
// utterance unless the language was chosen explicitly.
func (o *Orchestrator) detectLanguage(s *Session, text string) {
	catalog := o.content.Catalog()
	if s.LanguageExplicit || !catalog.AutoDetect() || s.Turns() > 0 {
		return
	}
	detected, score := language.DetectScript(text)
	current := s.machine.Language()
	if detected == "" || detected == current || !catalog.IsSupported(detected) {
		return
	}
	s.machine.SetLanguage(detected)
	o.metrics.RecordLanguageSwitch(current, detected)
	o.logger.Info("session language switched",
		zap.String("sessionID", s.ID),
		zap.String("from", current),
		zap.String("to", detected),
		zap.Float64("score", score))
}

func (o *Orchestrator) archive(ctx context.Context, conversationID, role, content, lang string) {
	if content == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()
	msg := &models.ConversationMessage{
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Language:       lang,
		Timestamp:      o.now().UTC(),
	}
	if err := o.conversations.AddMessage(ctx, msg); err != nil {
		o.logger.Warn("failed to archive message",
			zap.String("conversationID", conversationID),
			zap.String("role", role),
			zap.Error(err))
	}
}

func (o *Orchestrator) IsAppointmentReady(ctx context.Context, sessionID string) (bool, error) {
	s, err := o.registry.Get(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return s.machine.IsAppointmentReady(), nil
}

func (o *Orchestrator) CollectedData(ctx context.Context, sessionID string) (map[string]string, error) {
	s, err := o.registry.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.machine.CollectedData(), nil
}

// SessionLanguage reports the language the session currently speaks.
func (o *Orchestrator) SessionLanguage(ctx context.Context, sessionID string) (string, error) {
	s, err := o.registry.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return s.machine.Language(), nil
}

// ResetSession starts the dialogue over and returns the greeting.
func (o *Orchestrator) ResetSession(ctx context.Context, sessionID string) (string, error) {
	s, err := o.lock(ctx, sessionID)
	if err != nil {
		return "", err
	}
	defer s.release()

	s.machine.Reset()
	s.touch(o.now())
	if err := o.registry.Save(ctx, s); err != nil {
		o.logger.Warn("failed to snapshot session", zap.String("sessionID", s.ID), zap.Error(err))
	}
	return o.content.Greeting(s.machine.Language()), nil
}

// SetLanguage pins the session language; auto detection stops applying.
func (o *Orchestrator) SetLanguage(ctx context.Context, sessionID, code string) (string, error) {
	s, err := o.lock(ctx, sessionID)
	if err != nil {
		return "", err
	}
	defer s.release()

	lang := o.content.Catalog().Resolve(code)
	if from := s.machine.Language(); from != lang {
		s.machine.SetLanguage(lang)
		o.metrics.RecordLanguageSwitch(from, lang)
	}
	s.LanguageExplicit = true
	s.touch(o.now())
	if err := o.registry.Save(ctx, s); err != nil {
		o.logger.Warn("failed to snapshot session", zap.String("sessionID", s.ID), zap.Error(err))
	}
	return lang, nil
}

// BookSession books the appointment described by the session's collected
// data. Booking twice returns the first appointment.
func (o *Orchestrator) BookSession(ctx context.Context, sessionID string) (*models.BookingResult, error) {
	s, err := o.lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer s.release()

	lang := s.machine.Language()
	if id := s.AppointmentID(); id != "" {
		appt, err := o.booker.GetAppointment(ctx, id)
		if err != nil {
			return nil, err
		}
		return &models.BookingResult{
			Appointment: appt,
			Message:     o.content.Confirmation(lang, appt.AppointmentDate, appt.AppointmentTime, appt.ID),
		}, nil
	}
	if !s.machine.IsAppointmentReady() {
		return nil, fmt.Errorf("%w: missing %s", ErrNotReady, strings.Join(s.machine.MissingFields(), ", "))
	}

	data := s.machine.CollectedData()
	appt, err := o.booker.CreateAppointment(ctx, models.AppointmentInput{
		PatientName:       data[models.FieldPatientName],
		PatientPhone:      data[models.FieldPhone],
		PatientEmail:      data[models.FieldEmail],
		AppointmentDate:   data[models.FieldAppointmentDate],
		AppointmentTime:   data[models.FieldAppointmentTime],
		Reason:            data[models.FieldReason],
		PreferredLanguage: lang,
		CallSID:           s.CallSID,
		SessionID:         s.ID,
	})
	if err != nil {
		o.logger.Info("session booking rejected", zap.String("sessionID", s.ID), zap.Error(err))
		return nil, err
	}

	s.mu.Lock()
	s.appointmentID = appt.ID
	s.lastActive = o.now()
	s.mu.Unlock()

	msg := o.content.Confirmation(lang, appt.AppointmentDate, appt.AppointmentTime, appt.ID)
	o.archive(ctx, s.ConversationID, models.RoleAssistant, msg, lang)
	if err := o.registry.Save(ctx, s); err != nil {
		o.logger.Warn("failed to snapshot session", zap.String("sessionID", s.ID), zap.Error(err))
	}
	o.logger.Info("appointment booked from session",
		zap.String("sessionID", s.ID),
		zap.String("appointmentID", appt.ID))
	return &models.BookingResult{Appointment: appt, Message: msg}, nil
}

// EndSession closes the dialogue, archives the transcript, deletes the media
// room and forgets the session. Cleanup failures are logged and do not stop
// the remaining steps.
func (o *Orchestrator) EndSession(ctx context.Context, sessionID string) (*models.SessionEnd, error) {
	s, err := o.lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer s.release()

	lang := s.machine.Language()
	closing := s.machine.Close()
	o.archive(ctx, s.ConversationID, models.RoleAssistant, closing, lang)

	if transcript, err := o.transcript(ctx, s.ConversationID); err != nil {
		o.logger.Warn("failed to build transcript", zap.String("sessionID", s.ID), zap.Error(err))
	} else if err := o.conversations.UpdateTranscript(ctx, s.ID, transcript); err != nil {
		o.logger.Warn("failed to store transcript", zap.String("sessionID", s.ID), zap.Error(err))
	}

	end := &models.SessionEnd{SessionID: s.ID, Message: closing, AppointmentID: s.AppointmentID()}
	conv, endErr := o.conversations.End(ctx, s.ID, end.AppointmentID, o.now().UTC())
	if endErr != nil {
		o.logger.Error("failed to close conversation", zap.String("sessionID", s.ID), zap.Error(endErr))
	} else {
		end.DurationSeconds = conv.DurationSeconds
	}

	if o.media != nil && s.RoomName != "" {
		if err := o.media.DeleteRoom(ctx, s.RoomName); err != nil && !errors.Is(err, media.ErrRoomNotFound) {
			o.logger.Warn("failed to delete media room", zap.String("room", s.RoomName), zap.Error(err))
		}
	}
	o.registry.Remove(ctx, s.ID)

	o.logger.Info("session ended",
		zap.String("sessionID", s.ID),
		zap.String("appointmentID", end.AppointmentID),
		zap.Int("durationSeconds", end.DurationSeconds))
	if endErr != nil {
		return end, fmt.Errorf("session %s ended, conversation not closed: %w", s.ID, endErr)
	}
	return end, nil
}

func (o *Orchestrator) transcript(ctx context.Context, conversationID string) (string, error) {
	msgs, err := o.conversations.Messages(ctx, conversationID, transcriptMessages)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, m := range msgs {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	return b.String(), nil
}

// EndSessionByRoom ends the session bound to a media room.
func (o *Orchestrator) EndSessionByRoom(ctx context.Context, room string) (*models.SessionEnd, error) {
	if s := o.registry.Find(func(s *Session) bool { return s.RoomName == room }); s != nil {
		return o.EndSession(ctx, s.ID)
	}
	conv, err := o.conversations.GetByRoom(ctx, room)
	if err != nil {
		return nil, o.lookupErr(err)
	}
	return o.EndSession(ctx, conv.SessionID)
}

// EndSessionByCallSID ends the session started for a telephony call.
func (o *Orchestrator) EndSessionByCallSID(ctx context.Context, callSID string) (*models.SessionEnd, error) {
	if s := o.registry.Find(func(s *Session) bool { return s.CallSID == callSID }); s != nil {
		return o.EndSession(ctx, s.ID)
	}
	conv, err := o.conversations.GetByCallSID(ctx, callSID)
	if err != nil {
		return nil, o.lookupErr(err)
	}
	return o.EndSession(ctx, conv.SessionID)
}

func (o *Orchestrator) lookupErr(err error) error {
	if errors.Is(err, conversationRepo.ErrNotFound) {
		return ErrSessionNotFound
	}
	return err
}

// ActiveSessions lists in-memory sessions, most recently active first.
func (o *Orchestrator) ActiveSessions() []models.SessionSummary {
	sessions := o.registry.List()
	out := make([]models.SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastActive.After(out[j].LastActive) })
	return out
}

// SessionMessages returns the archived messages of a live or ended session.
func (o *Orchestrator) SessionMessages(ctx context.Context, sessionID string, limit int64) ([]models.ConversationMessage, error) {
	conv, err := o.conversations.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, o.lookupErr(err)
	}
	return o.conversations.Messages(ctx, conv.ID, limit)
}
