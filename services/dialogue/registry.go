package dialogue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"aira/metrics"
	"aira/models"
	ai "aira/services/intelligence"

	"go.uber.org/zap"
)

// SnapshotStore persists sessions outside the process.
type SnapshotStore interface {
	Get(ctx context.Context, sessionID string) (*models.SessionSnapshot, error)
	Save(ctx context.Context, snap *models.SessionSnapshot) error
	Delete(ctx context.Context, sessionID string) error
}

// Session is one live conversation held by the registry.
type Session struct {
	ID               string
	ConversationID   string
	CallerPhone      string
	CallSID          string
	RoomName         string
	LanguageExplicit bool

	machine *StateMachine
	lock    chan struct{}

	mu            sync.Mutex
	appointmentID string
	turns         int
	lastActive    time.Time
	detached      bool
}

func newSession(id string, machine *StateMachine, now time.Time) *Session {
	return &Session{ID: id, machine: machine, lock: make(chan struct{}, 1), lastActive: now}
}

// acquire waits for exclusive use of the session or for ctx to end.
func (s *Session) acquire(ctx context.Context) error {
	select {
	case s.lock <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) tryAcquire() bool {
	select {
	case s.lock <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *Session) release() { <-s.lock }

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastActive = now
	s.mu.Unlock()
}

// markDetached flags a session that left the registry; holders of a stale
// pointer must look it up again.
func (s *Session) markDetached() {
	s.mu.Lock()
	s.detached = true
	s.mu.Unlock()
}

func (s *Session) isDetached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detached
}

func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) Turns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turns
}

func (s *Session) AppointmentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appointmentID
}

func (s *Session) Snapshot() *models.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &models.SessionSnapshot{
		SessionID:        s.ID,
		ConversationID:   s.ConversationID,
		CallerPhone:      s.CallerPhone,
		CallSID:          s.CallSID,
		RoomName:         s.RoomName,
		LanguageExplicit: s.LanguageExplicit,
		AppointmentID:    s.appointmentID,
		State:            s.machine.State(),
		Turns:            s.turns,
		LastActive:       s.lastActive,
	}
}

func (s *Session) Summary() models.SessionSummary {
	return models.SessionSummary{
		SessionID:      s.ID,
		ConversationID: s.ConversationID,
		Language:       s.machine.Language(),
		Stage:          s.machine.Stage(),
		LastActive:     s.LastActive(),
	}
}

// Registry owns the live sessions. Idle sessions are snapshotted and
// dropped from memory by Run; a later lookup restores them.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	store   SnapshotStore
	idle    time.Duration
	restore func(*models.SessionSnapshot) *Session
	metrics *metrics.AssistantMetrics
	logger  *zap.Logger
	now     func() time.Time
}

func NewRegistry(store SnapshotStore, idle time.Duration, m *metrics.AssistantMetrics, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		sessions: make(map[string]*Session),
		store:    store,
		idle:     idle,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	r.sessions[s.ID] = s
	n := len(r.sessions)
	r.mu.Unlock()
	r.metrics.SetActiveSessions(n)
}

// Get returns the live session, restoring it from its snapshot when it is
// not in memory.
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		return s, nil
	}
	if r.store == nil || r.restore == nil {
		return nil, ErrSessionNotFound
	}

	snap, err := r.store.Get(ctx, id)
	if errors.Is(err, ai.ErrNoSnapshot) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to restore session %s: %w", id, err)
	}

	restored := r.restore(snap)
	r.mu.Lock()
	if existing, ok := r.sessions[id]; ok {
		r.mu.Unlock()
		return existing, nil
	}
	r.sessions[id] = restored
	n := len(r.sessions)
	r.mu.Unlock()
	r.metrics.SetActiveSessions(n)
	r.logger.Info("session restored from snapshot", zap.String("sessionID", id))
	return restored, nil
}

// Find returns the first live session matching pred.
func (r *Registry) Find(pred func(*Session) bool) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		if pred(s) {
			return s
		}
	}
	return nil
}

// Remove drops the session and its snapshot. The snapshot goes first so a
// concurrent Get cannot bring the session back.
func (r *Registry) Remove(ctx context.Context, id string) {
	if r.store != nil {
		if err := r.store.Delete(ctx, id); err != nil {
			r.logger.Warn("failed to delete session snapshot", zap.String("sessionID", id), zap.Error(err))
		}
	}

	r.mu.Lock()
	if s, ok := r.sessions[id]; ok {
		s.markDetached()
	}
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()
	r.metrics.SetActiveSessions(n)
}

func (r *Registry) Save(ctx context.Context, s *Session) error {
	if r.store == nil {
		return nil
	}
	return r.store.Save(ctx, s.Snapshot())
}

func (r *Registry) List() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// EvictIdle drops sessions idle longer than the idle timeout and returns
// how many were evicted. Busy sessions and sessions whose snapshot cannot
// be written stay in memory.
func (r *Registry) EvictIdle(ctx context.Context) int {
	if r.idle <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idle)

	evicted := 0
	for _, s := range r.List() {
		if !s.LastActive().Before(cutoff) || !s.tryAcquire() {
			continue
		}
		if !s.LastActive().Before(cutoff) {
			s.release()
			continue
		}
		if err := r.Save(ctx, s); err != nil {
			r.logger.Warn("keeping idle session, snapshot failed", zap.String("sessionID", s.ID), zap.Error(err))
			s.release()
			continue
		}
		r.mu.Lock()
		delete(r.sessions, s.ID)
		r.mu.Unlock()
		s.markDetached()
		s.release()
		evicted++
		r.logger.Debug("evicted idle session", zap.String("sessionID", s.ID))
	}
	if evicted > 0 {
		r.metrics.SetActiveSessions(r.Len())
	}
	return evicted
}

// Run evicts idle sessions until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	if r.idle <= 0 {
		return
	}
	interval := r.idle / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.EvictIdle(ctx); n > 0 {
				r.logger.Info("evicted idle sessions", zap.Int("count", n))
			}
		}
	}
}
