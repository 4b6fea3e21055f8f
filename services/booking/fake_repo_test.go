package booking

import (
	"context"
	"errors"
	"sync"
	"time"

	appointmentRepo "aira/database/repository/appointment"
	"aira/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// memRepo is an in-memory AppointmentRepository.
type memRepo struct {
	mu          sync.Mutex
	appts       map[string]*models.Appointment
	windowCalls int
	failWith    error
}

func newMemRepo() *memRepo {
	return &memRepo{appts: make(map[string]*models.Appointment)}
}

func (r *memRepo) seed(date, hhmm string, status models.AppointmentStatus, loc *time.Location) *models.Appointment {
	at, _ := time.ParseInLocation("2006-01-02 15:04", date+" "+hhmm, loc)
	a := &models.Appointment{
		ID:              uuid.NewString(),
		PatientName:     "Seeded",
		PatientPhone:    "+919876543210",
		AppointmentDate: date,
		AppointmentTime: hhmm,
		ScheduledAt:     at.UTC(),
		Status:          status,
	}
	r.mu.Lock()
	r.appts[a.ID] = a
	r.mu.Unlock()
	return a
}

func (r *memRepo) Create(_ context.Context, appt *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	appt.ID = uuid.NewString()
	appt.CreatedAt = time.Now().UTC()
	appt.UpdatedAt = appt.CreatedAt
	cp := *appt
	r.appts[appt.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appts[id]
	if !ok {
		return nil, appointmentRepo.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memRepo) List(_ context.Context, f models.AppointmentFilter) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Appointment
	for _, a := range r.appts {
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.Phone != "" && a.PatientPhone != f.Phone {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (r *memRepo) Update(_ context.Context, id string, fields bson.M) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appts[id]
	if !ok {
		return nil, appointmentRepo.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "status":
			a.Status = v.(models.AppointmentStatus)
		case "notes":
			a.Notes = v.(string)
		case "reason":
			a.Reason = v.(string)
		case "appointmentDate":
			a.AppointmentDate = v.(string)
		case "appointmentTime":
			a.AppointmentTime = v.(string)
		case "scheduledAt":
			a.ScheduledAt = v.(time.Time)
		case "confirmedAt":
			t := v.(time.Time)
			a.ConfirmedAt = &t
		case "cancelledAt":
			t := v.(time.Time)
			a.CancelledAt = &t
		case "reminderSentAt":
			a.ReminderSentAt = nil
		}
	}
	cp := *a
	return &cp, nil
}

func (r *memRepo) FindActiveInWindow(_ context.Context, start, end time.Time) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.windowCalls++
	if r.failWith != nil {
		return nil, r.failWith
	}
	var out []models.Appointment
	for _, a := range r.appts {
		if a.Status.IsActive() && !a.ScheduledAt.Before(start) && a.ScheduledAt.Before(end) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *memRepo) CountByStatus(_ context.Context) (map[models.AppointmentStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[models.AppointmentStatus]int64)
	for _, a := range r.appts {
		counts[a.Status]++
	}
	return counts, nil
}

func (r *memRepo) MarkReminderSent(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appts[id]
	if !ok {
		return appointmentRepo.ErrNotFound
	}
	a.ReminderSentAt = &at
	return nil
}

func (r *memRepo) EnsureIndexes(context.Context) error { return nil }

var errStorage = errors.New("storage unavailable")

type recordingReminders struct {
	mu    sync.Mutex
	appts []string
}

func (r *recordingReminders) ScheduleReminder(_ context.Context, appt *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appts = append(r.appts, appt.ID)
	return nil
}
