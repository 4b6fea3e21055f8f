package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	appointmentRepo "aira/database/repository/appointment"
	patientRepo "aira/database/repository/patient"
	"aira/metrics"
	"aira/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// DefaultAppointmentService implements AppointmentService.
// Patients, Reminders and Metrics are optional.
type DefaultAppointmentService struct {
	Repo            appointmentRepo.AppointmentRepository
	Patients        patientRepo.PatientRepository
	Engine          *AvailabilityEngine
	Locker          Locker
	Reminders       ReminderScheduler
	Metrics         *metrics.AssistantMetrics
	Logger          *zap.Logger
	DefaultLanguage string
	Clock           func() time.Time
}

// NewDefaultAppointmentService fills in the optional collaborators.
func NewDefaultAppointmentService(s DefaultAppointmentService) *DefaultAppointmentService {
	if s.Locker == nil {
		s.Locker = NewLocalDateLocker()
	}
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}
	if s.DefaultLanguage == "" {
		s.DefaultLanguage = "en"
	}
	return &s
}

func (s *DefaultAppointmentService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *DefaultAppointmentService) CreateAppointment(ctx context.Context, in models.AppointmentInput) (*models.Appointment, error) {
	at, err := s.validateInput(&in)
	if err != nil {
		s.Metrics.RecordBooking("invalid")
		return nil, err
	}

	lang := in.PreferredLanguage
	if lang == "" {
		lang = s.DefaultLanguage
	}
	appt := &models.Appointment{
		PatientName:       in.PatientName,
		PatientPhone:      in.PatientPhone,
		PatientEmail:      in.PatientEmail,
		AppointmentDate:   in.AppointmentDate,
		AppointmentTime:   in.AppointmentTime,
		ScheduledAt:       at.UTC(),
		DurationMinutes:   s.Engine.Hours().SlotMinutes,
		Status:            models.StatusPending,
		PreferredLanguage: lang,
		Reason:            in.Reason,
		Notes:             in.Notes,
		CallSID:           in.CallSID,
		SessionID:         in.SessionID,
	}

	err = s.Locker.WithDateLock(ctx, in.AppointmentDate, func(ctx context.Context) error {
		ok, err := s.Engine.availableAt(ctx, at, "")
		if err != nil {
			return err
		}
		if !ok {
			return ErrSlotUnavailable
		}
		return s.Repo.Create(ctx, appt)
	})
	if err != nil {
		s.Metrics.RecordBooking(bookingOutcome(err))
		if !errors.Is(err, ErrSlotUnavailable) {
			s.Logger.Error("failed to create appointment",
				zap.String("date", in.AppointmentDate),
				zap.String("time", in.AppointmentTime),
				zap.Error(err))
		}
		return nil, err
	}
	s.Metrics.RecordBooking("created")
	s.Logger.Info("appointment created",
		zap.String("appointmentID", appt.ID),
		zap.String("date", appt.AppointmentDate),
		zap.String("time", appt.AppointmentTime))

	s.afterCreate(ctx, appt)
	return appt, nil
}

// afterCreate runs the best-effort follow-ups of a successful booking.
func (s *DefaultAppointmentService) afterCreate(ctx context.Context, appt *models.Appointment) {
	if s.Patients != nil {
		err := s.Patients.UpdateInfo(ctx, appt.PatientPhone, appt.PatientName, appt.PatientEmail, appt.PreferredLanguage)
		if errors.Is(err, patientRepo.ErrNotFound) {
			_, err = s.Patients.GetOrCreate(ctx, appt.PatientPhone, appt.PatientName, appt.PreferredLanguage)
		}
		if err == nil {
			err = s.Patients.IncrementAppointments(ctx, appt.PatientPhone)
		}
		if err != nil {
			s.Logger.Warn("failed to update patient record", zap.String("appointmentID", appt.ID), zap.Error(err))
		}
	}
	if s.Reminders != nil {
		if err := s.Reminders.ScheduleReminder(ctx, appt); err != nil {
			s.Logger.Warn("failed to schedule reminder", zap.String("appointmentID", appt.ID), zap.Error(err))
		}
	}
}

func bookingOutcome(err error) string {
	switch {
	case errors.Is(err, ErrSlotUnavailable):
		return "conflict"
	case errors.Is(err, ErrLockNotAcquired):
		return "lock_timeout"
	}
	return "error"
}

func (s *DefaultAppointmentService) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	appt, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return appt, nil
}

func (s *DefaultAppointmentService) ListAppointments(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, newValidationError("status", fmt.Sprintf("unknown status %q", filter.Status))
	}
	if filter.Phone != "" {
		filter.Phone = NormalizePhone(filter.Phone)
	}
	appts, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appts, nil
}

func (s *DefaultAppointmentService) Stats(ctx context.Context) (*models.AppointmentStats, error) {
	counts, err := s.Repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count appointments: %w", err)
	}
	stats := &models.AppointmentStats{
		Pending:   counts[models.StatusPending],
		Confirmed: counts[models.StatusConfirmed],
		Cancelled: counts[models.StatusCancelled],
		Completed: counts[models.StatusCompleted],
		NoShow:    counts[models.StatusNoShow],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

func (s *DefaultAppointmentService) CheckAvailability(ctx context.Context, date, hhmm string) (bool, error) {
	return s.Engine.CheckAvailability(ctx, date, hhmm)
}

func (s *DefaultAppointmentService) GetAvailableSlots(ctx context.Context, date string, slotDuration int) ([]string, error) {
	return s.Engine.GetAvailableSlots(ctx, date, slotDuration)
}

func mapRepoError(err error) error {
	if errors.Is(err, appointmentRepo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// allowedTransitions lists the statuses reachable from each status.
var allowedTransitions = map[models.AppointmentStatus][]models.AppointmentStatus{
	models.StatusPending:   {models.StatusConfirmed, models.StatusCancelled, models.StatusCompleted, models.StatusNoShow},
	models.StatusConfirmed: {models.StatusCancelled, models.StatusCompleted, models.StatusNoShow},
}

func canTransition(from, to models.AppointmentStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s *DefaultAppointmentService) statusFields(to models.AppointmentStatus) bson.M {
	now := s.now().UTC()
	fields := bson.M{"status": to}
	switch to {
	case models.StatusConfirmed:
		fields["confirmedAt"] = now
	case models.StatusCancelled:
		fields["cancelledAt"] = now
	}
	return fields
}

func (s *DefaultAppointmentService) ConfirmAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	appt, err := s.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status == models.StatusConfirmed {
		return appt, nil
	}
	if !canTransition(appt.Status, models.StatusConfirmed) {
		return nil, fmt.Errorf("confirm %s appointment: %w", appt.Status, ErrInvalidTransition)
	}
	updated, err := s.Repo.Update(ctx, id, s.statusFields(models.StatusConfirmed))
	if err != nil {
		return nil, mapRepoError(err)
	}
	return updated, nil
}

func (s *DefaultAppointmentService) CancelAppointment(ctx context.Context, id, reason string) (*models.Appointment, error) {
	appt, err := s.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(appt.Status, models.StatusCancelled) {
		return nil, fmt.Errorf("cancel %s appointment: %w", appt.Status, ErrInvalidTransition)
	}
	fields := s.statusFields(models.StatusCancelled)
	if reason != "" {
		fields["notes"] = joinNotes(appt.Notes, "Cancelled: "+reason)
	}
	updated, err := s.Repo.Update(ctx, id, fields)
	if err != nil {
		return nil, mapRepoError(err)
	}
	s.Logger.Info("appointment cancelled", zap.String("appointmentID", id))
	return updated, nil
}

func joinNotes(existing, add string) string {
	if existing == "" {
		return add
	}
	return existing + "\n" + add
}

// UpdateAppointment applies a partial update. A new date or time is
// re-checked under the date lock, ignoring the appointment itself.
func (s *DefaultAppointmentService) UpdateAppointment(ctx context.Context, id string, upd models.AppointmentUpdate) (*models.Appointment, error) {
	appt, err := s.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := bson.M{}
	if upd.Reason != nil {
		fields["reason"] = *upd.Reason
	}
	if upd.Notes != nil {
		fields["notes"] = *upd.Notes
	}
	if upd.Status != nil && *upd.Status != appt.Status {
		if !upd.Status.Valid() {
			return nil, newValidationError("status", fmt.Sprintf("unknown status %q", *upd.Status))
		}
		if !canTransition(appt.Status, *upd.Status) {
			return nil, fmt.Errorf("move %s appointment to %s: %w", appt.Status, *upd.Status, ErrInvalidTransition)
		}
		for k, v := range s.statusFields(*upd.Status) {
			fields[k] = v
		}
	}

	if upd.AppointmentDate == nil && upd.AppointmentTime == nil {
		if len(fields) == 0 {
			return appt, nil
		}
		updated, err := s.Repo.Update(ctx, id, fields)
		if err != nil {
			return nil, mapRepoError(err)
		}
		return updated, nil
	}

	if !appt.Status.IsActive() {
		return nil, fmt.Errorf("reschedule %s appointment: %w", appt.Status, ErrInvalidTransition)
	}
	date, hhmm := appt.AppointmentDate, appt.AppointmentTime
	if upd.AppointmentDate != nil {
		date = *upd.AppointmentDate
	}
	if upd.AppointmentTime != nil {
		if hhmm, err = normalizeTime(*upd.AppointmentTime); err != nil {
			return nil, err
		}
	}
	at, err := s.validateSlot(date, hhmm)
	if err != nil {
		return nil, err
	}
	fields["appointmentDate"] = date
	fields["appointmentTime"] = hhmm
	fields["scheduledAt"] = at.UTC()
	fields["reminderSentAt"] = nil

	var updated *models.Appointment
	err = s.Locker.WithDateLock(ctx, date, func(ctx context.Context) error {
		ok, err := s.Engine.availableAt(ctx, at, id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrSlotUnavailable
		}
		updated, err = s.Repo.Update(ctx, id, fields)
		return mapRepoError(err)
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Info("appointment rescheduled",
		zap.String("appointmentID", id),
		zap.String("date", date),
		zap.String("time", hhmm))

	if s.Reminders != nil && updated.Status.IsActive() {
		if err := s.Reminders.ScheduleReminder(ctx, updated); err != nil {
			s.Logger.Warn("failed to schedule reminder", zap.String("appointmentID", id), zap.Error(err))
		}
	}
	return updated, nil
}
