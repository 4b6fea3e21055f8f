package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"aira/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeSendReminder = "reminder:send"

func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.MaxRetry(3),
		// One task per appointment start; a reschedule gets a fresh id.
		asynq.TaskID(fmt.Sprintf("reminder:%s:%d", payload.AppointmentID, fireAt.Unix())),
	}

	return task, opts, nil
}

// Enqueuer is the part of *asynq.Client the scheduler needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqScheduler queues a reminder a fixed lead time before each appointment.
type AsynqScheduler struct {
	client Enqueuer
	lead   time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func NewAsynqScheduler(client Enqueuer, leadHours int, logger *zap.Logger) *AsynqScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if leadHours <= 0 {
		leadHours = 24
	}
	return &AsynqScheduler{
		client: client,
		lead:   time.Duration(leadHours) * time.Hour,
		logger: logger,
		now:    time.Now,
	}
}

// ScheduleReminder enqueues the reminder. Appointments whose reminder time
// has already passed are skipped.
func (s *AsynqScheduler) ScheduleReminder(ctx context.Context, appt *models.Appointment) error {
	fireAt := appt.ScheduledAt.Add(-s.lead)
	if !fireAt.After(s.now()) {
		s.logger.Debug("reminder time already passed, skipping", zap.String("appointmentID", appt.ID))
		return nil
	}

	task, opts, err := NewReminderTask(models.ReminderPayload{
		AppointmentID: appt.ID,
		PatientName:   appt.PatientName,
		PatientPhone:  appt.PatientPhone,
		Language:      appt.PreferredLanguage,
		ScheduledAt:   appt.ScheduledAt.UTC().Format(time.RFC3339),
		FireDate:      fireAt.UTC().Format(time.RFC3339),
	}, fireAt)
	if err != nil {
		return err
	}

	info, err := s.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to enqueue reminder for %s: %w", appt.ID, err)
	}
	s.logger.Info("reminder scheduled",
		zap.String("appointmentID", appt.ID),
		zap.String("taskID", info.ID),
		zap.Time("fireAt", fireAt))
	return nil
}
