package cron

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"aira/config"
	appointmentRepo "aira/database/repository/appointment"
	"aira/models"
	"aira/services/notification"
	"aira/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ReminderStore is the appointment access the reminder handler needs.
type ReminderStore interface {
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	MarkReminderSent(ctx context.Context, id string, at time.Time) error
}

type ReminderHandler struct {
	store    ReminderStore
	notifier notification.NotificationService
	logger   *zap.Logger
	now      func() time.Time
}

func NewReminderHandler(store ReminderStore, notifier notification.NotificationService, logger *zap.Logger) *ReminderHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderHandler{store: store, notifier: notifier, logger: logger, now: time.Now}
}

// ProcessTask sends one reminder. Cancelled, finished, already reminded and
// rescheduled appointments are skipped without error.
func (h *ReminderHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var p models.ReminderPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		h.logger.Error("invalid reminder payload", zap.Error(err))
		return fmt.Errorf("invalid reminder payload: %v: %w", err, asynq.SkipRetry)
	}
	log := h.logger.With(zap.String("appointmentID", p.AppointmentID))

	appt, err := h.store.GetByID(ctx, p.AppointmentID)
	if errors.Is(err, appointmentRepo.ErrNotFound) {
		log.Warn("reminder for unknown appointment dropped")
		return nil
	}
	if err != nil {
		return err
	}

	switch {
	case !appt.Status.IsActive():
		log.Info("appointment no longer active, reminder skipped", zap.String("status", string(appt.Status)))
		return nil
	case appt.ReminderSentAt != nil:
		log.Debug("reminder already sent")
		return nil
	case p.ScheduledAt != "" && p.ScheduledAt != appt.ScheduledAt.UTC().Format(time.RFC3339):
		log.Info("appointment was rescheduled, stale reminder skipped")
		return nil
	case !appt.ScheduledAt.After(h.now()):
		log.Info("appointment already started, reminder skipped")
		return nil
	}

	if err := h.notifier.SendAppointmentReminder(ctx, appt); err != nil {
		log.Error("failed to send reminder", zap.Error(err))
		return err
	}
	if err := h.store.MarkReminderSent(ctx, appt.ID, h.now().UTC()); err != nil {
		log.Warn("reminder sent but not recorded", zap.Error(err))
	}
	log.Info("reminder delivered")
	return nil
}

func redisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	}
}

// NewReminderClient returns the asynq client used to enqueue reminders.
func NewReminderClient() *asynq.Client {
	return asynq.NewClient(redisOpt())
}

// InitReminderWorker runs the reminder worker in the background. The
// returned server must be shut down by the caller.
func InitReminderWorker(ctx context.Context, handler *ReminderHandler, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		redisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.Handle(tasks.TypeSendReminder, handler)

	go monitorRedisConnection(ctx, logger)

	go func() {
		logger.Info("starting reminder worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Error("reminder worker failed to start",
				zap.Int("attempt", attempts),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(err))
			if attempts == maxAttempts {
				logger.Fatal("reminder worker: max retry attempts reached")
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

// monitorRedisConnection pings the queue database until ctx is done.
func monitorRedisConnection(ctx context.Context, logger *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	})
	defer client.Close()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil && ctx.Err() == nil {
				logger.Warn("reminder queue redis unreachable", zap.Error(err))
			}
		}
	}
}
