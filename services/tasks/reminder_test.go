package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"aira/models"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEnqueuer struct {
	tasks []*asynq.Task
	opts  [][]asynq.Option
	err   error
}

func (r *recordingEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.tasks = append(r.tasks, task)
	r.opts = append(r.opts, opts)
	return &asynq.TaskInfo{ID: "t1", Type: task.Type()}, nil
}

func optionValue(opts []asynq.Option, typ asynq.OptionType) interface{} {
	for _, o := range opts {
		if o.Type() == typ {
			return o.Value()
		}
	}
	return nil
}

func TestScheduleReminder(t *testing.T) {
	enq := &recordingEnqueuer{}
	s := NewAsynqScheduler(enq, 24, nil)
	now := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	appt := &models.Appointment{
		ID:                "a1",
		PatientName:       "Asha",
		PatientPhone:      "+919876543210",
		PreferredLanguage: "ml",
		ScheduledAt:       now.Add(72 * time.Hour),
	}
	require.NoError(t, s.ScheduleReminder(context.Background(), appt))
	require.Len(t, enq.tasks, 1)
	assert.Equal(t, TypeSendReminder, enq.tasks[0].Type())

	var p models.ReminderPayload
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &p))
	assert.Equal(t, "a1", p.AppointmentID)
	assert.Equal(t, "ml", p.Language)

	fireAt, ok := optionValue(enq.opts[0], asynq.ProcessAtOpt).(time.Time)
	require.True(t, ok)
	assert.True(t, fireAt.Equal(now.Add(48*time.Hour)))
}

func TestScheduleReminderSkipsPastFireTime(t *testing.T) {
	enq := &recordingEnqueuer{}
	s := NewAsynqScheduler(enq, 24, nil)
	now := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	appt := &models.Appointment{ID: "a1", ScheduledAt: now.Add(3 * time.Hour)}
	require.NoError(t, s.ScheduleReminder(context.Background(), appt))
	assert.Empty(t, enq.tasks)
}

func TestScheduleReminderErrors(t *testing.T) {
	now := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	appt := &models.Appointment{ID: "a1", ScheduledAt: now.Add(72 * time.Hour)}

	dup := NewAsynqScheduler(&recordingEnqueuer{err: asynq.ErrTaskIDConflict}, 24, nil)
	dup.now = func() time.Time { return now }
	assert.NoError(t, dup.ScheduleReminder(context.Background(), appt))

	down := NewAsynqScheduler(&recordingEnqueuer{err: errors.New("redis down")}, 24, nil)
	down.now = func() time.Time { return now }
	assert.Error(t, down.ScheduleReminder(context.Background(), appt))
}
