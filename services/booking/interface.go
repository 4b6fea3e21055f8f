package booking

import (
	"context"

	"aira/models"
)

// AppointmentService books and manages clinic appointments.
type AppointmentService interface {
	CreateAppointment(ctx context.Context, in models.AppointmentInput) (*models.Appointment, error)
	GetAppointment(ctx context.Context, id string) (*models.Appointment, error)
	ListAppointments(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error)
	UpdateAppointment(ctx context.Context, id string, upd models.AppointmentUpdate) (*models.Appointment, error)
	CancelAppointment(ctx context.Context, id, reason string) (*models.Appointment, error)
	ConfirmAppointment(ctx context.Context, id string) (*models.Appointment, error)
	Stats(ctx context.Context) (*models.AppointmentStats, error)
	CheckAvailability(ctx context.Context, date, hhmm string) (bool, error)
	GetAvailableSlots(ctx context.Context, date string, slotDuration int) ([]string, error)
}

// ReminderScheduler queues the pre-appointment reminder.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, appt *models.Appointment) error
}
