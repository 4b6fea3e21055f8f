package notification

import (
	"context"

	"aira/models"
)

// NotificationService sends outbound messages to patients.
type NotificationService interface {
	SendAppointmentReminder(ctx context.Context, appt *models.Appointment) error
}
