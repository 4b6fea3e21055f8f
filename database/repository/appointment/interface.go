package appointmentRepo

import (
	"context"
	"errors"
	"time"

	"aira/models"

	"go.mongodb.org/mongo-driver/bson"
)

// ErrNotFound is returned when no appointment matches the given id.
var ErrNotFound = errors.New("appointment not found")

// AppointmentRepository defines methods for appointment data access.
type AppointmentRepository interface {
	// Create inserts a new appointment document.
	Create(ctx context.Context, appt *models.Appointment) error
	// GetByID retrieves an appointment by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	// List returns appointments matching the filter, newest first.
	List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error)
	// Update applies a $set document and returns the updated appointment.
	Update(ctx context.Context, id string, fields bson.M) (*models.Appointment, error)
	// FindActiveInWindow returns pending or confirmed appointments with start in [start, end).
	FindActiveInWindow(ctx context.Context, start, end time.Time) ([]models.Appointment, error)
	// CountByStatus groups all appointments by status.
	CountByStatus(ctx context.Context) (map[models.AppointmentStatus]int64, error)
	// MarkReminderSent records that a reminder went out.
	MarkReminderSent(ctx context.Context, id string, at time.Time) error
	// EnsureIndexes creates the collection indexes.
	EnsureIndexes(ctx context.Context) error
}
