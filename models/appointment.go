// File: models/appointment.go
package models

import "time"

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
	StatusNoShow    AppointmentStatus = "no_show"
)

// ActiveStatuses occupy scheduling capacity.
var ActiveStatuses = []AppointmentStatus{StatusPending, StatusConfirmed}

func (s AppointmentStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

// Appointment is a booked chair slot at the clinic.
type Appointment struct {
	ID                string            `bson:"id" json:"id"`
	PatientName       string            `bson:"patientName" json:"patientName"`
	PatientPhone      string            `bson:"patientPhone" json:"patientPhone"`
	PatientEmail      string            `bson:"patientEmail,omitempty" json:"patientEmail,omitempty"`
	AppointmentDate   string            `bson:"appointmentDate" json:"appointmentDate"` // "YYYY-MM-DD"
	AppointmentTime   string            `bson:"appointmentTime" json:"appointmentTime"` // "HH:MM", 24h
	ScheduledAt       time.Time         `bson:"scheduledAt" json:"scheduledAt"`         // date+time in clinic zone, stored UTC
	DurationMinutes   int               `bson:"durationMinutes" json:"durationMinutes"`
	Status            AppointmentStatus `bson:"status" json:"status"`
	PreferredLanguage string            `bson:"preferredLanguage" json:"preferredLanguage"`
	Reason            string            `bson:"reason,omitempty" json:"reason,omitempty"`
	Notes             string            `bson:"notes,omitempty" json:"notes,omitempty"`
	CallSID           string            `bson:"callSid,omitempty" json:"callSid,omitempty"`
	SessionID         string            `bson:"sessionId,omitempty" json:"sessionId,omitempty"`
	CreatedAt         time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time         `bson:"updatedAt" json:"updatedAt"`
	ConfirmedAt       *time.Time        `bson:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`
	CancelledAt       *time.Time        `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	ReminderSentAt    *time.Time        `bson:"reminderSentAt,omitempty" json:"reminderSentAt,omitempty"`
}

// AppointmentInput is the payload used to book an appointment.
type AppointmentInput struct {
	PatientName       string `json:"patientName" binding:"required"`
	PatientPhone      string `json:"patientPhone" binding:"required"`
	PatientEmail      string `json:"patientEmail,omitempty"`
	AppointmentDate   string `json:"appointmentDate" binding:"required"`
	AppointmentTime   string `json:"appointmentTime" binding:"required"`
	Reason            string `json:"reason,omitempty"`
	Notes             string `json:"notes,omitempty"`
	PreferredLanguage string `json:"preferredLanguage,omitempty"`
	CallSID           string `json:"callSid,omitempty"`
	SessionID         string `json:"-"`
}

// AppointmentUpdate carries the optional fields of a partial update.
type AppointmentUpdate struct {
	AppointmentDate *string            `json:"appointmentDate,omitempty"`
	AppointmentTime *string            `json:"appointmentTime,omitempty"`
	Reason          *string            `json:"reason,omitempty"`
	Notes           *string            `json:"notes,omitempty"`
	Status          *AppointmentStatus `json:"status,omitempty"`
}

// AppointmentFilter narrows appointment listings.
type AppointmentFilter struct {
	Status   AppointmentStatus
	Phone    string
	DateFrom string // inclusive, "YYYY-MM-DD"
	DateTo   string // inclusive, "YYYY-MM-DD"
	Skip     int64
	Limit    int64
}

// AppointmentStats counts appointments per status.
type AppointmentStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Confirmed int64 `json:"confirmed"`
	Cancelled int64 `json:"cancelled"`
	Completed int64 `json:"completed"`
	NoShow    int64 `json:"noShow"`
}
