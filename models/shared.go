package models

// ReminderPayload is the asynq task body for an appointment reminder.
type ReminderPayload struct {
	AppointmentID string `json:"appointmentId"`
	PatientName   string `json:"patientName"`
	PatientPhone  string `json:"patientPhone"`
	Language      string `json:"language"`
	ScheduledAt   string `json:"scheduledAt"` // RFC3339; a mismatch marks the task stale
	FireDate      string `json:"fireDate"`    // RFC3339, informational
}
