// File: models/dialogue.go
package models

import "time"

type ConversationStage string

const (
	StageGreeting       ConversationStage = "greeting"
	StageCollectingInfo ConversationStage = "collecting_info"
	StageConfirming     ConversationStage = "confirming"
	StageClosing        ConversationStage = "closing"
)

// Rank orders stages so callers can assert forward-only movement.
func (s ConversationStage) Rank() int {
	switch s {
	case StageGreeting:
		return 0
	case StageCollectingInfo:
		return 1
	case StageConfirming:
		return 2
	case StageClosing:
		return 3
	}
	return -1
}

// Entity and collected-data keys.
const (
	FieldPatientName     = "patient_name"
	FieldPhone           = "phone"
	FieldEmail           = "email"
	FieldAppointmentDate = "appointment_date"
	FieldAppointmentTime = "appointment_time"
	FieldReason          = "reason"
)

// DefaultRequiredFields is the default ask order for the booking fields.
var DefaultRequiredFields = []string{
	FieldPatientName,
	FieldPhone,
	FieldAppointmentDate,
	FieldAppointmentTime,
}

// Intents reported by the language model.
const (
	IntentBook       = "book_appointment"
	IntentCancel     = "cancel_appointment"
	IntentReschedule = "reschedule_appointment"
	IntentInquiry    = "inquiry"
	IntentEmergency  = "emergency"
	IntentGreeting   = "greeting"
	IntentOther      = "other"
	IntentError      = "error"
)

// Entities holds extracted values; an absent key means "not mentioned".
type Entities map[string]string

// ChatMessage is one turn of model history.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationState is the per-session dialogue state.
type ConversationState struct {
	Stage         ConversationStage `json:"stage"`
	CollectedData map[string]string `json:"collectedData"`
	Language      string            `json:"language"`
	History       []ChatMessage     `json:"history,omitempty"`
}

// TurnResult is returned for every processed utterance.
type TurnResult struct {
	Response      string            `json:"response"`
	Intent        string            `json:"intent"`
	Entities      Entities          `json:"entities"`
	CollectedData map[string]string `json:"collectedData"`
	Stage         ConversationStage `json:"stage"`
	Language      string            `json:"language"`
}

// SessionSnapshot is the externally persisted copy of a live session.
type SessionSnapshot struct {
	SessionID        string            `json:"sessionId"`
	ConversationID   string            `json:"conversationId"`
	CallerPhone      string            `json:"callerPhone"`
	CallSID          string            `json:"callSid,omitempty"`
	RoomName         string            `json:"roomName,omitempty"`
	LanguageExplicit bool              `json:"languageExplicit"`
	AppointmentID    string            `json:"appointmentId,omitempty"`
	State            ConversationState `json:"state"`
	Turns            int               `json:"turns"`
	LastActive       time.Time         `json:"lastActive"`
}

// SessionSummary is the public listing form of an active session.
type SessionSummary struct {
	SessionID      string            `json:"sessionId"`
	ConversationID string            `json:"conversationId"`
	Language       string            `json:"language"`
	Stage          ConversationStage `json:"stage"`
	LastActive     time.Time         `json:"lastActive"`
}

// StartSessionInput describes an incoming call or web session.
type StartSessionInput struct {
	CallerPhone string `json:"callerPhone" binding:"required"`
	CallerName  string `json:"callerName,omitempty"`
	Language    string `json:"language,omitempty"`
	CallSID     string `json:"callSid,omitempty"`
}

// SessionInfo is returned when a session starts.
type SessionInfo struct {
	SessionID      string `json:"sessionId"`
	ConversationID string `json:"conversationId"`
	Language       string `json:"language"`
	Greeting       string `json:"greeting"`
	RoomName       string `json:"roomName,omitempty"`
	Token          string `json:"token,omitempty"`
	MediaURL       string `json:"mediaUrl,omitempty"`
}

// BookingResult is returned when a session's collected details are booked.
type BookingResult struct {
	Appointment *Appointment `json:"appointment"`
	Message     string       `json:"message"`
}

// SessionEnd summarises a finished session.
type SessionEnd struct {
	SessionID       string `json:"sessionId"`
	Message         string `json:"message"`
	AppointmentID   string `json:"appointmentId,omitempty"`
	DurationSeconds int    `json:"durationSeconds"`
}
