// File: models/conversation.go
package models

import "time"

// Conversation archives one caller session.
type Conversation struct {
	ID                 string     `bson:"id" json:"id"`
	SessionID          string     `bson:"sessionId" json:"sessionId"`
	CallerPhone        string     `bson:"callerPhone" json:"callerPhone"`
	Language           string     `bson:"language" json:"language"`
	RoomName           string     `bson:"roomName,omitempty" json:"roomName,omitempty"`
	CallSID            string     `bson:"callSid,omitempty" json:"callSid,omitempty"`
	Transcript         string     `bson:"transcript,omitempty" json:"transcript,omitempty"`
	StartedAt          time.Time  `bson:"startedAt" json:"startedAt"`
	EndedAt            *time.Time `bson:"endedAt,omitempty" json:"endedAt,omitempty"`
	DurationSeconds    int        `bson:"durationSeconds,omitempty" json:"durationSeconds,omitempty"`
	AppointmentID      string     `bson:"appointmentId,omitempty" json:"appointmentId,omitempty"`
	AppointmentCreated bool       `bson:"appointmentCreated" json:"appointmentCreated"`
	CreatedAt          time.Time  `bson:"createdAt" json:"createdAt"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ConversationMessage is one archived utterance.
type ConversationMessage struct {
	ID              string    `bson:"id" json:"id"`
	ConversationID  string    `bson:"conversationId" json:"conversationId"`
	Role            string    `bson:"role" json:"role"`
	Content         string    `bson:"content" json:"content"`
	Language        string    `bson:"language,omitempty" json:"language,omitempty"`
	Timestamp       time.Time `bson:"timestamp" json:"timestamp"`
	AudioDurationMs int       `bson:"audioDurationMs,omitempty" json:"audioDurationMs,omitempty"`
}
