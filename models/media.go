package models

import "time"

// RoomInfo describes a live media room.
type RoomInfo struct {
	Name            string    `json:"name"`
	SID             string    `json:"sid"`
	NumParticipants uint32    `json:"numParticipants"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ParticipantInfo describes one member of a media room.
type ParticipantInfo struct {
	Identity string `json:"identity"`
	Name     string `json:"name"`
	State    string `json:"state"`
}

// TokenRequest asks for a room join token.
type TokenRequest struct {
	RoomName        string            `json:"roomName" binding:"required"`
	ParticipantName string            `json:"participantName" binding:"required"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}
