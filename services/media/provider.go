package media

import (
	"context"
	"errors"

	"aira/models"
)

var ErrRoomNotFound = errors.New("media room not found")

// Provider manages the real-time rooms callers talk in.
type Provider interface {
	RoomName(sessionID string) string
	CreateRoom(ctx context.Context, name, metadata string) (*models.RoomInfo, error)
	GetRoom(ctx context.Context, name string) (*models.RoomInfo, error)
	DeleteRoom(ctx context.Context, name string) error
	ListRooms(ctx context.Context) ([]models.RoomInfo, error)
	ListParticipants(ctx context.Context, room string) ([]models.ParticipantInfo, error)
	// JoinToken grants identity access to exactly one room.
	JoinToken(identity, name, room string, metadata map[string]string) (string, error)
	URL() string
}
