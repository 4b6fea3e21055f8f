package conversationRepo

import (
	"context"
	"errors"
	"time"

	"aira/models"
)

var ErrNotFound = errors.New("conversation not found")

// ConversationRepository persists call sessions and their messages.
type ConversationRepository interface {
	Create(ctx context.Context, conv *models.Conversation) error
	GetBySession(ctx context.Context, sessionID string) (*models.Conversation, error)
	GetByCallSID(ctx context.Context, callSID string) (*models.Conversation, error)
	GetByRoom(ctx context.Context, roomName string) (*models.Conversation, error)
	AddMessage(ctx context.Context, msg *models.ConversationMessage) error
	Messages(ctx context.Context, conversationID string, limit int64) ([]models.ConversationMessage, error)
	End(ctx context.Context, sessionID, appointmentID string, endedAt time.Time) (*models.Conversation, error)
	UpdateTranscript(ctx context.Context, sessionID, transcript string) error
	EnsureIndexes(ctx context.Context) error
}
