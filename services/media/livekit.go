// File: services/media/livekit.go
package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"aira/models"

	"github.com/livekit/protocol/auth"
	"github.com/livekit/protocol/livekit"
	"github.com/livekit/protocol/webhook"
	lksdk "github.com/livekit/server-sdk-go/v2"
	"go.uber.org/zap"
)

// roomService is the subset of the LiveKit room API in use.
type roomService interface {
	CreateRoom(ctx context.Context, req *livekit.CreateRoomRequest) (*livekit.Room, error)
	ListRooms(ctx context.Context, req *livekit.ListRoomsRequest) (*livekit.ListRoomsResponse, error)
	DeleteRoom(ctx context.Context, req *livekit.DeleteRoomRequest) (*livekit.DeleteRoomResponse, error)
	ListParticipants(ctx context.Context, req *livekit.ListParticipantsRequest) (*livekit.ListParticipantsResponse, error)
}

type LiveKitConfig struct {
	URL          string
	APIKey       string
	APISecret    string
	RoomPrefix   string
	EmptyTimeout time.Duration
	TokenTTL     time.Duration
}

type LiveKitProvider struct {
	rooms  roomService
	cfg    LiveKitConfig
	logger *zap.Logger
}

func NewLiveKitProvider(cfg LiveKitConfig, logger *zap.Logger) (*LiveKitProvider, error) {
	if cfg.URL == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, errors.New("livekit url, api key and api secret are required")
	}
	return newLiveKitProvider(lksdk.NewRoomServiceClient(cfg.URL, cfg.APIKey, cfg.APISecret), cfg, logger), nil
}

func newLiveKitProvider(rooms roomService, cfg LiveKitConfig, logger *zap.Logger) *LiveKitProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RoomPrefix == "" {
		cfg.RoomPrefix = "dental-"
	}
	if cfg.EmptyTimeout <= 0 {
		cfg.EmptyTimeout = 5 * time.Minute
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 2 * time.Hour
	}
	return &LiveKitProvider{rooms: rooms, cfg: cfg, logger: logger}
}

func (p *LiveKitProvider) URL() string { return p.cfg.URL }

func (p *LiveKitProvider) RoomName(sessionID string) string {
	return p.cfg.RoomPrefix + sessionID
}

func toRoomInfo(r *livekit.Room) *models.RoomInfo {
	return &models.RoomInfo{
		Name:            r.Name,
		SID:             r.Sid,
		NumParticipants: r.NumParticipants,
		CreatedAt:       time.Unix(r.CreationTime, 0).UTC(),
	}
}

func (p *LiveKitProvider) CreateRoom(ctx context.Context, name, metadata string) (*models.RoomInfo, error) {
	room, err := p.rooms.CreateRoom(ctx, &livekit.CreateRoomRequest{
		Name:            name,
		EmptyTimeout:    uint32(p.cfg.EmptyTimeout.Seconds()),
		MaxParticipants: 2,
		Metadata:        metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create room %s: %w", name, err)
	}
	p.logger.Info("media room created", zap.String("room", room.Name), zap.String("sid", room.Sid))
	return toRoomInfo(room), nil
}

func (p *LiveKitProvider) GetRoom(ctx context.Context, name string) (*models.RoomInfo, error) {
	resp, err := p.rooms.ListRooms(ctx, &livekit.ListRoomsRequest{Names: []string{name}})
	if err != nil {
		return nil, fmt.Errorf("failed to look up room %s: %w", name, err)
	}
	for _, r := range resp.Rooms {
		if r.Name == name {
			return toRoomInfo(r), nil
		}
	}
	return nil, ErrRoomNotFound
}

func (p *LiveKitProvider) ListRooms(ctx context.Context) ([]models.RoomInfo, error) {
	resp, err := p.rooms.ListRooms(ctx, &livekit.ListRoomsRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	out := make([]models.RoomInfo, 0, len(resp.Rooms))
	for _, r := range resp.Rooms {
		out = append(out, *toRoomInfo(r))
	}
	return out, nil
}

func (p *LiveKitProvider) DeleteRoom(ctx context.Context, name string) error {
	if _, err := p.rooms.DeleteRoom(ctx, &livekit.DeleteRoomRequest{Room: name}); err != nil {
		return fmt.Errorf("failed to delete room %s: %w", name, err)
	}
	p.logger.Info("media room deleted", zap.String("room", name))
	return nil
}

func (p *LiveKitProvider) ListParticipants(ctx context.Context, room string) ([]models.ParticipantInfo, error) {
	resp, err := p.rooms.ListParticipants(ctx, &livekit.ListParticipantsRequest{Room: room})
	if err != nil {
		return nil, fmt.Errorf("failed to list participants of %s: %w", room, err)
	}
	out := make([]models.ParticipantInfo, 0, len(resp.Participants))
	for _, pi := range resp.Participants {
		out = append(out, models.ParticipantInfo{
			Identity: pi.Identity,
			Name:     pi.Name,
			State:    pi.State.String(),
		})
	}
	return out, nil
}

func (p *LiveKitProvider) JoinToken(identity, name, room string, metadata map[string]string) (string, error) {
	if identity == "" || room == "" {
		return "", errors.New("identity and room are required")
	}
	at := auth.NewAccessToken(p.cfg.APIKey, p.cfg.APISecret).
		SetVideoGrant(&auth.VideoGrant{RoomJoin: true, Room: room}).
		SetIdentity(identity).
		SetName(name).
		SetValidFor(p.cfg.TokenTTL)
	if len(metadata) > 0 {
		b, err := json.Marshal(metadata)
		if err != nil {
			return "", err
		}
		at.SetMetadata(string(b))
	}
	token, err := at.ToJWT()
	if err != nil {
		return "", fmt.Errorf("failed to sign join token: %w", err)
	}
	return token, nil
}

// ReceiveWebhook verifies and decodes a LiveKit webhook request.
func (p *LiveKitProvider) ReceiveWebhook(r *http.Request) (*livekit.WebhookEvent, error) {
	event, err := webhook.ReceiveWebhookEvent(r, auth.NewSimpleKeyProvider(p.cfg.APIKey, p.cfg.APISecret))
	if err != nil {
		return nil, fmt.Errorf("invalid livekit webhook: %w", err)
	}
	return event, nil
}
