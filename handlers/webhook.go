package handlers

import (
	"context"
	"errors"
	"net/http"

	"aira/metrics"
	"aira/models"
	"aira/services/dialogue"
	"aira/services/telephony"
	"aira/utils"

	"github.com/gin-gonic/gin"
	"github.com/livekit/protocol/livekit"
	"go.uber.org/zap"
)

const roomFinishedEvent = "room_finished"

// SessionCloser ends sessions identified by their transport handles.
type SessionCloser interface {
	EndSessionByRoom(ctx context.Context, room string) (*models.SessionEnd, error)
	EndSessionByCallSID(ctx context.Context, callSID string) (*models.SessionEnd, error)
}

// WebhookReceiver verifies and decodes a media provider callback.
type WebhookReceiver interface {
	ReceiveWebhook(r *http.Request) (*livekit.WebhookEvent, error)
}

// WebhookHandler accepts media room and telephony status callbacks.
type WebhookHandler struct {
	Sessions SessionCloser
	LiveKit  WebhookReceiver
	Twilio   *telephony.TwilioVerifier
	Metrics  *metrics.AssistantMetrics
	Logger   *zap.Logger
}

func NewWebhookHandler(sessions SessionCloser, lk WebhookReceiver, twilio *telephony.TwilioVerifier, m *metrics.AssistantMetrics, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{Sessions: sessions, LiveKit: lk, Twilio: twilio, Metrics: m, Logger: logger}
}

func (h *WebhookHandler) LiveKitEvent(c *gin.Context) {
	if h.LiveKit == nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "Media rooms are not configured", "")
		return
	}
	event, err := h.LiveKit.ReceiveWebhook(c.Request)
	if err != nil {
		utils.JSONError(c, http.StatusUnauthorized, "Invalid webhook", err.Error())
		return
	}
	h.Metrics.ObserveWebhook("livekit", event.GetEvent())

	room := event.GetRoom().GetName()
	h.Logger.Info("livekit webhook",
		zap.String("event", event.GetEvent()),
		zap.String("room", room))

	if event.GetEvent() == roomFinishedEvent && room != "" {
		h.endSession(c.Request.Context(), "room", room, func(ctx context.Context) (*models.SessionEnd, error) {
			return h.Sessions.EndSessionByRoom(ctx, room)
		})
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// TwilioStatus handles call status callbacks; a terminal status ends the
// session tied to the CallSid.
func (h *WebhookHandler) TwilioStatus(c *gin.Context) {
	if h.Twilio == nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "Telephony is not configured", "")
		return
	}
	status, err := h.Twilio.Parse(c.Request)
	if err != nil {
		if errors.Is(err, telephony.ErrInvalidSignature) {
			utils.JSONError(c, http.StatusForbidden, "Invalid signature", "")
			return
		}
		utils.JSONError(c, http.StatusBadRequest, "Invalid callback", err.Error())
		return
	}
	h.Metrics.ObserveWebhook("twilio", status.CallStatus)
	h.Logger.Info("twilio call status",
		zap.String("callSid", status.CallSID),
		zap.String("status", status.CallStatus),
		zap.String("duration", status.Duration))

	if status.Ended() && status.CallSID != "" {
		h.endSession(c.Request.Context(), "callSid", status.CallSID, func(ctx context.Context) (*models.SessionEnd, error) {
			return h.Sessions.EndSessionByCallSID(ctx, status.CallSID)
		})
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// endSession acknowledges the callback even when no session matches, so
// the provider does not retry.
func (h *WebhookHandler) endSession(ctx context.Context, key, value string, end func(context.Context) (*models.SessionEnd, error)) {
	res, err := end(ctx)
	switch {
	case errors.Is(err, dialogue.ErrSessionNotFound):
		h.Logger.Debug("no session for webhook", zap.String(key, value))
	case err != nil && res == nil:
		h.Logger.Error("failed to end session from webhook", zap.String(key, value), zap.Error(err))
	default:
		if err != nil {
			h.Logger.Warn("session ended with archive errors", zap.String(key, value), zap.Error(err))
		}
		h.Logger.Info("session ended from webhook",
			zap.String(key, value),
			zap.String("sessionID", res.SessionID),
			zap.Int("durationSeconds", res.DurationSeconds))
	}
}
