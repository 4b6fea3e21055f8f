package handlers

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"aira/models"
	"aira/services/booking"
	"aira/services/media"
	"aira/services/speech"
	"aira/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VoiceService is the session surface of the dialogue orchestrator.
type VoiceService interface {
	StartSession(ctx context.Context, in models.StartSessionInput) (*models.SessionInfo, error)
	ProcessMessage(ctx context.Context, sessionID, text string) (*models.TurnResult, error)
	IsAppointmentReady(ctx context.Context, sessionID string) (bool, error)
	CollectedData(ctx context.Context, sessionID string) (map[string]string, error)
	SessionLanguage(ctx context.Context, sessionID string) (string, error)
	ResetSession(ctx context.Context, sessionID string) (string, error)
	SetLanguage(ctx context.Context, sessionID, code string) (string, error)
	BookSession(ctx context.Context, sessionID string) (*models.BookingResult, error)
	EndSession(ctx context.Context, sessionID string) (*models.SessionEnd, error)
	ActiveSessions() []models.SessionSummary
	SessionMessages(ctx context.Context, sessionID string, limit int64) ([]models.ConversationMessage, error)
}

// VoiceHandler serves call sessions. Media and Transcriber are optional;
// their endpoints answer 503 when unset.
type VoiceHandler struct {
	Sessions    VoiceService
	Media       media.Provider
	Transcriber speech.Transcriber
	Logger      *zap.Logger
}

func NewVoiceHandler(sessions VoiceService, provider media.Provider, transcriber speech.Transcriber, logger *zap.Logger) *VoiceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VoiceHandler{Sessions: sessions, Media: provider, Transcriber: transcriber, Logger: logger}
}

// IncomingCall opens a session for a caller and returns the greeting along
// with the room credentials.
func (h *VoiceHandler) IncomingCall(c *gin.Context) {
	var input models.StartSessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, "Invalid call input", &booking.ValidationError{Field: "body", Reason: err.Error()})
		return
	}
	info, err := h.Sessions.StartSession(c.Request.Context(), input)
	if err != nil {
		respondError(c, "Failed to start session", err)
		return
	}
	h.Logger.Info("call session started",
		zap.String("sessionID", info.SessionID),
		zap.String("language", info.Language))
	c.JSON(http.StatusCreated, info)
}

// Token mints a join token for one participant of one room.
func (h *VoiceHandler) Token(c *gin.Context) {
	if h.Media == nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "Media rooms are not configured", "")
		return
	}
	var req models.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, "Invalid token request", &booking.ValidationError{Field: "body", Reason: err.Error()})
		return
	}
	token, err := h.Media.JoinToken(req.ParticipantName, req.ParticipantName, req.RoomName, req.Metadata)
	if err != nil {
		respondError(c, "Failed to create token", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "url": h.Media.URL(), "roomName": req.RoomName})
}

func (h *VoiceHandler) ListRooms(c *gin.Context) {
	if h.Media == nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "Media rooms are not configured", "")
		return
	}
	rooms, err := h.Media.ListRooms(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to list rooms", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

func (h *VoiceHandler) RoomParticipants(c *gin.Context) {
	if h.Media == nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "Media rooms are not configured", "")
		return
	}
	participants, err := h.Media.ListParticipants(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, "Failed to list participants", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": c.Param("name"), "participants": participants})
}

// Message runs one text utterance through the session.
func (h *VoiceHandler) Message(c *gin.Context) {
	var body struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Text) == "" {
		utils.JSONError(c, http.StatusBadRequest, "Invalid message", "text is required")
		return
	}
	h.turn(c, c.Param("id"), body.Text)
}

// Audio transcribes an uploaded WAV file and runs the transcript as a turn.
func (h *VoiceHandler) Audio(c *gin.Context) {
	if h.Transcriber == nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "Speech recognition is not configured", "")
		return
	}
	sessionID := c.Param("id")

	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Audio file is required", err.Error())
		return
	}
	defer file.Close()

	if header.Size > speech.MaxFileSize {
		utils.JSONError(c, http.StatusRequestEntityTooLarge, "Audio file too large", "maximum size is 5MB")
		return
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), speech.AllowedExtension) {
		utils.JSONError(c, http.StatusBadRequest, "Unsupported audio format", "only .wav files are accepted")
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, speech.MaxFileSize+1))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Failed to read audio file", err.Error())
		return
	}

	lang, err := h.Sessions.SessionLanguage(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, "Failed to load session", err)
		return
	}
	text, err := h.Transcriber.Transcribe(c.Request.Context(), data, lang)
	if err != nil {
		respondError(c, "Failed to transcribe audio", err)
		return
	}
	if strings.TrimSpace(text) == "" {
		utils.JSONError(c, http.StatusUnprocessableEntity, "No speech recognized", "")
		return
	}
	h.turn(c, sessionID, text)
}

func (h *VoiceHandler) turn(c *gin.Context, sessionID, text string) {
	result, err := h.Sessions.ProcessMessage(c.Request.Context(), sessionID, text)
	if err != nil {
		respondError(c, "Failed to process message", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transcript": text, "result": result})
}

// SessionData reports the collected details and whether they are complete.
func (h *VoiceHandler) SessionData(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	data, err := h.Sessions.CollectedData(ctx, id)
	if err != nil {
		respondError(c, "Failed to load session", err)
		return
	}
	ready, err := h.Sessions.IsAppointmentReady(ctx, id)
	if err != nil {
		respondError(c, "Failed to load session", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": id, "collectedData": data, "ready": ready})
}

func (h *VoiceHandler) Book(c *gin.Context) {
	result, err := h.Sessions.BookSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to book appointment", err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *VoiceHandler) Reset(c *gin.Context) {
	greeting, err := h.Sessions.ResetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to reset session", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": c.Param("id"), "greeting": greeting})
}

func (h *VoiceHandler) SetLanguage(c *gin.Context) {
	var body struct {
		Language string `json:"language" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid language", "language is required")
		return
	}
	lang, err := h.Sessions.SetLanguage(c.Request.Context(), c.Param("id"), body.Language)
	if err != nil {
		respondError(c, "Failed to set language", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": c.Param("id"), "language": lang})
}

// EndCall closes the session, archives its transcript and drops the room.
func (h *VoiceHandler) EndCall(c *gin.Context) {
	end, err := h.Sessions.EndSession(c.Request.Context(), c.Param("id"))
	if err != nil && end == nil {
		respondError(c, "Failed to end session", err)
		return
	}
	if err != nil {
		h.Logger.Warn("session ended with archive errors",
			zap.String("sessionID", end.SessionID),
			zap.Error(err))
	}
	c.JSON(http.StatusOK, end)
}

func (h *VoiceHandler) ActiveSessions(c *gin.Context) {
	sessions := h.Sessions.ActiveSessions()
	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}

func (h *VoiceHandler) Messages(c *gin.Context) {
	limit := int64(100)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			utils.JSONError(c, http.StatusBadRequest, "Invalid query", "limit must be a positive integer")
			return
		}
		limit = n
	}
	msgs, err := h.Sessions.SessionMessages(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		respondError(c, "Failed to load messages", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": c.Param("id"), "messages": msgs})
}
