package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"aira/config"
	"aira/services/dialogue"
	"aira/services/speech"
	"aira/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func voiceRouter(h *VoiceHandler) *gin.Engine {
	r := gin.New()
	r.POST("/voice/incoming-call", h.IncomingCall)
	r.POST("/voice/token", h.Token)
	r.GET("/voice/sessions", h.ActiveSessions)
	r.GET("/voice/rooms", h.ListRooms)
	s := r.Group("/voice/sessions/:id")
	s.POST("/message", h.Message)
	s.POST("/audio", h.Audio)
	s.GET("/data", h.SessionData)
	s.POST("/book", h.Book)
	s.POST("/reset", h.Reset)
	s.PUT("/language", h.SetLanguage)
	s.POST("/end", h.EndCall)
	s.GET("/messages", h.Messages)
	return r
}

func audioRequest(path, filename string, data []byte) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("audio", filename)
	_, _ = part.Write(data)
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestIncomingCall(t *testing.T) {
	r := voiceRouter(NewVoiceHandler(newFakeVoice(), nil, nil, nil))

	w := do(r, http.MethodPost, "/voice/incoming-call", `{"callerPhone":"+919876543210","callSid":"CA1"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"sessionId":"s1"`)
	assert.Contains(t, w.Body.String(), `"roomName":"dental-s1"`)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/voice/incoming-call", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/voice/incoming-call", `{"callerPhone":"12"}`).Code)
}

func TestMessageTurn(t *testing.T) {
	voice := newFakeVoice()
	r := voiceRouter(NewVoiceHandler(voice, nil, nil, nil))

	w := do(r, http.MethodPost, "/voice/sessions/s1/message", `{"text":"I need a cleaning"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Transcript string `json:"transcript"`
		Result     struct {
			Response string `json:"response"`
			Stage    string `json:"stage"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "echo: I need a cleaning", body.Result.Response)
	assert.Equal(t, "collecting_info", body.Result.Stage)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/voice/sessions/s1/message", `{"text":"  "}`).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/voice/sessions/zz/message", `{"text":"hi"}`).Code)

	voice.turnErr = fmt.Errorf("%w: waiting for session s1", dialogue.ErrTurnTimeout)
	assert.Equal(t, http.StatusGatewayTimeout, do(r, http.MethodPost, "/voice/sessions/s1/message", `{"text":"hi"}`).Code)
}

func TestAudioTurn(t *testing.T) {
	voice := newFakeVoice()
	voice.language = "ml"
	stt := &fakeTranscriber{text: "നാളെ രാവിലെ"}
	r := voiceRouter(NewVoiceHandler(voice, nil, stt, nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, audioRequest("/voice/sessions/s1/audio", "turn.wav", []byte("RIFF....WAVE")))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ml", stt.lang)
	assert.Equal(t, []string{"നാളെ രാവിലെ"}, voice.texts)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, audioRequest("/voice/sessions/s1/audio", "turn.mp3", []byte("ID3")))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	stt.err = speech.ErrAudioTooLong
	w = httptest.NewRecorder()
	r.ServeHTTP(w, audioRequest("/voice/sessions/s1/audio", "turn.wav", []byte("RIFF")))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	stt.err, stt.text = nil, " "
	w = httptest.NewRecorder()
	r.ServeHTTP(w, audioRequest("/voice/sessions/s1/audio", "turn.wav", []byte("RIFF")))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	noSTT := voiceRouter(NewVoiceHandler(voice, nil, nil, nil))
	w = httptest.NewRecorder()
	noSTT.ServeHTTP(w, audioRequest("/voice/sessions/s1/audio", "turn.wav", []byte("RIFF")))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSessionOperations(t *testing.T) {
	voice := newFakeVoice()
	r := voiceRouter(NewVoiceHandler(voice, nil, nil, nil))

	w := do(r, http.MethodGet, "/voice/sessions/s1/data", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ready":false`)
	assert.Contains(t, w.Body.String(), `"patient_name":"Asha"`)

	w = do(r, http.MethodPut, "/voice/sessions/s1/language", `{"language":"hi"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"language":"hi"`)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPut, "/voice/sessions/s1/language", `{}`).Code)

	w = do(r, http.MethodPost, "/voice/sessions/s1/reset", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Smile Dental")

	w = do(r, http.MethodPost, "/voice/sessions/s1/book", "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"appt-9"`)

	voice.bookErr = fmt.Errorf("%w: missing phone", dialogue.ErrNotReady)
	assert.Equal(t, http.StatusConflict, do(r, http.MethodPost, "/voice/sessions/s1/book", "").Code)

	w = do(r, http.MethodGet, "/voice/sessions", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	w = do(r, http.MethodGet, "/voice/sessions/s1/messages?limit=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Welcome")
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/voice/sessions/s1/messages?limit=0", "").Code)

	w = do(r, http.MethodPost, "/voice/sessions/s1/end", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"s1"}, voice.endedSessions())

	voice.endErr = assert.AnError
	w = do(r, http.MethodPost, "/voice/sessions/s1/end", "")
	assert.Equal(t, http.StatusOK, w.Code, "archive failures still end the call")
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/voice/sessions/zz/end", "").Code)
}

func TestMediaEndpointsWithoutProvider(t *testing.T) {
	r := voiceRouter(NewVoiceHandler(newFakeVoice(), nil, nil, nil))
	assert.Equal(t, http.StatusServiceUnavailable,
		do(r, http.MethodPost, "/voice/token", `{"roomName":"dental-s1","participantName":"agent"}`).Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(r, http.MethodGet, "/voice/rooms", "").Code)
}

func TestAdminLogin(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"
	t.Cleanup(func() { config.AppConfig.JWTSecret = "" })

	h := NewAdminHandler("key-123", nil)
	r := gin.New()
	r.POST("/admin/login", h.Login)

	w := do(r, http.MethodPost, "/admin/login", `{"apiKey":"key-123","name":"frontdesk"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	sub, role, err := utils.ExtractClaims(body.Token)
	require.NoError(t, err)
	assert.Equal(t, "frontdesk", sub)
	assert.Equal(t, utils.AdminRole, role)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/admin/login", `{"apiKey":"wrong"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/admin/login", `{}`).Code)
}
