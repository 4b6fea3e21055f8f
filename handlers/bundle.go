package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// AdminAPIKey guards the admin routes alongside admin JWTs.
	AdminAPIKey string
	// Metrics serves the Prometheus scrape endpoint when set.
	Metrics http.Handler

	// Appointment endpoints
	CreateAppointmentHandler  gin.HandlerFunc
	ListAppointmentsHandler   gin.HandlerFunc
	AppointmentStatsHandler   gin.HandlerFunc
	GetAppointmentHandler     gin.HandlerFunc
	UpdateAppointmentHandler  gin.HandlerFunc
	CancelAppointmentHandler  gin.HandlerFunc
	ConfirmAppointmentHandler gin.HandlerFunc
	AvailabilityHandler       gin.HandlerFunc

	// Voice endpoints
	IncomingCallHandler     gin.HandlerFunc
	TokenHandler            gin.HandlerFunc
	MessageHandler          gin.HandlerFunc
	AudioHandler            gin.HandlerFunc
	SessionDataHandler      gin.HandlerFunc
	BookSessionHandler      gin.HandlerFunc
	ResetSessionHandler     gin.HandlerFunc
	SetLanguageHandler      gin.HandlerFunc
	EndCallHandler          gin.HandlerFunc
	ActiveSessionsHandler   gin.HandlerFunc
	SessionMessagesHandler  gin.HandlerFunc
	ListRoomsHandler        gin.HandlerFunc
	RoomParticipantsHandler gin.HandlerFunc

	// Webhooks
	LiveKitWebhookHandler gin.HandlerFunc
	TwilioWebhookHandler  gin.HandlerFunc

	// Admin
	AdminLoginHandler gin.HandlerFunc
}

// NewHandlerBundle binds the handler methods into a bundle.
func NewHandlerBundle(appts *AppointmentHandler, voice *VoiceHandler, hooks *WebhookHandler, admin *AdminHandler) *HandlerBundle {
	return &HandlerBundle{
		CreateAppointmentHandler:  appts.CreateAppointment,
		ListAppointmentsHandler:   appts.ListAppointments,
		AppointmentStatsHandler:   appts.Stats,
		GetAppointmentHandler:     appts.GetAppointment,
		UpdateAppointmentHandler:  appts.UpdateAppointment,
		CancelAppointmentHandler:  appts.CancelAppointment,
		ConfirmAppointmentHandler: appts.ConfirmAppointment,
		AvailabilityHandler:       appts.Availability,

		IncomingCallHandler:     voice.IncomingCall,
		TokenHandler:            voice.Token,
		MessageHandler:          voice.Message,
		AudioHandler:            voice.Audio,
		SessionDataHandler:      voice.SessionData,
		BookSessionHandler:      voice.Book,
		ResetSessionHandler:     voice.Reset,
		SetLanguageHandler:      voice.SetLanguage,
		EndCallHandler:          voice.EndCall,
		ActiveSessionsHandler:   voice.ActiveSessions,
		SessionMessagesHandler:  voice.Messages,
		ListRoomsHandler:        voice.ListRooms,
		RoomParticipantsHandler: voice.RoomParticipants,

		LiveKitWebhookHandler: hooks.LiveKitEvent,
		TwilioWebhookHandler:  hooks.TwilioStatus,

		AdminLoginHandler: admin.Login,
	}
}
