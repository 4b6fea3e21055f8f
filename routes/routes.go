package routes

import (
	"time"

	"aira/handlers"
	"aira/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAppointmentRoutes registers the appointment endpoints. Booking and
// lookup by id are public; listing and status changes need an admin.
func RegisterAppointmentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/v1/appointments")
	{
		api.POST("", hb.CreateAppointmentHandler)
		api.GET("/availability/:date", hb.AvailabilityHandler)
		api.GET("/:id", hb.GetAppointmentHandler)

		admin := api.Group("")
		admin.Use(middleware.AdminAuthMiddleware(hb.AdminAPIKey))
		admin.GET("", hb.ListAppointmentsHandler)
		admin.GET("/stats", hb.AppointmentStatsHandler)
		admin.PATCH("/:id", hb.UpdateAppointmentHandler)
		admin.POST("/:id/cancel", hb.CancelAppointmentHandler)
		admin.POST("/:id/confirm", hb.ConfirmAppointmentHandler)
	}
}

// RegisterVoiceRoutes registers call session endpoints.
func RegisterVoiceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/v1/voice")
	{
		api.POST("/incoming-call", hb.IncomingCallHandler)
		api.POST("/token", hb.TokenHandler)

		sessions := api.Group("/sessions/:id")
		sessions.POST("/message", hb.MessageHandler)
		sessions.POST("/audio", hb.AudioHandler)
		sessions.GET("/data", hb.SessionDataHandler)
		sessions.POST("/book", hb.BookSessionHandler)
		sessions.POST("/reset", hb.ResetSessionHandler)
		sessions.PUT("/language", hb.SetLanguageHandler)
		sessions.POST("/end", hb.EndCallHandler)

		admin := api.Group("")
		admin.Use(middleware.AdminAuthMiddleware(hb.AdminAPIKey))
		admin.GET("/sessions", hb.ActiveSessionsHandler)
		admin.GET("/sessions/:id/messages", hb.SessionMessagesHandler)
		admin.GET("/rooms", hb.ListRoomsHandler)
		admin.GET("/rooms/:name/participants", hb.RoomParticipantsHandler)
	}
}

// RegisterWebhookRoutes registers provider callbacks. Each handler verifies
// its own signature.
func RegisterWebhookRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	hooks := r.Group("/api/v1/webhooks")
	{
		hooks.POST("/livekit", hb.LiveKitWebhookHandler)
		hooks.POST("/twilio/status", hb.TwilioWebhookHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/v1/admin")
	{
		adminGroup.POST("/login", hb.AdminLoginHandler)
	}
}

// RegisterHealthRoute registers the health-check and metrics endpoints.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", handlers.Health)
	if hb.Metrics != nil {
		r.GET("/metrics", gin.WrapH(hb.Metrics))
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-API-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r, hb)
	RegisterAppointmentRoutes(r, hb)
	RegisterVoiceRoutes(r, hb)
	RegisterWebhookRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
