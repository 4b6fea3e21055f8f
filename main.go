package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aira/config"
	"aira/cron"
	"aira/database"
	appointmentRepo "aira/database/repository/appointment"
	conversationRepo "aira/database/repository/conversation"
	patientRepo "aira/database/repository/patient"
	"aira/handlers"
	"aira/metrics"
	"aira/middleware"
	"aira/routes"
	"aira/services/booking"
	"aira/services/dialogue"
	ai "aira/services/intelligence"
	"aira/services/language"
	"aira/services/media"
	"aira/services/notification"
	"aira/services/speech"
	"aira/services/tasks"
	"aira/services/telephony"
	"aira/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer logger.Sync()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	database.InitDB()
	utils.InitCache()

	assistantMetrics := metrics.NewAssistantMetrics(nil)

	// repositories.
	apptRepo := appointmentRepo.NewMongoAppointmentRepo()
	convRepo := conversationRepo.NewMongoConversationRepo()
	patRepo := patientRepo.NewMongoPatientRepo()

	// language content.
	catalog := language.NewCatalog(config.SplitList(cfg.SupportedLanguages), cfg.DefaultLanguage, cfg.KeralaLanguage, cfg.AutoDetectLanguage)
	content := language.NewContent(catalog, language.ClinicInfo{
		Name:         cfg.ClinicName,
		Address:      cfg.ClinicAddress,
		Phone:        cfg.ClinicPhone,
		WorkingHours: cfg.ClinicWorkingHours,
		WorkingDays:  cfg.ClinicWorkingDays,
	}, cfg.Prompts)

	// booking.
	hours, err := booking.HoursFromConfig(cfg)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid clinic hours: %v", err)
	}
	reminderClient := cron.NewReminderClient()
	defer reminderClient.Close()

	lockTTL := time.Duration(cfg.BookingLockTTLSeconds) * time.Second
	appointmentService := booking.NewDefaultAppointmentService(booking.DefaultAppointmentService{
		Repo:            apptRepo,
		Patients:        patRepo,
		Engine:          booking.NewAvailabilityEngine(apptRepo, hours),
		Locker:          booking.NewRedisDateLocker(utils.GetLockClient(), lockTTL, lockTTL),
		Reminders:       tasks.NewAsynqScheduler(reminderClient, cfg.ReminderHours, logger),
		Metrics:         assistantMetrics,
		Logger:          logger,
		DefaultLanguage: catalog.Default(),
	})

	// language model.
	gemini, err := ai.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize language model: %v", err)
	}
	defer gemini.Close()
	model := ai.NewModelService(ai.NewBreakerGenerator(gemini, logger), assistantMetrics, logger, hours.Location)

	// media rooms and speech are optional.
	var mediaProvider media.Provider
	var webhookReceiver handlers.WebhookReceiver
	if cfg.LiveKitURL != "" {
		lk, err := media.NewLiveKitProvider(media.LiveKitConfig{
			URL:          cfg.LiveKitURL,
			APIKey:       cfg.LiveKitAPIKey,
			APISecret:    cfg.LiveKitAPISecret,
			RoomPrefix:   cfg.LiveKitRoomPrefix,
			EmptyTimeout: time.Duration(cfg.RoomEmptyTimeoutSeconds) * time.Second,
		}, logger)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize livekit: %v", err)
		}
		mediaProvider, webhookReceiver = lk, lk
	} else {
		logger.Warn("LIVEKIT_URL not set; media rooms disabled")
	}

	var transcriber speech.Transcriber
	if cfg.GoogleServiceAccountFile != "" {
		stt, err := speech.NewGoogleTranscriber(ctx, cfg.GoogleServiceAccountFile)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize speech client: %v", err)
		}
		defer stt.Close()
		transcriber = stt
	} else {
		logger.Warn("GOOGLE_SERVICE_ACCOUNT_FILE not set; audio turns disabled")
	}

	// dialogue.
	orchestrator := dialogue.NewOrchestrator(dialogue.OrchestratorDeps{
		Model:         model,
		Content:       content,
		Store:         ai.NewRedisSnapshotStore(utils.GetSessionClient(), utils.SessionSnapshotTTL),
		Conversations: convRepo,
		Patients:      patRepo,
		Media:         mediaProvider,
		Booker:        appointmentService,
		Metrics:       assistantMetrics,
		Logger:        logger,
		Machine: dialogue.MachineConfig{
			FieldPriority:   config.SplitList(cfg.FieldPriority),
			MaxHistoryTurns: cfg.MaxHistoryTurns,
			Slots:           appointmentService,
		},
		TurnTimeout: time.Duration(cfg.TurnTimeoutSeconds) * time.Second,
		IdleTimeout: time.Duration(cfg.SessionIdleTimeoutSeconds) * time.Second,
	})
	go orchestrator.Registry().Run(ctx)

	// reminders.
	notifier := notification.NewSMSNotificationService(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, content, logger)
	worker := cron.InitReminderWorker(ctx, cron.NewReminderHandler(apptRepo, notifier, logger), logger)

	utils.StartHealthMonitor(ctx, 30*time.Second, map[string]utils.HealthCheck{
		"mongodb": func(ctx context.Context) error { return database.MongoClient.Ping(ctx, nil) },
		"redis":   func(ctx context.Context) error { return utils.GetSessionClient().Ping(ctx).Err() },
	})

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	if cfg.RateLimitEnabled {
		router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin, logger))
	}

	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewAppointmentHandler(appointmentService, logger),
		handlers.NewVoiceHandler(orchestrator, mediaProvider, transcriber, logger),
		handlers.NewWebhookHandler(orchestrator, webhookReceiver, telephony.NewTwilioVerifier(cfg.TwilioAuthToken), assistantMetrics, logger),
		handlers.NewAdminHandler(cfg.AdminAPIKey, logger),
	)
	handlerBundle.AdminAPIKey = cfg.AdminAPIKey
	handlerBundle.Metrics = promhttp.Handler()

	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("main: starting server on %s", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	stop()
	worker.Shutdown()
	utils.CloseCache()
	if err := database.Close(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: failed to disconnect MongoDB: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
