// File: chatbook/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatbook/config"
	"chatbook/cron"
	"chatbook/database"
	activityRepo "chatbook/database/repository/activity"
	pendingRepo "chatbook/database/repository/pending"
	tenantRepo "chatbook/database/repository/tenant"
	"chatbook/handlers"
	"chatbook/middleware"
	"chatbook/routes"
	"chatbook/services/availability"
	"chatbook/services/booking"
	"chatbook/services/calendar"
	ai "chatbook/services/intelligence"
	"chatbook/services/transport"
	"chatbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	languageTTL     = 30 * 24 * time.Hour
	inlineTimeout   = 45 * time.Second
	healthInterval  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func usesMongo() bool {
	return config.AppConfig.PendingStore == "mongo" || config.AppConfig.TenantSource == "mongo"
}

func usesRedis() bool {
	c := config.AppConfig
	return c.PendingStore == "redis" || c.LockBackend == "redis" || c.InboundMode == "queue"
}

func buildTenants(ctx context.Context) (tenantRepo.Directory, error) {
	switch config.AppConfig.TenantSource {
	case "mongo":
		dir := tenantRepo.NewMongoDirectory(database.Database().Collection(tenantRepo.CollectionName))
		if err := dir.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return dir, nil
	case "file", "":
		return tenantRepo.LoadFileDirectory(config.AppConfig.TenantsFile)
	default:
		return nil, fmt.Errorf("unknown TENANT_SOURCE %q", config.AppConfig.TenantSource)
	}
}

func buildPendingStore(ctx context.Context) (pendingRepo.Store, error) {
	switch config.AppConfig.PendingStore {
	case "redis":
		return pendingRepo.NewRedisStore(utils.GetPendingCacheClient()), nil
	case "mongo":
		store := pendingRepo.NewMongoStore(database.Database().Collection(pendingRepo.CollectionName))
		if err := store.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case "memory", "":
		return pendingRepo.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown PENDING_STORE %q", config.AppConfig.PendingStore)
	}
}

func buildActivity(ctx context.Context) (activityRepo.Recorder, error) {
	if database.MongoClient == nil {
		return activityRepo.NewMemoryRecorder(), nil
	}
	rec := activityRepo.NewMongoRecorder(database.Database().Collection(activityRepo.CollectionName))
	if err := rec.EnsureCapped(ctx); err != nil {
		return nil, err
	}
	return rec, nil
}

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if usesMongo() {
		if err := database.InitDB(ctx); err != nil {
			logger.Sugar().Fatalf("main: %v", err)
		}
		logger.Info("Connected to MongoDB", zap.String("database", config.AppConfig.DatabaseName))
	}
	if usesRedis() {
		utils.InitPendingCache()
	}

	// repositories.
	tenants, err := buildTenants(ctx)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to load tenants: %v", err)
	}
	store, err := buildPendingStore(ctx)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to open pending store: %v", err)
	}
	activity, err := buildActivity(ctx)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to open activity feed: %v", err)
	}

	var locker booking.Locker = booking.NewKeyedMutex()
	var languages ai.ContextStore = ai.NewMemoryContextStore()
	if config.AppConfig.PendingStore == "redis" || config.AppConfig.LockBackend == "redis" {
		languages = ai.NewRedisContextStore(utils.GetPendingCacheClient(), languageTTL)
	}
	if config.AppConfig.LockBackend == "redis" {
		locker = booking.NewRedisLocker(utils.GetPendingCacheClient(), config.AppConfig.LockTTL)
	}

	// services.
	resolver := &ai.Resolver{Timeout: config.AppConfig.ClassifierTimeout, Logger: logger}
	if key := config.AppConfig.GeminiAPIKey; key != "" {
		classifier, err := ai.NewGeminiClassifier(ctx, key, config.AppConfig.GeminiModel)
		if err != nil {
			logger.Warn("Gemini classifier unavailable; using keyword fallback", zap.Error(err))
		} else {
			defer classifier.Close()
			resolver.Classifier = classifier
		}
	}

	cal := calendar.NewGoogleCalendar(config.AppConfig.GoogleCredentialsFile, logger)
	availabilitySvc := &availability.DefaultAvailabilityService{
		Busy:       cal,
		Holds:      store,
		Logger:     logger,
		Grace:      time.Duration(config.AppConfig.SlotGraceMinutes) * time.Minute,
		WindowDays: config.AppConfig.SlotWindowDays,
		Limit:      config.AppConfig.SlotLimit,
	}
	whatsapp := transport.NewWhatsAppTransport(tenants, config.AppConfig.GraphAPIBase, logger)

	orchestrator := &booking.DefaultOrchestrator{
		Tenants:      tenants,
		Store:        store,
		Locker:       locker,
		Resolver:     resolver,
		Availability: availabilitySvc,
		Calendar:     cal,
		Transport:    whatsapp,
		Activity:     activity,
		Languages:    languages,
		Logger:       logger,
		SlotLimit:    config.AppConfig.SlotLimit,
		OwnerEmail:   config.AppConfig.OwnerEmail,
	}

	var dispatcher handlers.MessageDispatcher = &handlers.InlineDispatcher{Orchestrator: orchestrator, Timeout: inlineTimeout}
	var worker *asynq.Server
	var queueClient *asynq.Client
	if config.AppConfig.InboundMode == "queue" {
		utils.InitQueueCache()
		redisOpts := asynq.RedisClientOpt{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
			DB:       config.AppConfig.RedisQueueDB,
		}
		queueClient = asynq.NewClient(redisOpts)
		defer queueClient.Close()
		worker, err = cron.InitInboundWorker(redisOpts, orchestrator, 0, logger)
		if err != nil {
			logger.Sugar().Fatalf("main: %v", err)
		}
		dispatcher = cron.NewQueueDispatcher(queueClient, logger)
	}

	webhookHandler := handlers.NewWebhookHandler(config.AppConfig.WhatsAppVerifyToken, dispatcher, logger)
	adminHandler := handlers.NewAdminHandler(store, activity, logger)

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.NewRateLimiter(config.AppConfig.MaxRequestsPerMin, logger).Middleware())

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		// Webhook endpoints.
		VerifyWebhookHandler:  webhookHandler.VerifyHandler,
		ReceiveWebhookHandler: webhookHandler.ReceiveHandler,

		// Admin endpoints.
		ListPendingHandler:  adminHandler.ListPendingHandler,
		ListActivityHandler: adminHandler.ListActivityHandler,

		AppSecret:      config.AppConfig.AppSecret,
		AdminKeys:      config.AppConfig.AdminKeys(),
		AllowedOrigins: config.AppConfig.AllowedOrigins(),
	}
	if handlerBundle.AppSecret == "" {
		logger.Warn("APP_SECRET is not set; webhook signatures are not verified")
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle, logger)

	utils.StartHealthMonitor(ctx, healthInterval, utils.OpenRedisClients(), database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
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
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if worker != nil {
		worker.Shutdown()
	}
	if err := database.Close(shutdownCtx); err != nil {
		logger.Warn("main: failed to disconnect MongoDB", zap.Error(err))
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
