// File: main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"consultly/config"
	"consultly/cron"
	"consultly/database"
	"consultly/database/pubsub"
	appointmentRepo "consultly/database/repository/appointment"
	deviceRepo "consultly/database/repository/device"
	messageRepo "consultly/database/repository/message"
	presenceRepo "consultly/database/repository/presence"
	roomRepo "consultly/database/repository/room"
	"consultly/handlers"
	"consultly/middleware"
	"consultly/routes"
	"consultly/services/booking"
	"consultly/services/chat"
	"consultly/services/notification"
	"consultly/services/presence"
	"consultly/services/session"
	"consultly/services/tasks"
	"consultly/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	if config.AppConfig.FirebaseCredentialsFile != "" {
		utils.FirebaseInit()
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	aptRepo := appointmentRepo.NewMongoAppointmentRepo()
	rmRepo := roomRepo.NewMongoRoomRepo()
	msgRepo := messageRepo.NewMongoMessageRepo()
	presRepo := presenceRepo.NewRedisPresenceRepo(utils.GetCacheClient())
	devRepo := deviceRepo.NewRedisDeviceRepo(utils.GetCacheClient())

	for name, ensure := range map[string]func() error{
		"appointments": aptRepo.EnsureIndexes,
		"rooms":        rmRepo.EnsureIndexes,
		"messages":     msgRepo.EnsureIndexes,
	} {
		if err := ensure(); err != nil {
			logger.Sugar().Fatalf("main: failed to ensure %s indexes: %v", name, err)
		}
	}

	broker := pubsub.NewRedisBroker(utils.GetPubSubClient())

	// services.
	notificationService := &notification.DefaultNotificationService{
		FCM:     utils.FCMClient,
		Devices: devRepo,
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderDB,
	})
	defer asynqClient.Close()

	reminderScheduler := &tasks.AsynqReminderScheduler{
		Client: asynqClient,
		Lead:   time.Duration(config.AppConfig.ReminderLeadMinutes) * time.Minute,
	}

	bookingService := &booking.DefaultBookingService{
		Repo:      aptRepo,
		Reminders: reminderScheduler,
		Notifier:  notificationService,
	}

	chatService := &chat.DefaultChatService{
		Appointments: aptRepo,
		Rooms:        rmRepo,
		Messages:     msgRepo,
		Broker:       broker,
	}

	sessionService := &session.DefaultSessionService{
		Appointments: aptRepo,
		Rooms:        rmRepo,
		Chat:         chatService,
		Notifier:     notificationService,
	}

	presenceService := &presence.DefaultPresenceService{
		Appointments: aptRepo,
		Rooms:        rmRepo,
		Repo:         presRepo,
		Broker:       broker,
	}

	// handlers.
	handlerBundle := &routes.HandlerBundle{
		Booking:  handlers.NewBookingHandler(bookingService),
		Session:  handlers.NewSessionHandler(sessionService),
		Chat:     handlers.NewChatHandler(chatService, bookingService),
		Presence: handlers.NewPresenceHandler(presenceService),
		Device:   handlers.NewDeviceHandler(devRepo),
	}
	routes.SetupRoutes(router, handlerBundle)

	// Background reminder delivery.
	cron.InitReminderWorker(notificationService)

	srv := &http.Server{
		Addr:    ":" + config.AppConfig.AppPort,
		Handler: router,
	}

	go func() {
		logger.Sugar().Infof("main: listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server error: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: forced shutdown: %v", err)
	}
}
