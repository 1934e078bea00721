package cron

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"consultly/config"
	"consultly/services/notification"
	"consultly/services/tasks"
	"consultly/utils"
)

// InitReminderWorker runs the asynq worker that delivers scheduled session
// reminders in the background.
func InitReminderWorker(notifSvc notification.NotificationService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSessionReminder, handleSessionReminder(notifSvc))

	go func() {
		logger := utils.GetLogger()
		const maxAttempts = 5

		for attempt := 1; attempt <= maxAttempts; attempt++ {
			logger.Info("starting reminder worker", zap.Int("attempt", attempt))
			if err := srv.Run(mux); err != nil {
				logger.Error("reminder worker stopped",
					zap.Int("attempt", attempt), zap.Error(err))
				time.Sleep(time.Duration(attempt) * 5 * time.Second)
				continue
			}
			return
		}
		logger.Error("reminder worker gave up after repeated failures")
	}()
}

func handleSessionReminder(notifSvc notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload tasks.SessionReminderPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return err
		}
		return notifSvc.SendSessionReminder(ctx, payload)
	}
}
