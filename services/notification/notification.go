package notification

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"

	deviceRepo "consultly/database/repository/device"
	"consultly/models"
	"consultly/services/tasks"
	"consultly/utils"
)

// DefaultNotificationService delivers pushes over FCM. A nil FCM client turns
// every send into a logged no-op, which keeps local development working
// without Firebase credentials.
type DefaultNotificationService struct {
	FCM     *messaging.Client
	Devices deviceRepo.DeviceRepository
}

func (svc *DefaultNotificationService) NotifyBookingCreated(ctx context.Context, apt *models.Appointment) error {
	body := fmt.Sprintf("New booking for %s (%d slot(s))", apt.Date, len(apt.TimeSlots))
	return svc.push(ctx, apt.ProviderID, "New booking", body, apt.ID)
}

func (svc *DefaultNotificationService) NotifyRoomReady(ctx context.Context, apt *models.Appointment) error {
	return svc.push(ctx, apt.ClientID, "Consultation room ready",
		"Your provider has opened a room for your consultation.", apt.ID)
}

func (svc *DefaultNotificationService) NotifySessionStarted(ctx context.Context, apt *models.Appointment) error {
	return svc.push(ctx, apt.ClientID, "Session started",
		"Your consultation session has started.", apt.ID)
}

func (svc *DefaultNotificationService) NotifySessionEnded(ctx context.Context, apt *models.Appointment) error {
	return svc.push(ctx, apt.ClientID, "Session ended",
		"Your consultation session has ended.", apt.ID)
}

func (svc *DefaultNotificationService) SendSessionReminder(ctx context.Context, payload tasks.SessionReminderPayload) error {
	body := fmt.Sprintf("Your consultation on %s starts at %s.", payload.Date, payload.FirstSlot)
	if err := svc.push(ctx, payload.ClientID, "Upcoming consultation", body, payload.AppointmentID); err != nil {
		return err
	}
	return svc.push(ctx, payload.ProviderID, "Upcoming consultation", body, payload.AppointmentID)
}

func (svc *DefaultNotificationService) push(ctx context.Context, userID, title, body, appointmentID string) error {
	logger := utils.GetLogger()
	if svc.FCM == nil {
		logger.Debug("FCM client not configured, skipping push",
			zap.String("userID", userID), zap.String("title", title))
		return nil
	}

	tokens, err := svc.Devices.GetTokens(ctx, userID)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	msg := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{
			"appointment_id": appointmentID,
		},
	}

	resp, err := svc.FCM.SendEachForMulticast(ctx, msg)
	if err != nil {
		return fmt.Errorf("send push to %s: %w", userID, err)
	}
	if resp.FailureCount > 0 {
		logger.Warn("some push deliveries failed",
			zap.String("userID", userID),
			zap.Int("failed", resp.FailureCount),
			zap.Int("succeeded", resp.SuccessCount))
	}
	return nil
}
