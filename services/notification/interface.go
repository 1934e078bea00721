package notification

import (
	"context"

	"consultly/models"
	"consultly/services/tasks"
)

// NotificationService pushes lifecycle events to the participants' devices.
// All sends are best-effort: a failed push never fails the operation that
// triggered it.
type NotificationService interface {
	NotifyBookingCreated(ctx context.Context, apt *models.Appointment) error
	NotifyRoomReady(ctx context.Context, apt *models.Appointment) error
	NotifySessionStarted(ctx context.Context, apt *models.Appointment) error
	NotifySessionEnded(ctx context.Context, apt *models.Appointment) error
	SendSessionReminder(ctx context.Context, payload tasks.SessionReminderPayload) error
}
