package session

import (
	"context"

	"consultly/models"
)

// SessionService owns the consultation room state machine:
// ready -> active -> ended, provider-driven, no skips, no way back.
type SessionService interface {
	CreateRoom(ctx context.Context, appointmentID, actorID string) (*models.ConsultationRoom, error)
	Start(ctx context.Context, appointmentID, actorID string) (*models.ConsultationRoom, error)
	End(ctx context.Context, appointmentID, actorID string) (*models.ConsultationRoom, error)
	GetRoom(ctx context.Context, appointmentID, actorID string) (*models.ConsultationRoom, error)
}
