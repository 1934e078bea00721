package roomRepo

import (
	"context"
	"errors"
	"time"

	"consultly/models"
)

// ErrStatusChanged reports a guarded transition that matched no document:
// another writer advanced the room first.
var ErrStatusChanged = errors.New("room status changed concurrently")

// RoomRepository persists consultation rooms. TransitionStatus is conditional
// on the expected current status so two concurrent start (or end) calls can
// never both succeed.
type RoomRepository interface {
	Create(ctx context.Context, room *models.ConsultationRoom) error
	GetByID(ctx context.Context, id string) (*models.ConsultationRoom, error)
	TransitionStatus(ctx context.Context, id string, from, to models.RoomStatus, at time.Time) error
	SetParticipantState(ctx context.Context, roomID string, role models.ParticipantRole, state models.ParticipantState) error
}
