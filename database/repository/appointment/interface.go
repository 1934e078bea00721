package appointmentRepo

import (
	"context"
	"errors"

	"consultly/models"
)

// ErrStatusChanged reports a guarded status update that matched no document:
// either the appointment is gone or another writer moved it first.
var ErrStatusChanged = errors.New("appointment status changed concurrently")

// AppointmentRepository persists appointments and their slot claims. CreateWithClaims
// is the conditional write that closes the read-then-write booking race: each
// requested slot is claimed under a unique deterministic key, and the store
// rejects the whole booking if any key is already held.
type AppointmentRepository interface {
	CreateWithClaims(ctx context.Context, apt *models.Appointment) error
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	ListByProviderDate(ctx context.Context, providerID, date string) ([]models.Appointment, error)
	ListByParticipant(ctx context.Context, actorID string) ([]models.Appointment, error)
	// UpdateStatus is guarded by the expected current status and fails with
	// ErrStatusChanged if the document no longer matches.
	UpdateStatus(ctx context.Context, id string, from, to models.AppointmentStatus) error
	// ReleaseClaims frees the slot claims held by a cancelled appointment.
	ReleaseClaims(ctx context.Context, appointmentID string) error
}
