package presenceRepo

import (
	"context"

	"consultly/models"
)

// PresenceRepository holds the ephemeral per-(room, participant) presence
// records. Upserts are idempotent; records are not kept beyond the room's
// lifetime requirement.
type PresenceRepository interface {
	Upsert(ctx context.Context, rec models.PresenceRecord) error
	Get(ctx context.Context, roomID, participantID string) (*models.PresenceRecord, error)
	List(ctx context.Context, roomID string) ([]models.PresenceRecord, error)
}
