package presence

import (
	"context"

	"consultly/models"
)

// PresenceService tracks and broadcasts each participant's online/offline
// state within a room. Purely advisory: it never blocks messaging or session
// transitions.
type PresenceService interface {
	// SetOnline and SetOffline are idempotent upserts; SetOffline also runs
	// on ungraceful disconnects via the liveness timeout upstream.
	SetOnline(ctx context.Context, roomID, participantID string) error
	SetOffline(ctx context.Context, roomID, participantID string) error
	List(ctx context.Context, roomID string) ([]models.PresenceRecord, error)
	// Subscribe streams the current and subsequent state of the *other*
	// participant in the room. Cancel releases the live feed.
	Subscribe(ctx context.Context, roomID, participantID string) (*PresenceSubscription, error)
}
