package chat

import (
	"context"

	"consultly/models"
)

// ChatService is the append-only, time-ordered message exchange for one room.
// Participant publishes are gated on the room being active; system notices
// bypass the gate and mark lifecycle transitions.
type ChatService interface {
	Publish(ctx context.Context, roomID, senderID, content string) (*models.Message, error)
	PublishSystemNotice(ctx context.Context, roomID, content string) (*models.Message, error)
	// Subscribe replays the full backlog in (timestamp, seq) order and then
	// tails live messages. The caller owns the subscription and must Cancel
	// it, or the live feed leaks.
	Subscribe(ctx context.Context, roomID string) (*MessageSubscription, error)
}
