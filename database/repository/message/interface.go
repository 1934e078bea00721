package messageRepo

import (
	"context"

	"consultly/models"
)

// MessageRepository is the append-only durable record of room conversation.
// NextSeq hands out the per-room sequence number that breaks timestamp ties;
// no update or delete operations exist.
type MessageRepository interface {
	NextSeq(ctx context.Context, roomID string) (int64, error)
	Append(ctx context.Context, msg *models.Message) error
	// ListByRoom returns the full backlog ordered by (timestamp, seq).
	ListByRoom(ctx context.Context, roomID string) ([]models.Message, error)
}
