package chat

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"consultly/models"
	"consultly/utils"
)

// MessageSubscription is one observer's view of a room stream: the backlog in
// (timestamp, seq) order, then live messages in broker order. Broker order is
// identical for every subscriber, so no two observers ever disagree on the
// relative order of two messages.
type MessageSubscription struct {
	ch     chan models.Message
	cancel context.CancelFunc
}

// C yields messages until the subscription is cancelled.
func (s *MessageSubscription) C() <-chan models.Message { return s.ch }

// Cancel stops the live tail and releases the broker subscription. Idempotent.
func (s *MessageSubscription) Cancel() { s.cancel() }

// Subscribe attaches a new observer to the room. The room must exist; ended
// rooms are fine, their backlog stays readable forever.
func (svc *DefaultChatService) Subscribe(ctx context.Context, roomID string) (*MessageSubscription, error) {
	if _, err := svc.Rooms.GetByID(ctx, roomID); err != nil {
		return nil, err
	}

	subCtx, cancel := context.WithCancel(context.Background())

	// Attach the live feed before reading the backlog so nothing published
	// in between can be missed; duplicates are dropped by seq below.
	live, err := svc.Broker.Subscribe(subCtx, messageTopic(roomID))
	if err != nil {
		cancel()
		return nil, err
	}

	backlog, err := svc.Messages.ListByRoom(ctx, roomID)
	if err != nil {
		live.Close()
		cancel()
		return nil, err
	}

	sub := &MessageSubscription{
		ch: make(chan models.Message, 64),
		cancel: func() {
			cancel()
			_ = live.Close()
		},
	}

	go func() {
		defer close(sub.ch)

		// Dedup live events against the exact seqs replayed, not a high-water
		// mark: a publish paused between seq allocation and insert can leave a
		// gap in the backlog that its message fills later, over the live feed.
		replayed := make(map[int64]struct{}, len(backlog))
		for _, msg := range backlog {
			replayed[msg.Seq] = struct{}{}
			select {
			case sub.ch <- msg:
			case <-subCtx.Done():
				return
			}
		}

		for {
			select {
			case payload, ok := <-live.C():
				if !ok {
					return
				}
				var msg models.Message
				if err := json.Unmarshal(payload, &msg); err != nil {
					utils.GetLogger().Warn("dropping malformed live message",
						zap.String("roomID", roomID), zap.Error(err))
					continue
				}
				if _, dup := replayed[msg.Seq]; dup {
					continue
				}
				select {
				case sub.ch <- msg:
				case <-subCtx.Done():
					return
				}
			case <-subCtx.Done():
				return
			}
		}
	}()

	return sub, nil
}
