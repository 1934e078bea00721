package presence

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"consultly/models"
	"consultly/utils"
)

// PresenceSubscription streams the other participant's presence: the current
// record first, then every change until cancelled.
type PresenceSubscription struct {
	ch     chan models.PresenceRecord
	cancel context.CancelFunc
}

func (s *PresenceSubscription) C() <-chan models.PresenceRecord { return s.ch }

// Cancel stops the feed. Idempotent.
func (s *PresenceSubscription) Cancel() { s.cancel() }

func (svc *DefaultPresenceService) Subscribe(ctx context.Context, roomID, participantID string) (*PresenceSubscription, error) {
	apt, err := svc.Appointments.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if _, err := participantRole(apt, participantID); err != nil {
		return nil, err
	}
	otherID := apt.ProviderID
	if participantID == apt.ProviderID {
		otherID = apt.ClientID
	}

	subCtx, cancel := context.WithCancel(context.Background())
	live, err := svc.Broker.Subscribe(subCtx, presenceTopic(roomID))
	if err != nil {
		cancel()
		return nil, err
	}

	current, err := svc.Repo.Get(ctx, roomID, otherID)
	if err != nil {
		_ = live.Close()
		cancel()
		return nil, err
	}

	sub := &PresenceSubscription{
		ch: make(chan models.PresenceRecord, 16),
		cancel: func() {
			cancel()
			_ = live.Close()
		},
	}

	go func() {
		defer close(sub.ch)

		// Nothing stored yet means the other side has never connected.
		initial := models.PresenceRecord{RoomID: roomID, ParticipantID: otherID}
		if current != nil {
			initial = *current
		}
		select {
		case sub.ch <- initial:
		case <-subCtx.Done():
			return
		}

		for {
			select {
			case payload, ok := <-live.C():
				if !ok {
					return
				}
				var rec models.PresenceRecord
				if err := json.Unmarshal(payload, &rec); err != nil {
					utils.GetLogger().Warn("dropping malformed presence event",
						zap.String("roomID", roomID), zap.Error(err))
					continue
				}
				if rec.ParticipantID != otherID {
					continue
				}
				select {
				case sub.ch <- rec:
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
