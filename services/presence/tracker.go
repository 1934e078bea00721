package presence

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"consultly/database/pubsub"
	appointmentRepo "consultly/database/repository/appointment"
	presenceRepo "consultly/database/repository/presence"
	roomRepo "consultly/database/repository/room"
	"consultly/models"
	"consultly/utils"
)

func presenceTopic(roomID string) string {
	return "room:" + roomID + ":presence"
}

// DefaultPresenceService implements PresenceService on the presence store
// plus the broker. It mirrors state into the room document so a room snapshot
// carries the last known participant states.
type DefaultPresenceService struct {
	Appointments appointmentRepo.AppointmentRepository
	Rooms        roomRepo.RoomRepository
	Repo         presenceRepo.PresenceRepository
	Broker       pubsub.Broker
	Now          func() time.Time
}

func (svc *DefaultPresenceService) now() time.Time {
	if svc.Now != nil {
		return svc.Now()
	}
	return time.Now().UTC()
}

func (svc *DefaultPresenceService) SetOnline(ctx context.Context, roomID, participantID string) error {
	return svc.set(ctx, roomID, participantID, true)
}

func (svc *DefaultPresenceService) SetOffline(ctx context.Context, roomID, participantID string) error {
	return svc.set(ctx, roomID, participantID, false)
}

func (svc *DefaultPresenceService) set(ctx context.Context, roomID, participantID string, online bool) error {
	apt, err := svc.Appointments.GetByID(ctx, roomID)
	if err != nil {
		return err
	}
	role, err := participantRole(apt, participantID)
	if err != nil {
		return err
	}

	rec := models.PresenceRecord{
		RoomID:        roomID,
		ParticipantID: participantID,
		Online:        online,
		LastSeen:      svc.now(),
	}
	if err := svc.Repo.Upsert(ctx, rec); err != nil {
		return err
	}

	// Mirror into the room snapshot and broadcast; both are best-effort on
	// top of the stored record.
	logger := utils.GetLogger()
	state := models.ParticipantState{Online: online, LastSeen: rec.LastSeen}
	if err := svc.Rooms.SetParticipantState(ctx, roomID, role, state); err != nil {
		logger.Warn("failed to mirror presence into room",
			zap.String("roomID", roomID), zap.Error(err))
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := svc.Broker.Publish(ctx, presenceTopic(roomID), payload); err != nil {
		logger.Warn("failed to broadcast presence",
			zap.String("roomID", roomID), zap.Error(err))
	}
	return nil
}

func (svc *DefaultPresenceService) List(ctx context.Context, roomID string) ([]models.PresenceRecord, error) {
	return svc.Repo.List(ctx, roomID)
}

func participantRole(apt *models.Appointment, participantID string) (models.ParticipantRole, error) {
	switch participantID {
	case apt.ProviderID:
		return models.RoleProvider, nil
	case apt.ClientID:
		return models.RoleClient, nil
	default:
		return "", &utils.AuthorizationError{ActorID: participantID, Action: "report presence in room " + apt.ID}
	}
}
