package chat

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"consultly/database/pubsub"
	appointmentRepo "consultly/database/repository/appointment"
	messageRepo "consultly/database/repository/message"
	roomRepo "consultly/database/repository/room"
	"consultly/models"
	"consultly/utils"
)

// messageTopic is the broker channel carrying one room's live messages.
func messageTopic(roomID string) string {
	return "room:" + roomID + ":messages"
}

// DefaultChatService implements ChatService. Durable order lives in the
// message store; the broker only accelerates delivery to open subscriptions.
type DefaultChatService struct {
	Appointments appointmentRepo.AppointmentRepository
	Rooms        roomRepo.RoomRepository
	Messages     messageRepo.MessageRepository
	Broker       pubsub.Broker
	Now          func() time.Time
}

func (svc *DefaultChatService) now() time.Time {
	if svc.Now != nil {
		return svc.Now()
	}
	return time.Now().UTC()
}

// Publish appends one participant message. The sender must be one of the two
// assigned participants and the room must be active.
func (svc *DefaultChatService) Publish(ctx context.Context, roomID, senderID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, &utils.ValidationError{Field: "content", Reason: "must not be empty"}
	}

	apt, err := svc.Appointments.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	var role models.ParticipantRole
	switch senderID {
	case apt.ProviderID:
		role = models.RoleProvider
	case apt.ClientID:
		role = models.RoleClient
	default:
		return nil, &utils.AuthorizationError{ActorID: senderID, Action: "publish to room " + roomID}
	}

	room, err := svc.Rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.Status != models.RoomActive {
		return nil, &utils.RoomNotActiveError{RoomID: roomID, Status: string(room.Status)}
	}

	return svc.append(ctx, roomID, senderID, role, content, models.MessageText)
}

// PublishSystemNotice appends a lifecycle notice. It skips the active-status
// gate: notices are written on every transition, including into ended.
func (svc *DefaultChatService) PublishSystemNotice(ctx context.Context, roomID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, &utils.ValidationError{Field: "content", Reason: "must not be empty"}
	}
	return svc.append(ctx, roomID, "system", models.RoleSystem, content, models.MessageSystemNotice)
}

func (svc *DefaultChatService) append(ctx context.Context, roomID, senderID string, role models.ParticipantRole, content string, kind models.MessageKind) (*models.Message, error) {
	seq, err := svc.Messages.NextSeq(ctx, roomID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ID:         uuid.New().String(),
		RoomID:     roomID,
		SenderID:   senderID,
		SenderRole: role,
		Content:    content,
		Kind:       kind,
		Timestamp:  svc.now(),
		Seq:        seq,
	}
	if err := svc.Messages.Append(ctx, msg); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	if err := svc.Broker.Publish(ctx, messageTopic(roomID), payload); err != nil {
		// The message is durable; subscribers pick it up on their next
		// backlog replay even if this broadcast is lost.
		utils.GetLogger().Warn("failed to broadcast message",
			zap.String("roomID", roomID), zap.Error(err))
	}
	return msg, nil
}
