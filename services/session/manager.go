package session

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appointmentRepo "consultly/database/repository/appointment"
	roomRepo "consultly/database/repository/room"
	"consultly/models"
	"consultly/services/chat"
	"consultly/services/notification"
	"consultly/utils"
)

// DefaultSessionService implements SessionService. Both room and appointment
// updates are guarded by their expected current status, so concurrent
// lifecycle calls resolve to exactly one winner.
type DefaultSessionService struct {
	Appointments appointmentRepo.AppointmentRepository
	Rooms        roomRepo.RoomRepository
	Chat         chat.ChatService
	Notifier     notification.NotificationService
	Location     *time.Location
	Now          func() time.Time
}

func (svc *DefaultSessionService) now() time.Time {
	if svc.Now != nil {
		return svc.Now()
	}
	return time.Now()
}

func (svc *DefaultSessionService) loc() *time.Location {
	if svc.Location != nil {
		return svc.Location
	}
	return time.Local
}

// CreateRoom binds a fresh room to a pending appointment and marks the
// appointment ready.
func (svc *DefaultSessionService) CreateRoom(ctx context.Context, appointmentID, actorID string) (*models.ConsultationRoom, error) {
	apt, err := svc.Appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if actorID != apt.ProviderID {
		return nil, &utils.AuthorizationError{ActorID: actorID, Action: "create room for appointment " + appointmentID}
	}

	// An existing room wins over the appointment-status check, so a repeated
	// createRoom reports the room rather than the ready appointment.
	_, err = svc.Rooms.GetByID(ctx, appointmentID)
	if err == nil {
		return nil, &utils.AlreadyExistsError{Resource: "room", ID: appointmentID}
	}
	var notFound *utils.NotFoundError
	if !errors.As(err, &notFound) {
		return nil, err
	}

	if apt.Status != models.AppointmentPending {
		return nil, &utils.InvalidStateTransitionError{
			Resource: "appointment " + appointmentID,
			From:     string(apt.Status),
			To:       string(models.AppointmentReady),
		}
	}

	now := svc.now()
	room := &models.ConsultationRoom{
		ID:     appointmentID,
		Status: models.RoomReady,
		Participants: map[models.ParticipantRole]models.ParticipantState{
			models.RoleClient:   {Online: false, LastSeen: now},
			models.RoleProvider: {Online: false, LastSeen: now},
		},
		CreatedAt: now,
	}
	if err := svc.Rooms.Create(ctx, room); err != nil {
		return nil, err
	}

	if err := svc.Appointments.UpdateStatus(ctx, appointmentID, models.AppointmentPending, models.AppointmentReady); err != nil {
		if errors.Is(err, appointmentRepo.ErrStatusChanged) {
			return nil, svc.staleAppointment(ctx, appointmentID, models.AppointmentReady)
		}
		return nil, err
	}

	svc.notice(ctx, appointmentID, "Consultation room created.")
	svc.notify(ctx, apt, eventRoomReady)
	return room, nil
}

// Start opens the session. Provider only, room must be ready, and the clock
// must be inside the appointment's window (it opens a few minutes early).
func (svc *DefaultSessionService) Start(ctx context.Context, appointmentID, actorID string) (*models.ConsultationRoom, error) {
	apt, err := svc.Appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if actorID != apt.ProviderID {
		return nil, &utils.AuthorizationError{ActorID: actorID, Action: "start session " + appointmentID}
	}

	room, err := svc.Rooms.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if room.Status != models.RoomReady {
		return nil, &utils.InvalidStateTransitionError{
			Resource: "room " + appointmentID,
			From:     string(room.Status),
			To:       string(models.RoomActive),
		}
	}
	if apt.Status != models.AppointmentReady {
		// Covers appointments cancelled after their room was created.
		return nil, &utils.InvalidStateTransitionError{
			Resource: "appointment " + appointmentID,
			From:     string(apt.Status),
			To:       string(models.AppointmentInProgress),
		}
	}

	now := svc.now()
	open, close, err := sessionWindow(apt, svc.loc())
	if err != nil {
		return nil, err
	}
	if now.Before(open) || !now.Before(close) {
		return nil, &utils.InvalidStateTransitionError{
			Resource: "room " + appointmentID,
			From:     string(models.RoomReady),
			To:       string(models.RoomActive),
			Reason:   "outside the booked session window",
		}
	}

	if err := svc.Rooms.TransitionStatus(ctx, appointmentID, models.RoomReady, models.RoomActive, now); err != nil {
		if errors.Is(err, roomRepo.ErrStatusChanged) {
			return nil, svc.staleRoom(ctx, appointmentID, models.RoomActive)
		}
		return nil, err
	}
	if err := svc.Appointments.UpdateStatus(ctx, appointmentID, models.AppointmentReady, models.AppointmentInProgress); err != nil && !errors.Is(err, appointmentRepo.ErrStatusChanged) {
		return nil, err
	}

	svc.notice(ctx, appointmentID, "Session started.")
	svc.notify(ctx, apt, eventSessionStarted)

	room.Status = models.RoomActive
	room.StartedAt = &now
	return room, nil
}

// End closes the session. Provider only, room must be active. After this the
// channel rejects participant publishes and the history stays readable.
func (svc *DefaultSessionService) End(ctx context.Context, appointmentID, actorID string) (*models.ConsultationRoom, error) {
	apt, err := svc.Appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if actorID != apt.ProviderID {
		return nil, &utils.AuthorizationError{ActorID: actorID, Action: "end session " + appointmentID}
	}

	room, err := svc.Rooms.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if room.Status != models.RoomActive {
		return nil, &utils.InvalidStateTransitionError{
			Resource: "room " + appointmentID,
			From:     string(room.Status),
			To:       string(models.RoomEnded),
		}
	}

	now := svc.now()
	if err := svc.Rooms.TransitionStatus(ctx, appointmentID, models.RoomActive, models.RoomEnded, now); err != nil {
		if errors.Is(err, roomRepo.ErrStatusChanged) {
			return nil, svc.staleRoom(ctx, appointmentID, models.RoomEnded)
		}
		return nil, err
	}
	if err := svc.Appointments.UpdateStatus(ctx, appointmentID, models.AppointmentInProgress, models.AppointmentCompleted); err != nil && !errors.Is(err, appointmentRepo.ErrStatusChanged) {
		return nil, err
	}

	svc.notice(ctx, appointmentID, "Session ended.")
	svc.notify(ctx, apt, eventSessionEnded)

	room.Status = models.RoomEnded
	room.EndedAt = &now
	return room, nil
}

// GetRoom returns the room snapshot for either assigned participant.
func (svc *DefaultSessionService) GetRoom(ctx context.Context, appointmentID, actorID string) (*models.ConsultationRoom, error) {
	apt, err := svc.Appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !apt.Participant(actorID) {
		return nil, &utils.AuthorizationError{ActorID: actorID, Action: "view room " + appointmentID}
	}
	return svc.Rooms.GetByID(ctx, appointmentID)
}

// staleRoom turns a lost guarded write into the state error the caller would
// have gotten had it read a moment later.
func (svc *DefaultSessionService) staleRoom(ctx context.Context, roomID string, to models.RoomStatus) error {
	current, err := svc.Rooms.GetByID(ctx, roomID)
	if err != nil {
		return err
	}
	return &utils.InvalidStateTransitionError{
		Resource: "room " + roomID,
		From:     string(current.Status),
		To:       string(to),
	}
}

func (svc *DefaultSessionService) staleAppointment(ctx context.Context, appointmentID string, to models.AppointmentStatus) error {
	current, err := svc.Appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return err
	}
	return &utils.InvalidStateTransitionError{
		Resource: "appointment " + appointmentID,
		From:     string(current.Status),
		To:       string(to),
	}
}

// notice writes the lifecycle marker into the room stream. Best-effort: a
// failed notice never rolls back the transition it describes.
func (svc *DefaultSessionService) notice(ctx context.Context, roomID, content string) {
	if svc.Chat == nil {
		return
	}
	if _, err := svc.Chat.PublishSystemNotice(ctx, roomID, content); err != nil {
		utils.GetLogger().Warn("failed to publish system notice",
			zap.String("roomID", roomID), zap.Error(err))
	}
}

type lifecycleEvent int

const (
	eventRoomReady lifecycleEvent = iota
	eventSessionStarted
	eventSessionEnded
)

func (svc *DefaultSessionService) notify(ctx context.Context, apt *models.Appointment, event lifecycleEvent) {
	if svc.Notifier == nil {
		return
	}
	var err error
	switch event {
	case eventRoomReady:
		err = svc.Notifier.NotifyRoomReady(ctx, apt)
	case eventSessionStarted:
		err = svc.Notifier.NotifySessionStarted(ctx, apt)
	case eventSessionEnded:
		err = svc.Notifier.NotifySessionEnded(ctx, apt)
	}
	if err != nil {
		utils.GetLogger().Warn("failed to send lifecycle push",
			zap.String("appointmentID", apt.ID), zap.Error(err))
	}
}
