package models

import "time"

// RoomStatus is the closed set of consultation room states. Transitions are
// monotonic: ready -> active -> ended, nothing else.
type RoomStatus string

const (
	RoomReady  RoomStatus = "ready"
	RoomActive RoomStatus = "active"
	RoomEnded  RoomStatus = "ended"
)

// CanTransition reports whether a room may move from one status to another.
func (s RoomStatus) CanTransition(to RoomStatus) bool {
	switch s {
	case RoomReady:
		return to == RoomActive
	case RoomActive:
		return to == RoomEnded
	default:
		return false
	}
}

// ParticipantRole identifies which side of the consultation an actor is on.
type ParticipantRole string

const (
	RoleClient   ParticipantRole = "client"
	RoleProvider ParticipantRole = "provider"
	RoleSystem   ParticipantRole = "system"
)

// ParticipantState is a participant's last known presence inside a room.
type ParticipantState struct {
	Online   bool      `bson:"online" json:"online"`
	LastSeen time.Time `bson:"last_seen" json:"last_seen"`
}

// ConsultationRoom is the live session bound 1:1 to an appointment. Its ID is
// the appointment ID.
type ConsultationRoom struct {
	ID           string                               `bson:"id" json:"id"`
	Status       RoomStatus                           `bson:"status" json:"status"`
	Participants map[ParticipantRole]ParticipantState `bson:"participants" json:"participants"`
	CreatedAt    time.Time                            `bson:"created_at" json:"created_at"`
	StartedAt    *time.Time                           `bson:"started_at,omitempty" json:"started_at,omitempty"`
	EndedAt      *time.Time                           `bson:"ended_at,omitempty" json:"ended_at,omitempty"`
}
