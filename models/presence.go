package models

import "time"

// PresenceRecord is the ephemeral online/offline flag for one participant in
// one room. At most one record exists per (room, participant); upserts are
// idempotent.
type PresenceRecord struct {
	RoomID        string    `json:"room_id"`
	ParticipantID string    `json:"participant_id"`
	Online        bool      `json:"online"`
	LastSeen      time.Time `json:"last_seen"`
}
