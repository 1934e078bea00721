package models

import "time"

// MessageKind distinguishes participant text from lifecycle notices.
type MessageKind string

const (
	MessageText         MessageKind = "text"
	MessageSystemNotice MessageKind = "system-notice"
)

// Message is one immutable unit of room conversation. Ordering within a room
// is (Timestamp, Seq): Seq is a per-room counter assigned at publish time and
// breaks timestamp ties deterministically for every observer.
type Message struct {
	ID         string          `bson:"id" json:"id"`
	RoomID     string          `bson:"room_id" json:"room_id"`
	SenderID   string          `bson:"sender_id" json:"sender_id"`
	SenderRole ParticipantRole `bson:"sender_role" json:"sender_role"`
	Content    string          `bson:"content" json:"content"`
	Kind       MessageKind     `bson:"kind" json:"kind"`
	Timestamp  time.Time       `bson:"timestamp" json:"timestamp"`
	Seq        int64           `bson:"seq" json:"seq"`
}
