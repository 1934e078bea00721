// File: utils/faults.go
package utils

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed or missing input. Surfaced to the caller
// with no side effects.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// SlotConflictError reports that one or more requested time slots are already
// occupied by a non-cancelled appointment.
type SlotConflictError struct {
	ProviderID string
	Date       string
	Slots      []string
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("slots already booked for provider %s on %s: %s",
		e.ProviderID, e.Date, strings.Join(e.Slots, ", "))
}

// ConflictOnWriteError reports a conditional write rejected by the store
// because another writer claimed the same key first. Callers treat it exactly
// like a SlotConflictError: re-query availability and retry.
type ConflictOnWriteError struct {
	ProviderID string
	Date       string
	Slots      []string
}

func (e *ConflictOnWriteError) Error() string {
	return fmt.Sprintf("slots claimed concurrently for provider %s on %s: %s",
		e.ProviderID, e.Date, strings.Join(e.Slots, ", "))
}

// NotFoundError reports a missing appointment or room.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// AlreadyExistsError reports an attempt to create a resource that exists.
type AlreadyExistsError struct {
	Resource string
	ID       string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s %s already exists", e.Resource, e.ID)
}

// AuthorizationError reports that the actor is not allowed to perform the
// action on this resource.
type AuthorizationError struct {
	ActorID string
	Action  string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("actor %s is not authorized to %s", e.ActorID, e.Action)
}

// InvalidStateTransitionError reports an action attempted from a state that
// does not permit it.
type InvalidStateTransitionError struct {
	Resource string
	From     string
	To       string
	Reason   string
}

func (e *InvalidStateTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s cannot move from %s to %s: %s", e.Resource, e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("%s cannot move from %s to %s", e.Resource, e.From, e.To)
}

// RoomNotActiveError reports a participant publish attempted outside the
// room's active window.
type RoomNotActiveError struct {
	RoomID string
	Status string
}

func (e *RoomNotActiveError) Error() string {
	return fmt.Sprintf("room %s is %s, not active", e.RoomID, e.Status)
}
