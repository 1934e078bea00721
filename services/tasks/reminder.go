package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"consultly/models"
)

const TypeSessionReminder = "session:reminder"

// SessionReminderPayload carries everything the reminder handler needs so it
// never has to re-read the appointment.
type SessionReminderPayload struct {
	AppointmentID string `json:"appointment_id"`
	ProviderID    string `json:"provider_id"`
	ClientID      string `json:"client_id"`
	Date          string `json:"date"`
	FirstSlot     string `json:"first_slot"`
}

func NewSessionReminderTask(payload SessionReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSessionReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}

// AsynqReminderScheduler enqueues session reminders ahead of the booked
// window.
type AsynqReminderScheduler struct {
	Client   *asynq.Client
	Lead     time.Duration
	Location *time.Location
}

func (s *AsynqReminderScheduler) ScheduleSessionReminder(ctx context.Context, apt *models.Appointment) error {
	if len(apt.TimeSlots) == 0 {
		return fmt.Errorf("appointment %s has no time slots", apt.ID)
	}
	first := apt.TimeSlots[0]
	window, err := models.ParseSlotLabel(first)
	if err != nil {
		return err
	}
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	startsAt, err := models.SlotTime(apt.Date, window.Start, loc)
	if err != nil {
		return err
	}
	fireAt := startsAt.Add(-s.Lead)
	if !fireAt.After(time.Now()) {
		// Booked inside the lead window; nothing worth reminding about.
		return nil
	}

	task, opts, err := NewSessionReminderTask(SessionReminderPayload{
		AppointmentID: apt.ID,
		ProviderID:    apt.ProviderID,
		ClientID:      apt.ClientID,
		Date:          apt.Date,
		FirstSlot:     first,
	}, fireAt)
	if err != nil {
		return err
	}

	if _, err := s.Client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("enqueue session reminder for %s: %w", apt.ID, err)
	}
	return nil
}
