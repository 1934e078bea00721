package booking

import (
	"context"

	"consultly/models"
)

// BookingService answers availability queries and turns booking requests into
// appointments, rejecting slot conflicts.
type BookingService interface {
	// Availability returns the occupancy map for one provider/day, derived
	// from all non-cancelled appointments. An empty map means all free.
	Availability(ctx context.Context, providerID, date string) (map[string]models.SlotOccupancy, error)
	Book(ctx context.Context, req models.BookingRequest) (*models.Appointment, error)
	Cancel(ctx context.Context, appointmentID, actorID string) error
	Get(ctx context.Context, appointmentID, actorID string) (*models.Appointment, error)
	ListForActor(ctx context.Context, actorID string) ([]models.Appointment, error)
}

// ReminderScheduler enqueues a session reminder for a freshly booked
// appointment. Scheduling failures never fail the booking.
type ReminderScheduler interface {
	ScheduleSessionReminder(ctx context.Context, apt *models.Appointment) error
}
