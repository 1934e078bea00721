package session

import (
	"time"

	"consultly/models"
)

// earlyOpenGrace is how long before the booked start a provider may open the
// session.
const earlyOpenGrace = 5 * time.Minute

// sessionWindow computes the single authoritative open/close window for an
// appointment: from the first booked slot's start (minus the grace) to the
// last slot's end. Every caller goes through here; nobody recomputes it.
func sessionWindow(apt *models.Appointment, loc *time.Location) (open, close time.Time, err error) {
	first, err := models.ParseSlotLabel(apt.TimeSlots[0])
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	last, err := models.ParseSlotLabel(apt.TimeSlots[len(apt.TimeSlots)-1])
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	start, err := models.SlotTime(apt.Date, first.Start, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := models.SlotTime(apt.Date, last.End, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start.Add(-earlyOpenGrace), end, nil
}
