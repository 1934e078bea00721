package booking

import (
	"context"

	"consultly/models"
)

// Availability derives the slot occupancy map for one provider/day by
// scanning all non-cancelled appointments. It is a pure read with no side
// effects; a stale answer is possible during concurrent writes, which is why
// Book re-checks and the store enforces the claim keys.
func (svc *DefaultBookingService) Availability(ctx context.Context, providerID, date string) (map[string]models.SlotOccupancy, error) {
	appointments, err := svc.Repo.ListByProviderDate(ctx, providerID, date)
	if err != nil {
		return nil, err
	}

	occupancy := make(map[string]models.SlotOccupancy)
	for _, apt := range appointments {
		for _, slot := range apt.TimeSlots {
			occupancy[slot] = models.SlotOccupancy{
				Booked:        true,
				AppointmentID: apt.ID,
				Status:        apt.Status,
			}
		}
	}
	return occupancy, nil
}
