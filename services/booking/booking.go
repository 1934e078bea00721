package booking

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appointmentRepo "consultly/database/repository/appointment"
	"consultly/models"
	"consultly/services/notification"
	"consultly/utils"
)

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Repo      appointmentRepo.AppointmentRepository
	Reminders ReminderScheduler
	Notifier  notification.NotificationService
	Now       func() time.Time
}

func (svc *DefaultBookingService) now() time.Time {
	if svc.Now != nil {
		return svc.Now()
	}
	return time.Now().UTC()
}

// Book validates the request, re-checks availability and persists the
// appointment under conditional slot claims. A lost race comes back from the
// store as ConflictOnWriteError and is surfaced to the caller exactly like a
// plain slot conflict.
func (svc *DefaultBookingService) Book(ctx context.Context, req models.BookingRequest) (*models.Appointment, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	// Pre-check so the common case fails fast with the conflicting labels.
	// The claim insert below is what actually guarantees exclusivity.
	occupancy, err := svc.Availability(ctx, req.ProviderID, req.Date)
	if err != nil {
		return nil, err
	}
	var conflicted []string
	for _, slot := range req.TimeSlots {
		if occ, ok := occupancy[slot]; ok && occ.Booked {
			conflicted = append(conflicted, slot)
		}
	}
	if len(conflicted) > 0 {
		return nil, &utils.SlotConflictError{
			ProviderID: req.ProviderID,
			Date:       req.Date,
			Slots:      conflicted,
		}
	}

	now := svc.now()
	apt := &models.Appointment{
		ID:            uuid.New().String(),
		ProviderID:    req.ProviderID,
		ClientID:      req.ClientID,
		Date:          req.Date,
		TimeSlots:     sortedSlots(req.TimeSlots),
		Status:        models.AppointmentPending,
		PaymentMethod: req.PaymentMethod,
		PricePerSlot:  req.PricePerSlot,
		TotalAmount:   req.PricePerSlot * float64(len(req.TimeSlots)),
		CreatedAt:     now,
		LastUpdated:   now,
	}

	if err := svc.Repo.CreateWithClaims(ctx, apt); err != nil {
		return nil, err
	}

	logger := utils.GetLogger()
	if svc.Reminders != nil {
		if err := svc.Reminders.ScheduleSessionReminder(ctx, apt); err != nil {
			logger.Warn("failed to schedule session reminder",
				zap.String("appointmentID", apt.ID), zap.Error(err))
		}
	}
	if svc.Notifier != nil {
		if err := svc.Notifier.NotifyBookingCreated(ctx, apt); err != nil {
			logger.Warn("failed to notify provider of new booking",
				zap.String("appointmentID", apt.ID), zap.Error(err))
		}
	}

	return apt, nil
}

// Cancel moves an appointment to cancelled and releases its slot claims.
// Allowed for either assigned participant, and only from pending or ready.
func (svc *DefaultBookingService) Cancel(ctx context.Context, appointmentID, actorID string) error {
	apt, err := svc.Repo.GetByID(ctx, appointmentID)
	if err != nil {
		return err
	}
	if !apt.Participant(actorID) {
		return &utils.AuthorizationError{ActorID: actorID, Action: "cancel appointment " + appointmentID}
	}
	if !apt.Status.CanTransition(models.AppointmentCancelled) {
		return &utils.InvalidStateTransitionError{
			Resource: "appointment " + appointmentID,
			From:     string(apt.Status),
			To:       string(models.AppointmentCancelled),
		}
	}

	err = svc.Repo.UpdateStatus(ctx, appointmentID, apt.Status, models.AppointmentCancelled)
	if errors.Is(err, appointmentRepo.ErrStatusChanged) {
		// Someone advanced the appointment between our read and write.
		current, getErr := svc.Repo.GetByID(ctx, appointmentID)
		if getErr != nil {
			return getErr
		}
		return &utils.InvalidStateTransitionError{
			Resource: "appointment " + appointmentID,
			From:     string(current.Status),
			To:       string(models.AppointmentCancelled),
		}
	}
	if err != nil {
		return err
	}

	return svc.Repo.ReleaseClaims(ctx, appointmentID)
}

func (svc *DefaultBookingService) Get(ctx context.Context, appointmentID, actorID string) (*models.Appointment, error) {
	apt, err := svc.Repo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !apt.Participant(actorID) {
		return nil, &utils.AuthorizationError{ActorID: actorID, Action: "view appointment " + appointmentID}
	}
	return apt, nil
}

func (svc *DefaultBookingService) ListForActor(ctx context.Context, actorID string) ([]models.Appointment, error) {
	return svc.Repo.ListByParticipant(ctx, actorID)
}

func validateRequest(req models.BookingRequest) error {
	switch {
	case req.ProviderID == "":
		return &utils.ValidationError{Field: "provider_id", Reason: "must not be empty"}
	case req.ClientID == "":
		return &utils.ValidationError{Field: "client_id", Reason: "must not be empty"}
	case req.Date == "":
		return &utils.ValidationError{Field: "date", Reason: "must not be empty"}
	case len(req.TimeSlots) == 0:
		return &utils.ValidationError{Field: "time_slots", Reason: "must not be empty"}
	case req.PaymentMethod == "":
		return &utils.ValidationError{Field: "payment_method", Reason: "must not be empty"}
	case req.PricePerSlot < 0:
		return &utils.ValidationError{Field: "price_per_slot", Reason: "must not be negative"}
	}

	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return &utils.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}

	seen := make(map[string]bool, len(req.TimeSlots))
	for _, slot := range req.TimeSlots {
		if _, err := models.ParseSlotLabel(slot); err != nil {
			return &utils.ValidationError{Field: "time_slots", Reason: err.Error()}
		}
		if seen[slot] {
			return &utils.ValidationError{Field: "time_slots", Reason: "duplicate slot " + slot}
		}
		seen[slot] = true
	}
	return nil
}

// sortedSlots normalizes the slot list into chronological order so window
// math can rely on first/last.
func sortedSlots(slots []string) []string {
	out := make([]string, len(slots))
	copy(out, slots)
	sort.Slice(out, func(i, j int) bool {
		wi, _ := models.ParseSlotLabel(out[i])
		wj, _ := models.ParseSlotLabel(out[j])
		return wi.Start < wj.Start
	})
	return out
}
