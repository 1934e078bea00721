package models

import "time"

// AppointmentStatus is the closed set of appointment lifecycle states.
type AppointmentStatus string

const (
	AppointmentPending    AppointmentStatus = "pending"
	AppointmentReady      AppointmentStatus = "ready"
	AppointmentInProgress AppointmentStatus = "in-progress"
	AppointmentCompleted  AppointmentStatus = "completed"
	AppointmentCancelled  AppointmentStatus = "cancelled"
)

// appointmentTransitions is the allowed transition table. Anything not listed
// is rejected.
var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentPending:    {AppointmentReady, AppointmentCancelled},
	AppointmentReady:      {AppointmentInProgress, AppointmentCancelled},
	AppointmentInProgress: {AppointmentCompleted},
}

// CanTransition reports whether an appointment may move from one status to
// another.
func (s AppointmentStatus) CanTransition(to AppointmentStatus) bool {
	for _, next := range appointmentTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Appointment represents one booked consultation.
type Appointment struct {
	ID            string            `bson:"id" json:"id"`
	ProviderID    string            `bson:"provider_id" json:"provider_id"`
	ClientID      string            `bson:"client_id" json:"client_id"`
	Date          string            `bson:"date" json:"date"`                   // "YYYY-MM-DD"
	TimeSlots     []string          `bson:"time_slots" json:"time_slots"`       // ordered labels, e.g. "08:00-09:00"
	Status        AppointmentStatus `bson:"status" json:"status"`
	PaymentMethod string            `bson:"payment_method" json:"payment_method"`
	PricePerSlot  float64           `bson:"price_per_slot" json:"price_per_slot"`
	TotalAmount   float64           `bson:"total_amount" json:"total_amount"`
	CreatedAt     time.Time         `bson:"created_at" json:"created_at"`
	LastUpdated   time.Time         `bson:"last_updated" json:"last_updated"`
}

// Participant reports whether the given actor is one of the two assigned
// parties.
func (a *Appointment) Participant(actorID string) bool {
	return actorID == a.ProviderID || actorID == a.ClientID
}

// SlotOccupancy describes one slot's booking state in an availability map.
type SlotOccupancy struct {
	Booked        bool              `json:"booked"`
	AppointmentID string            `json:"appointment_id,omitempty"`
	Status        AppointmentStatus `json:"status,omitempty"`
}
