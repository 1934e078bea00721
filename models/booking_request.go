package models

// BookingRequest is the input to the booking coordinator. ClientID comes from
// the authenticated actor, never the request body.
type BookingRequest struct {
	ProviderID    string   `json:"provider_id" binding:"required"`
	ClientID      string   `json:"-"`
	Date          string   `json:"date" binding:"required"`
	TimeSlots     []string `json:"time_slots" binding:"required"`
	PaymentMethod string   `json:"payment_method" binding:"required"`
	PricePerSlot  float64  `json:"price_per_slot"`
}
