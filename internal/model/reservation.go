package model

import "time"

// Reservation represents a buyer's request to pick up a specific item. An
// item can accumulate many historical reservations, but at most one should
// be pending or confirmed at a time.
type Reservation struct {
	ID                string     `json:"id"`
	ItemID            string     `json:"item_id"`
	CustomerName      string     `json:"customer_name"`
	CustomerEmail     string     `json:"customer_email"`
	CustomerPhone     string     `json:"customer_phone,omitempty"`
	Message           string     `json:"message,omitempty"`
	PreferredPickupAt *time.Time `json:"preferred_pickup_at,omitempty"`
	Status            string     `json:"status"`
	CreatedAt         time.Time  `json:"created_at"`

	// Joined field (not always populated).
	ItemTitle string `json:"item_title,omitempty"`
}

// Reservation statuses.
const (
	ReservationStatusPending   = "pending"
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusCancelled = "cancelled"
)

// reservationTransitions maps each reservation status to the statuses it may
// move to. Cancelled is terminal.
var reservationTransitions = map[string][]string{
	ReservationStatusPending:   {ReservationStatusConfirmed, ReservationStatusCancelled},
	ReservationStatusConfirmed: {ReservationStatusCancelled},
}

// ValidReservationTransition reports whether a reservation may move from one
// status to another.
func ValidReservationTransition(from, to string) bool {
	for _, next := range reservationTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Active reports whether the reservation still holds its item (pending or
// confirmed).
func (r *Reservation) Active() bool {
	return r.Status == ReservationStatusPending || r.Status == ReservationStatusConfirmed
}
