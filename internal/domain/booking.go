package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingType string

const (
	BookingFlight   BookingType = "flight"
	BookingHotel    BookingType = "hotel"
	BookingActivity BookingType = "activity"
)

type BookingStatus string

const (
	BookingPending     BookingStatus = "pending"
	BookingInProgress  BookingStatus = "in_progress"
	BookingConfirmed   BookingStatus = "confirmed"
	BookingFailed      BookingStatus = "failed"
	BookingUnsupported BookingStatus = "unsupported"
)

// Booking is one purchasable component of an approved itinerary. Details
// always retains the original itinerary fragment; on failure it gains an
// "error" key without discarding the fragment.
type Booking struct {
	ID                 uuid.UUID     `json:"id"`
	TripID             uuid.UUID     `json:"trip_id"`
	Type               BookingType   `json:"type"`
	Status             BookingStatus `json:"status"`
	ConfirmationNumber string        `json:"confirmation_number,omitempty"`
	Details            JSONMap       `json:"details,omitempty"`
	VirtualCardID      string        `json:"virtual_card_id,omitempty"`
	ComponentKey       string        `json:"component_key"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// Terminal reports whether the booking reached a final status.
func (b *Booking) Terminal() bool {
	switch b.Status {
	case BookingConfirmed, BookingFailed, BookingUnsupported:
		return true
	}
	return false
}
