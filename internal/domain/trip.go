package domain

import (
	"time"

	"github.com/google/uuid"
)

type TripStatus string

const (
	TripParsing       TripStatus = "parsing"
	TripSearching     TripStatus = "searching"
	TripOptionsReady  TripStatus = "options_ready"
	TripSearchFailed  TripStatus = "search_failed"
	TripApproved      TripStatus = "approved"
	TripBooking       TripStatus = "booking"
	TripConfirmed     TripStatus = "confirmed"
	TripBookingFailed TripStatus = "booking_failed"
	TripFailed        TripStatus = "failed"
)

type Trip struct {
	ID                uuid.UUID  `json:"id"`
	UserID            uuid.UUID  `json:"user_id"`
	Status            TripStatus `json:"status"`
	RawRequest        string     `json:"raw_request"`
	ParsedSpec        JSONMap    `json:"parsed_spec,omitempty"`
	ItineraryOptions  JSONList   `json:"itinerary_options,omitempty"`
	ApprovedItinerary JSONMap    `json:"approved_itinerary,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
