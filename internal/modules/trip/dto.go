package trip

import "travelplanner/internal/domain"

// CreateTripRequest is the internal ingestion payload from the upstream
// planner: a trip that already carries an approved itinerary.
type CreateTripRequest struct {
	UserID            string         `json:"user_id" binding:"required"`
	RawRequest        string         `json:"raw_request"`
	ParsedSpec        domain.JSONMap `json:"parsed_spec,omitempty"`
	ApprovedItinerary domain.JSONMap `json:"approved_itinerary" binding:"required"`
}

type InitiateBookingResponse struct {
	TripID   string           `json:"trip_id"`
	Status   string           `json:"status"`
	Bookings []domain.Booking `json:"bookings"`
}

type BookingLogEntry struct {
	ID           int64  `json:"id"`
	Step         string `json:"step"`
	Action       string `json:"action"`
	Result       string `json:"result"`
	ErrorMessage string `json:"error_message,omitempty"`
	HasScreen    bool   `json:"has_screenshot"`
	CreatedAt    string `json:"created_at"`
}
