package booking

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"travelplanner/internal/domain"
)

// SummaryLine is one booked component in the post-run report.
type SummaryLine struct {
	Label              string  `json:"label"`
	ConfirmationNumber string  `json:"confirmation_number"`
	AmountUSD          float64 `json:"amount_usd"`
}

// Summary aggregates the outcome of a trip's booking run for notification
// and API display.
type Summary struct {
	TripID       uuid.UUID     `json:"trip_id"`
	Destination  string        `json:"destination,omitempty"`
	StartDate    string        `json:"start_date,omitempty"`
	EndDate      string        `json:"end_date,omitempty"`
	Confirmed    []SummaryLine `json:"confirmed"`
	Failed       []string      `json:"failed"`
	TotalUSD     float64       `json:"total_usd"`
	AllConfirmed bool          `json:"all_confirmed"`
}

// BuildSummary builds the confirmation report from the trip's terminal
// bookings. Pending or in-progress bookings are ignored.
func BuildSummary(trip *domain.Trip, bookings []domain.Booking) *Summary {
	s := &Summary{
		TripID:       trip.ID,
		Destination:  trip.ParsedSpec.String("destination"),
		StartDate:    trip.ParsedSpec.String("start_date"),
		EndDate:      trip.ParsedSpec.String("end_date"),
		AllConfirmed: true,
	}
	var total float64
	for i := range bookings {
		b := &bookings[i]
		if !b.Terminal() {
			continue
		}
		label := componentLabel(b)
		if b.Status == domain.BookingConfirmed {
			amount := componentAmountUSD(b)
			total += amount
			s.Confirmed = append(s.Confirmed, SummaryLine{
				Label:              label,
				ConfirmationNumber: b.ConfirmationNumber,
				AmountUSD:          amount,
			})
			continue
		}
		s.AllConfirmed = false
		reason := b.Details.String("error")
		if reason == "" {
			reason = string(b.Status)
		}
		s.Failed = append(s.Failed, fmt.Sprintf("%s: %s", label, reason))
	}
	s.TotalUSD = math.Round(total*100) / 100
	return s
}

func componentLabel(b *domain.Booking) string {
	switch b.Type {
	case domain.BookingFlight:
		flight := b.Details.SubMap("flight")
		if segments := flight.List("segments"); len(segments) > 0 {
			if seg, ok := segments[0].(map[string]any); ok {
				m := domain.JSONMap(seg)
				return fmt.Sprintf("Flight %s %s-%s", m.String("flight"), m.String("from"), m.String("to"))
			}
		}
		return "Flight"
	case domain.BookingHotel:
		if name := b.Details.SubMap("hotel").String("name"); name != "" {
			return "Hotel " + name
		}
		return "Hotel"
	default:
		return "Activities"
	}
}

// componentAmountUSD extracts the price of one component for both card
// sizing and the summary total.
func componentAmountUSD(b *domain.Booking) float64 {
	var amount float64
	switch b.Type {
	case domain.BookingFlight:
		amount = b.Details.SubMap("flight").Float("price_usd")
	case domain.BookingHotel:
		amount = b.Details.SubMap("hotel").Float("price_total_usd")
	default:
		amount = b.Details.Float("activities_total_usd")
	}
	if amount == 0 {
		amount = b.Details.Float("total_usd")
	}
	return amount
}

// Text renders the summary as the plain-text email body.
func (s *Summary) Text() string {
	var sb strings.Builder
	if s.AllConfirmed {
		sb.WriteString("Your trip is booked.\n")
	} else {
		sb.WriteString("Your trip is partially booked. Some components need attention.\n")
	}
	if s.Destination != "" {
		fmt.Fprintf(&sb, "Destination: %s\n", s.Destination)
	}
	if s.StartDate != "" && s.EndDate != "" {
		fmt.Fprintf(&sb, "Dates: %s to %s\n", s.StartDate, s.EndDate)
	}
	sb.WriteString("\n")
	for _, line := range s.Confirmed {
		fmt.Fprintf(&sb, "  %s\n    Confirmation: %s\n    Amount: $%.2f\n", line.Label, line.ConfirmationNumber, line.AmountUSD)
	}
	if len(s.Failed) > 0 {
		sb.WriteString("\nNot booked:\n")
		for _, f := range s.Failed {
			fmt.Fprintf(&sb, "  - %s\n", f)
		}
	}
	fmt.Fprintf(&sb, "\nTotal charged: $%.2f\n", s.TotalUSD)
	return sb.String()
}
