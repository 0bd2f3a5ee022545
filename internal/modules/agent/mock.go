package agent

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"

	"travelplanner/internal/domain"
)

// mockStep is one entry of the scripted booking sequence used when no real
// browser or decision service is configured.
type mockStep struct {
	name   string
	action func(site, target string) string
}

var mockSequence = []mockStep{
	{"navigate", func(site, target string) string { return "Opening " + site }},
	{"search", func(site, target string) string { return "Searching for " + target }},
	{"select", func(site, target string) string { return "Selecting " + target }},
	{"passenger_info", func(site, target string) string { return "Entering traveler details" }},
	{"seat_selection", func(site, target string) string { return "Choosing seat / room preferences" }},
	{"loyalty_number", func(site, target string) string { return "Applying loyalty number" }},
	{"payment", func(site, target string) string { return "Entering virtual card payment" }},
	{"review", func(site, target string) string { return "Reviewing order summary" }},
	{"confirm", func(site, target string) string { return "Confirming booking" }},
}

func (r *Runner) runMock(ctx context.Context, bookingID uuid.UUID, bookingType domain.BookingType, itinerary domain.JSONMap, traveler domain.TravelerContext) (string, error) {
	site, target := mockSiteAndTarget(bookingType, itinerary, traveler)

	for _, step := range mockSequence {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := r.appendLog(ctx, bookingID, step.name, step.action(site, target), domain.StepSuccess, nil, nil); err != nil {
			return "", err
		}
		if r.mockStepDelay > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(r.mockStepDelay):
			}
		}
	}

	confirmation := mockConfirmationNumber()
	if err := r.appendLog(ctx, bookingID, "done", fmt.Sprintf("Booked on %s, confirmation %s", site, confirmation), domain.StepSuccess, nil, nil); err != nil {
		return "", err
	}
	return confirmation, nil
}

func mockSiteAndTarget(bookingType domain.BookingType, itinerary domain.JSONMap, traveler domain.TravelerContext) (site, target string) {
	switch bookingType {
	case domain.BookingFlight:
		flight := itinerary.SubMap("flight")
		carrier := flight.String("carrier")
		site = carrierSites[carrier]
		if site == "" {
			site = "flights.example.com"
		}
		target = "flight"
		if segments := flight.List("segments"); len(segments) > 0 {
			if seg, ok := segments[0].(map[string]any); ok {
				m := domain.JSONMap(seg)
				target = fmt.Sprintf("flight %s %s-%s", m.String("flight"), m.String("from"), m.String("to"))
			}
		}
	case domain.BookingHotel:
		hotel := itinerary.SubMap("hotel")
		site, _ = hotelSite(hotel.String("name"), traveler)
		target = hotel.String("name")
	default:
		site = "www.viator.com"
		target = "activities"
		if acts := itinerary.List("activities"); len(acts) > 0 {
			if a, ok := acts[0].(map[string]any); ok {
				target = domain.JSONMap(a).String("name")
			}
		}
	}
	return site, target
}

const confirmationAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func mockConfirmationNumber() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "MOCK01"
	}
	for i, b := range buf {
		buf[i] = confirmationAlphabet[int(b)%len(confirmationAlphabet)]
	}
	return string(buf)
}
