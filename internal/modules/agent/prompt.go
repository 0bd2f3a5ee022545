package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"travelplanner/internal/domain"
)

// Placeholders the model uses in `type` actions for the raw card fields. The
// executor expands them right before keystrokes go out; the instruction text
// itself only ever carries the masked number.
const (
	cardNumberPlaceholder = "{{CARD_NUMBER}}"
	cardCVCPlaceholder    = "{{CARD_CVC}}"
)

type flightTask struct {
	Carrier     string
	CarrierName string
	Site        string
	URL         string
	FlightNo    string
	DepartDate  string
	Origin      string
	Destination string
	Cabin       string
}

func flightTaskFromItinerary(itinerary domain.JSONMap) (flightTask, error) {
	flight := itinerary.SubMap("flight")
	carrier := flight.String("carrier")

	segments := flight.List("segments")
	if len(segments) == 0 {
		return flightTask{}, fmt.Errorf("flight has no segments")
	}
	outbound, _ := segments[0].(map[string]any)
	seg := domain.JSONMap(outbound)

	departs := seg.String("departs")
	if len(departs) > 10 {
		departs = departs[:10]
	}

	cabin := flight.String("cabin")
	if cabin == "" {
		cabin = "ECONOMY"
	}

	url := SupportedCarriers[carrier]
	site := ""
	if parts := strings.SplitN(url, "/", 4); len(parts) > 2 {
		site = parts[2] // e.g. "www.united.com"
	}

	return flightTask{
		Carrier:     carrier,
		CarrierName: carrierName(carrier),
		Site:        site,
		URL:         url,
		FlightNo:    seg.String("flight"),
		DepartDate:  departs,
		Origin:      seg.String("from"),
		Destination: seg.String("to"),
		Cabin:       cabin,
	}, nil
}

type hotelTask struct {
	Site     string
	URL      string
	Name     string
	CheckIn  string
	CheckOut string
	RoomType string
}

func hotelTaskFromItinerary(itinerary domain.JSONMap, traveler domain.TravelerContext) hotelTask {
	hotel := itinerary.SubMap("hotel")
	site, url := hotelSite(hotel.String("name"), traveler)
	return hotelTask{
		Site:     site,
		URL:      url,
		Name:     hotel.String("name"),
		CheckIn:  hotel.String("check_in"),
		CheckOut: hotel.String("check_out"),
		RoomType: hotel.String("room_type"),
	}
}

func passengerJSON(traveler domain.TravelerContext, includeTravel bool) string {
	p := map[string]any{
		"first_name":      traveler.FirstName,
		"last_name":       traveler.LastName,
		"email":           traveler.Email,
		"phone":           traveler.Phone,
		"loyalty_numbers": traveler.LoyaltyNumbers,
	}
	if includeTravel {
		p["date_of_birth"] = traveler.DateOfBirth
		p["seat_preference"] = orDefault(traveler.SeatPreference, "No preference")
		p["tsa_number"] = traveler.TSANumber
	}
	data, _ := json.Marshal(p)
	return string(data)
}

func maskedCardLine(card *domain.VirtualCard) string {
	return fmt.Sprintf("Visa virtual card ending %s exp %s/%s", card.Last4(), card.ExpMonth, card.ExpYear)
}

func buildFlightInstructions(task flightTask, traveler domain.TravelerContext, card *domain.VirtualCard, step, maxSteps int) string {
	taskText := fmt.Sprintf(
		"Book a %s flight on %s:\n"+
			"  Flight: %s departing %s\n"+
			"  Route: %s to %s\n"+
			"  Cabin: %s\n"+
			"  Passenger: %s\n"+
			"  Payment: %s",
		task.CarrierName, task.Site,
		task.FlightNo, task.DepartDate,
		task.Origin, task.Destination,
		task.Cabin,
		passengerJSON(traveler, true),
		maskedCardLine(card),
	)
	return wrapInstructions(taskText, step, maxSteps)
}

func buildHotelInstructions(task hotelTask, traveler domain.TravelerContext, card *domain.VirtualCard, step, maxSteps int) string {
	taskText := fmt.Sprintf(
		"Book a hotel room at %s on %s:\n"+
			"  Check-in: %s   Check-out: %s\n"+
			"  Room type: %s\n"+
			"  Guest: %s\n"+
			"  Payment: %s",
		task.Name, task.Site,
		task.CheckIn, task.CheckOut,
		task.RoomType,
		passengerJSON(traveler, false),
		maskedCardLine(card),
	)
	return wrapInstructions(taskText, step, maxSteps)
}

func wrapInstructions(taskText string, step, maxSteps int) string {
	return fmt.Sprintf(`You are controlling a web browser to complete a booking. Step %d of max %d.

Task:
%s

Look at the screenshot and decide the SINGLE next action. Return ONLY a JSON object, no markdown, no explanation:

{
  "thought": "what you see and why you're taking this action",
  "action": "click" | "type" | "select" | "scroll_down" | "scroll_up" | "wait" | "done" | "error",
  "x": <integer pixel x for click/type>,
  "y": <integer pixel y for click/type>,
  "text": "<text to type>",
  "confirmation_number": "<PNR or record locator, for done action only>",
  "error_message": "<reason, for error action only>"
}

Rules:
- One action per response. Click a field first, then type in the next step.
- For the card number and security code fields, type the literal placeholders %s and %s; they are substituted before keystrokes are sent.
- Use "done" ONLY after seeing a booking confirmation page with a record locator / PNR.
- Use "error" if booking is impossible (sold out, card declined, unsupported flow).
- If a cookie banner or popup appears, dismiss it before doing anything else.
- Do not re-enter information already submitted in a previous step.
- Prefer clicking visible button labels and input labels over guessing coordinates.
`, step+1, maxSteps, taskText, cardNumberPlaceholder, cardCVCPlaceholder)
}

// expandCardPlaceholders substitutes the raw card fields into type-action text.
func expandCardPlaceholders(text string, card *domain.VirtualCard) string {
	text = strings.ReplaceAll(text, cardNumberPlaceholder, card.Number)
	text = strings.ReplaceAll(text, cardCVCPlaceholder, card.CVC)
	return text
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
