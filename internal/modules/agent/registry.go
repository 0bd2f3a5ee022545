package agent

import (
	"sort"
	"strings"

	"travelplanner/internal/domain"
)

// SupportedCarriers maps carrier codes to their booking entry URLs. Only these
// carriers can be booked in live mode.
var SupportedCarriers = map[string]string{
	"UA": "https://www.united.com/en/us/book/flights",
	"DL": "https://www.delta.com/us/en/flight-search/book-a-flight",
	"AA": "https://www.aa.com/booking/find-flights",
	"WN": "https://www.southwest.com/air/booking/",
}

var carrierNames = map[string]string{
	"UA": "United Airlines",
	"DL": "Delta Air Lines",
	"AA": "American Airlines",
	"WN": "Southwest Airlines",
}

// carrierSites is the mock-mode display site per carrier.
var carrierSites = map[string]string{
	"UA": "united.com",
	"DL": "delta.com",
	"AA": "aa.com",
	"WN": "southwest.com",
}

// marriottBrands gates the Marriott.com hotel path; everything else books
// through Expedia.
var marriottBrands = []string{
	"marriott", "westin", "sheraton", "w hotel", "st. regis",
	"ritz-carlton", "courtyard", "residence inn",
}

func carrierName(code string) string {
	if name, ok := carrierNames[code]; ok {
		return name
	}
	return code
}

func carrierSupported(code string) bool {
	_, ok := SupportedCarriers[code]
	return ok
}

func supportedCarrierList() string {
	codes := make([]string, 0, len(SupportedCarriers))
	for code := range SupportedCarriers {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return strings.Join(codes, ", ")
}

func isMarriottBrand(hotelName string) bool {
	name := strings.ToLower(hotelName)
	for _, brand := range marriottBrands {
		if strings.Contains(name, brand) {
			return true
		}
	}
	return false
}

func hasMarriottLoyalty(traveler domain.TravelerContext) bool {
	for _, ln := range traveler.LoyaltyNumbers {
		if strings.Contains(strings.ToLower(ln.Program), "marriott") {
			return true
		}
	}
	return false
}

// hotelSite picks the live booking site for one hotel: Marriott.com only for
// Marriott-brand hotels when the traveler holds a Marriott loyalty number.
func hotelSite(hotelName string, traveler domain.TravelerContext) (site, bookingURL string) {
	if isMarriottBrand(hotelName) && hasMarriottLoyalty(traveler) {
		return "www.marriott.com", "https://www.marriott.com/reservation/availabilitySearch.mi"
	}
	return "www.expedia.com", "https://www.expedia.com/Hotel-Search"
}
