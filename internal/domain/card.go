package domain

// VirtualCard is a single-use, amount-capped payment instrument scoped to one
// booking. It is never persisted beyond its identifier.
type VirtualCard struct {
	CardID      string  `json:"card_id"`
	Number      string  `json:"number"`
	ExpMonth    string  `json:"exp_month"`
	ExpYear     string  `json:"exp_year"`
	CVC         string  `json:"cvc"`
	AmountUSD   float64 `json:"amount_usd"`
	Currency    string  `json:"currency"`
	Description string  `json:"description"`
	Mock        bool    `json:"mock"`
}

// Last4 returns the last four digits of the card number for masked display.
func (c *VirtualCard) Last4() string {
	if len(c.Number) < 4 {
		return c.Number
	}
	return c.Number[len(c.Number)-4:]
}

type LoyaltyNumber struct {
	Program string `json:"program"`
	Number  string `json:"number"`
}

// TravelerContext is a read-only profile snapshot built once per orchestrator
// run and passed unchanged into every agent invocation for that trip.
type TravelerContext struct {
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	DateOfBirth    string          `json:"date_of_birth"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	SeatPreference string          `json:"seat_preference"`
	MealPreference string          `json:"meal_preference"`
	LoyaltyNumbers []LoyaltyNumber `json:"loyalty_numbers"`
	PassportNumber string          `json:"passport_number,omitempty"`
	TSANumber      string          `json:"tsa_number,omitempty"`
}
