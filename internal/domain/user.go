package domain

import (
	"time"

	"github.com/google/uuid"
)

// User holds the traveler profile. Passport and known-traveler numbers are
// encrypted at the application layer before they reach the database.
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`

	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Phone       string `json:"phone,omitempty"`

	SeatPreference string `json:"seat_preference,omitempty"`
	MealPreference string `json:"meal_preference,omitempty"`

	// JSON array of {program, number}
	LoyaltyNumbers JSONList `json:"loyalty_numbers,omitempty"`

	PassportNumberEnc   *string `json:"-"`
	TSAKnownTravelerEnc *string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName returns "First Last", falling back to the email.
func (u *User) FullName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Email
	}
	return name
}
