package profile

import "travelplanner/internal/domain"

type LoyaltyNumberDTO struct {
	Program string `json:"program" binding:"required"`
	Number  string `json:"number" binding:"required"`
}

type UpdateProfileRequest struct {
	FirstName      *string            `json:"first_name,omitempty"`
	LastName       *string            `json:"last_name,omitempty"`
	DateOfBirth    *string            `json:"date_of_birth,omitempty"`
	Phone          *string            `json:"phone,omitempty"`
	SeatPreference *string            `json:"seat_preference,omitempty"`
	MealPreference *string            `json:"meal_preference,omitempty"`
	LoyaltyNumbers []LoyaltyNumberDTO `json:"loyalty_numbers,omitempty"`

	// Write-only. Never echoed back by any endpoint.
	PassportNumber   *string `json:"passport_number,omitempty"`
	TSAKnownTraveler *string `json:"tsa_known_traveler,omitempty"`
}

// ProfileResponse omits the encrypted document numbers, exposing only
// whether they are on file.
type ProfileResponse struct {
	ID             string         `json:"id"`
	Email          string         `json:"email"`
	FirstName      string         `json:"first_name,omitempty"`
	LastName       string         `json:"last_name,omitempty"`
	DateOfBirth    string         `json:"date_of_birth,omitempty"`
	Phone          string         `json:"phone,omitempty"`
	SeatPreference string         `json:"seat_preference,omitempty"`
	MealPreference string         `json:"meal_preference,omitempty"`
	LoyaltyNumbers domain.JSONList `json:"loyalty_numbers,omitempty"`

	HasPassportNumber   bool `json:"has_passport_number"`
	HasTSAKnownTraveler bool `json:"has_tsa_known_traveler"`
}

func toProfileResponse(u *domain.User) *ProfileResponse {
	return &ProfileResponse{
		ID:                  u.ID.String(),
		Email:               u.Email,
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		DateOfBirth:         u.DateOfBirth,
		Phone:               u.Phone,
		SeatPreference:      u.SeatPreference,
		MealPreference:      u.MealPreference,
		LoyaltyNumbers:      u.LoyaltyNumbers,
		HasPassportNumber:   u.PassportNumberEnc != nil,
		HasTSAKnownTraveler: u.TSAKnownTravelerEnc != nil,
	}
}
