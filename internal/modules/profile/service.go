package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"travelplanner/internal/domain"
	"travelplanner/internal/pkg/crypto"
	"travelplanner/internal/repository"
)

var ErrNotFound = errors.New("profile not found")

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
}

type Service struct {
	users UserRepository
	crypt *crypto.Service
}

func NewService(users UserRepository, crypt *crypto.Service) *Service {
	return &Service{users: users, crypt: crypt}
}

func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*ProfileResponse, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toProfileResponse(u), nil
}

// Update applies a partial profile update. Document numbers are encrypted
// before they touch the user row; an explicit empty string clears them.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*ProfileResponse, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	applyString(&u.FirstName, req.FirstName)
	applyString(&u.LastName, req.LastName)
	applyString(&u.DateOfBirth, req.DateOfBirth)
	applyString(&u.Phone, req.Phone)
	applyString(&u.SeatPreference, req.SeatPreference)
	applyString(&u.MealPreference, req.MealPreference)

	if req.LoyaltyNumbers != nil {
		list := make(domain.JSONList, 0, len(req.LoyaltyNumbers))
		for _, ln := range req.LoyaltyNumbers {
			list = append(list, map[string]any{"program": ln.Program, "number": ln.Number})
		}
		u.LoyaltyNumbers = list
	}

	if req.PassportNumber != nil {
		enc, err := s.crypt.Encrypt(*req.PassportNumber)
		if err != nil {
			return nil, fmt.Errorf("encrypt passport number: %w", err)
		}
		u.PassportNumberEnc = enc
	}
	if req.TSAKnownTraveler != nil {
		enc, err := s.crypt.Encrypt(*req.TSAKnownTraveler)
		if err != nil {
			return nil, fmt.Errorf("encrypt known traveler number: %w", err)
		}
		u.TSAKnownTravelerEnc = enc
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return toProfileResponse(u), nil
}

func (s *Service) load(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
