package booking

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"travelplanner/internal/domain"
	"travelplanner/internal/modules/agent"
	"travelplanner/internal/repository"
)

// Service orchestrates the booking run for one trip: a sequential pass over
// the trip's pending bookings, each with its own virtual card and its own
// failure isolation.
type Service struct {
	trips    TripRepository
	bookings BookingRepository
	users    UserRepository
	runner   AgentRunner
	cards    CardIssuer
	notifier Notifier
	crypt    Decrypter
}

func NewService(trips TripRepository, bookings BookingRepository, users UserRepository, runner AgentRunner, cards CardIssuer, notifier Notifier, crypt Decrypter) *Service {
	return &Service{
		trips:    trips,
		bookings: bookings,
		users:    users,
		runner:   runner,
		cards:    cards,
		notifier: notifier,
		crypt:    crypt,
	}
}

// ExecuteTripBookings runs every pending booking of a trip to a terminal
// status, then settles the trip status. A fully confirmed trip also triggers
// the confirmation email. A missing trip, a missing user, or an empty pending
// set is a no-op, which makes redelivered tasks harmless.
func (s *Service) ExecuteTripBookings(ctx context.Context, tripID uuid.UUID) error {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Printf("booking_run_skipped trip_id=%s reason=trip_not_found", tripID)
			return nil
		}
		return fmt.Errorf("load trip: %w", err)
	}

	pending, err := s.bookings.GetPendingByTrip(ctx, tripID)
	if err != nil {
		return fmt.Errorf("load pending bookings: %w", err)
	}
	if len(pending) == 0 {
		log.Printf("booking_run_skipped trip_id=%s reason=no_pending_bookings", tripID)
		return nil
	}

	user, err := s.users.GetByID(ctx, trip.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Printf("booking_run_skipped trip_id=%s reason=user_not_found user_id=%s", tripID, trip.UserID)
			return nil
		}
		return fmt.Errorf("load user: %w", err)
	}
	traveler, err := s.buildTravelerContext(user)
	if err != nil {
		return fmt.Errorf("build traveler context: %w", err)
	}

	log.Printf("booking_run_started trip_id=%s components=%d", tripID, len(pending))
	for i := range pending {
		s.processBooking(ctx, &pending[i], traveler, user.Email)
	}

	all, err := s.bookings.GetByTrip(ctx, tripID)
	if err != nil {
		return fmt.Errorf("load bookings for settlement: %w", err)
	}
	summary := BuildSummary(trip, all)

	tripStatus := domain.TripConfirmed
	if !summary.AllConfirmed {
		tripStatus = domain.TripBookingFailed
	}
	if err := s.trips.UpdateStatus(ctx, tripID, tripStatus); err != nil {
		return fmt.Errorf("settle trip status: %w", err)
	}
	log.Printf("booking_run_finished trip_id=%s status=%s confirmed=%d failed=%d total_usd=%.2f",
		tripID, tripStatus, len(summary.Confirmed), len(summary.Failed), summary.TotalUSD)

	// The confirmation email goes out only on a fully confirmed trip.
	if summary.AllConfirmed && s.notifier != nil {
		if err := s.notifier.SendConfirmation(ctx, user.Email, user.FullName(), summary); err != nil {
			log.Printf("confirmation_send_failed trip_id=%s error=%v", tripID, err)
		}
	}
	return nil
}

// processBooking takes one booking from pending to a terminal status. Every
// failure path lands in the booking row; nothing propagates to the caller so
// one component cannot abort the rest of the run.
func (s *Service) processBooking(ctx context.Context, b *domain.Booking, traveler domain.TravelerContext, cardholderEmail string) {
	if err := s.bookings.UpdateStatus(ctx, b.ID, domain.BookingInProgress); err != nil {
		log.Printf("booking_start_failed booking_id=%s error=%v", b.ID, err)
		return
	}

	// Support is checked before any money moves so unsupported components
	// never have a card to void.
	if err := s.runner.CheckSupport(b.Type, b.Details, traveler); err != nil {
		s.markFailed(ctx, b, domain.BookingUnsupported, err)
		return
	}

	amount := componentAmountUSD(b)
	card, err := s.cards.Create(ctx, amount, cardDescription(b), cardholderEmail)
	if err != nil {
		s.markFailed(ctx, b, domain.BookingFailed, fmt.Errorf("issue virtual card: %w", err))
		return
	}
	if err := s.bookings.SetVirtualCardID(ctx, b.ID, card.CardID); err != nil {
		s.voidCard(ctx, b, card.CardID)
		s.markFailed(ctx, b, domain.BookingFailed, fmt.Errorf("record virtual card: %w", err))
		return
	}

	confirmation, err := s.runner.Run(ctx, b.ID, b.Type, b.Details, traveler, card)
	if err != nil {
		s.voidCard(ctx, b, card.CardID)
		status := domain.BookingFailed
		if errors.Is(err, agent.ErrNotSupported) {
			status = domain.BookingUnsupported
		}
		s.markFailed(ctx, b, status, err)
		return
	}

	if err := s.bookings.MarkConfirmed(ctx, b.ID, confirmation); err != nil {
		log.Printf("booking_confirm_write_failed booking_id=%s confirmation=%s error=%v", b.ID, confirmation, err)
		return
	}
	log.Printf("booking_confirmed booking_id=%s type=%s confirmation=%s amount_usd=%.2f", b.ID, b.Type, confirmation, amount)
}

func (s *Service) markFailed(ctx context.Context, b *domain.Booking, status domain.BookingStatus, cause error) {
	log.Printf("booking_failed booking_id=%s type=%s status=%s error=%v", b.ID, b.Type, status, cause)
	if err := s.bookings.MarkFailed(ctx, b.ID, status, cause.Error()); err != nil {
		log.Printf("booking_fail_write_failed booking_id=%s error=%v", b.ID, err)
	}
}

func (s *Service) voidCard(ctx context.Context, b *domain.Booking, cardID string) {
	if err := s.cards.Void(ctx, cardID); err != nil {
		log.Printf("card_void_failed booking_id=%s card_id=%s error=%v", b.ID, cardID, err)
	}
}

func (s *Service) buildTravelerContext(user *domain.User) (domain.TravelerContext, error) {
	passport, err := s.crypt.Decrypt(user.PassportNumberEnc)
	if err != nil {
		return domain.TravelerContext{}, fmt.Errorf("decrypt passport number: %w", err)
	}
	tsa, err := s.crypt.Decrypt(user.TSAKnownTravelerEnc)
	if err != nil {
		return domain.TravelerContext{}, fmt.Errorf("decrypt known traveler number: %w", err)
	}
	return domain.TravelerContext{
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		DateOfBirth:    user.DateOfBirth,
		Email:          user.Email,
		Phone:          user.Phone,
		SeatPreference: user.SeatPreference,
		MealPreference: user.MealPreference,
		LoyaltyNumbers: loyaltyNumbers(user.LoyaltyNumbers),
		PassportNumber: passport,
		TSANumber:      tsa,
	}, nil
}

func loyaltyNumbers(raw domain.JSONList) []domain.LoyaltyNumber {
	out := make([]domain.LoyaltyNumber, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		jm := domain.JSONMap(m)
		out = append(out, domain.LoyaltyNumber{
			Program: jm.String("program"),
			Number:  jm.String("number"),
		})
	}
	return out
}

func cardDescription(b *domain.Booking) string {
	return fmt.Sprintf("trip %s %s %s", b.TripID, b.Type, b.ComponentKey)
}
