package main

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"travelplanner/internal/config"
	"travelplanner/internal/database"
	"travelplanner/internal/domain"
	"travelplanner/internal/pkg/crypto"
	jwtsvc "travelplanner/internal/pkg/jwt"
	"travelplanner/internal/repository"
)

// Seeds a demo traveler and an approved trip so the booking flow can be
// exercised end to end in mock mode.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	crypt, err := crypto.New(cfg.EncryptionKey)
	if err != nil {
		log.Fatalf("encryption key: %v", err)
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	trips := repository.NewTripRepository(db)

	const email = "demo@travelplanner.app"
	user, err := users.GetByEmail(ctx, email)
	if err != nil {
		passport, err := crypt.Encrypt("P12345678")
		if err != nil {
			log.Fatalf("encrypt: %v", err)
		}
		tsa, err := crypt.Encrypt("TT1234567")
		if err != nil {
			log.Fatalf("encrypt: %v", err)
		}
		user = &domain.User{
			ID:             uuid.New(),
			Email:          email,
			FirstName:      "Dana",
			LastName:       "Traveler",
			DateOfBirth:    "1990-04-12",
			Phone:          "+14155550123",
			SeatPreference: "aisle",
			LoyaltyNumbers: domain.JSONList{
				map[string]any{"program": "united_mileageplus", "number": "UA123456"},
				map[string]any{"program": "marriott_bonvoy", "number": "MB987654"},
			},
			PassportNumberEnc:   passport,
			TSAKnownTravelerEnc: tsa,
		}
		if err := users.Create(ctx, user); err != nil {
			log.Fatalf("seed user: %v", err)
		}
		log.Printf("seeded_user id=%s email=%s", user.ID, user.Email)
	} else {
		log.Printf("user_exists id=%s email=%s", user.ID, user.Email)
	}

	trip := &domain.Trip{
		ID:         uuid.New(),
		UserID:     user.ID,
		Status:     domain.TripApproved,
		RawRequest: "5 days in Tokyo in November, mid-range budget, love food and temples",
		ApprovedItinerary: domain.JSONMap{
			"flight": map[string]any{
				"carrier":   "UA",
				"cabin":     "ECONOMY",
				"price_usd": 1240.50,
				"segments": []any{
					map[string]any{
						"flight":  "UA837",
						"from":    "SFO",
						"to":      "NRT",
						"departs": "2026-11-03T11:05:00",
					},
				},
			},
			"hotel": map[string]any{
				"name":            "Courtyard Tokyo Ginza",
				"check_in":        "2026-11-03",
				"check_out":       "2026-11-08",
				"room_type":       "Deluxe King",
				"price_total_usd": 980.00,
			},
			"activities": []any{
				map[string]any{"name": "Tsukiji food tour", "price_usd": 95.00},
				map[string]any{"name": "Senso-ji temple walk", "price_usd": 40.00},
			},
			"activities_total_usd": 135.00,
			"total_usd":            2355.50,
		},
	}
	if err := trips.Create(ctx, trip); err != nil {
		log.Fatalf("seed trip: %v", err)
	}
	log.Printf("seeded_trip id=%s status=%s", trip.ID, trip.Status)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)
	token, err := j.GenerateToken(user.ID, user.Email)
	if err != nil {
		log.Fatalf("token: %v", err)
	}
	log.Printf("dev_jwt token=%s", token)
	log.Printf("try: curl -X POST -H 'Authorization: Bearer %s' localhost:8080/api/v1/trips/%s/book", token, trip.ID)
}
