package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"travelplanner/internal/browser"
	"travelplanner/internal/config"
	"travelplanner/internal/database"
	"travelplanner/internal/modules/agent"
	"travelplanner/internal/modules/booking"
	"travelplanner/internal/modules/card"
	"travelplanner/internal/modules/notification"
	"travelplanner/internal/pkg/crypto"
	"travelplanner/internal/queue"
	"travelplanner/internal/repository"
	"travelplanner/internal/vision"
)

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

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis url: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	taskQueue := queue.New(rdb, queue.DefaultKey)

	crypt, err := crypto.New(cfg.EncryptionKey)
	if err != nil {
		log.Fatalf("encryption key: %v", err)
	}

	tripRepo := repository.NewTripRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	userRepo := repository.NewUserRepository(db)
	agentLogRepo := repository.NewAgentLogRepository(db)

	cards := card.NewService(stripeKey(cfg), "", log.Printf)

	var decider agent.Decider
	if !cfg.BookingMockMode {
		decider = vision.NewClient(cfg.AnthropicAPIKey, cfg.VisionModel)
	}
	newPage := func(ctx context.Context) (agent.Driver, error) {
		return browser.NewPage(ctx, cfg.BrowserlessWS)
	}
	runner := agent.NewRunner(agentLogRepo, decider, newPage, cfg.BookingMockMode)

	notifier := notification.NewEmailSender(cfg.SendGridAPIKey, cfg.SendGridFromEmail, "Travel Planner", "")

	orchestrator := booking.NewService(tripRepo, bookingRepo, userRepo, runner, cards, notifier, crypt)

	worker := queue.NewWorker(taskQueue, orchestrator.ExecuteTripBookings, cfg.WorkerRetryBackoff)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("worker_started mock_mode=%t retry_backoff=%s", cfg.BookingMockMode, cfg.WorkerRetryBackoff)
	if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("worker: %v", err)
	}
	log.Printf("worker_stopped")
}

// stripeKey returns the issuing key, empty in mock mode so the card service
// stays in mock issuance even if a key is present.
func stripeKey(cfg *config.Config) string {
	if cfg.BookingMockMode {
		return ""
	}
	return cfg.StripeSecretKey
}
