package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"travelplanner/internal/config"
	"travelplanner/internal/database"
	"travelplanner/internal/middleware"
	"travelplanner/internal/modules/profile"
	"travelplanner/internal/modules/progress"
	"travelplanner/internal/modules/trip"
	"travelplanner/internal/pkg/crypto"
	jwtsvc "travelplanner/internal/pkg/jwt"
	"travelplanner/internal/queue"
	"travelplanner/internal/repository"
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

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)

	tripService := trip.NewService(tripRepo, bookingRepo, agentLogRepo, taskQueue)
	tripHandler := trip.NewHandler(tripService)

	profileService := profile.NewService(userRepo, crypt)
	profileHandler := profile.NewHandler(profileService)

	progressHandler := progress.NewHandler(j, tripRepo, bookingRepo, agentLogRepo)

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			tripHandler.RegisterRoutes(protected)
			profileHandler.RegisterRoutes(protected)
		}
	}

	internalV1 := r.Group("/internal/v1")
	internalV1.Use(middleware.InternalTokenAuth())
	{
		tripHandler.RegisterInternalRoutes(internalV1)
	}

	progressHandler.RegisterRoutes(r)

	addr := ":" + getPort()
	log.Printf("api_listening addr=%s env=%s mock_mode=%t", addr, cfg.AppEnv, cfg.BookingMockMode)
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}

func getPort() string {
	if p := os.Getenv("PORT"); p != "" {
		return p
	}
	return "8080"
}
