package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/tripstack/travel-reservation/internal/config"
	"github.com/tripstack/travel-reservation/internal/database"
	"github.com/tripstack/travel-reservation/internal/handler"
	custommw "github.com/tripstack/travel-reservation/internal/middleware"
	"github.com/tripstack/travel-reservation/internal/model"
	"github.com/tripstack/travel-reservation/internal/queue"
	"github.com/tripstack/travel-reservation/internal/repository"
	"github.com/tripstack/travel-reservation/internal/reservation"
	"github.com/tripstack/travel-reservation/internal/router"
	queuepublisher "github.com/tripstack/travel-reservation/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.LockWaitSec)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.Migrate(db, "migrations"); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	fares := model.DefaultFareTable()
	if err := fares.Validate(); err != nil {
		log.Fatalf("fare table: %v", err)
	}

	// Repositories
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	flightRepo := repository.NewFlightRepo(db)
	trainRepo := repository.NewTrainRouteRepo(db)
	inventoryRepo := repository.NewInventoryRepo(db)
	bookingRepo := repository.NewBookingRepo(db)

	// The reservation service owns the booking transaction.
	reserver := reservation.NewService(db, inventoryRepo, bookingRepo, fares)

	// Redis-backed middleware; both degrade to no-ops when Redis is
	// unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and response cache disabled")
	}
	rateLimiter := custommw.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	responseCache := custommw.NewResponseCache(config.LoadCacheConfig(), rdb)

	// Background consumer mirrors booking events into logs/booking.log.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.Validator = handler.NewRequestValidator()
	e.Use(rateLimiter)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, userRepo, tokenRepo), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewPublicHandler(flightRepo, trainRepo, inventoryRepo, fares), responseCache)
	router.RegisterBooking(e, handler.NewBookingHandler(reserver, bookingRepo, queuepublisher.PublishBookingCreated), cfg.JWTSecret)
	router.RegisterOperator(e, handler.NewOperatorHandler(flightRepo, trainRepo, inventoryRepo, fares), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
