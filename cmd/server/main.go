package main // Entry point package

import (
	"context" // Cancellation for the background sweep
	"log"     // Logging library
	"time"    // Hold window and sweep interval arithmetic

	"github.com/joho/godotenv"    // Loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/court-slot-reservation/internal/booking"    // Admission and settlement engine
	"github.com/iliyamo/court-slot-reservation/internal/clock"      // Time source
	"github.com/iliyamo/court-slot-reservation/internal/config"     // Internal config loader
	"github.com/iliyamo/court-slot-reservation/internal/database"   // MySQL pool constructor
	"github.com/iliyamo/court-slot-reservation/internal/handler"    // HTTP handlers
	"github.com/iliyamo/court-slot-reservation/internal/queue"      // Broker consumer
	"github.com/iliyamo/court-slot-reservation/internal/repository" // MySQL store
	"github.com/iliyamo/court-slot-reservation/internal/router"     // Route registration
	queue_publisher "github.com/iliyamo/court-slot-reservation/internal/service"
	"github.com/iliyamo/court-slot-reservation/internal/sweeper" // Expired-hold sweep
)

func main() {
	_ = godotenv.Load() // best effort; real deployments set env directly

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	store := repository.NewReservationStore(db)
	clk := clock.NewSystem()
	engine := booking.NewEngine(store, clk,
		booking.WithPaymentHold(time.Duration(cfg.PaymentHoldMin)*time.Minute),
		booking.WithQueueHold(time.Duration(cfg.QueueHoldMin)*time.Minute),
		booking.WithPublisher(queue_publisher.NewPublisher()),
	)

	// Redis backs rate limiting and the availability response cache.
	// A nil client disables both; the engine never touches Redis.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and response cache disabled")
	}

	// Background sweep: prompt queue promotion, not a correctness dependency.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.SweepIntervalSec > 0 {
		sw := sweeper.New(engine, store, clk, time.Duration(cfg.SweepIntervalSec)*time.Second)
		go sw.Run(ctx)
	}

	// Broker consumer appends confirmed/promoted events to logs/booking.log.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	b := handler.NewBookingHandler(engine)
	router.RegisterRoutes(e, b, rdb)
	router.RegisterBooking(e, b, cfg.JWTSecret, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
