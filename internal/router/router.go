package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/court-slot-reservation/internal/config"     // middleware configuration loaders
	"github.com/iliyamo/court-slot-reservation/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/court-slot-reservation/internal/middleware" // import middleware for JWT authentication and rate limiting
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance: the health check and the public availability
// grid.  Availability sits behind the Redis response cache so bursts of
// browsing traffic never reach the database; rdb may be nil, in which
// case caching is a no-op.
func RegisterRoutes(e *echo.Echo, b *handler.BookingHandler, rdb *redis.Client) {
	// Health endpoint for load balancers and monitoring systems.
	e.GET("/healthz", handler.Health)

	// Public availability browsing, cached briefly.
	cacheCfg := config.LoadCacheConfig()
	e.GET("/v1/courts/:id/slots", b.Availability, middleware.NewRedisCache(cacheCfg, rdb))
}

// RegisterBooking registers the reservation endpoints.  Every route
// requires a valid access token and is rate limited per user so a
// single client cannot hammer the admission path for a contended slot.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, jwtSecret string, rdb *redis.Client) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	// Submit a reservation request for one court slot; the response says
	// whether the caller holds the payment window or was queued.
	g.POST("/courts/:id/reservations", b.Submit)
	// Finalise payment for a held reservation.
	g.POST("/reservations/:id/payment", b.Pay)
	// Live queue standing for a reservation.
	g.GET("/reservations/:id/queue", b.QueueStatus)
	// Cancel a pending reservation; cancelling the holder promotes the queue.
	g.DELETE("/reservations/:id", b.Cancel)
}
