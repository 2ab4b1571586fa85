// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/tripstack/travel-reservation/internal/handler"
	"github.com/tripstack/travel-reservation/internal/middleware"
)

// RegisterRoutes registers routes that require no authentication.
// Currently it exposes only a health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers authentication routes.  Unauthenticated
// operations live under /v1/auth; /v1/me requires a valid access
// token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("OPERATOR", "TRAVELLER"))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers unauthenticated browse endpoints.  The
// optional cache middleware is applied to each route so listings and
// item details can be served from Redis.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	mws := []echo.MiddlewareFunc{}
	if cache != nil {
		mws = append(mws, cache)
	}
	e.GET("/v1/flights", p.SearchFlights, mws...)
	e.GET("/v1/flights/:id", p.GetFlight, mws...)
	e.GET("/v1/trains", p.SearchTrains, mws...)
	e.GET("/v1/trains/:id", p.GetTrainRoute, mws...)
}

// RegisterBooking registers the reservation endpoints.  All of them
// require an authenticated traveller or operator; the booking POST
// routes are the write path into the seat inventory.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("OPERATOR", "TRAVELLER"))
	g.POST("/flights/:id/bookings", b.CreateFlightBooking)
	g.POST("/trains/:id/bookings", b.CreateTrainBooking)
	g.GET("/bookings/:booking_id", b.GetBooking)
	g.GET("/my-bookings", b.ListMyBookings)
}

// RegisterOperator registers inventory management endpoints reserved
// for users with the OPERATOR role.
func RegisterOperator(e *echo.Echo, o *handler.OperatorHandler, jwtSecret string) {
	g := e.Group("/v1/operator")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("OPERATOR"))
	g.POST("/flights", o.CreateFlight)
	g.POST("/trains", o.CreateTrainRoute)
	g.POST("/flights/:id/classes/:code/restock", o.RestockFlightClass)
	g.POST("/trains/:id/classes/:code/restock", o.RestockTrainClass)
}
