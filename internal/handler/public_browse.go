// This file defines handlers for the public browsing API.  These
// routes let unauthenticated travellers list flights and train routes
// and inspect per-class availability before booking.  Availability
// shown here is an unlocked snapshot for display only; the booking
// path re-reads it under lock.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tripstack/travel-reservation/internal/model"
	"github.com/tripstack/travel-reservation/internal/repository"
)

// PublicHandler aggregates repositories needed for unauthenticated browsing.
type PublicHandler struct {
	Flights   *repository.FlightRepo
	Trains    *repository.TrainRouteRepo
	Inventory *repository.InventoryRepo
	Fares     model.FareTable
}

// NewPublicHandler constructs a PublicHandler.  All dependencies must
// be non-nil.
func NewPublicHandler(f *repository.FlightRepo, t *repository.TrainRouteRepo, inv *repository.InventoryRepo, fares model.FareTable) *PublicHandler {
	if f == nil || t == nil || inv == nil || fares == nil {
		panic("nil dependency passed to NewPublicHandler")
	}
	return &PublicHandler{Flights: f, Trains: t, Inventory: inv, Fares: fares}
}

// publicClass is one class pool in a detail response.
type publicClass struct {
	Code           string `json:"code"`
	Cabin          string `json:"cabin"`
	FareCents      uint32 `json:"fare_cents"`
	SeatsAvailable uint32 `json:"seats_available"`
}

func (h *PublicHandler) publicClasses(itemType model.ItemType, pools []model.ClassPool) []publicClass {
	out := make([]publicClass, 0, len(pools))
	for _, p := range pools {
		cabin := p.ClassCode
		if spec, ok := h.Fares[itemType][p.ClassCode]; ok {
			cabin = spec.Cabin
		}
		out = append(out, publicClass{
			Code:           p.ClassCode,
			Cabin:          cabin,
			FareCents:      p.FareCents,
			SeatsAvailable: p.SeatsAvailable,
		})
	}
	return out
}

// SearchFlights handles GET /v1/flights.  Optional query parameters
// origin, destination and date (YYYY-MM-DD) narrow the listing.
func (h *PublicHandler) SearchFlights(c echo.Context) error {
	ctx := c.Request().Context()
	flights, err := h.Flights.Search(ctx, c.QueryParam("origin"), c.QueryParam("destination"), c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if flights == nil {
		flights = []model.Flight{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": flights})
}

// GetFlight handles GET /v1/flights/:id.  The response includes the
// flight and its class pools with current availability.
func (h *PublicHandler) GetFlight(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid flight id"})
	}
	ctx := c.Request().Context()
	f, err := h.Flights.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrFlightNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	pools, err := h.Inventory.ListPools(ctx, model.ItemTypeFlight, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"flight":  f,
		"classes": h.publicClasses(model.ItemTypeFlight, pools),
	})
}

// SearchTrains handles GET /v1/trains.  Optional query parameters
// origin, destination and date (YYYY-MM-DD) narrow the listing.
func (h *PublicHandler) SearchTrains(c echo.Context) error {
	ctx := c.Request().Context()
	routes, err := h.Trains.Search(ctx, c.QueryParam("origin"), c.QueryParam("destination"), c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if routes == nil {
		routes = []model.TrainRoute{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": routes})
}

// GetTrainRoute handles GET /v1/trains/:id.  The response includes
// the route and its class pools with current availability.
func (h *PublicHandler) GetTrainRoute(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid train route id"})
	}
	ctx := c.Request().Context()
	t, err := h.Trains.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTrainRouteNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "train route not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	pools, err := h.Inventory.ListPools(ctx, model.ItemTypeTrain, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"route":   t,
		"classes": h.publicClasses(model.ItemTypeTrain, pools),
	})
}
