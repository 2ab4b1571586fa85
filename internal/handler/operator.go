package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tripstack/travel-reservation/internal/model"
	"github.com/tripstack/travel-reservation/internal/repository"
)

// OperatorHandler lets operators create flights and train routes and
// restock class pools.  Class pools are provisioned from the static
// fare-class table at creation time; their per-seat fares are frozen
// then and never recomputed.
type OperatorHandler struct {
	Flights   *repository.FlightRepo
	Trains    *repository.TrainRouteRepo
	Inventory *repository.InventoryRepo
	Fares     model.FareTable
}

// NewOperatorHandler constructs an OperatorHandler and panics if any
// dependency is nil.
func NewOperatorHandler(f *repository.FlightRepo, t *repository.TrainRouteRepo, inv *repository.InventoryRepo, fares model.FareTable) *OperatorHandler {
	if f == nil || t == nil || inv == nil || fares == nil {
		panic("nil dependency passed to NewOperatorHandler")
	}
	return &OperatorHandler{Flights: f, Trains: t, Inventory: inv, Fares: fares}
}

type createFlightReq struct {
	Airline       string            `json:"airline" validate:"required,max=100"`
	FlightNumber  string            `json:"flight_number" validate:"required,max=20"`
	Origin        string            `json:"origin" validate:"required,len=3"`
	Destination   string            `json:"destination" validate:"required,len=3"`
	DepartsAt     time.Time         `json:"departs_at" validate:"required"`
	ArrivesAt     time.Time         `json:"arrives_at" validate:"required"`
	BaseFareCents uint32            `json:"base_fare_cents" validate:"required,min=1"`
	Seats         map[string]uint32 `json:"seats" validate:"required,min=1"`
}

type createTrainReq struct {
	TrainNumber   string            `json:"train_number" validate:"required,max=20"`
	Name          string            `json:"name" validate:"required,max=100"`
	Origin        string            `json:"origin" validate:"required,max=10"`
	Destination   string            `json:"destination" validate:"required,max=10"`
	DepartsAt     time.Time         `json:"departs_at" validate:"required"`
	ArrivesAt     time.Time         `json:"arrives_at" validate:"required"`
	BaseFareCents uint32            `json:"base_fare_cents" validate:"required,min=1"`
	Seats         map[string]uint32 `json:"seats" validate:"required,min=1"`
}

// buildPools derives the class pools for a new item from the fare
// table and the requested seat counts.  Every key in seats must be a
// configured class; configured classes absent from seats get zero
// availability so they can be restocked later.
func (h *OperatorHandler) buildPools(itemType model.ItemType, itemID uint64, baseCents uint32, seats map[string]uint32) ([]model.ClassPool, error) {
	normalized := make(map[string]uint32, len(seats))
	for code, n := range seats {
		code = strings.ToUpper(strings.TrimSpace(code))
		if !h.Fares.HasClass(itemType, code) {
			return nil, errors.New("unknown class " + code)
		}
		normalized[code] = n
	}
	codes := h.Fares.Codes(itemType)
	pools := make([]model.ClassPool, 0, len(codes))
	for _, code := range codes {
		fare, _ := h.Fares.FareCents(itemType, code, baseCents)
		pools = append(pools, model.ClassPool{
			ItemID:         itemID,
			ClassCode:      code,
			FareCents:      fare,
			SeatsAvailable: normalized[code],
		})
	}
	return pools, nil
}

// CreateFlight handles POST /v1/operator/flights.  The flight and all
// its class pools are created in one transaction.
func (h *OperatorHandler) CreateFlight(c echo.Context) error {
	var req createFlightReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if !req.ArrivesAt.After(req.DepartsAt) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "arrives_at must be after departs_at"})
	}

	ctx := c.Request().Context()
	tx, err := h.Flights.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	f := &model.Flight{
		Airline:       req.Airline,
		FlightNumber:  req.FlightNumber,
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartsAt:     req.DepartsAt,
		ArrivesAt:     req.ArrivesAt,
		BaseFareCents: req.BaseFareCents,
	}
	if err := h.Flights.CreateTx(ctx, tx, f); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create flight"})
	}
	pools, err := h.buildPools(model.ItemTypeFlight, f.ID, req.BaseFareCents, req.Seats)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.Inventory.CreatePoolsTx(ctx, tx, model.ItemTypeFlight, pools); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create class pools"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusCreated, echo.Map{"flight": f, "classes": pools})
}

// CreateTrainRoute handles POST /v1/operator/trains.  The route and
// all its class pools are created in one transaction.
func (h *OperatorHandler) CreateTrainRoute(c echo.Context) error {
	var req createTrainReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if !req.ArrivesAt.After(req.DepartsAt) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "arrives_at must be after departs_at"})
	}

	ctx := c.Request().Context()
	tx, err := h.Trains.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	t := &model.TrainRoute{
		TrainNumber:   req.TrainNumber,
		Name:          req.Name,
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartsAt:     req.DepartsAt,
		ArrivesAt:     req.ArrivesAt,
		BaseFareCents: req.BaseFareCents,
	}
	if err := h.Trains.CreateTx(ctx, tx, t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create train route"})
	}
	pools, err := h.buildPools(model.ItemTypeTrain, t.ID, req.BaseFareCents, req.Seats)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.Inventory.CreatePoolsTx(ctx, tx, model.ItemTypeTrain, pools); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create class pools"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusCreated, echo.Map{"route": t, "classes": pools})
}

type restockReq struct {
	Quantity uint32 `json:"quantity" validate:"required,min=1"`
}

// RestockFlightClass handles POST /v1/operator/flights/:id/classes/:code/restock.
func (h *OperatorHandler) RestockFlightClass(c echo.Context) error {
	return h.restock(c, model.ItemTypeFlight)
}

// RestockTrainClass handles POST /v1/operator/trains/:id/classes/:code/restock.
func (h *OperatorHandler) RestockTrainClass(c echo.Context) error {
	return h.restock(c, model.ItemTypeTrain)
}

// restock adds seats to one class pool.  The pool row is locked for
// the duration of the transaction so a restock never races a
// concurrent reservation's check-and-decrement.
func (h *OperatorHandler) restock(c echo.Context, itemType model.ItemType) error {
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || itemID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	if !h.Fares.HasClass(itemType, code) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown class " + code})
	}
	var req restockReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	tx, err := h.Inventory.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	pool, err := h.Inventory.RestockTx(ctx, tx, itemType, itemID, code, req.Quantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "class pool not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to restock"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusOK, echo.Map{
		"class":           pool.ClassCode,
		"seats_available": pool.SeatsAvailable,
	})
}
