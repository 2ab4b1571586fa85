package handler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tripstack/travel-reservation/internal/model"
	"github.com/tripstack/travel-reservation/internal/queue"
	"github.com/tripstack/travel-reservation/internal/repository"
	"github.com/tripstack/travel-reservation/internal/reservation"
)

// Reserver is the slice of the reservation service the booking
// handler needs.  Narrowing it to an interface keeps the handler
// testable without a database.
type Reserver interface {
	Reserve(ctx context.Context, req reservation.Request) (reservation.Result, error)
}

// PublishFunc sends a booking event to the message broker.  Publish
// failures are logged and ignored; the booking has already committed.
type PublishFunc func(ctx context.Context, ev queue.BookingCreatedEvent) error

// BookingHandler serves booking creation and lookup on behalf of
// authenticated travellers.  JWT authentication and role validation
// are assumed to have been performed by middleware.
type BookingHandler struct {
	Reserver Reserver
	Bookings *repository.BookingRepo
	Publish  PublishFunc // optional; nil disables events
}

// NewBookingHandler constructs a BookingHandler.  Reserver and
// bookings must be non-nil; publish may be nil.
func NewBookingHandler(r Reserver, b *repository.BookingRepo, publish PublishFunc) *BookingHandler {
	if r == nil || b == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Reserver: r, Bookings: b, Publish: publish}
}

type createBookingReq struct {
	Quantity uint32 `json:"quantity" validate:"required,min=1,max=9"`
	Class    string `json:"class" validate:"omitempty,max=20"`
}

type bookingResp struct {
	BookingID      string `json:"booking_id"`
	SubBookingID   string `json:"sub_booking_id"`
	Class          string `json:"class"`
	Quantity       uint32 `json:"quantity"`
	TotalFareCents uint64 `json:"total_fare_cents"`
	SeatsLeft      uint32 `json:"seats_left"`
}

// CreateFlightBooking handles POST /v1/flights/:id/bookings.
func (h *BookingHandler) CreateFlightBooking(c echo.Context) error {
	return h.create(c, model.ItemTypeFlight)
}

// CreateTrainBooking handles POST /v1/trains/:id/bookings.
func (h *BookingHandler) CreateTrainBooking(c echo.Context) error {
	return h.create(c, model.ItemTypeTrain)
}

// create runs one reservation and maps the service's error taxonomy
// onto HTTP statuses.  On success it returns 201 with the booking
// identifiers and frozen fare, and publishes a booking event.
func (h *BookingHandler) create(c echo.Context, itemType model.ItemType) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || itemID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.Reserver.Reserve(c.Request().Context(), reservation.Request{
		UserID:    userID,
		ItemType:  itemType,
		ItemID:    itemID,
		ClassCode: req.Class,
		Quantity:  req.Quantity,
	})
	if err != nil {
		switch {
		case errors.Is(err, reservation.ErrItemNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		case errors.Is(err, reservation.ErrInvalidInput):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, reservation.ErrInsufficientInventory):
			return c.JSON(http.StatusConflict, echo.Map{"error": "not enough seats available"})
		case errors.Is(err, reservation.ErrBusy):
			c.Response().Header().Set("Retry-After", "1")
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "inventory busy, retry later"})
		default:
			log.Printf("reservation failed: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reservation failed"})
		}
	}

	if h.Publish != nil {
		ev := queue.BookingCreatedEvent{
			BookingID:      res.BookingID,
			SubBookingID:   res.SubBookingID,
			UserID:         userID,
			ItemType:       string(itemType),
			ItemID:         itemID,
			ClassCode:      res.ClassCode,
			Quantity:       res.Quantity,
			TotalFareCents: res.TotalFareCents,
			CreatedAt:      time.Now().UTC().Format(time.RFC3339),
		}
		// The booking is committed; event delivery is best-effort.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = h.Publish(ctx, ev)
		}()
	}

	return c.JSON(http.StatusCreated, bookingResp{
		BookingID:      res.BookingID,
		SubBookingID:   res.SubBookingID,
		Class:          res.ClassCode,
		Quantity:       res.Quantity,
		TotalFareCents: res.TotalFareCents,
		SeatsLeft:      res.SeatsLeft,
	})
}

// GetBooking handles GET /v1/bookings/:booking_id.  It returns a
// single booking belonging to the current user.  404 when the booking
// does not exist, 403 when it belongs to someone else.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID := c.Param("booking_id")
	if bookingID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Bookings.GetByBookingIDForUser(c.Request().Context(), bookingID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch booking"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": b})
}

// ListMyBookings handles GET /v1/my-bookings.  Returns all bookings
// created by the current user, newest first; an empty array when none
// exist.
func (h *BookingHandler) ListMyBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
