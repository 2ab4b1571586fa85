package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripstack/travel-reservation/internal/model"
	"github.com/tripstack/travel-reservation/internal/queue"
	"github.com/tripstack/travel-reservation/internal/repository"
	"github.com/tripstack/travel-reservation/internal/reservation"
)

// stubReserver satisfies Reserver with canned responses.
type stubReserver struct {
	res  reservation.Result
	err  error
	last reservation.Request
}

func (s *stubReserver) Reserve(_ context.Context, req reservation.Request) (reservation.Result, error) {
	s.last = req
	return s.res, s.err
}

func newBookingTestHandler(t *testing.T, stub *stubReserver, publish PublishFunc) (*BookingHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewBookingHandler(stub, repository.NewBookingRepo(db), publish), mock
}

func newBookingContext(t *testing.T, body string, flightID string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewRequestValidator()
	req := httptest.NewRequest(http.MethodPost, "/v1/flights/"+flightID+"/bookings", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(flightID)
	c.Set("user_id", uint64(42))
	return c, rec
}

func TestCreateFlightBookingCreated(t *testing.T) {
	stub := &stubReserver{res: reservation.Result{
		BookingID:      "b-uuid",
		SubBookingID:   "s-uuid",
		ClassCode:      "ECONOMY",
		Quantity:       2,
		TotalFareCents: 200000,
		SeatsLeft:      8,
	}}

	published := make(chan queue.BookingCreatedEvent, 1)
	h, _ := newBookingTestHandler(t, stub, func(_ context.Context, ev queue.BookingCreatedEvent) error {
		published <- ev
		return nil
	})

	c, rec := newBookingContext(t, `{"quantity": 2, "class": "economy"}`, "5")
	require.NoError(t, h.CreateFlightBooking(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"booking_id":"b-uuid"`)
	assert.Contains(t, rec.Body.String(), `"total_fare_cents":200000`)

	assert.Equal(t, uint64(42), stub.last.UserID)
	assert.Equal(t, model.ItemTypeFlight, stub.last.ItemType)
	assert.Equal(t, uint64(5), stub.last.ItemID)
	assert.Equal(t, "economy", stub.last.ClassCode)

	select {
	case ev := <-published:
		assert.Equal(t, "b-uuid", ev.BookingID)
		assert.Equal(t, "FLIGHT", ev.ItemType)
	case <-time.After(2 * time.Second):
		t.Fatal("booking event was not published")
	}
}

func TestCreateBookingErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", reservation.ErrItemNotFound, http.StatusNotFound},
		{"invalid input", reservation.ErrInvalidInput, http.StatusBadRequest},
		{"insufficient", reservation.ErrInsufficientInventory, http.StatusConflict},
		{"busy", reservation.ErrBusy, http.StatusServiceUnavailable},
		{"internal", assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, _ := newBookingTestHandler(t, &stubReserver{err: tc.err}, nil)
			c, rec := newBookingContext(t, `{"quantity": 1}`, "5")
			require.NoError(t, h.CreateFlightBooking(c))
			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.err == reservation.ErrBusy {
				assert.Equal(t, "1", rec.Header().Get("Retry-After"))
			}
		})
	}
}

func TestCreateBookingRejectsBadRequests(t *testing.T) {
	h, _ := newBookingTestHandler(t, &stubReserver{}, nil)

	t.Run("zero quantity fails validation", func(t *testing.T) {
		c, _ := newBookingContext(t, `{"quantity": 0}`, "5")
		err := h.CreateFlightBooking(c)
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})

	t.Run("quantity above cap fails validation", func(t *testing.T) {
		c, _ := newBookingContext(t, `{"quantity": 10}`, "5")
		err := h.CreateFlightBooking(c)
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})

	t.Run("non-numeric item id", func(t *testing.T) {
		c, rec := newBookingContext(t, `{"quantity": 1}`, "abc")
		require.NoError(t, h.CreateFlightBooking(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing user id", func(t *testing.T) {
		e := echo.New()
		e.Validator = NewRequestValidator()
		req := httptest.NewRequest(http.MethodPost, "/v1/flights/5/bookings", strings.NewReader(`{"quantity": 1}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("5")
		require.NoError(t, h.CreateFlightBooking(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestGetBookingOwnership(t *testing.T) {
	h, mock := newBookingTestHandler(t, &stubReserver{}, nil)

	query := regexp.QuoteMeta(`SELECT id, booking_id, sub_booking_id, user_id, item_type, item_id, class_code, quantity, total_fare_cents, created_at`)

	newGetContext := func(bookingID string) (echo.Context, *httptest.ResponseRecorder) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/v1/bookings/"+bookingID, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("booking_id")
		c.SetParamValues(bookingID)
		c.Set("user_id", uint64(42))
		return c, rec
	}

	t.Run("own booking", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs("b-1").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "booking_id", "sub_booking_id", "user_id", "item_type", "item_id", "class_code", "quantity", "total_fare_cents", "created_at",
			}).AddRow(1, "b-1", "s-1", 42, "FLIGHT", 5, "ECONOMY", 2, 200000, time.Now()))

		c, rec := newGetContext("b-1")
		require.NoError(t, h.GetBooking(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"BookingID":"b-1"`)
	})

	t.Run("someone else's booking", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs("b-2").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "booking_id", "sub_booking_id", "user_id", "item_type", "item_id", "class_code", "quantity", "total_fare_cents", "created_at",
			}).AddRow(2, "b-2", "s-2", 99, "FLIGHT", 5, "ECONOMY", 1, 100000, time.Now()))

		c, rec := newGetContext("b-2")
		require.NoError(t, h.GetBooking(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown booking", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs("b-3").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "booking_id", "sub_booking_id", "user_id", "item_type", "item_id", "class_code", "quantity", "total_fare_cents", "created_at",
			}))

		c, rec := newGetContext("b-3")
		require.NoError(t, h.GetBooking(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
