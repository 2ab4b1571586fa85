package reservation

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripstack/travel-reservation/internal/model"
	"github.com/tripstack/travel-reservation/internal/repository"
)

const (
	lockFlightPoolSQL = `SELECT flight_id, class_code, fare_cents, seats_available FROM flight_classes WHERE flight_id = ? AND class_code = ? FOR UPDATE`
	decrementSQL      = `UPDATE flight_classes SET seats_available = seats_available - ? WHERE flight_id = ? AND class_code = ? AND seats_available >= ?`
	insertBookingSQL  = `INSERT INTO bookings`
)

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	svc := NewService(db, repository.NewInventoryRepo(db), repository.NewBookingRepo(db), model.DefaultFareTable())
	return svc, mock
}

func poolRows(itemID uint64, class string, fare, seats uint32) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"flight_id", "class_code", "fare_cents", "seats_available"}).
		AddRow(itemID, class, fare, seats)
}

func TestReserveSuccess(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockFlightPoolSQL)).
		WithArgs(uint64(1), "ECONOMY").
		WillReturnRows(poolRows(1, "ECONOMY", 1000, 5))
	mock.ExpectExec(insertBookingSQL).
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectExec(regexp.QuoteMeta(decrementSQL)).
		WithArgs(uint32(3), uint64(1), "ECONOMY", uint32(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := svc.Reserve(context.Background(), Request{
		UserID: 7, ItemType: model.ItemTypeFlight, ItemID: 1, ClassCode: "economy", Quantity: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(3000), res.TotalFareCents)
	assert.Equal(t, uint32(2), res.SeatsLeft)
	assert.Equal(t, "ECONOMY", res.ClassCode)
	assert.NotEmpty(t, res.BookingID)
	assert.NotEmpty(t, res.SubBookingID)
	assert.NotEqual(t, res.BookingID, res.SubBookingID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveDefaultsToCheapestClass(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockFlightPoolSQL)).
		WithArgs(uint64(1), "ECONOMY").
		WillReturnRows(poolRows(1, "ECONOMY", 1000, 5))
	mock.ExpectExec(insertBookingSQL).WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(regexp.QuoteMeta(decrementSQL)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := svc.Reserve(context.Background(), Request{
		UserID: 7, ItemType: model.ItemTypeFlight, ItemID: 1, Quantity: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "ECONOMY", res.ClassCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveInsufficientInventory(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockFlightPoolSQL)).
		WithArgs(uint64(1), "ECONOMY").
		WillReturnRows(poolRows(1, "ECONOMY", 1000, 2))
	mock.ExpectRollback()

	_, err := svc.Reserve(context.Background(), Request{
		UserID: 7, ItemType: model.ItemTypeFlight, ItemID: 1, ClassCode: "ECONOMY", Quantity: 3,
	})
	assert.ErrorIs(t, err, ErrInsufficientInventory)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Two reservations in sequence model what the row lock enforces
// under concurrency: the second caller sees the first caller's
// committed decrement and is refused once the pool runs dry.
func TestReserveSequentialSoldOut(t *testing.T) {
	svc, mock := newTestService(t)

	// first call takes 3 of 5
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockFlightPoolSQL)).
		WillReturnRows(poolRows(1, "ECONOMY", 1000, 5))
	mock.ExpectExec(insertBookingSQL).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(decrementSQL)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// second call sees only 2 left
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockFlightPoolSQL)).
		WillReturnRows(poolRows(1, "ECONOMY", 1000, 2))
	mock.ExpectRollback()

	req := Request{UserID: 7, ItemType: model.ItemTypeFlight, ItemID: 1, ClassCode: "ECONOMY", Quantity: 3}

	res, err := svc.Reserve(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), res.SeatsLeft)

	_, err = svc.Reserve(context.Background(), req)
	assert.ErrorIs(t, err, ErrInsufficientInventory)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveItemNotFound(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockFlightPoolSQL)).
		WithArgs(uint64(99), "ECONOMY").
		WillReturnRows(sqlmock.NewRows([]string{"flight_id", "class_code", "fare_cents", "seats_available"}))
	mock.ExpectRollback()

	_, err := svc.Reserve(context.Background(), Request{
		UserID: 7, ItemType: model.ItemTypeFlight, ItemID: 99, ClassCode: "ECONOMY", Quantity: 1,
	})
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveInvalidInput(t *testing.T) {
	svc, mock := newTestService(t)

	// No transaction may be opened for malformed input.
	tests := []struct {
		name string
		req  Request
	}{
		{"zero quantity", Request{UserID: 7, ItemType: model.ItemTypeFlight, ItemID: 1, ClassCode: "ECONOMY"}},
		{"unknown class", Request{UserID: 7, ItemType: model.ItemTypeFlight, ItemID: 1, ClassCode: "STEERAGE", Quantity: 1}},
		{"train class on flight", Request{UserID: 7, ItemType: model.ItemTypeFlight, ItemID: 1, ClassCode: "3A", Quantity: 1}},
		{"unknown item type", Request{UserID: 7, ItemType: model.ItemType("HOTEL"), ItemID: 1, Quantity: 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Reserve(context.Background(), tc.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveLockWaitTimeoutIsBusy(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockFlightPoolSQL)).
		WillReturnError(&mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"})
	mock.ExpectRollback()

	_, err := svc.Reserve(context.Background(), Request{
		UserID: 7, ItemType: model.ItemTypeFlight, ItemID: 1, ClassCode: "ECONOMY", Quantity: 1,
	})
	assert.ErrorIs(t, err, ErrBusy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveDeadlockIsBusy(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockFlightPoolSQL)).
		WillReturnRows(poolRows(1, "ECONOMY", 1000, 5))
	mock.ExpectExec(insertBookingSQL).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(decrementSQL)).
		WillReturnError(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"})
	mock.ExpectRollback()

	_, err := svc.Reserve(context.Background(), Request{
		UserID: 7, ItemType: model.ItemTypeFlight, ItemID: 1, ClassCode: "ECONOMY", Quantity: 1,
	})
	assert.ErrorIs(t, err, ErrBusy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveRollsBackWhenInsertFails(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockFlightPoolSQL)).
		WillReturnRows(poolRows(1, "ECONOMY", 1000, 5))
	mock.ExpectExec(insertBookingSQL).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := svc.Reserve(context.Background(), Request{
		UserID: 7, ItemType: model.ItemTypeFlight, ItemID: 1, ClassCode: "ECONOMY", Quantity: 1,
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBusy)
	assert.NotErrorIs(t, err, ErrInsufficientInventory)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveTrainPool(t *testing.T) {
	svc, mock := newTestService(t)

	lockTrainPoolSQL := `SELECT route_id, class_code, fare_cents, seats_available FROM train_classes WHERE route_id = ? AND class_code = ? FOR UPDATE`

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockTrainPoolSQL)).
		WithArgs(uint64(4), "3A").
		WillReturnRows(sqlmock.NewRows([]string{"route_id", "class_code", "fare_cents", "seats_available"}).
			AddRow(4, "3A", 160000, 1))
	mock.ExpectRollback()

	// The 3A pool has one seat; other pools on the same route are
	// irrelevant to this decision.
	_, err := svc.Reserve(context.Background(), Request{
		UserID: 7, ItemType: model.ItemTypeTrain, ItemID: 4, ClassCode: "3A", Quantity: 2,
	})
	assert.ErrorIs(t, err, ErrInsufficientInventory)
	assert.NoError(t, mock.ExpectationsWereMet())
}
