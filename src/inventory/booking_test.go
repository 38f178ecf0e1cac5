package inventory

import (
	"context"
	"testing"

	"eventx/src/lib"
	"eventx/src/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func bookingRows(id uint, userId uint, status types.BookingStatus, holdId any) *sqlmock.Rows {
	return sqlmock.
		NewRows([]string{"id", "event_id", "user_id", "status", "hold_id", "total_price_cents", "request_id"}).
		AddRow(id, 1, userId, status, holdId, 5000, "9c40ef3a-8c04-4a6c-b7a5-222222222222")
}

func newCoordinator(t *testing.T) (*Coordinator, sqlmock.Sqlmock) {
	db, mock := newMockDB(t)
	holds := NewHoldManager(db, lib.NewKeyLock())
	return NewCoordinator(db, holds), mock
}

func TestCreateBooking(t *testing.T) {
	coordinator, mock := newCoordinator(t)

	mock.
		ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.
		ExpectQuery(`SELECT (.+) FROM "ticket_types"`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "event_id", "name", "price_cents", "currency", "active"}).
			AddRow(2, 1, "General", 2500, "USD", true))
	mock.
		ExpectQuery(`SELECT (.+) FROM "inventory_holds"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.
		ExpectQuery(`SELECT (.+) FROM "events" (.+)FOR UPDATE`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "seat_mode", "status"}).
			AddRow(1, types.SEAT_MODE_GENERAL_ADMISSION, types.EVENT_PUBLISHED))
	mock.
		ExpectQuery(`SELECT (.+) FROM "event_inventories" (.+)FOR UPDATE`).
		WillReturnRows(inventoryRows(9, 1, 2, 100, 10, 5))
	mock.
		ExpectExec(`UPDATE "event_inventories" SET (.+)held_qty(.+)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.
		ExpectQuery(`INSERT INTO "inventory_holds"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(33))
	mock.
		ExpectQuery(`INSERT INTO "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(41))
	mock.
		ExpectQuery(`INSERT INTO "booking_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(61))
	mock.ExpectCommit()

	booking, err := coordinator.CreateBooking(context.Background(), CreateBookingParams{
		EventID:      1,
		TicketTypeID: 2,
		Quantity:     2,
		UserID:       7,
		RequestID:    "9c40ef3a-8c04-4a6c-b7a5-222222222222",
	})
	assert.Nil(t, err)
	assert.Equal(t, uint(41), booking.ID)
	assert.Equal(t, types.BOOKING_PENDING, booking.Status)
	assert.Equal(t, uint(5000), booking.TotalPriceCents)
	assert.Equal(t, uint(33), *booking.HoldID)
	assert.Len(t, booking.Items, 1)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestCreateBookingReplay(t *testing.T) {
	coordinator, mock := newCoordinator(t)

	// the stored booking is returned without touching stock
	mock.
		ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(bookingRows(5, 7, types.BOOKING_PENDING, nil))
	mock.
		ExpectQuery(`SELECT (.+) FROM "booking_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id"}))

	booking, err := coordinator.CreateBooking(context.Background(), CreateBookingParams{
		EventID:      1,
		TicketTypeID: 2,
		Quantity:     2,
		UserID:       7,
		RequestID:    "9c40ef3a-8c04-4a6c-b7a5-222222222222",
	})
	assert.Nil(t, err)
	assert.Equal(t, uint(5), booking.ID)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestCreateBookingReplayForeignRequestID(t *testing.T) {
	coordinator, mock := newCoordinator(t)

	mock.
		ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(bookingRows(5, 7, types.BOOKING_PENDING, nil))
	mock.
		ExpectQuery(`SELECT (.+) FROM "booking_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id"}))

	_, err := coordinator.CreateBooking(context.Background(), CreateBookingParams{
		EventID:      1,
		TicketTypeID: 2,
		Quantity:     2,
		UserID:       42,
		RequestID:    "9c40ef3a-8c04-4a6c-b7a5-222222222222",
	})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestCancelBookingAlreadyCanceled(t *testing.T) {
	coordinator, mock := newCoordinator(t)

	mock.ExpectBegin()
	mock.
		ExpectQuery(`SELECT (.+) FROM "bookings" (.+)FOR UPDATE`).
		WillReturnRows(bookingRows(5, 7, types.BOOKING_CANCELED, nil))
	mock.ExpectRollback()

	err := coordinator.CancelBooking(context.Background(), 5, 7, "")
	assert.ErrorIs(t, err, ErrAlreadyCanceled)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestCancelBookingForbidden(t *testing.T) {
	coordinator, mock := newCoordinator(t)

	mock.ExpectBegin()
	mock.
		ExpectQuery(`SELECT (.+) FROM "bookings" (.+)FOR UPDATE`).
		WillReturnRows(bookingRows(5, 7, types.BOOKING_PENDING, nil))
	mock.ExpectRollback()

	err := coordinator.CancelBooking(context.Background(), 5, 42, "changed plans")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestConfirmBookingIdempotent(t *testing.T) {
	coordinator, mock := newCoordinator(t)

	mock.ExpectBegin()
	mock.
		ExpectQuery(`SELECT (.+) FROM "bookings" (.+)FOR UPDATE`).
		WillReturnRows(bookingRows(5, 7, types.BOOKING_CONFIRMED, nil))
	mock.ExpectCommit()

	booking, err := coordinator.ConfirmBooking(context.Background(), 5)
	assert.Nil(t, err)
	assert.Equal(t, types.BOOKING_CONFIRMED, booking.Status)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestConfirmBookingNotFound(t *testing.T) {
	coordinator, mock := newCoordinator(t)

	mock.ExpectBegin()
	mock.
		ExpectQuery(`SELECT (.+) FROM "bookings" (.+)FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := coordinator.ConfirmBooking(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, mock.ExpectationsWereMet())
}
