package inventory

import (
	"context"
	"testing"
	"time"

	"eventx/src/lib"
	"eventx/src/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func holdRows(id uint, ticketTypeId, quantity uint, status types.HoldStatus, expiresAt time.Time) *sqlmock.Rows {
	return sqlmock.
		NewRows([]string{"id", "event_id", "user_id", "ticket_type_id", "quantity", "status", "expires_at", "request_id"}).
		AddRow(id, 1, 7, ticketTypeId, quantity, status, expiresAt, "4dd7a0f4-2f83-4f18-9d3a-111111111111")
}

func TestConsumeHoldAlreadyTerminal(t *testing.T) {
	db, mock := newMockDB(t)
	manager := NewHoldManager(db, lib.NewKeyLock())

	mock.ExpectBegin()
	mock.
		ExpectQuery(`SELECT (.+) FROM "inventory_holds" (.+)FOR UPDATE`).
		WillReturnRows(holdRows(3, 2, 2, types.HOLD_CONSUMED, time.Now().Add(time.Minute)))
	mock.ExpectRollback()

	err := manager.ConsumeHold(context.Background(), 3)
	assert.ErrorIs(t, err, ErrAlreadyTerminal)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestConsumeHoldActive(t *testing.T) {
	db, mock := newMockDB(t)
	manager := NewHoldManager(db, lib.NewKeyLock())

	mock.ExpectBegin()
	mock.
		ExpectQuery(`SELECT (.+) FROM "inventory_holds" (.+)FOR UPDATE`).
		WillReturnRows(holdRows(3, 2, 2, types.HOLD_ACTIVE, time.Now().Add(10*time.Minute)))
	mock.
		ExpectExec(`UPDATE "inventory_holds" SET (.+)status(.+)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := manager.ConsumeHold(context.Background(), 3)
	assert.Nil(t, err)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestConsumeHoldPastDeadline(t *testing.T) {
	db, mock := newMockDB(t)
	manager := NewHoldManager(db, lib.NewKeyLock())

	// the expiry transition commits even though the consume fails
	mock.ExpectBegin()
	mock.
		ExpectQuery(`SELECT (.+) FROM "inventory_holds" (.+)FOR UPDATE`).
		WillReturnRows(holdRows(3, 2, 2, types.HOLD_ACTIVE, time.Now().Add(-time.Minute)))
	mock.
		ExpectQuery(`SELECT (.+) FROM "inventory_hold_seats"`).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}))
	mock.
		ExpectQuery(`SELECT (.+) FROM "event_inventories" (.+)FOR UPDATE`).
		WillReturnRows(inventoryRows(9, 1, 2, 100, 10, 2))
	mock.
		ExpectExec(`UPDATE "event_inventories" SET (.+)held_qty(.+)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.
		ExpectQuery(`SELECT (.+) FROM "event_waitlists" (.+)FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.
		ExpectExec(`UPDATE "inventory_holds" SET (.+)status(.+)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := manager.ConsumeHold(context.Background(), 3)
	assert.ErrorIs(t, err, ErrHoldExpired)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestReleaseHoldOwnership(t *testing.T) {
	db, mock := newMockDB(t)
	manager := NewHoldManager(db, lib.NewKeyLock())

	mock.ExpectBegin()
	mock.
		ExpectQuery(`SELECT (.+) FROM "inventory_holds" (.+)FOR UPDATE`).
		WillReturnRows(holdRows(3, 2, 2, types.HOLD_ACTIVE, time.Now().Add(time.Minute)))
	mock.ExpectRollback()

	err := manager.ReleaseHold(context.Background(), 3, 99)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestReleaseHoldAlreadyTerminal(t *testing.T) {
	db, mock := newMockDB(t)
	manager := NewHoldManager(db, lib.NewKeyLock())

	mock.ExpectBegin()
	mock.
		ExpectQuery(`SELECT (.+) FROM "inventory_holds" (.+)FOR UPDATE`).
		WillReturnRows(holdRows(3, 2, 2, types.HOLD_CANCELED, time.Now().Add(-time.Hour)))
	mock.ExpectRollback()

	err := manager.ReleaseHold(context.Background(), 3, 7)
	assert.ErrorIs(t, err, ErrAlreadyTerminal)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestCreateHoldRejectsMissingEvent(t *testing.T) {
	db, mock := newMockDB(t)
	manager := NewHoldManager(db, lib.NewKeyLock())

	mock.ExpectBegin()
	mock.
		ExpectQuery(`SELECT (.+) FROM "inventory_holds"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.
		ExpectQuery(`SELECT (.+) FROM "events" (.+)FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	ttID := uint(2)
	_, err := manager.CreateHold(context.Background(), CreateHoldParams{
		EventID:      1,
		UserID:       7,
		TicketTypeID: &ttID,
		Quantity:     2,
		TTL:          time.Minute,
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestCreateHoldReplayReturnsExisting(t *testing.T) {
	db, mock := newMockDB(t)
	manager := NewHoldManager(db, lib.NewKeyLock())

	mock.ExpectBegin()
	mock.
		ExpectQuery(`SELECT (.+) FROM "inventory_holds"`).
		WillReturnRows(holdRows(3, 2, 2, types.HOLD_ACTIVE, time.Now().Add(time.Minute)))
	mock.
		ExpectQuery(`SELECT (.+) FROM "inventory_hold_seats"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "hold_id", "seat_id"}))
	mock.ExpectCommit()

	hold, err := manager.CreateHold(context.Background(), CreateHoldParams{
		EventID:   1,
		UserID:    7,
		Quantity:  2,
		RequestID: "4dd7a0f4-2f83-4f18-9d3a-111111111111",
	})
	assert.Nil(t, err)
	assert.Equal(t, uint(3), hold.ID)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestCreateHoldReplayForeignRequestID(t *testing.T) {
	db, mock := newMockDB(t)
	manager := NewHoldManager(db, lib.NewKeyLock())

	// the stored hold belongs to user 7, the caller is user 42
	mock.ExpectBegin()
	mock.
		ExpectQuery(`SELECT (.+) FROM "inventory_holds"`).
		WillReturnRows(holdRows(3, 2, 2, types.HOLD_ACTIVE, time.Now().Add(time.Minute)))
	mock.
		ExpectQuery(`SELECT (.+) FROM "inventory_hold_seats"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "hold_id", "seat_id"}))
	mock.ExpectRollback()

	_, err := manager.CreateHold(context.Background(), CreateHoldParams{
		EventID:   1,
		UserID:    42,
		Quantity:  2,
		RequestID: "4dd7a0f4-2f83-4f18-9d3a-111111111111",
	})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestExtendHold(t *testing.T) {
	db, mock := newMockDB(t)
	manager := NewHoldManager(db, lib.NewKeyLock())

	mock.ExpectBegin()
	mock.
		ExpectQuery(`SELECT (.+) FROM "inventory_holds" (.+)FOR UPDATE`).
		WillReturnRows(holdRows(3, 2, 2, types.HOLD_ACTIVE, time.Now().Add(time.Minute)))
	mock.
		ExpectExec(`UPDATE "inventory_holds" SET (.+)expires_at(.+)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	before := time.Now()
	hold, err := manager.ExtendHold(context.Background(), 3, 7, 10*time.Minute)
	assert.Nil(t, err)
	assert.True(t, hold.ExpiresAt.After(before.Add(9*time.Minute)))
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestExtendHoldTerminal(t *testing.T) {
	db, mock := newMockDB(t)
	manager := NewHoldManager(db, lib.NewKeyLock())

	mock.ExpectBegin()
	mock.
		ExpectQuery(`SELECT (.+) FROM "inventory_holds" (.+)FOR UPDATE`).
		WillReturnRows(holdRows(3, 2, 2, types.HOLD_EXPIRED, time.Now().Add(-time.Hour)))
	mock.ExpectRollback()

	_, err := manager.ExtendHold(context.Background(), 3, 7, 10*time.Minute)
	assert.ErrorIs(t, err, ErrAlreadyTerminal)
	assert.Nil(t, mock.ExpectationsWereMet())
}
