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

func newReclaimer(t *testing.T) (*Reclaimer, sqlmock.Sqlmock) {
	db, mock := newMockDB(t)
	holds := NewHoldManager(db, lib.NewKeyLock())
	return NewReclaimer(db, holds), mock
}

func TestSweepReclaimsExpiredHold(t *testing.T) {
	reclaimer, mock := newReclaimer(t)

	mock.
		ExpectQuery(`SELECT (.+) FROM "inventory_holds"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

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
	mock.
		ExpectExec(`UPDATE "bookings" SET (.+)status(.+)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := reclaimer.Sweep(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, 1, n)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestSweepSkipsHoldThatLostTheRace(t *testing.T) {
	reclaimer, mock := newReclaimer(t)

	// consumed between the scan and the per-hold lock
	mock.
		ExpectQuery(`SELECT (.+) FROM "inventory_holds"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))

	mock.ExpectBegin()
	mock.
		ExpectQuery(`SELECT (.+) FROM "inventory_holds" (.+)FOR UPDATE`).
		WillReturnRows(holdRows(4, 2, 2, types.HOLD_CONSUMED, time.Now().Add(-time.Minute)))
	mock.ExpectCommit()

	n, err := reclaimer.Sweep(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, 0, n)
	assert.Nil(t, mock.ExpectationsWereMet())
}
