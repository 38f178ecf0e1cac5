package inventory

import (
	"errors"

	"eventx/src/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ledger owns the general-admission counters. Every method locks the
// inventory row for update and must run inside the caller's transaction so
// the read-then-write on available quantity cannot interleave with another
// writer.
type Ledger struct{}

func (Ledger) lockRow(tx *gorm.DB, eventID, ticketTypeID uint) (*models.EventInventory, error) {
	var inv models.EventInventory
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(&models.EventInventory{EventID: eventID, TicketTypeID: ticketTypeID}).
		First(&inv).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, wrapStorage("ledger lock", err)
	}
	return &inv, nil
}

// Reserve moves qty from available to held, failing fast with
// InsufficientStockError when the row cannot cover the request. It never
// partially reserves.
func (l Ledger) Reserve(tx *gorm.DB, eventID, ticketTypeID, qty uint) error {
	inv, err := l.lockRow(tx, eventID, ticketTypeID)
	if err != nil {
		return err
	}
	if qty > inv.Available() {
		return &InsufficientStockError{Requested: qty, Available: inv.Available()}
	}
	err = tx.
		Model(&models.EventInventory{}).
		Where("id = ?", inv.ID).
		Update("held_qty", gorm.Expr("held_qty + ?", qty)).
		Error
	if err != nil {
		return wrapStorage("ledger reserve", err)
	}
	return nil
}

// Release returns held quantity to the pool. Clamped at the current held
// count, so double-processing a release on retry is a no-op for the excess.
func (l Ledger) Release(tx *gorm.DB, eventID, ticketTypeID, qty uint) error {
	inv, err := l.lockRow(tx, eventID, ticketTypeID)
	if err != nil {
		return err
	}
	rel := qty
	if rel > inv.HeldQty {
		rel = inv.HeldQty
	}
	if rel == 0 {
		return nil
	}
	err = tx.
		Model(&models.EventInventory{}).
		Where("id = ?", inv.ID).
		Update("held_qty", gorm.Expr("held_qty - ?", rel)).
		Error
	if err != nil {
		return wrapStorage("ledger release", err)
	}
	return nil
}

// CommitSale converts held quantity into sold quantity, clamped the same
// way as Release.
func (l Ledger) CommitSale(tx *gorm.DB, eventID, ticketTypeID, qty uint) error {
	inv, err := l.lockRow(tx, eventID, ticketTypeID)
	if err != nil {
		return err
	}
	take := qty
	if take > inv.HeldQty {
		take = inv.HeldQty
	}
	if take == 0 {
		return nil
	}
	err = tx.
		Model(&models.EventInventory{}).
		Where("id = ?", inv.ID).
		Updates(map[string]any{
			"held_qty": gorm.Expr("held_qty - ?", take),
			"sold_qty": gorm.Expr("sold_qty + ?", take),
		}).
		Error
	if err != nil {
		return wrapStorage("ledger commit sale", err)
	}
	return nil
}
