package inventory

import (
	"eventx/src/models"
	"eventx/src/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeatRegistry owns per-seat state for reserved-seating events. Batch
// operations are all-or-nothing: either every seat in the call transitions,
// or none do.
type SeatRegistry struct{}

// ReserveSeats locks and validates the whole batch, then flips every seat
// AVAILABLE->HELD. A non-nil ticketTypeID rejects seats assigned to a
// different ticket type before any row lock is taken.
func (SeatRegistry) ReserveSeats(tx *gorm.DB, eventID uint, ticketTypeID *uint, seatIDs []uint) error {
	if ticketTypeID != nil {
		var mismatched []uint
		err := tx.
			Model(&models.Seat{}).
			Where("event_id = ? AND id IN ?", eventID, seatIDs).
			Where("ticket_type_id IS NOT NULL AND ticket_type_id <> ?", *ticketTypeID).
			Pluck("id", &mismatched).
			Error
		if err != nil {
			return wrapStorage("seat type check", err)
		}
		if len(mismatched) > 0 {
			return &SeatsUnavailableError{Missing: mismatched}
		}
	}

	var seats []models.Seat
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("event_id = ? AND id IN ? AND status = ?", eventID, seatIDs, types.SEAT_AVAILABLE).
		Find(&seats).
		Error
	if err != nil {
		return wrapStorage("seat lock", err)
	}
	if len(seats) != len(seatIDs) {
		taken := make(map[uint]bool, len(seats))
		for _, s := range seats {
			taken[s.ID] = true
		}
		missing := make([]uint, 0, len(seatIDs)-len(seats))
		for _, id := range seatIDs {
			if !taken[id] {
				missing = append(missing, id)
			}
		}
		return &SeatsUnavailableError{Missing: missing}
	}

	err = tx.
		Model(&models.Seat{}).
		Where("id IN ?", seatIDs).
		Update("status", types.SEAT_HELD).
		Error
	if err != nil {
		return wrapStorage("seat reserve", err)
	}
	return nil
}

// ReleaseSeats flips HELD->AVAILABLE. Seats already released (or sold)
// are left alone, which makes retried releases a no-op.
func (SeatRegistry) ReleaseSeats(tx *gorm.DB, seatIDs []uint) error {
	if len(seatIDs) == 0 {
		return nil
	}
	err := tx.
		Model(&models.Seat{}).
		Where("id IN ? AND status = ?", seatIDs, types.SEAT_HELD).
		Update("status", types.SEAT_AVAILABLE).
		Error
	if err != nil {
		return wrapStorage("seat release", err)
	}
	return nil
}

// CommitSeats flips HELD->SOLD for a confirmed sale.
func (SeatRegistry) CommitSeats(tx *gorm.DB, seatIDs []uint) error {
	if len(seatIDs) == 0 {
		return nil
	}
	err := tx.
		Model(&models.Seat{}).
		Where("id IN ? AND status = ?", seatIDs, types.SEAT_HELD).
		Update("status", types.SEAT_SOLD).
		Error
	if err != nil {
		return wrapStorage("seat commit", err)
	}
	return nil
}

// AdminSetStatus moves a seat between AVAILABLE and BLOCKED, optionally
// reassigning its ticket type. Seats that are currently held or sold belong
// to a hold or booking and cannot be edited here.
func (SeatRegistry) AdminSetStatus(tx *gorm.DB, eventID, seatID uint, status types.SeatStatus, ticketTypeID *uint) error {
	if status != types.SEAT_AVAILABLE && status != types.SEAT_BLOCKED {
		return ErrInvalidRequest
	}
	var seat models.Seat
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("event_id = ? AND id = ?", eventID, seatID).
		First(&seat).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		return wrapStorage("seat lookup", err)
	}
	if seat.Status == types.SEAT_HELD || seat.Status == types.SEAT_SOLD {
		return ErrSeatInUse
	}
	updates := map[string]any{}
	if seat.Status != status {
		updates["status"] = status
	}
	if ticketTypeID != nil {
		updates["ticket_type_id"] = *ticketTypeID
	}
	if len(updates) == 0 {
		return nil
	}
	err = tx.
		Model(&models.Seat{}).
		Where("id = ?", seat.ID).
		Updates(updates).
		Error
	if err != nil {
		return wrapStorage("seat update", err)
	}
	return nil
}
