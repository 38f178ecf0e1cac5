package inventory

import (
	"context"
	"errors"
	"time"

	"eventx/src/config"
	"eventx/src/models"
	"eventx/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Coordinator drives the reserve -> confirm -> cancel lifecycle. The hold
// and the pending booking are written in one transaction so neither is
// ever visible without the other; any later failure rolls both back.
type Coordinator struct {
	db    *gorm.DB
	holds *HoldManager
}

func NewCoordinator(db *gorm.DB, holds *HoldManager) *Coordinator {
	return &Coordinator{db: db, holds: holds}
}

type CreateBookingParams struct {
	EventID      uint
	TicketTypeID uint
	Quantity     uint
	UserID       uint
	SeatIDs      []uint
	RequestID    string
}

// CreateBooking is idempotent per request id: a retry returns the original
// booking and reserves nothing new.
func (c *Coordinator) CreateBooking(ctx context.Context, p CreateBookingParams) (*models.Booking, error) {
	if p.RequestID == "" {
		p.RequestID = uuid.NewString()
	}
	if existing, err := c.findByRequestID(p.RequestID); err == nil {
		if existing.UserID != p.UserID {
			return nil, ErrForbidden
		}
		return existing, nil
	}

	release, err := c.holds.lockKeys(ctx, p.EventID, &p.TicketTypeID, p.SeatIDs)
	if err != nil {
		return nil, err
	}
	defer release()

	var booking *models.Booking
	err = c.db.Transaction(func(tx *gorm.DB) error {
		var tt models.TicketType
		err := tx.
			Where(&models.TicketType{ID: p.TicketTypeID, EventID: p.EventID}).
			First(&tt).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return wrapStorage("ticket type lookup", err)
		}
		if !tt.Active {
			return ErrNotBookable
		}

		hold, err := c.holds.createHoldTx(tx, time.Now(), CreateHoldParams{
			EventID:      p.EventID,
			UserID:       p.UserID,
			TicketTypeID: &p.TicketTypeID,
			Quantity:     p.Quantity,
			SeatIDs:      p.SeatIDs,
			TTL:          config.CheckoutHoldTTL(),
			RequestID:    p.RequestID,
		})
		if err != nil {
			return err
		}

		b := models.Booking{
			UserID:          p.UserID,
			EventID:         p.EventID,
			Status:          types.BOOKING_PENDING,
			TotalPriceCents: tt.PriceCents * p.Quantity,
			Currency:        tt.Currency,
			HoldID:          &hold.ID,
			RequestID:       p.RequestID,
		}
		if err := tx.Create(&b).Error; err != nil {
			return wrapStorage("booking create", err)
		}

		if len(hold.Seats) > 0 {
			for _, hs := range hold.Seats {
				seatID := hs.SeatID
				item := models.BookingItem{
					BookingID:    b.ID,
					TicketTypeID: &tt.ID,
					SeatID:       &seatID,
					PriceCents:   tt.PriceCents,
					Quantity:     1,
				}
				if err := tx.Create(&item).Error; err != nil {
					return wrapStorage("booking item create", err)
				}
				b.Items = append(b.Items, item)
			}
		} else {
			item := models.BookingItem{
				BookingID:    b.ID,
				TicketTypeID: &tt.ID,
				PriceCents:   tt.PriceCents,
				Quantity:     p.Quantity,
			}
			if err := tx.Create(&item).Error; err != nil {
				return wrapStorage("booking item create", err)
			}
			b.Items = append(b.Items, item)
		}

		b.Hold = hold
		booking = &b
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			// a concurrent retry with the same request id won the insert
			if existing, ferr := c.findByRequestID(p.RequestID); ferr == nil {
				return existing, nil
			}
		}
		return nil, err
	}
	emitAvailabilityChanged(booking.EventID, &p.TicketTypeID)
	return booking, nil
}

func (c *Coordinator) findByRequestID(requestID string) (*models.Booking, error) {
	var booking models.Booking
	err := c.db.
		Where(&models.Booking{RequestID: requestID}).
		Preload("Hold").
		Preload("Items").
		First(&booking).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, wrapStorage("booking lookup", err)
	}
	return &booking, nil
}

func (c *Coordinator) lockBooking(tx *gorm.DB, bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", bookingID).
		First(&booking).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, wrapStorage("booking lock", err)
	}
	return &booking, nil
}

// CancelBooking cancels the booking, releases the linked hold if it is
// still active, and records the cancellation, all in one transaction. A
// crash cannot leave the booking canceled while its seats stay held.
func (c *Coordinator) CancelBooking(ctx context.Context, bookingID, actorID uint, reason string) error {
	var (
		eventID      uint
		ticketTypeID *uint
	)
	err := c.db.Transaction(func(tx *gorm.DB) error {
		booking, err := c.lockBooking(tx, bookingID)
		if err != nil {
			return err
		}
		if booking.UserID != actorID {
			return ErrForbidden
		}
		switch booking.Status {
		case types.BOOKING_CANCELED:
			return ErrAlreadyCanceled
		case types.BOOKING_EXPIRED:
			return ErrAlreadyExpired
		}

		now := time.Now()
		err = tx.
			Model(&models.Booking{}).
			Where("id = ?", booking.ID).
			Updates(map[string]any{
				"status":      types.BOOKING_CANCELED,
				"canceled_at": now,
			}).
			Error
		if err != nil {
			return wrapStorage("booking cancel", err)
		}

		if booking.HoldID != nil {
			hold, err := c.holds.lockHold(tx, *booking.HoldID)
			if err != nil && !errors.Is(err, ErrNotFound) {
				return err
			}
			if hold != nil {
				// already-terminal holds are a no-op here
				if _, _, err := c.holds.releaseHoldTx(tx, hold); err != nil {
					return err
				}
				ticketTypeID = hold.TicketTypeID
			}
		}

		if reason == "" {
			reason = "User requested cancellation"
		}
		cancellation := models.Cancellation{BookingID: booking.ID, Reason: reason}
		if err := tx.Create(&cancellation).Error; err != nil {
			return wrapStorage("cancellation create", err)
		}
		eventID = booking.EventID
		return nil
	})
	if err != nil {
		return err
	}
	emitAvailabilityChanged(eventID, ticketTypeID)
	return nil
}

// ConfirmBooking is the payment-completion hook: it consumes the hold,
// commits the sale (held -> sold) and flips the booking to confirmed, all
// atomically. Confirming an already confirmed booking is a no-op; a booking
// whose hold expired first is marked expired and the caller sees
// ErrHoldExpired.
func (c *Coordinator) ConfirmBooking(ctx context.Context, bookingID uint) (*models.Booking, error) {
	var (
		confirmed   *models.Booking
		expiredHold *models.InventoryHold
	)
	err := c.db.Transaction(func(tx *gorm.DB) error {
		booking, err := c.lockBooking(tx, bookingID)
		if err != nil {
			return err
		}
		switch booking.Status {
		case types.BOOKING_CONFIRMED:
			confirmed = booking
			return nil
		case types.BOOKING_CANCELED:
			return ErrAlreadyCanceled
		case types.BOOKING_EXPIRED:
			return ErrAlreadyExpired
		case types.BOOKING_FAILED:
			return ErrAlreadyTerminal
		}
		if booking.HoldID == nil {
			return ErrAlreadyTerminal
		}

		now := time.Now()
		hold, err := c.holds.consumeHoldTx(tx, now, *booking.HoldID)
		if err != nil {
			if errors.Is(err, ErrHoldExpired) {
				// commit the expiry and the failed booking, then surface
				uerr := tx.
					Model(&models.Booking{}).
					Where("id = ?", booking.ID).
					Update("status", types.BOOKING_EXPIRED).
					Error
				if uerr != nil {
					return wrapStorage("booking expire", uerr)
				}
				expiredHold = hold
				return nil
			}
			return err
		}
		if err := c.holds.confirmSaleTx(tx, hold); err != nil {
			return err
		}
		err = tx.
			Model(&models.Booking{}).
			Where("id = ?", booking.ID).
			Updates(map[string]any{
				"status":       types.BOOKING_CONFIRMED,
				"confirmed_at": now,
			}).
			Error
		if err != nil {
			return wrapStorage("booking confirm", err)
		}
		booking.Status = types.BOOKING_CONFIRMED
		booking.ConfirmedAt = &now
		confirmed = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expiredHold != nil {
		emitAvailabilityChanged(expiredHold.EventID, expiredHold.TicketTypeID)
		return nil, ErrHoldExpired
	}
	emitAvailabilityChanged(confirmed.EventID, nil)
	return confirmed, nil
}
