package inventory

import (
	"context"
	"errors"
	"time"

	"eventx/src/config"
	"eventx/src/lib"
	"eventx/src/models"
	"eventx/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HoldManager creates and retires time-bounded reservations. It is the only
// component that mutates ledger counters or seat status; the coordinator and
// the reclaimer always go through it.
type HoldManager struct {
	db     *gorm.DB
	locks  *lib.KeyLock
	ledger Ledger
	seats  SeatRegistry
}

func NewHoldManager(db *gorm.DB, locks *lib.KeyLock) *HoldManager {
	return &HoldManager{db: db, locks: locks}
}

type CreateHoldParams struct {
	EventID      uint
	UserID       uint
	TicketTypeID *uint
	Quantity     uint
	SeatIDs      []uint
	TTL          time.Duration
	RequestID    string
}

// CreateHold validates the event, reserves stock and persists the hold in
// one transaction. A failure at any point rolls the reservation back with
// the transaction, so a hold row and its reserved stock are never visible
// independently. Retries with the same request id return the original hold.
func (m *HoldManager) CreateHold(ctx context.Context, p CreateHoldParams) (*models.InventoryHold, error) {
	if p.RequestID == "" {
		p.RequestID = uuid.NewString()
	}
	if p.TTL <= 0 {
		p.TTL = config.DirectHoldTTL()
	}
	release, err := m.lockKeys(ctx, p.EventID, p.TicketTypeID, p.SeatIDs)
	if err != nil {
		return nil, err
	}
	defer release()

	var hold *models.InventoryHold
	err = m.db.Transaction(func(tx *gorm.DB) error {
		h, err := m.createHoldTx(tx, time.Now(), p)
		if err != nil {
			return err
		}
		hold = h
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			if existing, ferr := m.findByRequestID(p.RequestID); ferr == nil {
				if existing.UserID != p.UserID {
					return nil, ErrForbidden
				}
				return existing, nil
			}
		}
		return nil, err
	}
	emitAvailabilityChanged(hold.EventID, hold.TicketTypeID)
	return hold, nil
}

// lockKeys takes the in-process locks for the touched inventory keys with a
// bounded wait. Lock-wait timeouts surface as ErrBusy so callers can retry
// with backoff instead of queueing up behind a hot row.
func (m *HoldManager) lockKeys(ctx context.Context, eventID uint, ticketTypeID *uint, seatIDs []uint) (func(), error) {
	keys := make([]string, 0, len(seatIDs)+1)
	if ticketTypeID != nil {
		keys = append(keys, lib.LedgerLockKey(eventID, *ticketTypeID))
	}
	for _, id := range seatIDs {
		keys = append(keys, lib.SeatLockKey(id))
	}
	if len(keys) == 0 {
		return func() {}, nil
	}
	lctx, cancel := context.WithTimeout(ctx, config.LockWaitTimeout())
	defer cancel()
	release, err := m.locks.Acquire(lctx, keys...)
	if err != nil {
		return nil, ErrBusy
	}
	return release, nil
}

func (m *HoldManager) createHoldTx(tx *gorm.DB, now time.Time, p CreateHoldParams) (*models.InventoryHold, error) {
	var existing models.InventoryHold
	err := tx.
		Where(&models.InventoryHold{RequestID: p.RequestID}).
		Preload("Seats").
		First(&existing).
		Error
	if err == nil {
		if existing.UserID != p.UserID {
			return nil, ErrForbidden
		}
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, wrapStorage("hold replay lookup", err)
	}

	var event models.Event
	err = tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(&models.Event{ID: p.EventID}).
		First(&event).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, wrapStorage("event lock", err)
	}
	if !event.Bookable(now) {
		return nil, ErrNotBookable
	}

	quantity := p.Quantity
	switch event.SeatMode {
	case types.SEAT_MODE_GENERAL_ADMISSION:
		if p.TicketTypeID == nil || p.Quantity == 0 {
			return nil, ErrInvalidRequest
		}
		if err := m.ledger.Reserve(tx, p.EventID, *p.TicketTypeID, p.Quantity); err != nil {
			return nil, err
		}
	case types.SEAT_MODE_RESERVED_SEATING:
		if len(p.SeatIDs) == 0 || uint(len(p.SeatIDs)) != p.Quantity {
			return nil, ErrInvalidRequest
		}
		if err := m.seats.ReserveSeats(tx, p.EventID, p.TicketTypeID, p.SeatIDs); err != nil {
			return nil, err
		}
		// seat holds track stock through their seat rows, not the counter
		quantity = 0
	default:
		return nil, ErrInvalidRequest
	}

	hold := models.InventoryHold{
		EventID:      p.EventID,
		UserID:       p.UserID,
		TicketTypeID: p.TicketTypeID,
		Quantity:     quantity,
		Status:       types.HOLD_ACTIVE,
		ExpiresAt:    now.Add(p.TTL),
		RequestID:    p.RequestID,
	}
	if err := tx.Create(&hold).Error; err != nil {
		return nil, wrapStorage("hold create", err)
	}
	for _, seatID := range p.SeatIDs {
		hs := models.InventoryHoldSeat{HoldID: hold.ID, SeatID: seatID}
		if err := tx.Create(&hs).Error; err != nil {
			return nil, wrapStorage("hold seat create", err)
		}
		hold.Seats = append(hold.Seats, hs)
	}
	return &hold, nil
}

func (m *HoldManager) findByRequestID(requestID string) (*models.InventoryHold, error) {
	var hold models.InventoryHold
	err := m.db.
		Where(&models.InventoryHold{RequestID: requestID}).
		Preload("Seats").
		First(&hold).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, wrapStorage("hold lookup", err)
	}
	return &hold, nil
}

func (m *HoldManager) lockHold(tx *gorm.DB, holdID uint) (*models.InventoryHold, error) {
	var hold models.InventoryHold
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", holdID).
		First(&hold).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, wrapStorage("hold lock", err)
	}
	return &hold, nil
}

// ReleaseHold cancels an active hold and returns its stock to the pool.
// actorID zero means a system call with no ownership check. A hold that
// already reached a terminal state yields ErrAlreadyTerminal and nothing is
// released twice.
func (m *HoldManager) ReleaseHold(ctx context.Context, holdID, actorID uint) error {
	var released *models.InventoryHold
	err := m.db.Transaction(func(tx *gorm.DB) error {
		hold, err := m.lockHold(tx, holdID)
		if err != nil {
			return err
		}
		if actorID != 0 && hold.UserID != actorID {
			return ErrForbidden
		}
		h, ok, err := m.releaseHoldTx(tx, hold)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAlreadyTerminal
		}
		released = h
		return nil
	})
	if err != nil {
		return err
	}
	emitAvailabilityChanged(released.EventID, released.TicketTypeID)
	return nil
}

// releaseHoldTx is the terminal-race-safe release shared by cancellation
// paths. The bool result is false when the hold was already terminal and
// nothing happened.
func (m *HoldManager) releaseHoldTx(tx *gorm.DB, hold *models.InventoryHold) (*models.InventoryHold, bool, error) {
	if hold.Status.Terminal() {
		return hold, false, nil
	}
	if err := m.releaseReservationTx(tx, hold); err != nil {
		return nil, false, err
	}
	err := tx.
		Model(&models.InventoryHold{}).
		Where("id = ?", hold.ID).
		Update("status", types.HOLD_CANCELED).
		Error
	if err != nil {
		return nil, false, wrapStorage("hold cancel", err)
	}
	hold.Status = types.HOLD_CANCELED
	return hold, true, nil
}

// releaseReservationTx returns the stock behind a hold: seat holds flip
// their seats back to available, counter holds decrement held_qty. Also
// wakes the next waitlist entry for the freed stock.
func (m *HoldManager) releaseReservationTx(tx *gorm.DB, hold *models.InventoryHold) error {
	seatIDs, err := m.holdSeatIDs(tx, hold.ID)
	if err != nil {
		return err
	}
	if len(seatIDs) > 0 {
		if err := m.seats.ReleaseSeats(tx, seatIDs); err != nil {
			return err
		}
	} else if hold.TicketTypeID != nil && hold.Quantity > 0 {
		if err := m.ledger.Release(tx, hold.EventID, *hold.TicketTypeID, hold.Quantity); err != nil {
			return err
		}
	}
	return notifyWaitlistTx(tx, hold.EventID, hold.TicketTypeID)
}

func (m *HoldManager) holdSeatIDs(tx *gorm.DB, holdID uint) ([]uint, error) {
	var seatIDs []uint
	err := tx.
		Model(&models.InventoryHoldSeat{}).
		Where("hold_id = ?", holdID).
		Pluck("seat_id", &seatIDs).
		Error
	if err != nil {
		return nil, wrapStorage("hold seats lookup", err)
	}
	return seatIDs, nil
}

// ExtendHold pushes an active hold's deadline to now+ttl. A hold already
// past its deadline is expired on the spot and the caller gets
// ErrHoldExpired, same as consume.
func (m *HoldManager) ExtendHold(ctx context.Context, holdID, actorID uint, ttl time.Duration) (*models.InventoryHold, error) {
	if ttl <= 0 {
		ttl = config.DirectHoldTTL()
	}
	var (
		extended *models.InventoryHold
		expired  *models.InventoryHold
	)
	err := m.db.Transaction(func(tx *gorm.DB) error {
		hold, err := m.lockHold(tx, holdID)
		if err != nil {
			return err
		}
		if actorID != 0 && hold.UserID != actorID {
			return ErrForbidden
		}
		if hold.Status.Terminal() {
			return ErrAlreadyTerminal
		}
		now := time.Now()
		if now.After(hold.ExpiresAt) {
			if err := m.expireHoldTx(tx, hold); err != nil {
				return err
			}
			expired = hold
			return nil
		}
		deadline := now.Add(ttl)
		err = tx.
			Model(&models.InventoryHold{}).
			Where("id = ?", hold.ID).
			Update("expires_at", deadline).
			Error
		if err != nil {
			return wrapStorage("hold extend", err)
		}
		hold.ExpiresAt = deadline
		extended = hold
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired != nil {
		emitAvailabilityChanged(expired.EventID, expired.TicketTypeID)
		return nil, ErrHoldExpired
	}
	return extended, nil
}

// ConsumeHold marks an active hold as consumed by a confirmed sale. The
// expiry check and the transition happen under the same row lock: a hold
// past its deadline is expired on the spot (stock released) and the caller
// gets ErrHoldExpired so it can fail the booking instead of silently
// succeeding. The expiry itself commits even though an error is returned.
func (m *HoldManager) ConsumeHold(ctx context.Context, holdID uint) error {
	var (
		expired *models.InventoryHold
		result  error
	)
	err := m.db.Transaction(func(tx *gorm.DB) error {
		hold, err := m.consumeHoldTx(tx, time.Now(), holdID)
		if errors.Is(err, ErrHoldExpired) {
			expired = hold
			result = err
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}
	if expired != nil {
		emitAvailabilityChanged(expired.EventID, expired.TicketTypeID)
	}
	return result
}

// consumeHoldTx returns the hold together with ErrHoldExpired when the
// deadline passed; in that case the hold has been expired and its stock
// released, and the caller must commit the transaction for that to stick.
func (m *HoldManager) consumeHoldTx(tx *gorm.DB, now time.Time, holdID uint) (*models.InventoryHold, error) {
	hold, err := m.lockHold(tx, holdID)
	if err != nil {
		return nil, err
	}
	if hold.Status.Terminal() {
		return nil, ErrAlreadyTerminal
	}
	if now.After(hold.ExpiresAt) {
		if err := m.expireHoldTx(tx, hold); err != nil {
			return nil, err
		}
		return hold, ErrHoldExpired
	}
	err = tx.
		Model(&models.InventoryHold{}).
		Where("id = ?", hold.ID).
		Update("status", types.HOLD_CONSUMED).
		Error
	if err != nil {
		return nil, wrapStorage("hold consume", err)
	}
	hold.Status = types.HOLD_CONSUMED
	return hold, nil
}

// expireHoldTx transitions an active hold to expired and releases its
// stock. Caller holds the row lock.
func (m *HoldManager) expireHoldTx(tx *gorm.DB, hold *models.InventoryHold) error {
	if err := m.releaseReservationTx(tx, hold); err != nil {
		return err
	}
	err := tx.
		Model(&models.InventoryHold{}).
		Where("id = ?", hold.ID).
		Update("status", types.HOLD_EXPIRED).
		Error
	if err != nil {
		return wrapStorage("hold expire", err)
	}
	hold.Status = types.HOLD_EXPIRED
	return nil
}

// confirmSaleTx moves the stock behind a consumed hold from held to sold.
// Runs when payment completes, never at consume time.
func (m *HoldManager) confirmSaleTx(tx *gorm.DB, hold *models.InventoryHold) error {
	seatIDs, err := m.holdSeatIDs(tx, hold.ID)
	if err != nil {
		return err
	}
	if len(seatIDs) > 0 {
		return m.seats.CommitSeats(tx, seatIDs)
	}
	if hold.TicketTypeID != nil && hold.Quantity > 0 {
		return m.ledger.CommitSale(tx, hold.EventID, *hold.TicketTypeID, hold.Quantity)
	}
	return nil
}
