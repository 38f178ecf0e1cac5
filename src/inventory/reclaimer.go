package inventory

import (
	"context"
	"log"
	"time"

	"eventx/src/config"
	"eventx/src/lib"
	"eventx/src/models"
	"eventx/src/types"

	"gorm.io/gorm"
)

// Reclaimer sweeps holds past their deadline and converges their stock back
// into the pool. Each hold is reclaimed in its own transaction, so racing
// with a concurrent consume or cancel is safe: whichever transition reaches
// the row first wins and the loser no-ops.
type Reclaimer struct {
	db    *gorm.DB
	holds *HoldManager
}

func NewReclaimer(db *gorm.DB, holds *HoldManager) *Reclaimer {
	return &Reclaimer{db: db, holds: holds}
}

const reclaimBatchSize = 100

// Sweep expires every active hold whose deadline has passed, releasing its
// stock and expiring any still-pending booking that references it. Returns
// how many holds were reclaimed. Batched so a long backlog after delayed
// sweeps still converges over successive runs.
func (r *Reclaimer) Sweep(ctx context.Context) (int, error) {
	now := time.Now()
	var ids []uint
	err := r.db.
		Model(&models.InventoryHold{}).
		Where("status = ? AND expires_at < ?", types.HOLD_ACTIVE, now).
		Order("expires_at").
		Limit(reclaimBatchSize).
		Pluck("id", &ids).
		Error
	if err != nil {
		return 0, wrapStorage("expired holds scan", err)
	}

	reclaimed := 0
	for _, id := range ids {
		ok, err := r.reclaimOne(ctx, id, now)
		if err != nil {
			log.Printf("Error reclaiming hold %d: %s\n", id, err.Error())
			continue
		}
		if ok {
			reclaimed++
		}
	}
	return reclaimed, nil
}

func (r *Reclaimer) reclaimOne(ctx context.Context, holdID uint, now time.Time) (bool, error) {
	var expired *models.InventoryHold
	err := r.db.Transaction(func(tx *gorm.DB) error {
		hold, err := r.holds.lockHold(tx, holdID)
		if err != nil {
			return err
		}
		// lost the race against consume/cancel, or the deadline moved
		if hold.Status != types.HOLD_ACTIVE || hold.ExpiresAt.After(now) {
			return nil
		}
		if err := r.holds.expireHoldTx(tx, hold); err != nil {
			return err
		}
		err = tx.
			Model(&models.Booking{}).
			Where("hold_id = ? AND status = ?", hold.ID, types.BOOKING_PENDING).
			Update("status", types.BOOKING_EXPIRED).
			Error
		if err != nil {
			return wrapStorage("booking expire", err)
		}
		expired = hold
		return nil
	})
	if err != nil {
		return false, err
	}
	if expired == nil {
		return false, nil
	}
	emitAvailabilityChanged(expired.EventID, expired.TicketTypeID)
	return true, nil
}

// Start registers the recurring sweep on the shared scheduler.
func (r *Reclaimer) Start() error {
	interval := config.ReclaimerInterval()
	id, err := lib.CreateCronJob(func() {
		n, err := r.Sweep(context.Background())
		if err != nil {
			log.Printf("Error during hold sweep: %s\n", err.Error())
			return
		}
		if n > 0 {
			log.Printf("Reclaimed %d expired holds\n", n)
		}
	}, interval)
	if err != nil {
		return err
	}
	log.Printf("Scheduled hold reclaimer job %s every %s\n", *id, interval)
	return nil
}
