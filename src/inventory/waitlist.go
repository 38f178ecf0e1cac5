package inventory

import (
	"context"
	"errors"
	"time"

	"eventx/src/models"
	"eventx/src/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Waitlist queues buyers for sold-out stock. Entries are positional per
// (event, ticket type); releasing stock notifies the front of the queue.
type Waitlist struct {
	db *gorm.DB
}

func NewWaitlist(db *gorm.DB) *Waitlist {
	return &Waitlist{db: db}
}

// Join appends the user to the waitlist, returning the existing entry when
// the user already queued for the same stock. The event row lock serializes
// concurrent joins so positions stay unique even for the NULL ticket type
// rows the unique index cannot cover.
func (w *Waitlist) Join(ctx context.Context, eventID uint, ticketTypeID *uint, userID uint) (*models.EventWaitlist, error) {
	var entry models.EventWaitlist
	err := w.db.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Event{ID: eventID}).
			First(&event).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return wrapStorage("event lock", err)
		}
		if event.Status != types.EVENT_PUBLISHED {
			return ErrNotBookable
		}

		q := tx.Where("event_id = ? AND user_id = ?", eventID, userID)
		if ticketTypeID != nil {
			q = q.Where("ticket_type_id = ?", *ticketTypeID)
		} else {
			q = q.Where("ticket_type_id IS NULL")
		}
		err = q.First(&entry).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return wrapStorage("waitlist lookup", err)
		}

		var last uint
		countQ := tx.Model(&models.EventWaitlist{}).Where("event_id = ?", eventID)
		if ticketTypeID != nil {
			countQ = countQ.Where("ticket_type_id = ?", *ticketTypeID)
		} else {
			countQ = countQ.Where("ticket_type_id IS NULL")
		}
		err = countQ.Select("COALESCE(MAX(position), 0)").Scan(&last).Error
		if err != nil {
			return wrapStorage("waitlist position", err)
		}

		entry = models.EventWaitlist{
			EventID:      eventID,
			TicketTypeID: ticketTypeID,
			UserID:       userID,
			Position:     last + 1,
			Status:       types.WAITLIST_ACTIVE,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return wrapStorage("waitlist create", err)
		}
		return nil
	})
	if err != nil {
		// a concurrent join by the same user won the insert
		if isUniqueViolation(err) {
			var existing models.EventWaitlist
			q := w.db.Where("event_id = ? AND user_id = ?", eventID, userID)
			if ticketTypeID != nil {
				q = q.Where("ticket_type_id = ?", *ticketTypeID)
			} else {
				q = q.Where("ticket_type_id IS NULL")
			}
			if ferr := q.First(&existing).Error; ferr == nil {
				return &existing, nil
			}
		}
		return nil, err
	}
	return &entry, nil
}

func (w *Waitlist) ListOwn(ctx context.Context, userID uint) ([]models.EventWaitlist, error) {
	var entries []models.EventWaitlist
	err := w.db.
		Where(&models.EventWaitlist{UserID: userID}).
		Order("created_at DESC").
		Find(&entries).
		Error
	if err != nil {
		return nil, wrapStorage("waitlist list", err)
	}
	return entries, nil
}

// notifyWaitlistTx flips the front active entry for the freed stock to
// notified. Runs inside the releasing transaction so a crash never loses
// both the release and the notification.
func notifyWaitlistTx(tx *gorm.DB, eventID uint, ticketTypeID *uint) error {
	var entry models.EventWaitlist
	q := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("event_id = ? AND status = ?", eventID, types.WAITLIST_ACTIVE)
	if ticketTypeID != nil {
		q = q.Where("ticket_type_id = ? OR ticket_type_id IS NULL", *ticketTypeID)
	}
	err := q.Order("position").First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return wrapStorage("waitlist scan", err)
	}
	now := time.Now()
	err = tx.
		Model(&models.EventWaitlist{}).
		Where("id = ?", entry.ID).
		Updates(map[string]any{
			"status":      types.WAITLIST_NOTIFIED,
			"notified_at": now,
		}).
		Error
	if err != nil {
		return wrapStorage("waitlist notify", err)
	}
	return nil
}
