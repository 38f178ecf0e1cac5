package models

import (
	"eventx/src/types"
	"time"
)

type EventWaitlist struct {
	ID           uint                 `gorm:"primarykey" json:"id"`
	EventID      uint                 `gorm:"uniqueIndex:idx_waitlist_entry" json:"event_id,omitempty"`
	TicketTypeID *uint                `gorm:"uniqueIndex:idx_waitlist_entry" json:"ticket_type_id,omitempty"`
	UserID       uint                 `gorm:"uniqueIndex:idx_waitlist_entry" json:"user_id,omitempty"`
	Position     uint                 `json:"position"`
	Status       types.WaitlistStatus `gorm:"default:'active'" json:"status,omitempty"`
	NotifiedAt   *time.Time           `json:"notified_at,omitempty"`

	Event Event `json:"event,omitempty"`
	User  User  `json:"-"`

	types.Timestamps
}
