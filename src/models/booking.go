package models

import (
	"eventx/src/types"
	"time"
)

type Booking struct {
	ID              uint                `gorm:"primarykey" json:"id"`
	UserID          uint                `json:"user_id,omitempty"`
	EventID         uint                `json:"event_id,omitempty"`
	Status          types.BookingStatus `gorm:"default:'pending'" json:"status,omitempty"`
	TotalPriceCents uint                `json:"total_price_cents,omitempty"`
	Currency        string              `gorm:"default:'USD'" json:"currency,omitempty"`
	HoldID          *uint               `json:"hold_id,omitempty"`
	RequestID       string              `gorm:"uniqueIndex" json:"request_id,omitempty"`
	ConfirmedAt     *time.Time          `json:"confirmed_at,omitempty"`
	CanceledAt      *time.Time          `json:"canceled_at,omitempty"`

	Event Event          `json:"event,omitempty"`
	User  User           `json:"-"`
	Hold  *InventoryHold `gorm:"foreignKey:hold_id" json:"hold,omitempty"`
	Items []BookingItem  `gorm:"foreignKey:booking_id" json:"items,omitempty"`

	types.Timestamps
}

// BookingItem is one row per seat for reserved seating, or a single
// aggregate row with a quantity for general admission. PriceCents is a
// snapshot of the ticket type's unit price at booking time.
type BookingItem struct {
	ID           uint  `gorm:"primarykey" json:"id"`
	BookingID    uint  `json:"booking_id,omitempty"`
	TicketTypeID *uint `json:"ticket_type_id,omitempty"`
	SeatID       *uint `json:"seat_id,omitempty"`
	PriceCents   uint  `json:"price_cents"`
	Quantity     uint  `json:"quantity"`

	types.Timestamps
}

type Cancellation struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	BookingID uint   `json:"booking_id,omitempty"`
	Reason    string `json:"reason,omitempty"`

	types.Timestamps
}
