package models

import (
	"eventx/src/types"
	"time"
)

// EventInventory is the authoritative counter row for general-admission
// stock. The row invariant 0 <= sold_qty + held_qty <= initial_qty must hold
// in every committed state; callers mutate it only under a row lock.
type EventInventory struct {
	ID           uint `gorm:"primarykey" json:"id"`
	EventID      uint `gorm:"uniqueIndex:idx_inventory_event_ticket_type" json:"event_id,omitempty"`
	TicketTypeID uint `gorm:"uniqueIndex:idx_inventory_event_ticket_type" json:"ticket_type_id,omitempty"`
	InitialQty   uint `json:"initial_qty"`
	SoldQty      uint `json:"sold_qty"`
	HeldQty      uint `json:"held_qty"`

	Event      Event      `json:"-"`
	TicketType TicketType `json:"ticket_type,omitempty"`

	types.Timestamps
}

// Available never goes below zero even if counters are momentarily read
// without a lock.
func (i *EventInventory) Available() uint {
	taken := i.SoldQty + i.HeldQty
	if taken >= i.InitialQty {
		return 0
	}
	return i.InitialQty - taken
}

type Seat struct {
	ID           uint             `gorm:"primarykey" json:"id"`
	EventID      uint             `gorm:"uniqueIndex:idx_seat_position" json:"event_id,omitempty"`
	Section      string           `gorm:"uniqueIndex:idx_seat_position" json:"section,omitempty"`
	RowLabel     string           `gorm:"uniqueIndex:idx_seat_position" json:"row,omitempty"`
	SeatNumber   string           `gorm:"uniqueIndex:idx_seat_position" json:"number,omitempty"`
	TicketTypeID *uint            `json:"ticket_type_id,omitempty"`
	Status       types.SeatStatus `gorm:"default:'available'" json:"status,omitempty"`

	Event      Event       `json:"-"`
	TicketType *TicketType `json:"ticket_type,omitempty"`

	types.Timestamps
}

type InventoryHold struct {
	ID           uint             `gorm:"primarykey" json:"id"`
	EventID      uint             `json:"event_id,omitempty"`
	UserID       uint             `json:"user_id,omitempty"`
	TicketTypeID *uint            `json:"ticket_type_id,omitempty"`
	Quantity     uint             `json:"quantity,omitempty"`
	Status       types.HoldStatus `gorm:"default:'active'" json:"status,omitempty"`
	ExpiresAt    time.Time        `json:"expires_at,omitempty"`
	RequestID    string           `gorm:"uniqueIndex" json:"request_id,omitempty"`

	Event      Event               `json:"-"`
	User       User                `json:"-"`
	TicketType *TicketType         `json:"ticket_type,omitempty"`
	Seats      []InventoryHoldSeat `gorm:"foreignKey:hold_id" json:"seats,omitempty"`

	types.Timestamps
}

type InventoryHoldSeat struct {
	ID     uint `gorm:"primarykey" json:"id"`
	HoldID uint `gorm:"uniqueIndex:idx_hold_seat" json:"hold_id,omitempty"`
	SeatID uint `gorm:"uniqueIndex:idx_hold_seat" json:"seat_id,omitempty"`

	Seat Seat `json:"seat,omitempty"`

	types.Timestamps
}
