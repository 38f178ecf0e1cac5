package models

import (
	"eventx/src/types"
	"time"
)

type Venue struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	Name         string `json:"name,omitempty"`
	Address      string `json:"address,omitempty"`
	City         string `json:"city,omitempty"`
	Country      string `json:"country,omitempty"`
	CapacityHint uint   `json:"capacity_hint,omitempty"`

	Events []Event `gorm:"foreignKey:venue_id" json:"events,omitempty"`

	types.Timestamps
}

type Event struct {
	ID            uint              `gorm:"primarykey" json:"id"`
	VenueID       uint              `json:"venue_id,omitempty"`
	Name          string            `json:"name,omitempty"`
	StartsAt      time.Time         `json:"starts_at,omitempty"`
	EndsAt        time.Time         `json:"ends_at,omitempty"`
	SeatMode      types.SeatMode    `gorm:"default:'general_admission'" json:"seat_mode,omitempty"`
	Status        types.EventStatus `gorm:"default:'draft'" json:"status,omitempty"`
	SalesStartsAt *time.Time        `json:"sales_starts_at,omitempty"`
	SalesEndsAt   *time.Time        `json:"sales_ends_at,omitempty"`

	Venue       Venue        `json:"venue,omitempty"`
	TicketTypes []TicketType `gorm:"foreignKey:event_id" json:"ticket_types,omitempty"`

	types.Timestamps
}

// Bookable reports whether the event accepts new holds at the given instant.
// Status must be published and the instant must fall inside the sales window;
// a nil window bound is open-ended on that side.
func (e *Event) Bookable(now time.Time) bool {
	if e.Status != types.EVENT_PUBLISHED {
		return false
	}
	if e.SalesStartsAt != nil && now.Before(*e.SalesStartsAt) {
		return false
	}
	if e.SalesEndsAt != nil && now.After(*e.SalesEndsAt) {
		return false
	}
	return true
}

type TicketType struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	EventID      uint   `json:"event_id,omitempty"`
	Name         string `json:"name,omitempty"`
	PriceCents   uint   `json:"price_cents"`
	Currency     string `gorm:"default:'USD'" json:"currency,omitempty"`
	Active       bool   `gorm:"default:true" json:"active"`
	DisplayOrder uint   `json:"display_order,omitempty"`

	Event Event `json:"event,omitempty"`

	types.Timestamps
}
