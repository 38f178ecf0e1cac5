package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type Metadata map[string]any

type SeatMode string

const (
	SEAT_MODE_GENERAL_ADMISSION SeatMode = "general_admission"
	SEAT_MODE_RESERVED_SEATING  SeatMode = "reserved_seating"
)

type EventStatus string

const (
	EVENT_DRAFT     EventStatus = "draft"
	EVENT_PUBLISHED EventStatus = "published"
	EVENT_CANCELED  EventStatus = "canceled"
	EVENT_ENDED     EventStatus = "ended"
)

type SeatStatus string

const (
	SEAT_AVAILABLE SeatStatus = "available"
	SEAT_HELD      SeatStatus = "held"
	SEAT_SOLD      SeatStatus = "sold"
	SEAT_BLOCKED   SeatStatus = "blocked"
)

type HoldStatus string

const (
	HOLD_ACTIVE   HoldStatus = "active"
	HOLD_CONSUMED HoldStatus = "consumed"
	HOLD_EXPIRED  HoldStatus = "expired"
	HOLD_CANCELED HoldStatus = "canceled"
)

// Terminal reports whether a hold status permits no further transition.
func (s HoldStatus) Terminal() bool {
	return s == HOLD_CONSUMED || s == HOLD_EXPIRED || s == HOLD_CANCELED
}

type BookingStatus string

const (
	BOOKING_PENDING   BookingStatus = "pending"
	BOOKING_CONFIRMED BookingStatus = "confirmed"
	BOOKING_CANCELED  BookingStatus = "canceled"
	BOOKING_EXPIRED   BookingStatus = "expired"
	BOOKING_FAILED    BookingStatus = "failed"
)

type WaitlistStatus string

const (
	WAITLIST_ACTIVE   WaitlistStatus = "active"
	WAITLIST_NOTIFIED WaitlistStatus = "notified"
	WAITLIST_CONSUMED WaitlistStatus = "consumed"
	WAITLIST_EXPIRED  WaitlistStatus = "expired"
)

type CreateHoldRequestBody struct {
	EventID      uint   `json:"event" binding:"required"`
	TicketTypeID uint   `json:"ticket_type,omitempty"`
	Quantity     uint   `json:"quantity,omitempty"`
	SeatIDs      []uint `json:"seat_ids,omitempty"`
	RequestID    string `json:"request_id,omitempty" binding:"omitempty,uuid"`
}

type CreateBookingRequestBody struct {
	EventID      uint   `json:"event" binding:"required"`
	TicketTypeID uint   `json:"ticket_type" binding:"required"`
	Quantity     uint   `json:"quantity" binding:"required,min=1"`
	SeatIDs      []uint `json:"seat_ids,omitempty"`
	RequestID    string `json:"request_id,omitempty" binding:"omitempty,uuid"`
}

type CancelBookingRequestBody struct {
	Reason string `json:"reason,omitempty"`
}

type JoinWaitlistRequestBody struct {
	TicketTypeID uint `json:"ticket_type,omitempty"`
}

type UpdateSeatRequestBody struct {
	Status       SeatStatus `json:"status" binding:"required,oneof=available blocked"`
	TicketTypeID *uint      `json:"ticket_type,omitempty"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type HoldsQueryFilters struct {
	Status string `form:"status,omitempty" binding:"omitempty,oneof=active all"`
}

type AdminHoldsQueryFilters struct {
	EventID uint   `form:"event,omitempty"`
	Status  string `form:"status,omitempty" binding:"omitempty,oneof=active expired all"`
}

type BookingsQueryFilters struct {
	Status      string `form:"status,omitempty" binding:"omitempty,oneof=pending confirmed canceled expired failed"`
	Page        int    `form:"page,omitempty" binding:"omitempty,min=1"`
	RowsPerPage int    `form:"rows_per_page,omitempty" binding:"omitempty,min=1,max=100"`
}

type APIResponseHold struct {
	ID            uint       `json:"id"`
	EventID       uint       `json:"event_id,omitempty"`
	TicketTypeID  *uint      `json:"ticket_type_id,omitempty"`
	Quantity      uint       `json:"quantity,omitempty"`
	Status        HoldStatus `json:"status,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	RequestID     string     `json:"request_id,omitempty"`
	SeatIDs       []uint     `json:"seat_ids,omitempty"`
	TimeRemaining int64      `json:"time_remaining,omitempty"`
}

type APIResponseBooking struct {
	ID              uint          `json:"id"`
	EventID         uint          `json:"event_id,omitempty"`
	Status          BookingStatus `json:"status,omitempty"`
	TotalPriceCents uint          `json:"total_price_cents,omitempty"`
	Currency        string        `json:"currency,omitempty"`
	RequestID       string        `json:"request_id,omitempty"`
	PaymentDeadline *time.Time    `json:"payment_deadline,omitempty"`

	Items []APIResponseBookingItem `json:"items,omitempty"`

	Timestamps
}

type APIResponseBookingItem struct {
	TicketTypeID *uint `json:"ticket_type_id,omitempty"`
	SeatID       *uint `json:"seat_id,omitempty"`
	PriceCents   uint  `json:"price_cents"`
	Quantity     uint  `json:"quantity"`
}

type TicketTypeAvailability struct {
	TicketTypeID uint   `json:"ticket_type_id"`
	Name         string `json:"name,omitempty"`
	PriceCents   uint   `json:"price_cents,omitempty"`
	Currency     string `json:"currency,omitempty"`
	InitialQty   uint   `json:"initial_qty,omitempty"`
	AvailableQty uint   `json:"available_qty"`
	SoldQty      uint   `json:"sold_qty,omitempty"`
	HeldQty      uint   `json:"held_qty,omitempty"`
	SeatIDs      []uint `json:"seats,omitempty"`
}

type EventAvailability struct {
	EventID        uint                     `json:"event_id"`
	EventName      string                   `json:"event_name,omitempty"`
	SeatMode       SeatMode                 `json:"seat_mode,omitempty"`
	TotalAvailable uint                     `json:"total_available"`
	TicketTypes    []TicketTypeAvailability `json:"ticket_types"`

	// admin view only
	ActiveHolds uint            `json:"active_holds,omitempty"`
	SeatSummary map[string]uint `json:"seat_summary,omitempty"`
}

type AvailabilityChangedPayload struct {
	EventID      uint  `json:"event_id"`
	TicketTypeID *uint `json:"ticket_type_id,omitempty"`
	At           int64 `json:"at"`
}

type Pagination struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalCount  int64 `json:"total_count"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

type Claims struct {
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}
