package models

import "eventx/src/types"

type User struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `gorm:"default:'user'" json:"role,omitempty"`

	Holds    []InventoryHold `gorm:"foreignKey:user_id" json:"holds,omitempty"`
	Bookings []Booking       `gorm:"foreignKey:user_id" json:"bookings,omitempty"`

	types.Timestamps
}
