package utils

import (
	"errors"
	"time"

	"eventx/src/db"
	"eventx/src/models"
	"eventx/src/types"

	"gorm.io/gorm"
)

func GetOwnHolds(userID uint, status string) ([]models.InventoryHold, error) {
	d := db.GetDb()
	q := d.
		Model(&models.InventoryHold{}).
		Where(&models.InventoryHold{UserID: userID}).
		Preload("Seats").
		Order("created_at DESC")
	if status == "" || status == "active" {
		q = q.Where("status = ?", types.HOLD_ACTIVE)
	}
	var holds []models.InventoryHold
	if err := q.Find(&holds).Error; err != nil {
		return nil, err
	}
	return holds, nil
}

func GetAdminHolds(filters *types.AdminHoldsQueryFilters) ([]models.InventoryHold, error) {
	d := db.GetDb()
	q := d.
		Model(&models.InventoryHold{}).
		Preload("Seats").
		Order("created_at DESC")
	if filters.EventID != 0 {
		q = q.Where("event_id = ?", filters.EventID)
	}
	switch filters.Status {
	case "", "active":
		q = q.Where("status = ?", types.HOLD_ACTIVE)
	case "expired":
		// still marked active but past the deadline, i.e. awaiting reclaim
		q = q.Where("status = ? AND expires_at < ?", types.HOLD_ACTIVE, time.Now())
	}
	var holds []models.InventoryHold
	if err := q.Limit(500).Find(&holds).Error; err != nil {
		return nil, err
	}
	return holds, nil
}

func GetOwnBookings(userID uint, status string, page, rowsPerPage int) ([]models.Booking, *types.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if rowsPerPage < 1 {
		rowsPerPage = 10
	}
	d := db.GetDb()
	q := d.
		Model(&models.Booking{}).
		Where(&models.Booking{UserID: userID})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, nil, err
	}
	var bookings []models.Booking
	err := q.
		Preload("Items").
		Preload("Hold").
		Order("created_at DESC").
		Offset((page - 1) * rowsPerPage).
		Limit(rowsPerPage).
		Find(&bookings).
		Error
	if err != nil {
		return nil, nil, err
	}
	totalPages := int((total + int64(rowsPerPage) - 1) / int64(rowsPerPage))
	pagination := types.Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  total,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
	return bookings, &pagination, nil
}

func GetOwnBooking(bookingID, userID uint) (*models.Booking, error) {
	d := db.GetDb()
	var booking models.Booking
	err := d.
		Where(&models.Booking{ID: bookingID, UserID: userID}).
		Preload("Items").
		Preload("Hold").
		Preload("Event").
		First(&booking).
		Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// BuildEventAvailability assembles the availability view for an event:
// remaining counter quantities for general admission, open seats grouped by
// ticket type for reserved seating. The admin variant also sees unpublished
// events, sold/held counters, a seat status summary and the active hold
// count.
func BuildEventAvailability(eventID uint, admin bool) (*types.EventAvailability, error) {
	d := db.GetDb()
	var event models.Event
	err := d.Where(&models.Event{ID: eventID}).First(&event).Error
	if err != nil {
		return nil, err
	}
	if !admin && event.Status != types.EVENT_PUBLISHED {
		return nil, gorm.ErrRecordNotFound
	}

	out := types.EventAvailability{
		EventID:   event.ID,
		EventName: event.Name,
		SeatMode:  event.SeatMode,
	}
	if admin {
		var activeHolds int64
		err := d.
			Model(&models.InventoryHold{}).
			Where("event_id = ? AND status = ?", eventID, types.HOLD_ACTIVE).
			Count(&activeHolds).
			Error
		if err != nil {
			return nil, err
		}
		out.ActiveHolds = uint(activeHolds)
		if event.SeatMode == types.SEAT_MODE_RESERVED_SEATING {
			summary, err := seatStatusSummary(d, eventID)
			if err != nil {
				return nil, err
			}
			out.SeatSummary = summary
		}
	}

	if event.SeatMode == types.SEAT_MODE_RESERVED_SEATING {
		var seats []models.Seat
		err := d.
			Where("event_id = ? AND status = ?", eventID, types.SEAT_AVAILABLE).
			Preload("TicketType").
			Find(&seats).
			Error
		if err != nil {
			return nil, err
		}
		byType := map[uint]*types.TicketTypeAvailability{}
		order := []uint{}
		for _, seat := range seats {
			var ttID uint
			if seat.TicketTypeID != nil {
				ttID = *seat.TicketTypeID
			}
			entry, ok := byType[ttID]
			if !ok {
				entry = &types.TicketTypeAvailability{TicketTypeID: ttID}
				if seat.TicketType != nil {
					entry.Name = seat.TicketType.Name
					entry.PriceCents = seat.TicketType.PriceCents
					entry.Currency = seat.TicketType.Currency
				}
				byType[ttID] = entry
				order = append(order, ttID)
			}
			entry.AvailableQty++
			entry.SeatIDs = append(entry.SeatIDs, seat.ID)
			out.TotalAvailable++
		}
		for _, id := range order {
			out.TicketTypes = append(out.TicketTypes, *byType[id])
		}
		return &out, nil
	}

	var inventories []models.EventInventory
	err = d.
		Where(&models.EventInventory{EventID: eventID}).
		Preload("TicketType").
		Find(&inventories).
		Error
	if err != nil {
		return nil, err
	}
	for _, inv := range inventories {
		entry := types.TicketTypeAvailability{
			TicketTypeID: inv.TicketTypeID,
			Name:         inv.TicketType.Name,
			PriceCents:   inv.TicketType.PriceCents,
			Currency:     inv.TicketType.Currency,
			InitialQty:   inv.InitialQty,
			AvailableQty: inv.Available(),
		}
		if admin {
			entry.SoldQty = inv.SoldQty
			entry.HeldQty = inv.HeldQty
		}
		out.TicketTypes = append(out.TicketTypes, entry)
		out.TotalAvailable += entry.AvailableQty
	}
	return &out, nil
}

func seatStatusSummary(d *gorm.DB, eventID uint) (map[string]uint, error) {
	var counts []struct {
		Status string
		Total  uint
	}
	err := d.
		Model(&models.Seat{}).
		Select("status, count(*) as total").
		Where("event_id = ?", eventID).
		Group("status").
		Find(&counts).
		Error
	if err != nil {
		return nil, err
	}
	summary := make(map[string]uint, len(counts))
	for _, c := range counts {
		summary[c.Status] = c.Total
	}
	return summary, nil
}

func HoldResponse(h *models.InventoryHold) types.APIResponseHold {
	resp := types.APIResponseHold{
		ID:           h.ID,
		EventID:      h.EventID,
		TicketTypeID: h.TicketTypeID,
		Quantity:     h.Quantity,
		Status:       h.Status,
		RequestID:    h.RequestID,
	}
	if !h.ExpiresAt.IsZero() {
		expiresAt := h.ExpiresAt
		resp.ExpiresAt = &expiresAt
		if h.Status == types.HOLD_ACTIVE {
			if remaining := time.Until(expiresAt); remaining > 0 {
				resp.TimeRemaining = int64(remaining.Seconds())
			}
		}
	}
	for _, s := range h.Seats {
		resp.SeatIDs = append(resp.SeatIDs, s.SeatID)
	}
	return resp
}

func BookingResponse(b *models.Booking) types.APIResponseBooking {
	resp := types.APIResponseBooking{
		ID:              b.ID,
		EventID:         b.EventID,
		Status:          b.Status,
		TotalPriceCents: b.TotalPriceCents,
		Currency:        b.Currency,
		RequestID:       b.RequestID,
		Timestamps:      b.Timestamps,
	}
	if b.Hold != nil && !b.Hold.ExpiresAt.IsZero() && b.Status == types.BOOKING_PENDING {
		deadline := b.Hold.ExpiresAt
		resp.PaymentDeadline = &deadline
	}
	for _, item := range b.Items {
		resp.Items = append(resp.Items, types.APIResponseBookingItem{
			TicketTypeID: item.TicketTypeID,
			SeatID:       item.SeatID,
			PriceCents:   item.PriceCents,
			Quantity:     item.Quantity,
		})
	}
	return resp
}

func IsRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
