package models

import (
	"testing"
	"time"

	"eventx/src/types"

	"github.com/stretchr/testify/assert"
)

func TestEventBookable(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	event := Event{Status: types.EVENT_PUBLISHED}
	assert.True(t, event.Bookable(now), "published with open-ended window")

	event.Status = types.EVENT_DRAFT
	assert.False(t, event.Bookable(now), "draft never bookable")

	event.Status = types.EVENT_CANCELED
	assert.False(t, event.Bookable(now))

	event = Event{Status: types.EVENT_PUBLISHED, SalesStartsAt: &future}
	assert.False(t, event.Bookable(now), "sales not open yet")

	event = Event{Status: types.EVENT_PUBLISHED, SalesEndsAt: &past}
	assert.False(t, event.Bookable(now), "sales closed")

	event = Event{Status: types.EVENT_PUBLISHED, SalesStartsAt: &past, SalesEndsAt: &future}
	assert.True(t, event.Bookable(now))
}

func TestInventoryAvailable(t *testing.T) {
	inv := EventInventory{InitialQty: 100, SoldQty: 30, HeldQty: 20}
	assert.Equal(t, uint(50), inv.Available())

	inv = EventInventory{InitialQty: 10, SoldQty: 10}
	assert.Equal(t, uint(0), inv.Available())

	// oversold rows clamp instead of wrapping around
	inv = EventInventory{InitialQty: 10, SoldQty: 8, HeldQty: 5}
	assert.Equal(t, uint(0), inv.Available())
}

func TestHoldStatusTerminal(t *testing.T) {
	assert.False(t, types.HOLD_ACTIVE.Terminal())
	assert.True(t, types.HOLD_CONSUMED.Terminal())
	assert.True(t, types.HOLD_EXPIRED.Terminal())
	assert.True(t, types.HOLD_CANCELED.Terminal())
}
