package inventory

import (
	"log"
	"time"

	"eventx/src/lib"
	"eventx/src/types"
)

const AvailabilityChangedTopic = "availability-changed"

// emitAvailabilityChanged tells the outside world that stock for an event
// moved. Fire-and-forget: read caches are invalidated locally and the kafka
// event lets external caches do the same. Never blocks the request path.
func emitAvailabilityChanged(eventID uint, ticketTypeID *uint) {
	payload := types.JSONB{
		"event_id": eventID,
		"at":       time.Now().Unix(),
	}
	if ticketTypeID != nil {
		payload["ticket_type_id"] = *ticketTypeID
	}
	go func() {
		if err := lib.KafkaProduceMessage("availability_producer", AvailabilityChangedTopic, payload); err != nil {
			log.Printf("Error emitting availability change for event %d: %s\n", eventID, err.Error())
		}
	}()
	go lib.InvalidateAvailability(eventID)
}
