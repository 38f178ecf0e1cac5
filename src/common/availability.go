package common

import (
	"log"

	"eventx/src/inventory"
	"eventx/src/lib"

	"github.com/tidwall/gjson"
)

// AvailabilityChangedConsumer listens for availability-changed messages and
// drops the cached availability view for the affected event. Any replica can
// produce the message; every replica running this consumer converges on a
// fresh cache.
func AvailabilityChangedConsumer() {
	lib.KafkaTopicConsumer("eventx-availability", []string{inventory.AvailabilityChangedTopic}, availabilityChangedHandler)
}

func availabilityChangedHandler(spayload string) {
	if !gjson.Valid(spayload) {
		log.Printf("[%s]: Received invalid json body. Aborting", inventory.AvailabilityChangedTopic)
		return
	}
	val := gjson.Get(spayload, "event_id")
	eventId := uint(val.Int())
	if eventId == 0 {
		log.Printf("[%s]: missing event_id in payload", inventory.AvailabilityChangedTopic)
		return
	}
	lib.InvalidateAvailability(eventId)
}
