package lib

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// AvailabilityCacheKey is the read-cache key for an event's availability
// response. One key per event; ticket-type detail lives inside the value.
func AvailabilityCacheKey(eventID uint) string {
	return fmt.Sprintf("availability:%d", eventID)
}

func CacheGetJSON(ctx context.Context, key string, out any) bool {
	rdb := GetRedisClient()
	if rdb == nil {
		return false
	}
	raw, err := rdb.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		log.Printf("[cache] Error decoding cached value for %s: %s\n", key, err.Error())
		return false
	}
	return true
}

func CacheSetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	rdb := GetRedisClient()
	if rdb == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("[cache] Error encoding value for %s: %s\n", key, err.Error())
		return
	}
	if err := rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.Printf("[cache] Error storing value for %s: %s\n", key, err.Error())
	}
}

// InvalidateAvailability drops the cached availability view for an event.
// Safe to call with no redis configured.
func InvalidateAvailability(eventID uint) {
	rdb := GetRedisClient()
	if rdb == nil {
		return
	}
	key := AvailabilityCacheKey(eventID)
	if err := rdb.Del(context.Background(), key).Err(); err != nil {
		log.Printf("[cache] Error invalidating %s: %s\n", key, err.Error())
	}
}
