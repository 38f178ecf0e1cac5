package lib

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"
)

// KeyLock serializes work per inventory key. Each key maps to a weighted
// semaphore of size one; Acquire takes every requested key or none, waiting
// at most as long as the context allows. Keys are always taken in sorted
// order so overlapping acquisitions cannot deadlock. Ledger keys sort before
// seat keys, which matches the event-then-seats lock order used by the
// reservation paths.
type KeyLock struct {
	mu   sync.Mutex
	sems map[string]*semaphore.Weighted
}

func NewKeyLock() *KeyLock {
	return &KeyLock{sems: make(map[string]*semaphore.Weighted)}
}

func LedgerLockKey(eventID, ticketTypeID uint) string {
	return fmt.Sprintf("ledger:%d:%d", eventID, ticketTypeID)
}

func SeatLockKey(seatID uint) string {
	return fmt.Sprintf("seat:%d", seatID)
}

func (l *KeyLock) sem(key string) *semaphore.Weighted {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.sems[key]
	if !ok {
		s = semaphore.NewWeighted(1)
		l.sems[key] = s
	}
	return s
}

// Acquire locks all keys, returning a release func, or an error if the
// context expires first. On error nothing stays locked.
func (l *KeyLock) Acquire(ctx context.Context, keys ...string) (func(), error) {
	ordered := make([]string, len(keys))
	copy(ordered, keys)
	sort.Strings(ordered)

	held := make([]*semaphore.Weighted, 0, len(ordered))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Release(1)
		}
	}
	for _, key := range ordered {
		s := l.sem(key)
		if err := s.Acquire(ctx, 1); err != nil {
			release()
			return nil, err
		}
		held = append(held, s)
	}
	return release, nil
}
