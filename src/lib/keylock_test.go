package lib

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyLockAcquireRelease(t *testing.T) {
	locks := NewKeyLock()
	ctx := context.Background()

	release, err := locks.Acquire(ctx, LedgerLockKey(1, 2), SeatLockKey(10))
	assert.Nil(t, err)
	release()

	release, err = locks.Acquire(ctx, LedgerLockKey(1, 2), SeatLockKey(10))
	assert.Nil(t, err)
	release()
}

func TestKeyLockContention(t *testing.T) {
	locks := NewKeyLock()
	key := LedgerLockKey(1, 1)

	release, err := locks.Acquire(context.Background(), key)
	assert.Nil(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = locks.Acquire(ctx, key)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()

	release, err = locks.Acquire(context.Background(), key)
	assert.Nil(t, err)
	release()
}

func TestKeyLockPartialFailureReleasesAll(t *testing.T) {
	locks := NewKeyLock()
	blocked := SeatLockKey(5)

	release, err := locks.Acquire(context.Background(), blocked)
	assert.Nil(t, err)

	// a multi-key acquire that hits the blocked key must give back the
	// keys it already took
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = locks.Acquire(ctx, SeatLockKey(4), blocked)
	assert.NotNil(t, err)

	free, err := locks.Acquire(context.Background(), SeatLockKey(4))
	assert.Nil(t, err)
	free()

	release()
}

func TestKeyLockSerializesWriters(t *testing.T) {
	locks := NewKeyLock()
	key := LedgerLockKey(9, 9)

	var current, max int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locks.Acquire(context.Background(), key)
			if err != nil {
				return
			}
			mu.Lock()
			current++
			if current > max {
				max = current
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			current--
			mu.Unlock()
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, max)
}
