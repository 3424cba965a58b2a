package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Allocator hands out per-service display numbers. Each service gets one
// Redis counter per local calendar day; INCR makes the reservation atomic,
// so concurrent kiosk submissions can never receive the same number and
// the sequence has no gaps. Numbering resets at local midnight because the
// date is part of the key.
type Allocator struct {
	rdb *redis.Client
}

func NewAllocator(rdb *redis.Client) *Allocator {
	return &Allocator{rdb: rdb}
}

// keyTTL keeps yesterday's counters around long enough for debugging,
// then lets them expire instead of accumulating forever.
const keyTTL = 48 * time.Hour

// Reserve atomically claims the next number for the service and returns it
// together with the immutable display identifier.
func (a *Allocator) Reserve(ctx context.Context, serviceID int64, startNumber int, prefix string) (int, string, error) {
	key := dayKey(serviceID, time.Now())

	seq, err := a.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, "", fmt.Errorf("reserve number for service %d: %w", serviceID, err)
	}
	if seq == 1 {
		a.rdb.Expire(ctx, key, keyTTL)
	}

	number := NumberFor(startNumber, seq)
	return number, FormatDisplayID(prefix, number), nil
}

// NumberFor maps the day's Nth reservation (1-based) onto the service's
// numbering range: [startNumber, startNumber+1, ...].
func NumberFor(startNumber int, seq int64) int {
	return startNumber + int(seq) - 1
}

// FormatDisplayID builds the public "{prefix}-{number}" identifier.
func FormatDisplayID(prefix string, number int) string {
	return fmt.Sprintf("%s-%d", prefix, number)
}

func dayKey(serviceID int64, now time.Time) string {
	return fmt.Sprintf("seq:service:%d:%s", serviceID, now.Format("2006-01-02"))
}
