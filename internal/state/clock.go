package state

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// NewOwnerID returns a fresh random owner identity.
func NewOwnerID() string {
	return uuid.NewString()
}

func newPathID() string {
	return "path-" + uuid.NewString()
}

var lastStamp atomic.Int64

// Timestamp returns wall-clock milliseconds, strictly increasing within this
// process so two commands emitted in the same millisecond still order.
func Timestamp(now time.Time) int64 {
	ms := now.UnixMilli()
	for {
		prev := lastStamp.Load()
		next := ms
		if next <= prev {
			next = prev + 1
		}
		if lastStamp.CompareAndSwap(prev, next) {
			return next
		}
	}
}
