package memory_test

import (
	"sync"
	"time"
)

// stepClock returns a clock that advances by one second on every call.
func stepClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func ptr(s string) *string { return &s }
