package shared

import (
	"sync"
	"time"
)

// DefaultDisplayTZ is the timezone used for human-facing timestamps.
const DefaultDisplayTZ = "Africa/Nairobi"

var (
	displayLocMu sync.RWMutex
	displayLoc   = time.UTC
)

// SetDisplayLocation configures the display timezone by IANA name.
// Unknown names fall back to UTC.
func SetDisplayLocation(name string) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		loc = time.UTC
	}
	displayLocMu.Lock()
	displayLoc = loc
	displayLocMu.Unlock()
}

// DisplayTime renders a timestamp in the configured display timezone.
func DisplayTime(t time.Time) string {
	displayLocMu.RLock()
	loc := displayLoc
	displayLocMu.RUnlock()
	return t.In(loc).Format("2006-01-02 15:04")
}

// DisplayTimePtr renders an optional timestamp, empty when nil.
func DisplayTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return DisplayTime(*t)
}
