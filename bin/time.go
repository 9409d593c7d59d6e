package main

import (
	"fmt"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/araddon/dateparse"
)

func init() {
	// Deletion times are recorded in UTC, so date arguments parse
	// as UTC too - set atomically.
	utc_time := unsafe.Pointer(time.UTC)
	local_time := (*unsafe.Pointer)(unsafe.Pointer(&time.Local))

	atomic.StorePointer(local_time, utc_time)
}

// parseSinceFlag turns a flexible date string ("2023-03-15",
// "2023-03-15 10:00", unix seconds, ...) into the deletion time
// cutoff. An empty value means no cutoff.
func parseSinceFlag(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}

	since, err := dateparse.ParseAny(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("Unable to parse --since: %w", err)
	}

	return since, nil
}
