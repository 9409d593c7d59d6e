package utils

import (
	"sync"
	"time"

	errors "github.com/go-errors/errors"
)

var (
	timezone_mu     sync.Mutex
	global_timezone = time.UTC
)

// SetGlobalTimezone selects the timezone used for displaying
// timestamps. Storage and comparisons always stay in UTC.
func SetGlobalTimezone(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return errors.Wrap(err, 0)
	}

	timezone_mu.Lock()
	defer timezone_mu.Unlock()

	global_timezone = loc
	return nil
}

// FormatTime renders a timestamp in the global display timezone.
func FormatTime(t time.Time) string {
	timezone_mu.Lock()
	loc := global_timezone
	timezone_mu.Unlock()

	return t.In(loc).Format(time.RFC3339)
}
