package recyclebin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFiletimeConversion(t *testing.T) {
	// The reference pair: this FILETIME is exactly the Unix epoch.
	assert.Equal(t, int64(0), FiletimeToTime(116444736000000000).Unix())
	assert.Equal(t, 0, FiletimeToTime(116444736000000000).Nanosecond())
	assert.Equal(t, uint64(116444736000000000),
		TimeToFiletime(time.Unix(0, 0)))

	// Sub second ticks survive the round trip.
	ts := time.Date(2023, 3, 15, 10, 30, 0, 123456700, time.UTC)
	assert.True(t, ts.Equal(FiletimeToTime(TimeToFiletime(ts))))

	// One second before the epoch.
	assert.Equal(t, int64(-1), FiletimeToTime(116444735990000000).Unix())

	// FILETIME 0 is the start of the Windows epoch.
	assert.Equal(t, "1601-01-01T00:00:00Z",
		FiletimeToTime(0).Format(time.RFC3339))
}
