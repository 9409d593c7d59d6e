package recyclebin

import "time"

// Windows FILETIME counts 100ns ticks since 1601-01-01 UTC. The Unix
// epoch starts 11644473600 seconds later.
const (
	filetimeTicksPerSecond = 10000000
	filetimeUnixOffset     = 11644473600
)

// FiletimeToTime converts a 64 bit FILETIME to a time.Time keeping
// the sub second part.
func FiletimeToTime(ft uint64) time.Time {
	return time.Unix(
		int64(ft/filetimeTicksPerSecond)-filetimeUnixOffset,
		int64(ft%filetimeTicksPerSecond)*100).UTC()
}

// TimeToFiletime is the inverse of FiletimeToTime for times at or
// after 1601-01-01.
func TimeToFiletime(t time.Time) uint64 {
	return uint64(t.Unix()+filetimeUnixOffset)*filetimeTicksPerSecond +
		uint64(t.Nanosecond()/100)
}
