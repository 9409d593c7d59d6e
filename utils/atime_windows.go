package utils

import (
	"os"
	"syscall"
	"time"
)

// Atime pulls the access time out of a stat result. A zero time is
// returned when the platform data is missing, which os.Chtimes
// treats as "leave unchanged".
func Atime(info os.FileInfo) time.Time {
	stat, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return time.Time{}
	}
	return time.Unix(0, stat.LastAccessTime.Nanoseconds())
}
