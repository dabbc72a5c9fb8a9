//go:build !linux

package fs

import "time"

var birthTime = func(path string) (time.Time, bool) {
	return time.Time{}, false
}
