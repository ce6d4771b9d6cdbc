//go:build unix

package walker

import "golang.org/x/sys/unix"

// deviceID reports the device holding path. Tests replace it.
var deviceID = statDevice

func statDevice(path string) (uint64, bool) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, false
	}
	return uint64(st.Dev), true
}
