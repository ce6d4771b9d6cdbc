//go:build !unix

package walker

// deviceID is unavailable; mount boundaries are not detected.
var deviceID = func(string) (uint64, bool) {
	return 0, false
}
