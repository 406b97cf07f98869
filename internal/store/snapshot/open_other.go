//go:build !windows

package snapshot

import "os"

// openShared opens path for reading. Locks on these platforms are advisory,
// so an owner writing to the file never blocks the read.
func openShared(path string) (*os.File, error) {
	return os.Open(path)
}

func isBusy(err error) bool {
	return false
}
