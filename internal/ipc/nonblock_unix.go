//go:build !windows

package ipc

import (
	"os"

	"golang.org/x/sys/unix"
)

// setNonblocking puts the child's stdout pipe into O_NONBLOCK mode so a
// per-frame poll never blocks the cooperative loop.
func setNonblocking(f *os.File) error {
	return unix.SetNonblock(int(f.Fd()), true)
}
