//go:build windows

package ipc

import "os"

// setNonblocking is a best-effort no-op on platforms without fcntl-style
// non-blocking pipes: Poll may see a short block on this GOOS rather than
// cleanly skip a frame with no data available.
func setNonblocking(f *os.File) error { return nil }
