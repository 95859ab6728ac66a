//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !windows

package reactor

import "golang.org/x/sys/unix"

// applyKeepalive enables SO_KEEPALIVE only; the portable poll(2) fallback
// platforms do not have a single agreed-upon idle-time sockopt name.
func applyKeepalive(fd int, idleSeconds int) error {
	_ = idleSeconds
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1)
}
