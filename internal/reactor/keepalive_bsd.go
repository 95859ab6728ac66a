//go:build darwin || freebsd || netbsd || openbsd

package reactor

import "golang.org/x/sys/unix"

// applyKeepalive mirrors the Rust original's stream.set_keepalive(Some(dur))
// using the BSD-family TCP_KEEPALIVE option name (Linux calls the same knob
// TCP_KEEPIDLE).
func applyKeepalive(fd int, idleSeconds int) error {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1); err != nil {
		return err
	}
	return unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_KEEPALIVE, idleSeconds)
}
