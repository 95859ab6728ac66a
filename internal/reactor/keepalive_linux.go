//go:build linux

package reactor

import "golang.org/x/sys/unix"

// applyKeepalive mirrors the Rust original's stream.set_keepalive(Some(dur)):
// enable SO_KEEPALIVE and set the idle time before the first probe.
func applyKeepalive(fd int, idleSeconds int) error {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1); err != nil {
		return err
	}
	return unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_KEEPIDLE, idleSeconds)
}
