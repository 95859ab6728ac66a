//go:build linux

package reactor

import "golang.org/x/sys/unix"

// acceptConn accepts one pending connection on listenFd, already placed in
// non-blocking mode by the caller, returning a non-blocking, close-on-exec
// client fd in one syscall.
func acceptConn(listenFd int) (int, unix.Sockaddr, error) {
	return unix.Accept4(listenFd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
}
