//go:build !linux && !windows

package reactor

import "golang.org/x/sys/unix"

// acceptConn accepts one pending connection on listenFd. accept4 is a
// Linux-only syscall, so on BSD/Darwin and the portable poll(2) fallback
// platforms the client fd is placed into non-blocking, close-on-exec mode
// with separate calls immediately after a plain accept.
func acceptConn(listenFd int) (int, unix.Sockaddr, error) {
	fd, sa, err := unix.Accept(listenFd)
	if err != nil {
		return 0, nil, err
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return 0, nil, err
	}
	unix.CloseOnExec(fd)
	return fd, sa, nil
}
