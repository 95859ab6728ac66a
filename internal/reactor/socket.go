package reactor

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// bindListener opens a TCP listener on port using the standard library's
// dual-stack resolution, then hands back a raw, non-blocking, independently
// owned file descriptor for it. The *net.TCPListener is kept alive only to
// release the original kernel socket reference when the acceptor shuts the
// listener down; all accept traffic goes through the dup'd fd directly via
// raw syscalls, bypassing the runtime's own netpoller so there is exactly
// one reactor driving this socket.
func bindListener(port int) (*net.TCPListener, int, error) {
	l, err := net.ListenTCP("tcp", &net.TCPAddr{Port: port})
	if err != nil {
		return nil, 0, err
	}
	rc, err := l.SyscallConn()
	if err != nil {
		_ = l.Close()
		return nil, 0, err
	}
	var fd int
	var dupErr error
	ctlErr := rc.Control(func(ufd uintptr) {
		fd, dupErr = unix.Dup(int(ufd))
	})
	if ctlErr != nil {
		_ = l.Close()
		return nil, 0, ctlErr
	}
	if dupErr != nil {
		_ = l.Close()
		return nil, 0, dupErr
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		_ = l.Close()
		return nil, 0, err
	}
	return l, fd, nil
}

// errWouldBlock reports whether err is the "try again" error non-blocking
// syscalls return when no work is currently available.
func errWouldBlock(err error) bool {
	return err == unix.EAGAIN || err == unix.EWOULDBLOCK
}

func sockaddrToAddr(sa unix.Sockaddr) net.Addr {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return &net.TCPAddr{IP: a.Addr[:], Port: a.Port}
	case *unix.SockaddrInet6:
		return &net.TCPAddr{IP: a.Addr[:], Port: a.Port}
	default:
		return &net.TCPAddr{}
	}
}

func fmtAddr(fd int) string {
	return fmt.Sprintf("fd:%d", fd)
}
