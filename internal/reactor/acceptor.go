package reactor

import (
	"fmt"
	"net"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// keepaliveIdleSeconds matches the Rust original's accept-loop behavior of
// calling stream.set_keepalive with a 300 second idle interval on every
// freshly accepted socket.
const keepaliveIdleSeconds = 300

// Acceptor owns the listening socket and hands newly accepted connections
// off to a fixed pool of worker reactors, sharded by connection id.
type Acceptor struct {
	listener *net.TCPListener
	fd       int
	p        poller
	workers  []*Worker
	nextID   uint64
}

// NewAcceptor binds port and prepares to shard accepted connections across
// workers by id % len(workers).
func NewAcceptor(port int, workers []*Worker) (*Acceptor, error) {
	l, fd, err := bindListener(port)
	if err != nil {
		return nil, err
	}
	p, err := newPoller()
	if err != nil {
		_ = unix.Close(fd)
		_ = l.Close()
		return nil, err
	}
	if err := p.add(0, fd, true, false); err != nil {
		_ = p.close()
		_ = unix.Close(fd)
		_ = l.Close()
		return nil, err
	}
	return &Acceptor{listener: l, fd: fd, p: p, workers: workers}, nil
}

// Run drives the accept loop until stop is closed, then returns the result
// of closing the listener (normally nil). A poll failure or an accept error
// other than would-block, EINTR or ECONNABORTED is returned as a non-nil
// error, which the caller treats as fatal.
func (a *Acceptor) Run(stop <-chan struct{}) error {
	go func() {
		<-stop
		_ = a.p.wake()
	}()
	var events []event
	for {
		select {
		case <-stop:
			return a.shutdown()
		default:
		}
		var err error
		events, err = a.p.wait(events[:0])
		if err != nil {
			return fmt.Errorf("acceptor poll: %w", err)
		}
		select {
		case <-stop:
			return a.shutdown()
		default:
		}
		for _, ev := range events {
			if ev.fd != a.fd {
				continue
			}
			if err := a.drainAccepts(); err != nil {
				return err
			}
		}
	}
}

func (a *Acceptor) shutdown() error {
	_ = a.p.close()
	_ = unix.Close(a.fd)
	return a.listener.Close()
}

func (a *Acceptor) drainAccepts() error {
	for {
		connFd, sa, err := acceptConn(a.fd)
		if err != nil {
			if errWouldBlock(err) || err == unix.ECONNABORTED || err == unix.EINTR {
				if errWouldBlock(err) {
					return nil
				}
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}
		if err := applyKeepalive(connFd, keepaliveIdleSeconds); err != nil {
			_ = unix.Close(connFd)
			continue
		}
		id := atomic.AddUint64(&a.nextID, 1)
		c := &Conn{
			ID:       id,
			Fd:       connFd,
			PeerAddr: sockaddrToAddr(sa),
			Input:    make([]byte, 0, 4096),
		}
		w := a.workers[id%uint64(len(a.workers))]
		w.adopt(c)
	}
}
