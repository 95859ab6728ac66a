//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !windows

package reactor

import (
	"sync"

	"golang.org/x/sys/unix"
)

// pollPoller is the portable fallback for platforms without epoll or
// kqueue, generalizing the teacher's poller_factory_default.go (which
// fell back to a goroutine-per-connection watcher) to a single poll(2)
// call over every registered fd. poll(2) is level-triggered; callers
// still observe edge-triggered semantics because the worker always
// drains a ready fd until it would block before waiting again, so a
// level-triggered report never causes more work than an edge-triggered
// one would.
type pollPoller struct {
	mu      sync.Mutex
	fds     map[int]*unix.PollFd
	wakeFd  [2]int
}

func newOSPoller() (poller, error) {
	var pipeFds [2]int
	if err := unix.Pipe2(pipeFds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return nil, err
	}
	return &pollPoller{fds: make(map[int]*unix.PollFd), wakeFd: pipeFds}, nil
}

func (p *pollPoller) add(id uint64, fd int, readable, writable bool) error {
	_ = id
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fds[fd] = &unix.PollFd{Fd: int32(fd), Events: eventsFor(readable, writable)}
	return nil
}

func (p *pollPoller) modify(id uint64, fd int, readable, writable bool) error {
	_ = id
	p.mu.Lock()
	defer p.mu.Unlock()
	if pfd, ok := p.fds[fd]; ok {
		pfd.Events = eventsFor(readable, writable)
	}
	return nil
}

func (p *pollPoller) remove(fd int) error {
	p.mu.Lock()
	delete(p.fds, fd)
	p.mu.Unlock()
	return nil
}

func eventsFor(readable, writable bool) int16 {
	var ev int16
	if readable {
		ev |= unix.POLLIN
	}
	if writable {
		ev |= unix.POLLOUT
	}
	return ev
}

func (p *pollPoller) wait(dst []event) ([]event, error) {
	p.mu.Lock()
	set := make([]unix.PollFd, 0, len(p.fds)+1)
	set = append(set, unix.PollFd{Fd: int32(p.wakeFd[0]), Events: unix.POLLIN})
	for _, pfd := range p.fds {
		set = append(set, *pfd)
	}
	p.mu.Unlock()

	for {
		_, err := unix.Poll(set, -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return dst, err
		}
		break
	}
	for _, pfd := range set {
		if pfd.Revents == 0 {
			continue
		}
		if int(pfd.Fd) == p.wakeFd[0] {
			drainPipe(p.wakeFd[0])
			continue
		}
		dst = append(dst, event{
			fd:       int(pfd.Fd),
			readable: pfd.Revents&(unix.POLLIN|unix.POLLHUP) != 0,
			writable: pfd.Revents&unix.POLLOUT != 0,
			errored:  pfd.Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0,
		})
	}
	return dst, nil
}

func (p *pollPoller) wake() error {
	_, err := unix.Write(p.wakeFd[1], []byte{1})
	return err
}

func (p *pollPoller) close() error {
	_ = unix.Close(p.wakeFd[0])
	_ = unix.Close(p.wakeFd[1])
	return nil
}

func drainPipe(fd int) {
	var buf [64]byte
	for {
		n, err := unix.Read(fd, buf[:])
		if n <= 0 || err != nil {
			return
		}
	}
}
