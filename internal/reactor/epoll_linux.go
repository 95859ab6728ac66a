//go:build linux

package reactor

import (
	"golang.org/x/sys/unix"
)

// epollPoller is a real edge-triggered epoll backend. It generalizes the
// teacher's placeholder epoll_poller_linux.go (which delegated to a
// goroutine-per-connection watcher) into a genuine multiplexing reactor, in
// the spirit of the teacher's kqueue_poller_bsd.go, which already drove
// kqueue directly.
type epollPoller struct {
	epfd   int
	wakeFd int // eventfd used to interrupt a blocked wait
}

func newOSPoller() (poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	wakeFd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		_ = unix.Close(epfd)
		return nil, err
	}
	p := &epollPoller{epfd: epfd, wakeFd: wakeFd}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakeFd, &unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(wakeFd),
	}); err != nil {
		_ = unix.Close(epfd)
		_ = unix.Close(wakeFd)
		return nil, err
	}
	return p, nil
}

// id is unused by the epoll backend: events are tagged with the real fd,
// and the worker's own fd-keyed connection map resolves fd back to the
// adopted *Conn (and from there to its id). This is the "handoff map keyed
// differently" equivalence spec.md §9 allows explicitly.
func (p *epollPoller) add(id uint64, fd int, readable, writable bool) error {
	_ = id
	ev := unix.EpollEvent{Events: unix.EPOLLET, Fd: int32(fd)}
	if readable {
		ev.Events |= unix.EPOLLIN
	}
	if writable {
		ev.Events |= unix.EPOLLOUT
	}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev)
}

func (p *epollPoller) modify(id uint64, fd int, readable, writable bool) error {
	_ = id
	ev := unix.EpollEvent{Events: unix.EPOLLET, Fd: int32(fd)}
	if readable {
		ev.Events |= unix.EPOLLIN
	}
	if writable {
		ev.Events |= unix.EPOLLOUT
	}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &ev)
}

func (p *epollPoller) remove(fd int) error {
	err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	if err == unix.ENOENT {
		return nil
	}
	return err
}

func (p *epollPoller) wait(dst []event) ([]event, error) {
	var raw [128]unix.EpollEvent
	for {
		n, err := unix.EpollWait(p.epfd, raw[:], -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return dst, err
		}
		for i := 0; i < n; i++ {
			ev := raw[i]
			fd := int(ev.Fd)
			if fd == p.wakeFd {
				drainEventfd(p.wakeFd)
				continue
			}
			dst = append(dst, event{
				fd:       fd,
				readable: ev.Events&(unix.EPOLLIN|unix.EPOLLHUP) != 0,
				writable: ev.Events&unix.EPOLLOUT != 0,
				errored:  ev.Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0,
			})
		}
		return dst, nil
	}
}

func (p *epollPoller) wake() error {
	buf := [8]byte{0, 0, 0, 0, 0, 0, 0, 1}
	_, err := unix.Write(p.wakeFd, buf[:])
	return err
}

func (p *epollPoller) close() error {
	_ = unix.Close(p.wakeFd)
	return unix.Close(p.epfd)
}

func drainEventfd(fd int) {
	var buf [8]byte
	_, _ = unix.Read(fd, buf[:])
}
