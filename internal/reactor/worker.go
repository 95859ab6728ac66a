package reactor

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/cachewire/cachewire/internal/command"
	"github.com/cachewire/cachewire/internal/store"
	"github.com/cachewire/cachewire/internal/wire"
)

const scratchReadSize = 4096

// Worker is one single-threaded reactor in the worker pool. It owns a
// private poller and a private, unsynchronized table of adopted
// connections; the only resource it shares with the rest of the process is
// the store.
type Worker struct {
	store   *store.Store
	p       poller
	conns   *connTable
	pending chan *Conn
	scratch *bytePool
}

// NewWorker constructs a worker bound to store. Call Run to drive its loop
// from a dedicated goroutine.
func NewWorker(s *store.Store) (*Worker, error) {
	p, err := newPoller()
	if err != nil {
		return nil, err
	}
	return &Worker{
		store:   s,
		p:       p,
		conns:   newConnTable(),
		pending: make(chan *Conn, 256),
		scratch: newScratchPool(),
	}, nil
}

// adopt hands a freshly accepted connection to this worker. Called from the
// acceptor goroutine; safe for concurrent use because it only touches the
// channel and the poller's wake, both already safe for concurrent callers.
// Waking the poller is required: a worker with no fds registered yet would
// otherwise block in wait forever and never reach drainPending.
func (w *Worker) adopt(c *Conn) {
	w.pending <- c
	_ = w.p.wake()
}

// Run drives the worker's event loop until stop is closed.
func (w *Worker) Run(stop <-chan struct{}) error {
	go func() {
		<-stop
		_ = w.p.wake()
	}()
	var events []event
	for {
		select {
		case <-stop:
			return w.shutdown()
		default:
		}
		w.drainPending()

		var err error
		events, err = w.p.wait(events[:0])
		if err != nil {
			return fmt.Errorf("worker poll: %w", err)
		}

		select {
		case <-stop:
			return w.shutdown()
		default:
		}

		w.drainPending()
		for _, ev := range events {
			c, ok := w.conns.get(ev.fd)
			if !ok {
				continue
			}
			if ev.errored {
				c.Close = true
			}
			w.service(c)
		}
	}
}

func (w *Worker) shutdown() error {
	for fd, c := range w.conns.byFd {
		_ = w.p.remove(fd)
		_ = c.closeFd()
	}
	return w.p.close()
}

func (w *Worker) drainPending() {
	for {
		select {
		case c := <-w.pending:
			w.onOpen(c)
		default:
			return
		}
	}
}

// onOpen adopts a connection handed off by the acceptor: registers it for
// readable interest and records it in the private table. on_open itself is
// reserved for future use and currently never produces output or an
// immediate close.
func (w *Worker) onOpen(c *Conn) {
	w.conns.put(c)
	if err := w.p.add(c.ID, c.Fd, true, false); err != nil {
		c.Close = true
		w.drop(c)
	}
}

// service alternates draining pending writes with reading and dispatching
// new input, reading only while no output is pending, until a read would
// block, a write would block (writable interest then brings it back), or the
// connection is closing. Draining is not gated on c.Close: a command that
// both replies and sets Close (QUIT, a protocol error) still needs that
// reply flushed before the connection is dropped.
func (w *Worker) service(c *Conn) {
	for {
		if len(c.Output) > 0 {
			w.drainWrites(c)
		}
		if c.Close || len(c.Output) > 0 {
			break
		}
		if !w.readAndDispatch(c) {
			break
		}
	}
	w.rearm(c)
	if c.Close && len(c.Output) == 0 {
		w.drop(c)
	}
}

func (w *Worker) drainWrites(c *Conn) {
	for len(c.Output) > 0 {
		n, err := unix.Write(c.Fd, c.Output)
		if n > 0 {
			c.Output = c.Output[n:]
		}
		if err != nil {
			if errWouldBlock(err) || err == unix.EINTR {
				return
			}
			// Fatal write error: the remaining output can never be
			// delivered, so drop it too. Otherwise service's
			// close-when-drained check would never fire and the
			// connection would leak forever.
			c.Output = nil
			c.Close = true
			return
		}
		if n == 0 {
			return
		}
	}
}

// readAndDispatch performs one read and dispatches every complete frame in
// the input buffer. It reports whether any bytes were read.
func (w *Worker) readAndDispatch(c *Conn) bool {
	buf := w.scratch.Get(scratchReadSize)[:scratchReadSize]
	n, err := unix.Read(c.Fd, buf)
	if err != nil {
		if !errWouldBlock(err) && err != unix.EINTR {
			c.Close = true
		}
		w.scratch.Put(buf)
		return false
	}
	if n == 0 {
		c.Close = true
		w.scratch.Put(buf)
		return false
	}
	c.Input = append(c.Input, buf[:n]...)
	w.scratch.Put(buf)

	ni := 0
	w.store.WithLock(func(b *store.Batch) {
		for {
			args, errMsg, newNi, complete := wire.Take(c.Input, ni)
			if !complete {
				if errMsg != "" {
					c.Output = wire.AppendError(c.Output, errMsg)
					c.Close = true
				}
				break
			}
			ni = newNi
			if len(args) == 0 {
				// Empty multi-bulk ("*0\r\n"): a no-op frame per spec, nothing
				// to dispatch. command.Dispatch requires non-empty args.
				continue
			}
			reply, _, shouldClose := command.Dispatch(b, args)
			c.Output = append(c.Output, reply...)
			if shouldClose {
				c.Close = true
				break
			}
		}
	})
	c.Input = append(c.Input[:0], c.Input[ni:]...)
	return true
}

// rearm updates the poller's writable interest to match whether output is
// currently queued, per the "write interest only while output is pending"
// behavior observed in the original implementation.
func (w *Worker) rearm(c *Conn) {
	wantWrite := len(c.Output) > 0
	if wantWrite == c.WriteArmed {
		return
	}
	if err := w.p.modify(c.ID, c.Fd, true, wantWrite); err == nil {
		c.WriteArmed = wantWrite
	}
}

func (w *Worker) drop(c *Conn) {
	_ = w.p.remove(c.Fd)
	w.conns.remove(c.Fd)
	_ = c.closeFd()
}
