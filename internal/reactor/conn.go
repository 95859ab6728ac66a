package reactor

import (
	"net"

	"golang.org/x/sys/unix"
)

// Conn is one adopted client connection. It is owned exclusively by a
// single worker reactor after handoff from the acceptor; nothing else
// touches its buffers or fd concurrently.
type Conn struct {
	ID       uint64
	Fd       int
	PeerAddr net.Addr

	Input []byte // bytes read but not yet fully consumed by the codec

	Output     []byte // bytes queued for write, not yet flushed
	WriteArmed bool    // true while the poller is watching for writability

	Close bool // true once the peer or a protocol error ends the connection
}

// closeFd releases the connection's underlying file descriptor. The worker
// calls it once, after removing fd from its poller.
func (c *Conn) closeFd() error {
	return unix.Close(c.Fd)
}

// connTable is a worker's private mapping from fd to adopted connection.
// The spec describes this as keyed by connection id; keying it by fd
// instead lets a poller event resolve straight to its Conn in one lookup,
// which is the equivalent internal representation spec.md §9 allows.
type connTable struct {
	byFd map[int]*Conn
}

func newConnTable() *connTable {
	return &connTable{byFd: make(map[int]*Conn)}
}

func (t *connTable) put(c *Conn)       { t.byFd[c.Fd] = c }
func (t *connTable) get(fd int) (*Conn, bool) {
	c, ok := t.byFd[fd]
	return c, ok
}
func (t *connTable) remove(fd int) { delete(t.byFd, fd) }
