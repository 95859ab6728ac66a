package reactor

// event describes one readiness notification from the OS poller for a
// registered descriptor.
type event struct {
	fd       int
	readable bool
	writable bool
	errored  bool
}

// poller abstracts the OS-specific edge-triggered readiness backend (epoll
// on Linux, kqueue on BSD/Darwin). Every registration is edge-triggered:
// after wait reports an fd, the caller must drain it until it would block
// before waiting again.
//
// add/modify accept an id purely so OS backends that find it convenient may
// use it as the kernel-level registration tag; callers must not rely on it
// being round-tripped through wait's events — resolve fd back to a
// connection via the caller's own fd-keyed map instead.
type poller interface {
	// add registers fd for the given interest.
	add(id uint64, fd int, readable, writable bool) error
	// modify changes the interest previously registered for fd.
	modify(id uint64, fd int, readable, writable bool) error
	// remove deregisters fd. It is not an error to remove an fd that was
	// never added.
	remove(fd int) error
	// wait blocks until at least one event is ready, appends them to dst,
	// and returns the extended slice. It takes no timeout: it blocks until
	// an event is ready or wake is called.
	wait(dst []event) ([]event, error)
	// wake unblocks a concurrent wait call; used to interrupt the poller
	// for shutdown.
	wake() error
	// close releases the poller's resources.
	close() error
}

// newPoller constructs the OS-appropriate poller implementation.
func newPoller() (poller, error) {
	return newOSPoller()
}
