// Package cacheserver wires the reactor layer and the in-memory store into
// a runnable TCP cache server.
package cacheserver

import (
	"context"
	"fmt"
	"log"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/cachewire/cachewire/internal/reactor"
	"github.com/cachewire/cachewire/internal/store"
)

// DefaultPort is the port the server binds when none is configured.
const DefaultPort = 6380

// Config holds the entry point's runtime parameters.
type Config struct {
	Port    int
	Threads int
}

// Normalize applies the CLI's fallback rules: invalid port or thread count
// falls back to the documented default rather than erroring out.
func (c Config) Normalize() Config {
	if c.Port <= 0 || c.Port > 65535 {
		c.Port = DefaultPort
	}
	if c.Threads <= 0 {
		c.Threads = runtime.NumCPU()
	}
	return c
}

// Run binds the listener, starts one acceptor and Config.Threads worker
// reactors, and blocks until ctx is canceled or a reactor returns a fatal
// error. It never returns nil during normal operation.
func Run(ctx context.Context, cfg Config) error {
	cfg = cfg.Normalize()
	s := store.New()

	workers := make([]*reactor.Worker, cfg.Threads)
	for i := range workers {
		w, err := reactor.NewWorker(s)
		if err != nil {
			return fmt.Errorf("start worker %d: %w", i, err)
		}
		workers[i] = w
	}

	acc, err := reactor.NewAcceptor(cfg.Port, workers)
	if err != nil {
		return fmt.Errorf("bind port %d: %w", cfg.Port, err)
	}

	log.Printf("cachewire: listening on port %d with %d workers", cfg.Port, cfg.Threads)

	g, gctx := errgroup.WithContext(ctx)
	stop := make(chan struct{})
	go func() {
		<-gctx.Done()
		close(stop)
	}()

	for _, w := range workers {
		w := w
		g.Go(func() error { return w.Run(stop) })
	}
	g.Go(func() error { return acc.Run(stop) })

	return g.Wait()
}
