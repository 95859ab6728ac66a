package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"runtime"
	"strconv"

	"github.com/cachewire/cachewire/internal/cacheserver"
)

const version = "v0.0.1"

// fallbackInt is a flag.Value that falls back to a default instead of
// aborting the flag parse when given a value that does not parse as an
// integer, matching the CLI's documented "invalid values fall back" rule.
type fallbackInt struct {
	val     *int
	fallback int
}

func (f fallbackInt) String() string {
	if f.val == nil {
		return ""
	}
	return strconv.Itoa(*f.val)
}

func (f fallbackInt) Set(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		n = f.fallback
	}
	*f.val = n
	return nil
}

func main() {
	threads := runtime.NumCPU()
	port := cacheserver.DefaultPort
	var showVersion bool

	tFlag := fallbackInt{val: &threads, fallback: runtime.NumCPU()}
	pFlag := fallbackInt{val: &port, fallback: cacheserver.DefaultPort}
	flag.Var(tFlag, "threads", "worker reactor count")
	flag.Var(tFlag, "t", "worker reactor count (shorthand)")
	flag.Var(pFlag, "port", "TCP port to listen on")
	flag.Var(pFlag, "p", "TCP port to listen on (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "print the version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(version)
		return
	}

	cfg := cacheserver.Config{Port: port, Threads: threads}.Normalize()
	if err := cacheserver.Run(context.Background(), cfg); err != nil {
		log.Fatalf("cachewire: %v", err)
	}
}
