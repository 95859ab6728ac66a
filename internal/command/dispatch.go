// Package command implements the fixed command set: case-insensitive
// matching, arity checking, and reply generation against the shared store.
package command

import (
	"github.com/cachewire/cachewire/internal/store"
	"github.com/cachewire/cachewire/internal/wire"
)

// Dispatch executes one parsed command against b and returns the encoded
// reply, whether the command mutated the store, and whether the connection
// should close after the reply is flushed. args must be non-empty; callers
// never invoke Dispatch for an empty frame.
func Dispatch(b *store.Batch, args [][]byte) (reply []byte, wasWrite bool, shouldClose bool) {
	switch {
	case argMatch(args[0], "PING"):
		return dispatchPing(args)
	case argMatch(args[0], "SET"):
		return dispatchSet(b, args)
	case argMatch(args[0], "GET"):
		return dispatchGet(b, args)
	case argMatch(args[0], "DEL"):
		return dispatchDel(b, args)
	case argMatch(args[0], "FLUSHDB"):
		return dispatchFlushdb(b, args)
	case argMatch(args[0], "KEYS"):
		return dispatchKeys(b, args)
	case argMatch(args[0], "QUIT"):
		return dispatchQuit(args)
	default:
		return wire.AppendError(nil, "ERR unknown command '"+wire.SafeLine(string(args[0]))+"'"), false, false
	}
}

func dispatchPing(args [][]byte) ([]byte, bool, bool) {
	switch len(args) {
	case 1:
		return wire.AppendSimpleString(nil, "PONG"), false, false
	case 2:
		return wire.AppendBulk(nil, args[1]), false, false
	default:
		return wrongArity(args[0]), false, false
	}
}

func dispatchSet(b *store.Batch, args [][]byte) ([]byte, bool, bool) {
	if len(args) != 3 {
		return wrongArity(args[0]), false, false
	}
	b.Set(args[1], args[2])
	return wire.AppendSimpleString(nil, "OK"), true, false
}

func dispatchGet(b *store.Batch, args [][]byte) ([]byte, bool, bool) {
	if len(args) != 2 {
		return wrongArity(args[0]), false, false
	}
	v, ok := b.Get(args[1])
	if !ok {
		return wire.AppendNullBulk(nil), false, false
	}
	return wire.AppendBulk(nil, v), false, false
}

func dispatchDel(b *store.Batch, args [][]byte) ([]byte, bool, bool) {
	if len(args) != 2 {
		return wrongArity(args[0]), false, false
	}
	removed := b.Del(args[1])
	if removed {
		return wire.AppendInteger(nil, 1), true, false
	}
	return wire.AppendInteger(nil, 0), false, false
}

func dispatchFlushdb(b *store.Batch, args [][]byte) ([]byte, bool, bool) {
	if len(args) != 1 {
		return wrongArity(args[0]), false, false
	}
	b.Flush()
	return wire.AppendSimpleString(nil, "OK"), true, false
}

func dispatchKeys(b *store.Batch, args [][]byte) ([]byte, bool, bool) {
	if len(args) != 2 {
		return wrongArity(args[0]), false, false
	}
	g, ok := compileGlob(string(args[1]))
	if !ok {
		// Observed quirk: an invalid KEYS pattern replies with a null bulk
		// rather than an error.
		return wire.AppendNullBulk(nil), false, false
	}
	var matches [][]byte
	b.Keys(func(key []byte) {
		if matchKey(g, key) {
			matches = append(matches, append([]byte(nil), key...))
		}
	})
	out := wire.AppendArrayHeader(nil, len(matches))
	for _, k := range matches {
		out = wire.AppendBulk(out, k)
	}
	return out, false, false
}

func dispatchQuit(args [][]byte) ([]byte, bool, bool) {
	if len(args) != 1 {
		return wrongArity(args[0]), false, false
	}
	return wire.AppendSimpleString(nil, "OK"), false, true
}

func wrongArity(cmd []byte) []byte {
	return wire.AppendError(nil, "ERR wrong number of arguments for '"+wire.SafeLine(string(cmd))+"' command")
}

// argMatch reports whether arg equals what, comparing ASCII letters
// case-insensitively (a..z considered equal to A..Z at the same position)
// with no locale-aware folding.
func argMatch(arg []byte, what string) bool {
	if len(arg) != len(what) {
		return false
	}
	for i := 0; i < len(arg); i++ {
		a, w := arg[i], what[i]
		if a == w {
			continue
		}
		if a >= 'a' && a <= 'z' && a-32 == w {
			continue
		}
		if a >= 'A' && a <= 'Z' && a+32 == w {
			continue
		}
		return false
	}
	return true
}
