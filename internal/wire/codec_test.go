package wire

import (
	"bytes"
	"testing"
)

func TestTake_Inline(t *testing.T) {
	args, err, ni, complete := Take([]byte("PING\r\n"), 0)
	if err != "" || !complete {
		t.Fatalf("unexpected err=%q complete=%v", err, complete)
	}
	if ni != len("PING\r\n") {
		t.Fatalf("ni = %d, want %d", ni, len("PING\r\n"))
	}
	if len(args) != 1 || string(args[0]) != "PING" {
		t.Fatalf("args = %v", args)
	}
}

func TestTake_InlineNoCR(t *testing.T) {
	args, err, _, complete := Take([]byte("GET foo\n"), 0)
	if err != "" || !complete {
		t.Fatalf("unexpected err=%q complete=%v", err, complete)
	}
	if len(args) != 2 || string(args[0]) != "GET" || string(args[1]) != "foo" {
		t.Fatalf("args = %v", args)
	}
}

func TestTake_InlineIncomplete(t *testing.T) {
	_, err, ni, complete := Take([]byte("GET fo"), 0)
	if err != "" || complete {
		t.Fatalf("unexpected err=%q complete=%v", err, complete)
	}
	if ni != 0 {
		t.Fatalf("ni = %d, want 0", ni)
	}
}

func TestTake_InlineQuoted(t *testing.T) {
	args, err, _, complete := Take([]byte(`SET k "hello\nworld"` + "\r\n"), 0)
	if err != "" || !complete {
		t.Fatalf("unexpected err=%q complete=%v", err, complete)
	}
	if len(args) != 3 || string(args[2]) != "hello\nworld" {
		t.Fatalf("args = %q", args)
	}
}

func TestTake_InlineUnbalancedQuote(t *testing.T) {
	_, err, _, complete := Take([]byte("\"\xff\n"), 0)
	if complete {
		t.Fatal("expected incomplete frame")
	}
	if err != "ERR Protocol error: unbalanced quotes in request" {
		t.Fatalf("err = %q", err)
	}
}

func TestTake_InlineUnterminatedQuoteAwaitsMore(t *testing.T) {
	_, err, ni, complete := Take([]byte(`SET k "partial`), 0)
	if err != "" || complete {
		t.Fatalf("unexpected err=%q complete=%v", err, complete)
	}
	if ni != 0 {
		t.Fatalf("ni = %d, want 0", ni)
	}
}

func TestTake_InlineHexEscape(t *testing.T) {
	args, _, _, complete := Take([]byte(`SET k "\x41\x42"`+"\r\n"), 0)
	if !complete {
		t.Fatal("expected complete")
	}
	if string(args[2]) != "AB" {
		t.Fatalf("args[2] = %q", args[2])
	}
}

func TestTake_InlineBadHexEscapeEmitsLiteralX(t *testing.T) {
	args, _, _, complete := Take([]byte(`SET k "\xZZ"`+"\r\n"), 0)
	if !complete {
		t.Fatal("expected complete")
	}
	if string(args[2]) != "xZZ" {
		t.Fatalf("args[2] = %q", args[2])
	}
}

func TestTake_MultiBulk(t *testing.T) {
	buf := []byte("*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n")
	args, err, ni, complete := Take(buf, 0)
	if err != "" || !complete {
		t.Fatalf("unexpected err=%q complete=%v", err, complete)
	}
	if ni != len(buf) {
		t.Fatalf("ni = %d, want %d", ni, len(buf))
	}
	want := [][]byte{[]byte("SET"), []byte("foo"), []byte("bar")}
	for i := range want {
		if !bytes.Equal(args[i], want[i]) {
			t.Fatalf("args[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestTake_MultiBulkZeroArgs(t *testing.T) {
	args, err, ni, complete := Take([]byte("*0\r\n"), 0)
	if err != "" || !complete || len(args) != 0 || ni != 4 {
		t.Fatalf("args=%v err=%q ni=%d complete=%v", args, err, ni, complete)
	}
}

func TestTake_MultiBulkIncomplete(t *testing.T) {
	cases := []string{
		"*2\r\n",
		"*2\r\n$3\r\n",
		"*2\r\n$3\r\nfoo",
		"*2\r\n$3\r\nfoo\r\n$3\r\nba",
	}
	for _, c := range cases {
		_, err, ni, complete := Take([]byte(c), 0)
		if err != "" || complete || ni != 0 {
			t.Fatalf("input %q: err=%q ni=%d complete=%v", c, err, ni, complete)
		}
	}
}

func TestTake_MultiBulkBadSentinel(t *testing.T) {
	_, err, _, complete := Take([]byte("*1\r\n#3\r\nfoo\r\n"), 0)
	if complete {
		t.Fatal("expected failure, not complete")
	}
	if err == "" {
		t.Fatal("expected protocol error")
	}
}

func TestTake_MultiBulkBadLength(t *testing.T) {
	_, err, _, complete := Take([]byte("*x\r\n"), 0)
	if complete || err == "" {
		t.Fatalf("err=%q complete=%v", err, complete)
	}
}

func TestTake_Progress(t *testing.T) {
	buf := []byte("PING\r\nPING\r\n")
	_, err, ni, complete := Take(buf, 0)
	if err != "" || !complete || ni <= 0 {
		t.Fatalf("err=%q ni=%d complete=%v", err, ni, complete)
	}
	_, err, ni2, complete := Take(buf, ni)
	if err != "" || !complete || ni2 <= ni {
		t.Fatalf("err=%q ni2=%d complete=%v", err, ni2, complete)
	}
}

func TestTake_PrefixSafety(t *testing.T) {
	b := []byte("PING\r\n")
	tail := []byte("GET k\r\n")
	argsA, errA, niA, completeA := Take(b, 0)
	full := append(append([]byte{}, b...), tail...)
	argsB, errB, niB, completeB := Take(full, 0)
	if errA != errB || niA != niB || completeA != completeB {
		t.Fatalf("prefix mismatch: %v/%v/%v vs %v/%v/%v", errA, niA, completeA, errB, niB, completeB)
	}
	for i := range argsA {
		if !bytes.Equal(argsA[i], argsB[i]) {
			t.Fatalf("args mismatch at %d: %q vs %q", i, argsA[i], argsB[i])
		}
	}
}

func TestTake_IncrementalEquivalence(t *testing.T) {
	full := []byte("*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\nGET foo\r\n")
	var wantFrames [][][]byte
	ni := 0
	for {
		args, errStr, newNi, complete := Take(full, ni)
		if errStr != "" || !complete {
			break
		}
		wantFrames = append(wantFrames, args)
		ni = newNi
	}

	for _, splitAt := range []int{1, 5, 12, 20, len(full) - 1} {
		if splitAt <= 0 || splitAt >= len(full) {
			continue
		}
		var input []byte
		var got [][][]byte
		cursor := 0
		chunks := [][]byte{full[:splitAt], full[splitAt:]}
		for _, chunk := range chunks {
			input = append(input, chunk...)
			for {
				args, errStr, newNi, complete := Take(input, cursor)
				if errStr != "" || !complete {
					break
				}
				got = append(got, args)
				cursor = newNi
			}
		}
		if len(got) != len(wantFrames) {
			t.Fatalf("splitAt=%d: got %d frames, want %d", splitAt, len(got), len(wantFrames))
		}
		for i := range got {
			for j := range got[i] {
				if !bytes.Equal(got[i][j], wantFrames[i][j]) {
					t.Fatalf("splitAt=%d frame %d arg %d: got %q want %q", splitAt, i, j, got[i][j], wantFrames[i][j])
				}
			}
		}
	}
}

func TestTake_QuoteEscapeRoundTrip(t *testing.T) {
	for x := 0; x < 256; x++ {
		b := byte(x)
		var lit []byte
		switch b {
		case '\n':
			lit = []byte(`\n`)
		case '\r':
			lit = []byte(`\r`)
		case '\t':
			lit = []byte(`\t`)
		case 0x08:
			lit = []byte(`\b`)
		case 0x07:
			lit = []byte(`\a`)
		case '"':
			lit = []byte(`\"`)
		case '\\':
			lit = []byte(`\\`)
		default:
			lit = []byte{b}
		}
		frame := append([]byte{'"'}, lit...)
		frame = append(frame, '"', '\r', '\n')
		args, errStr, _, complete := Take(frame, 0)
		if errStr != "" || !complete {
			t.Fatalf("byte %d: err=%q complete=%v", x, errStr, complete)
		}
		if len(args) != 1 || len(args[0]) != 1 || args[0][0] != b {
			t.Fatalf("byte %d: args = %v", x, args)
		}
	}
}
