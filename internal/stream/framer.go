package stream

import (
	"bytes"
	"strings"
)

// Framer incrementally reassembles newline-delimited frames from an
// arbitrarily chunked byte stream. Buffering happens at the byte level, so
// a chunk boundary that falls inside a multi-byte UTF-8 sequence is
// harmless: the bytes are only decoded once their line is complete.
type Framer struct {
	buf bytes.Buffer
}

// Push appends a chunk and returns every complete line it unlocked, in
// arrival order. The trailing (possibly partial) line stays buffered for
// the next chunk. A trailing '\r' is stripped from each line.
func (f *Framer) Push(chunk []byte) []string {
	f.buf.Write(chunk)

	data := f.buf.Bytes()
	var lines []string
	start := 0
	for i, b := range data {
		if b == '\n' {
			lines = append(lines, strings.TrimSuffix(string(data[start:i]), "\r"))
			start = i + 1
		}
	}

	if start > 0 {
		rest := make([]byte, len(data)-start)
		copy(rest, data[start:])
		f.buf.Reset()
		f.buf.Write(rest)
	}
	return lines
}

// Close discards any buffered partial line and returns how many bytes were
// dropped. A stream that terminates mid-frame left an ignorable fragment,
// not an error: termination normally follows a COMPLETE or ERROR frame.
func (f *Framer) Close() int {
	n := f.buf.Len()
	f.buf.Reset()
	return n
}
