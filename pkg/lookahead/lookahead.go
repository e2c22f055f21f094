// Package lookahead provides the bounded line buffer that sits between the
// asynchronous stream pump and the synchronous line classifier. The buffer
// lets the classifier peek at lines that arrived after the one it is
// currently formatting, without consuming them.
package lookahead

import "fmt"

// Source is the pull interface a classifier uses to look ahead. Next returns
// the next not-yet-classified line, or ok=false when no further lookahead is
// available. Implementations decide how much lookahead they are willing to
// serve; test doubles can return a scripted sequence.
type Source interface {
	Next() (string, bool)
}

// Buffer is a fixed-capacity FIFO of raw lines with a lookahead cursor.
//
// It enforces single-producer/single-consumer discipline by contract, not by
// locking: the stream pump is the sole pusher and the classification driver
// the sole popper, interleaved so occupancy never exceeds capacity. Violating
// either bound is a sizing defect in the caller and panics rather than
// returning wrong data.
type Buffer struct {
	lines    []string
	capacity int
	cursor   int
}

// New returns an empty buffer holding at most capacity lines.
// Capacity must be at least 1.
func New(capacity int) *Buffer {
	if capacity < 1 {
		panic(fmt.Sprintf("lookahead: capacity must be >= 1, got %d", capacity))
	}
	return &Buffer{
		lines:    make([]string, 0, capacity),
		capacity: capacity,
	}
}

// Push appends a line at the tail. The producer must drain before pushing
// into a full buffer; pushing beyond capacity panics.
func (b *Buffer) Push(line string) {
	if len(b.lines) == b.capacity {
		panic(fmt.Sprintf("lookahead: push into full buffer (capacity %d)", b.capacity))
	}
	b.lines = append(b.lines, line)
}

// Pop removes and returns the oldest line and resets the lookahead cursor.
// Returns ok=false when the buffer is empty.
func (b *Buffer) Pop() (string, bool) {
	b.cursor = 0
	if len(b.lines) == 0 {
		return "", false
	}
	line := b.lines[0]
	// Shift rather than reslice so the backing array never grows past capacity.
	copy(b.lines, b.lines[1:])
	b.lines = b.lines[:len(b.lines)-1]
	return line, true
}

// Peek returns the line at the current lookahead cursor and advances the
// cursor. Requesting lookahead past the lines currently buffered means the
// buffer was sized too small for the classifier's needs; that is a
// configuration defect and panics.
func (b *Buffer) Peek() string {
	if b.cursor >= len(b.lines) {
		panic(fmt.Sprintf(
			"lookahead: peek %d past buffered lines (%d of %d held); buffer capacity too small for classifier",
			b.cursor, len(b.lines), b.capacity))
	}
	line := b.lines[b.cursor]
	b.cursor++
	return line
}

// Len returns the number of lines currently buffered.
func (b *Buffer) Len() int { return len(b.lines) }

// Cap returns the configured capacity.
func (b *Buffer) Cap() int { return b.capacity }

// Window returns a Source serving at most n lines of lookahead from the
// buffer's current contents. It clamps n to the lines actually held, so the
// classifier can probe freely near the end of the stream: exhaustion is
// reported as ok=false instead of tripping the Peek contract.
func (b *Buffer) Window(n int) Source {
	if n > len(b.lines) {
		n = len(b.lines)
	}
	return &window{buf: b, limit: n}
}

type window struct {
	buf    *Buffer
	limit  int
	served int
}

func (w *window) Next() (string, bool) {
	if w.served >= w.limit {
		return "", false
	}
	w.served++
	return w.buf.Peek(), true
}
