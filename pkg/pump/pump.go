// Package pump drives OS pipes to completion. A Pump reads one stream in
// chunks, reassembles lines through linescan, and hands each completed line
// to a callback in arrival order. A Runner executes a subprocess and joins
// two pumps with the process exit into a single result.
package pump

import (
	"io"
	"strings"

	"github.com/dkoosis/runlog/pkg/linescan"
)

// ReadBufferSize is the chunk size for pipe reads (4KB).
const ReadBufferSize = 4096

// Pump reads a single stream to EOF and emits completed lines.
type Pump struct {
	r      io.Reader
	dec    *linescan.Decoder
	onLine func(string)
}

// New returns a pump for r that calls onLine for each completed line.
func New(r io.Reader, onLine func(string)) *Pump {
	return &Pump{
		r:      r,
		dec:    linescan.NewDecoder(),
		onLine: onLine,
	}
}

// Run reads until EOF, then flushes the decoder and emits any non-empty
// trailing line. It returns the first read error that was not ordinary pipe
// teardown; io.EOF, closed-pipe and broken-pipe conditions end the pump
// silently. The decoder flush happens on every exit path, so a process that
// dies mid-line still gets its partial output delivered.
func (p *Pump) Run() error {
	var readErr error
	buf := make([]byte, ReadBufferSize)
	for {
		n, err := p.r.Read(buf)
		if n > 0 {
			for _, line := range p.dec.Feed(buf[:n]) {
				p.onLine(line)
			}
		}
		if err != nil {
			if !isPipeTeardown(err) {
				readErr = err
			}
			break
		}
	}

	if trailing, ok := p.dec.Finish(); ok {
		p.onLine(trailing)
	}
	return readErr
}

// isPipeTeardown reports whether err is the normal end of a subprocess pipe.
func isPipeTeardown(err error) bool {
	if err == io.EOF {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "file already closed") ||
		strings.Contains(msg, "broken pipe")
}
