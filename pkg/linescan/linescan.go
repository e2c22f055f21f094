// Package linescan assembles complete UTF-8 text lines from arbitrarily
// chunked byte reads. A Decoder carries partial lines and partial multi-byte
// sequences across chunk boundaries, so callers can feed it raw pipe reads
// without caring where the OS split them.
package linescan

import (
	"strings"
	"unicode/utf8"
)

// Decoder is a stateful incremental byte-to-line decoder.
// It is not safe for concurrent use and cannot be reused after Finish.
type Decoder struct {
	line     []byte // decoded scalars of the current, not yet terminated line
	tail     []byte // trailing bytes that may be a prefix of a valid rune
	finished bool
}

// NewDecoder returns a Decoder with empty state.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed consumes one chunk of bytes and returns every line completed by it,
// in order, with the trailing newline (and any preceding \r) stripped.
//
// A multi-byte rune split across chunks is reassembled on the next Feed.
// A malformed byte sequence silently ends decoding for the remainder of the
// chunk: lines completed before the bad bytes are still returned, the
// undecodable tail is discarded, and no error is reported.
func (d *Decoder) Feed(chunk []byte) []string {
	if d.finished || len(chunk) == 0 {
		return nil
	}

	buf := chunk
	if len(d.tail) > 0 {
		buf = append(d.tail, chunk...)
		d.tail = nil
	}

	var lines []string
	for i := 0; i < len(buf); {
		r, size := utf8.DecodeRune(buf[i:])
		if r == utf8.RuneError && size <= 1 {
			if incompleteRune(buf[i:]) {
				// Could still be completed by the next chunk.
				d.tail = append(d.tail, buf[i:]...)
				return lines
			}
			// Malformed sequence: stop decoding this tail.
			return lines
		}
		if r == '\n' {
			lines = append(lines, d.takeLine())
		} else {
			d.line = append(d.line, buf[i:i+size]...)
		}
		i += size
	}
	return lines
}

// Finish flushes the decoder at stream end. If scalars were decoded after the
// last newline they are returned as one final line with ok=true. An
// incomplete rune pending at EOF is malformed and is dropped. The decoder
// accepts no further input afterwards.
func (d *Decoder) Finish() (string, bool) {
	d.finished = true
	d.tail = nil
	if len(d.line) == 0 {
		return "", false
	}
	return d.takeLine(), true
}

func (d *Decoder) takeLine() string {
	s := strings.TrimSuffix(string(d.line), "\r")
	d.line = d.line[:0]
	return s
}

// incompleteRune reports whether b is a proper prefix of a valid UTF-8
// encoding, i.e. more bytes could still turn it into a rune.
func incompleteRune(b []byte) bool {
	if len(b) == 0 || len(b) >= utf8.UTFMax {
		return false
	}
	first := b[0]
	var want int
	switch {
	case first&0xE0 == 0xC0:
		want = 2
	case first&0xF0 == 0xE0:
		want = 3
	case first&0xF8 == 0xF0:
		want = 4
	default:
		return false
	}
	if len(b) >= want {
		return false
	}
	for _, c := range b[1:] {
		if c&0xC0 != 0x80 {
			return false
		}
	}
	return true
}
