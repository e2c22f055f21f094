package pump

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drip returns at most n bytes per Read call, exercising partial reads.
type drip struct {
	r io.Reader
	n int
}

func (d *drip) Read(p []byte) (int, error) {
	if len(p) > d.n {
		p = p[:d.n]
	}
	return d.r.Read(p)
}

func TestPump_Run_When_WholeStream(t *testing.T) {
	t.Parallel()

	var lines []string
	p := New(strings.NewReader("one\ntwo\nthree\n"), func(l string) {
		lines = append(lines, l)
	})

	require.NoError(t, p.Run())
	assert.Equal(t, []string{"one", "two", "three"}, lines)
}

func TestPump_Run_When_PartialReads(t *testing.T) {
	t.Parallel()

	// Three-byte reads split lines and multi-byte runes arbitrarily.
	var lines []string
	p := New(&drip{r: strings.NewReader("héllo\n日本\nrest"), n: 3}, func(l string) {
		lines = append(lines, l)
	})

	require.NoError(t, p.Run())
	assert.Equal(t, []string{"héllo", "日本", "rest"}, lines)
}

func TestPump_Run_When_TrailingPartialLine(t *testing.T) {
	t.Parallel()

	var lines []string
	p := New(strings.NewReader("done\nno newline at end"), func(l string) {
		lines = append(lines, l)
	})

	require.NoError(t, p.Run())
	assert.Equal(t, []string{"done", "no newline at end"}, lines)
}

type failReader struct{ err error }

func (f *failReader) Read([]byte) (int, error) { return 0, f.err }

func TestPump_Run_When_PipeTeardownError(t *testing.T) {
	t.Parallel()

	p := New(&failReader{err: errors.New("read |0: file already closed")}, func(string) {})
	assert.NoError(t, p.Run(), "closed-pipe errors end the pump silently")
}

func TestPump_Run_When_RealReadError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("device not configured")
	p := New(&failReader{err: wantErr}, func(string) {})

	assert.ErrorIs(t, p.Run(), wantErr)
}
