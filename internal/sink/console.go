// Package sink is the output side of the pipeline: styled console emission
// of classified lines, the incremental raw log artifact, and the issues file
// written at shutdown. Artifact I/O is best-effort throughout — a log file
// that cannot be written must never abort the subprocess run.
package sink

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"

	"github.com/dkoosis/runlog/internal/render"
	"github.com/dkoosis/runlog/pkg/classify"
)

// Console emits classified lines through a theme. Writes are serialized so
// emission order always matches classification order, even when stderr
// pass-through lines arrive from another goroutine.
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	err   io.Writer
	theme render.Theme
	width int
}

// NewConsole builds a console writing formatted lines to out and
// error-stream pass-through to errOut. Width bounds line truncation;
// 0 means unbounded.
func NewConsole(out, errOut io.Writer, theme render.Theme, width int) *Console {
	return &Console{out: out, err: errOut, theme: theme, width: width}
}

// Emit writes one classified, formatted line.
func (c *Console) Emit(cat classify.Category, formatted string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, render.Line(c.theme, cat, formatted, c.width))
}

// EmitRaw forwards an error-stream line unformatted. Error-stream lines
// bypass classification by design.
func (c *Console) EmitRaw(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.err, line)
}

// TerminalWidth returns the display width of w when it is a terminal,
// 0 otherwise.
func TerminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return 0
	}
	return width
}
