// Package classify maps raw build-tool output lines to formatted lines with
// a coarse category. The classifier may consult bounded lookahead into lines
// that arrived after the one being formatted, which lets it fold multi-line
// diagnostic blocks (marker line, source excerpt, caret) into one entry.
package classify

import "github.com/dkoosis/runlog/pkg/lookahead"

// Category is the closed set of line classifications.
type Category int

const (
	Info Category = iota
	Warning
	Error
	Result
)

// String returns the lowercase category name.
func (c Category) String() string {
	switch c {
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Result:
		return "result"
	default:
		return "info"
	}
}

// Classifier turns one raw line into a formatted line and a category. The
// next source serves lines after the current one; implementations must
// tolerate it reporting exhaustion at any point. Returning ok=false
// suppresses the line from the formatted output (it still reaches the raw
// log upstream).
//
// The driver calls Classify exactly once per buffered line, in buffer order.
type Classifier interface {
	Classify(line string, next lookahead.Source) (formatted string, cat Category, ok bool)
}

// MaxLookaheadReporter is implemented by classifiers that know their worst
// case lookahead depth, letting the pipeline validate buffer sizing up front.
type MaxLookaheadReporter interface {
	MaxLookahead() int
}
