// Package issues accumulates structured warning locations parsed out of
// formatted build log lines. Each warning line is scanned for a
// file:line:col: marker; hits are grouped by source path, relative to the
// build's working directory.
package issues

import (
	"regexp"
	"strings"
)

// DefaultExtensions are the source file extensions recognized in markers.
var DefaultExtensions = []string{"swift", "m", "mm", "c", "cc", "cpp", "h", "hpp", "go"}

// Index maps a source path to the warning messages reported against it, in
// the order they were extracted. Single-writer; serialized once at shutdown.
type Index map[string][]string

// Extractor scans warning lines and appends hits to its Index.
type Extractor struct {
	// WorkDir prefix is stripped from both the path key and the trailing
	// message, so entries read relative to the build root.
	WorkDir string

	// DerivedDataDir marks build-system-internal paths. A line referencing
	// it is not a real source warning and contributes nothing.
	DerivedDataDir string

	markerRe *regexp.Regexp
	index    Index
}

// NewExtractor builds an extractor recognizing the given source extensions
// (DefaultExtensions when nil).
func NewExtractor(workDir, derivedDataDir string, exts []string) *Extractor {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	group := make([]string, len(exts))
	for i, e := range exts {
		group[i] = regexp.QuoteMeta(e)
	}
	// <name>.<ext>:<line>:<col>: anywhere in the line; first hit wins.
	re := regexp.MustCompile(`([\w+\-]+\.(?:` + strings.Join(group, "|") + `)):\d+:\d+:`)
	return &Extractor{
		WorkDir:        workDir,
		DerivedDataDir: derivedDataDir,
		markerRe:       re,
		index:          make(Index),
	}
}

// Scan inspects one formatted warning line. Lines referencing the derived
// data directory, and lines with no marker, are silently ignored.
func (e *Extractor) Scan(line string) {
	// A folded diagnostic block carries the source excerpt and caret on
	// further physical lines; only the marker line holds the issue.
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if e.DerivedDataDir != "" && strings.Contains(line, e.DerivedDataDir) {
		return
	}
	loc := e.markerRe.FindStringSubmatchIndex(line)
	if loc == nil {
		return
	}
	// Path = everything before the marker plus the file name inside it.
	path := line[:loc[0]] + line[loc[2]:loc[3]]
	message := line[loc[1]:]

	path = strings.TrimPrefix(path, e.WorkDir)
	message = strings.ReplaceAll(message, e.WorkDir, "")

	e.index[path] = append(e.index[path], message)
}

// Index returns the accumulated path-to-messages mapping.
func (e *Extractor) Index() Index { return e.index }

// Total returns the number of messages across all paths.
func (i Index) Total() int {
	n := 0
	for _, msgs := range i {
		n += len(msgs)
	}
	return n
}
