package sink

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/dkoosis/runlog/pkg/issues"
)

// Artifact file names within the log directory.
const (
	RawLogName = "runlog.log"
	IssuesName = "issues.json"
)

// RawLog appends every raw (unformatted) stdout line to a file as it
// arrives. Creation or write failures are swallowed: the raw log is an
// observability artifact, not part of observing the subprocess result.
type RawLog struct {
	f *os.File
}

// NewRawLog opens (truncating) the raw log in dir. On any failure it returns
// a RawLog that silently discards writes.
func NewRawLog(dir string) *RawLog {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &RawLog{}
	}
	f, err := os.Create(filepath.Join(dir, RawLogName))
	if err != nil {
		return &RawLog{}
	}
	return &RawLog{f: f}
}

// Write appends one line. Written incrementally, not buffered for the run.
func (r *RawLog) Write(line string) {
	if r.f == nil {
		return
	}
	_, _ = r.f.WriteString(line + "\n")
}

// Close flushes and closes the file.
func (r *RawLog) Close() {
	if r.f == nil {
		return
	}
	_ = r.f.Close()
	r.f = nil
}

// WriteIssues serializes the issue index to issues.json in dir, exactly once
// at shutdown. An advisory file lock keeps concurrent invocations sharing a
// log directory from interleaving writes. Failures are swallowed.
func WriteIssues(dir string, idx issues.Index) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return
	}
	path := filepath.Join(dir, IssuesName)

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err == nil {
		defer func() { _ = lock.Unlock() }()
	}

	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(path, data, 0o644)
}
