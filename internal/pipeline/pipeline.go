// Package pipeline drives classification: it owns the lookahead buffer, the
// issue extractor, and the emit order. The stream pump is its sole producer
// and the pipeline itself the sole consumer, interleaved so buffer occupancy
// never exceeds capacity.
package pipeline

import (
	"fmt"

	"github.com/dkoosis/runlog/pkg/classify"
	"github.com/dkoosis/runlog/pkg/issues"
	"github.com/dkoosis/runlog/pkg/lookahead"
)

// Stats summarizes a finished run for the caller's result line.
type Stats struct {
	Lines    int // lines classified (absorbed continuation lines included)
	Warnings int
	Errors   int
}

// Pipeline connects raw stdout lines to the classifier and the sinks.
//
// Per line: the raw sink sees it immediately, then it is pushed onto the
// buffer; once occupancy reaches capacity one line is drained first, keeping
// the push within bounds. Drain must be called after the stream ends to
// classify the remainder and fire the summary hook.
type Pipeline struct {
	buf       *lookahead.Buffer
	cls       classify.Classifier
	extractor *issues.Extractor

	emit    func(classify.Category, string)
	raw     func(string)
	onDone  func(Stats)
	stats   Stats
	maxPeek int
	done    bool
}

// Options for New. Emit and Raw must be set; OnDone may be nil.
type Options struct {
	Buffer     *lookahead.Buffer
	Classifier classify.Classifier
	Extractor  *issues.Extractor
	Emit       func(classify.Category, string)
	Raw        func(string)
	OnDone     func(Stats)
}

// New validates the classifier's lookahead need against the buffer capacity.
// A classifier whose worst case exceeds capacity-1 could trip the buffer's
// fatal sizing contract mid-stream, so that combination is rejected up
// front instead.
func New(opts Options) (*Pipeline, error) {
	maxPeek := opts.Buffer.Cap() - 1
	if r, ok := opts.Classifier.(classify.MaxLookaheadReporter); ok {
		need := r.MaxLookahead()
		if need > maxPeek {
			return nil, fmt.Errorf(
				"pipeline: classifier needs lookahead %d but buffer capacity %d allows at most %d",
				need, opts.Buffer.Cap(), maxPeek)
		}
		maxPeek = need
	}
	return &Pipeline{
		buf:       opts.Buffer,
		cls:       opts.Classifier,
		extractor: opts.Extractor,
		emit:      opts.Emit,
		raw:       opts.Raw,
		onDone:    opts.OnDone,
		maxPeek:   maxPeek,
	}, nil
}

// Consume accepts one raw line from the stream pump.
func (p *Pipeline) Consume(line string) {
	p.raw(line)
	if p.buf.Len() == p.buf.Cap() {
		p.step()
	}
	p.buf.Push(line)
}

// Drain classifies everything still buffered after stream end, then invokes
// the summary hook exactly once — also when no lines were ever produced.
func (p *Pipeline) Drain() Stats {
	for p.buf.Len() > 0 {
		p.step()
	}
	if !p.done {
		p.done = true
		if p.onDone != nil {
			p.onDone(p.stats)
		}
	}
	return p.stats
}

// step pops the oldest line and classifies it. The classifier sees lookahead
// through a window clamped to the lines actually buffered, so probing near
// the tail reports exhaustion instead of violating the buffer contract.
func (p *Pipeline) step() {
	line, ok := p.buf.Pop()
	if !ok {
		return
	}
	formatted, cat, ok := p.cls.Classify(line, p.buf.Window(p.maxPeek))
	p.stats.Lines++
	if !ok {
		return
	}
	switch cat {
	case classify.Warning:
		p.stats.Warnings++
		if p.extractor != nil {
			p.extractor.Scan(formatted)
		}
	case classify.Error:
		p.stats.Errors++
	}
	p.emit(cat, formatted)
}
