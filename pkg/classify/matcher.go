package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dkoosis/runlog/pkg/lookahead"
)

// Rules holds the regex pattern sets for each category. Pattern sets come
// from configuration; no build tool's grammar is baked into the matcher
// beyond generic compiler-diagnostic shapes.
type Rules struct {
	Info    []string `yaml:"info"`
	Warning []string `yaml:"warning"`
	Error   []string `yaml:"error"`
	Result  []string `yaml:"result"`
}

// DefaultRules returns pattern sets that cover common compiler and build
// tool output without being tied to one tool.
func DefaultRules() Rules {
	return Rules{
		Error: []string{
			`(?i)^(error|fatal error|fatal|panic):`,
			`:\d+:\d+: error:`,
			`\bld: error\b`,
		},
		Warning: []string{
			`(?i)^warning:`,
			`:\d+:\d+: warning:`,
			`(?i)\bdeprecated\b`,
		},
		Result: []string{
			`^\*\* [A-Z ]+ (SUCCEEDED|FAILED|INTERRUPTED) \*\*`,
			`^(BUILD|TEST) (SUCCEEDED|FAILED)$`,
			`^Executed \d+ tests?,`,
		},
		Info: []string{
			`(?i)^(note|info):`,
			`(?i)^(compiling|linking|copying|processing|signing) `,
		},
	}
}

// Fast-path prefix checks before regex, same idea as a scoring matcher but
// cheaper for the overwhelmingly common cases.
var (
	errorPrefixes   = []string{"error:", "Error:", "ERROR:", "fatal:", "panic:", "FAIL"}
	warningPrefixes = []string{"warning:", "Warning:", "WARNING:"}
	resultPrefixes  = []string{"** ", "BUILD SUCCEEDED", "BUILD FAILED", "Executed "}
)

func hasAnyPrefix(line string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// Matcher is the default Classifier: prefix fast paths, then precompiled
// regexes per category, with lookahead used to fold the source excerpt and
// caret lines that compilers print after a diagnostic marker into the marker
// line itself. Matcher is stateful (it remembers lines it has absorbed) and
// must be driven by a single consumer.
type Matcher struct {
	patterns     map[Category][]*regexp.Regexp
	diagRe       *regexp.Regexp
	caretRe      *regexp.Regexp
	maxLookahead int
	skip         int
}

// DefaultMaxLookahead covers a diagnostic marker's excerpt plus caret line.
const DefaultMaxLookahead = 2

// NewMatcher compiles the rule sets. maxLookahead bounds how far Classify
// will peek; values below 1 fall back to DefaultMaxLookahead.
func NewMatcher(rules Rules, maxLookahead int) (*Matcher, error) {
	if maxLookahead < 1 {
		maxLookahead = DefaultMaxLookahead
	}
	m := &Matcher{
		patterns:     make(map[Category][]*regexp.Regexp),
		diagRe:       regexp.MustCompile(`^(.+?\.\w+):(\d+):(\d+): (error|warning|note): `),
		caretRe:      regexp.MustCompile(`^[ \t]*\^[~^ \t]*$`),
		maxLookahead: maxLookahead,
	}
	for cat, set := range map[Category][]string{
		Info: rules.Info, Warning: rules.Warning, Error: rules.Error, Result: rules.Result,
	} {
		for _, p := range set {
			if p == "" {
				continue
			}
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("pattern %q for %s: %w", p, cat, err)
			}
			m.patterns[cat] = append(m.patterns[cat], re)
		}
	}
	return m, nil
}

// MaxLookahead returns the deepest lookahead Classify will request.
func (m *Matcher) MaxLookahead() int { return m.maxLookahead }

// Classify implements Classifier.
func (m *Matcher) Classify(line string, next lookahead.Source) (string, Category, bool) {
	// Lines already absorbed into an earlier diagnostic block.
	if m.skip > 0 {
		m.skip--
		return "", Info, false
	}

	if sub := m.diagRe.FindStringSubmatch(line); sub != nil {
		return m.classifyDiagnostic(line, sub[4], next)
	}

	if hasAnyPrefix(line, resultPrefixes) && m.matches(Result, line) {
		return line, Result, true
	}
	if hasAnyPrefix(line, errorPrefixes) {
		return line, Error, true
	}
	if hasAnyPrefix(line, warningPrefixes) {
		return line, Warning, true
	}

	// Regex pass, most severe first so result banners and errors win over
	// broad info patterns.
	for _, cat := range []Category{Result, Error, Warning, Info} {
		if m.matches(cat, line) {
			return line, cat, true
		}
	}
	return line, Info, true
}

// classifyDiagnostic folds the excerpt and caret lines that follow a
// file:line:col marker into one formatted block. Lines consumed from the
// lookahead source are suppressed when they are later popped.
func (m *Matcher) classifyDiagnostic(line, severity string, next lookahead.Source) (string, Category, bool) {
	cat := Info
	switch severity {
	case "error":
		cat = Error
	case "warning":
		cat = Warning
	}

	block := []string{line}
	absorbed := 0
	for absorbed < m.maxLookahead {
		ahead, ok := next.Next()
		if !ok {
			break
		}
		// A new diagnostic ends the block; it gets classified on its own.
		if m.diagRe.MatchString(ahead) {
			break
		}
		block = append(block, ahead)
		absorbed++
		if m.caretRe.MatchString(ahead) {
			break
		}
	}

	// Only absorb when the block ends in a caret line; otherwise the peeked
	// lines were unrelated output and must be classified individually.
	if len(block) > 1 && m.caretRe.MatchString(block[len(block)-1]) {
		m.skip = absorbed
		return strings.Join(block, "\n"), cat, true
	}
	return line, cat, true
}

func (m *Matcher) matches(cat Category, line string) bool {
	for _, re := range m.patterns[cat] {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}
