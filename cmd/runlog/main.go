// runlog launches a build tool, streams its output through a line
// classifier, and collects source warnings into an issues artifact.
//
// Usage:
//
//	runlog [flags] <command> [args...]
//	runlog xcodebuild -scheme App build
//	runlog -no-log make -j8
//
// Stdout lines are reassembled, classified (info/warning/error/result),
// styled for the terminal, and appended raw to <log-dir>/runlog.log.
// Warning locations are accumulated into <log-dir>/issues.json. Stderr
// passes through unclassified. The subprocess exit code becomes runlog's
// exit code.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"golang.org/x/term"

	"github.com/dkoosis/runlog/internal/config"
	"github.com/dkoosis/runlog/internal/pipeline"
	"github.com/dkoosis/runlog/internal/render"
	"github.com/dkoosis/runlog/internal/sink"
	"github.com/dkoosis/runlog/internal/version"
	"github.com/dkoosis/runlog/pkg/classify"
	"github.com/dkoosis/runlog/pkg/issues"
	"github.com/dkoosis/runlog/pkg/lookahead"
	"github.com/dkoosis/runlog/pkg/pump"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("runlog", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFlag := fs.String("config", "", "Config file (default: .runlog.yaml lookup)")
	dirFlag := fs.String("dir", "", "Working directory for the subprocess")
	logDirFlag := fs.String("log-dir", "", "Directory for raw log and issues artifacts")
	themeFlag := fs.String("theme", "", "Theme: default, mono")
	lookaheadFlag := fs.Int("lookahead", 0, "Line buffer capacity (bounds classifier lookahead)")
	derivedFlag := fs.String("derived-data", "", "Path excluded from warning extraction")
	noLogFlag := fs.Bool("no-log", false, "Disable buffering, classification and artifacts; raw pass-through")
	versionFlag := fs.Bool("version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *versionFlag {
		fmt.Fprintln(stdout, version.String())
		return 0
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fmt.Fprintf(stderr, "runlog: no command given\n")
		fmt.Fprintf(stderr, "Usage: runlog [flags] <command> [args...]\n")
		return 2
	}

	cfg := config.Load(*configFlag)
	applyFlags(cfg, *themeFlag, *lookaheadFlag, *logDirFlag, *derivedFlag)

	ctx, stop := signal.NotifyContext(context.Background(), pump.InterruptSignals()...)
	defer stop()

	runner := &pump.Runner{
		Path:      rest[0],
		Args:      rest[1:],
		Dir:       *dirFlag,
		ExtraPath: cfg.ExtraPath,
	}

	if *noLogFlag {
		code, err := runner.Passthrough(ctx, stdout, stderr)
		reportFailure(stderr, err)
		return code
	}

	return runClassified(ctx, runner, cfg, stdout, stderr)
}

func runClassified(ctx context.Context, runner *pump.Runner, cfg *config.Config, stdout, stderr io.Writer) int {
	matcher, err := classify.NewMatcher(cfg.Patterns, classify.DefaultMaxLookahead)
	if err != nil {
		fmt.Fprintf(stderr, "runlog: invalid classifier patterns: %v\n", err)
		return 2
	}

	workDir := runner.Dir
	if workDir == "" {
		workDir, _ = os.Getwd()
	}
	if abs, absErr := filepath.Abs(workDir); absErr == nil {
		workDir = abs
	}

	theme := resolveTheme(cfg.Theme, stdout)
	width := sink.TerminalWidth(stdout)
	if cfg.MaxLineWidth > 0 {
		width = cfg.MaxLineWidth
	}
	console := sink.NewConsole(stdout, stderr, theme, width)
	rawLog := sink.NewRawLog(cfg.LogDir)
	defer rawLog.Close()
	extractor := issues.NewExtractor(workDir, cfg.DerivedData, cfg.SourceExts)

	pipe, err := pipeline.New(pipeline.Options{
		Buffer:     lookahead.New(cfg.Lookahead),
		Classifier: matcher,
		Extractor:  extractor,
		Emit:       console.Emit,
		Raw:        rawLog.Write,
		OnDone: func(s pipeline.Stats) {
			label := render.SectionLabel(theme, "run summary")
			fmt.Fprintf(stdout, "%s: %d lines, %d warnings, %d errors\n",
				label, s.Lines, s.Warnings, s.Errors)
		},
	})
	if err != nil {
		fmt.Fprintf(stderr, "runlog: %v\n", err)
		return 2
	}

	runner.OnStdout = pipe.Consume
	runner.OnStderr = console.EmitRaw

	res, runErr := runner.Run(ctx)
	pipe.Drain()
	sink.WriteIssues(cfg.LogDir, extractor.Index())

	reportFailure(stderr, runErr)
	if res == nil {
		return 1
	}
	return res.ExitCode
}

// applyFlags layers explicit flag values over the loaded config.
func applyFlags(cfg *config.Config, theme string, lookahead int, logDir, derived string) {
	if theme != "" {
		cfg.Theme = theme
	}
	if lookahead > 0 {
		cfg.Lookahead = lookahead
	}
	if logDir != "" {
		cfg.LogDir = logDir
	}
	if derived != "" {
		cfg.DerivedData = derived
	}
}

// resolveTheme falls back to mono when stdout is not a terminal or NO_COLOR
// is set.
func resolveTheme(name string, stdout io.Writer) render.Theme {
	if os.Getenv("NO_COLOR") != "" {
		return render.MonoTheme()
	}
	if f, ok := stdout.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		return render.MonoTheme()
	}
	return render.ThemeByName(name)
}

// reportFailure prints the failure surface for a finished run: the typed
// exit error with its captured stderr, or the infrastructure error.
func reportFailure(stderr io.Writer, err error) {
	if err == nil {
		return
	}
	var exitErr *pump.ExitError
	if errors.As(err, &exitErr) {
		fmt.Fprintf(stderr, "runlog: command failed with exit code %d\n", exitErr.Code)
		return
	}
	fmt.Fprintf(stderr, "runlog: %v\n", err)
}
