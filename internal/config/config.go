// Package config loads runlog settings from .runlog.yaml, merging file
// values over built-in defaults. CLI flags override both at a higher layer.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dkoosis/runlog/pkg/classify"
	"github.com/dkoosis/runlog/pkg/issues"
)

// ConfigFileName is looked up in the working directory, then in the user
// config directory under "runlog/".
const ConfigFileName = ".runlog.yaml"

// Defaults.
const (
	DefaultTheme     = "default"
	DefaultLookahead = 10
	DefaultLogDir    = "."
)

// Config is the application configuration.
type Config struct {
	// Theme selects the terminal style set: default, mono.
	Theme string `yaml:"theme"`

	// Lookahead is the line buffer capacity. It bounds how far the
	// classifier can peek past the line being formatted; a tunable
	// constant, not a semantic limit.
	Lookahead int `yaml:"lookahead"`

	// MaxLineWidth caps rendered line width. Zero means use the terminal
	// width, or unbounded when output is not a terminal.
	MaxLineWidth int `yaml:"max_line_width"`

	// LogDir receives the raw log and issues artifacts.
	LogDir string `yaml:"log_dir"`

	// DerivedData marks build-system-internal paths excluded from warning
	// extraction.
	DerivedData string `yaml:"derived_data"`

	// SourceExts are the file extensions recognized in warning markers.
	SourceExts []string `yaml:"source_exts"`

	// ExtraPath directories are appended to the subprocess PATH.
	ExtraPath []string `yaml:"extra_path"`

	// Patterns are the classifier rule sets, replacing the defaults
	// category by category when set.
	Patterns classify.Rules `yaml:"patterns"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Theme:      DefaultTheme,
		Lookahead:  DefaultLookahead,
		LogDir:     DefaultLogDir,
		SourceExts: issues.DefaultExtensions,
		ExtraPath:  []string{"/usr/local/bin", "/opt/homebrew/bin"},
		Patterns:   classify.DefaultRules(),
	}
}

// Load reads configuration from path, or from the standard lookup locations
// when path is empty. A missing file yields the defaults; an unreadable or
// malformed file warns on stderr and also yields the defaults, so a broken
// config never blocks a build.
func Load(path string) *Config {
	cfg := Default()

	if path == "" {
		path = findConfig()
		if path == "" {
			return cfg
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "runlog: reading config %s: %v (using defaults)\n", path, err)
		}
		return cfg
	}

	var fileCfg Config
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		fmt.Fprintf(os.Stderr, "runlog: parsing config %s: %v (using defaults)\n", path, err)
		return cfg
	}

	merge(cfg, &fileCfg)
	return cfg
}

// merge copies non-zero file values onto the defaults.
func merge(dst, src *Config) {
	if src.Theme != "" {
		dst.Theme = src.Theme
	}
	if src.Lookahead > 0 {
		dst.Lookahead = src.Lookahead
	}
	if src.MaxLineWidth > 0 {
		dst.MaxLineWidth = src.MaxLineWidth
	}
	if src.LogDir != "" {
		dst.LogDir = src.LogDir
	}
	if src.DerivedData != "" {
		dst.DerivedData = src.DerivedData
	}
	if len(src.SourceExts) > 0 {
		dst.SourceExts = src.SourceExts
	}
	if len(src.ExtraPath) > 0 {
		dst.ExtraPath = src.ExtraPath
	}
	if len(src.Patterns.Info) > 0 {
		dst.Patterns.Info = src.Patterns.Info
	}
	if len(src.Patterns.Warning) > 0 {
		dst.Patterns.Warning = src.Patterns.Warning
	}
	if len(src.Patterns.Error) > 0 {
		dst.Patterns.Error = src.Patterns.Error
	}
	if len(src.Patterns.Result) > 0 {
		dst.Patterns.Result = src.Patterns.Result
	}
}

// findConfig returns the first config file found in the lookup order.
func findConfig() string {
	if _, err := os.Stat(ConfigFileName); err == nil {
		return ConfigFileName
	}
	if dir, err := os.UserConfigDir(); err == nil {
		p := filepath.Join(dir, "runlog", ConfigFileName)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
