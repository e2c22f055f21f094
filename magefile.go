//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	modulePath = "github.com/dkoosis/runlog"
	binPath    = "./bin/runlog"
)

// Default target - build the binary
var Default = Build

// Build builds the runlog binary with version info baked in.
func Build() error {
	version := gitDescribe()
	commit := gitCommit()
	date := time.Now().UTC().Format(time.RFC3339)

	ldflags := fmt.Sprintf("-s -w -X '%s/internal/version.Version=%s' -X '%s/internal/version.CommitHash=%s' -X '%s/internal/version.BuildDate=%s'",
		modulePath, version, modulePath, commit, modulePath, date)

	fmt.Println("Building runlog...")
	return sh.RunV("go", "build", "-ldflags", ldflags, "-o", binPath, "./cmd/runlog")
}

// Test runs the full test suite with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Vet runs go vet across the module.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Lint runs vet plus golangci-lint when installed.
func Lint() error {
	mg.Deps(Vet)
	if _, err := exec.LookPath("golangci-lint"); err != nil {
		fmt.Println("golangci-lint not found, skipping (install: go install github.com/golangci/golangci-lint/cmd/golangci-lint@latest)")
		return nil
	}
	if err := sh.RunV("golangci-lint", "run", "--timeout=5m", "./..."); err != nil {
		return fmt.Errorf("golangci-lint failed: %w", err)
	}
	return nil
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll("./bin"); err != nil {
		return err
	}
	fmt.Println("Cleaned build artifacts")
	return nil
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	return sh.RunV("go", "install", "./cmd/runlog")
}

func gitDescribe() string {
	out, err := sh.Output("git", "describe", "--tags", "--always", "--dirty", "--match=v*")
	if err != nil {
		return "dev"
	}
	return out
}

func gitCommit() string {
	out, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil {
		return "unknown"
	}
	return out
}
