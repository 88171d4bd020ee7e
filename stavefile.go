//go:build stave

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
	"github.com/yaklabco/stave/pkg/target"
)

// Default target when running `stave` with no arguments.
var Default = All

// Aliases for common targets.
var Aliases = map[string]interface{}{
	"b": Build,
	"t": Test,
	"l": Lint,
	"c": Clean,
}

// All runs lint, test and build.
func All() error {
	st.Deps(Lint, Test)
	st.Deps(Build)
	return nil
}

// Build compiles bin/legalsts.
func Build() error {
	rebuild, err := target.Glob("bin/legalsts", "**/*.go", "internal/store/schema.sql", "go.mod", "go.sum")
	if err != nil {
		return fmt.Errorf("checking rebuild: %w", err)
	}
	if !rebuild {
		if st.Verbose() {
			fmt.Println("legalsts is up to date")
		}
		return nil
	}

	return sh.RunV("go", "build", "-ldflags", buildLdflags(), "-o", "bin/legalsts", "./cmd/legalsts")
}

func buildLdflags() string {
	commit, _ := sh.Output("git", "rev-parse", "--short", "HEAD")
	return fmt.Sprintf("-X main.commit=%s -X main.date=%s", strings.TrimSpace(commit), time.Now().Format(time.RFC3339))
}

// Test runs all tests with race detection and coverage.
func Test() error {
	return sh.RunV("go", "test", "-race", "-cover", "./...")
}

// Lint runs golangci-lint on the codebase.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Vet runs go vet on all packages.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	return sh.Rm("bin/")
}

// Dataset namespace for pipeline targets.
type Dataset st.Namespace

// STS exports the variant named by LEGALSTS_VARIANT (default binary).
func (Dataset) STS() error {
	st.Deps(Build)

	variant := os.Getenv("LEGALSTS_VARIANT")
	if variant == "" {
		variant = "binary"
	}
	return sh.RunV("./bin/legalsts", "sts", "export", "--sts-type", variant)
}

// MLM runs the full corpus pipeline.
func (Dataset) MLM() error {
	st.Deps(Build)
	return sh.RunV("./bin/legalsts", "mlm", "all")
}
