package main

import (
	"log/slog"
	"os"

	"github.com/cruciblehq/cruxbuild/internal"
	"github.com/cruciblehq/cruxbuild/internal/cli"
)

// The entry point for the cruxbuild tool.
//
// Initializes logging, displays startup information, and executes the root
// command. Errors are logged and mapped to an exit code by [cli.ExitCode].
func main() {
	slog.SetDefault(logger())

	slog.Debug("build", "version", internal.VersionString())

	slog.Debug("cruxbuild is running",
		"pid", os.Getpid(),
		"cwd", cwd(),
		"args", os.Args,
	)

	if err := cli.Execute(); err != nil {
		code := cli.ExitCode(err)
		if code == cli.ExitInternal {
			slog.Error("internal error", "error", err)
		} else {
			slog.Error(err.Error())
		}
		os.Exit(code)
	}
}

// Creates a logger seeded from build-time linker flags.
//
// The level is shared with [internal.LogLevel], so flag parsing in
// cli.Execute adjusts it in place.
func logger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: internal.LogLevel(),
	})
	return slog.New(handler.WithGroup(internal.Name))
}

// Returns the current working directory or "(unknown)".
func cwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "(unknown)"
	}
	return cwd
}
