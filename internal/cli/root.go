package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/cruciblehq/cruxbuild/internal"
	"github.com/mattn/go-isatty"
)

// Represents the root command for the cruxbuild tool.
var RootCmd struct {
	Quiet    bool        `short:"q" help:"Suppress informational output."`
	Verbose  bool        `short:"v" help:"Enable verbose output."`
	Debug    bool        `short:"d" help:"Enable debug output."`
	File     string      `short:"f" help:"Path to the manifest. Defaults to the closest cruxbuild.yaml, cruxbuild.yml or cruxbuild.hcl." placeholder:"PATH" type:"path"`
	Settings string      `help:"Override the settings file path." placeholder:"PATH" type:"path"`
	Validate ValidateCmd `cmd:"" help:"Check the build steps of containers."`
	Plan     PlanCmd     `cmd:"" help:"Show the build plan of containers."`
	DryRun   DryRunCmd   `cmd:"" name:"dry-run" help:"Walk the build plan without applying it."`
	Hash     HashCmd     `cmd:"" help:"Print the cache key of a container."`
	Catalog  CatalogCmd  `cmd:"" help:"List the available build steps."`
	Version  VersionCmd  `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("Container build step validator and planner.\n\nReads the container definitions of a manifest, validates their build steps and computes build plans."),
		kong.UsageOnError(),
		kong.Vars{
			"version": internal.VersionString(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	configureLogger()

	return kongCtx.Run(&project{
		file:     RootCmd.File,
		settings: RootCmd.Settings,
		out:      os.Stdout,
	})
}

// Configures the global logger based on CLI flags.
//
// Flags only ever raise the modes set by linker flags. Terminals get text
// output; anything else gets JSON lines.
func configureLogger() {
	internal.SetDebug(RootCmd.Debug || internal.IsDebug())
	internal.SetQuiet(RootCmd.Quiet || internal.IsQuiet())
	internal.SetVerbose(RootCmd.Verbose || internal.IsVerbose())

	opts := &slog.HandlerOptions{
		Level:     internal.LogLevel(),
		AddSource: internal.IsVerbose(),
	}

	var handler slog.Handler
	if isTerminal(os.Stderr) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler.WithGroup(internal.Name)))
}

// Whether the given file is an interactive terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
