package cli

import (
	"context"

	"github.com/cruciblehq/cruxbuild/internal/build"
)

// Represents the 'cruxbuild dry-run' command.
type DryRunCmd struct {
	Containers []string `arg:"" optional:"" help:"Containers to walk, with their dependencies. Defaults to every container."`
}

// Executes the dry-run command.
//
// The plans are walked exactly as a build would walk them, including the
// uid and gid map checks, but each step is printed instead of applied.
func (c *DryRunCmd) Run(ctx context.Context, p *project) error {
	plans, s, err := p.plans(ctx, targets(c.Containers))
	if err != nil {
		return err
	}

	_, err = build.Run(ctx, &build.DryRun{Out: p.out}, plans, build.Options{Settings: s})
	return err
}
