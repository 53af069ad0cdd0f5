package build

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cruciblehq/cruxbuild/internal/step"
)

// An [Executor] that prints each step instead of applying it.
type DryRun struct {
	Out io.Writer // Destination for the printed steps.
}

func (d *DryRun) Begin(_ context.Context, plan *Plan) error {
	_, err := fmt.Fprintf(d.Out, "container %s (%s)\n", plan.Container, plan.Key)
	return err
}

func (d *DryRun) Execute(_ context.Context, s step.Step, state *State) error {
	var b strings.Builder
	fmt.Fprintf(&b, "  %s", s.Describe())
	if state.UserID != 0 || state.GroupID != 0 {
		fmt.Fprintf(&b, " [as %d:%d in %s]", state.UserID, state.GroupID, state.WorkDir)
	}
	if s.Privileged() {
		b.WriteString(" [privileged]")
	}
	b.WriteByte('\n')
	_, err := io.WriteString(d.Out, b.String())
	return err
}

func (d *DryRun) Commit(context.Context, *Plan) error {
	return nil
}
