package build

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cruciblehq/cruxbuild/internal/step"
)

// Executes a plan's steps in order, threading the accumulated state.
//
// built holds the containers finished so far, for steps that build on
// another container.
func executeSteps(ctx context.Context, exec Executor, p *Plan, state *stepState, built map[string]*Plan) error {
	for i, ps := range p.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := executeStep(ctx, exec, p, ps, state, built); err != nil {
			return fmt.Errorf("%w: step %d: %w", ErrBuild, i+1, err)
		}
	}
	return nil
}

// Executes a single step with its effective state, then persists the step's
// settings for the steps that follow.
func executeStep(ctx context.Context, exec Executor, p *Plan, ps PlannedStep, state *stepState, built map[string]*Plan) error {
	resolved := state.resolve(ps.Step)

	slog.Debug("step", "step", ps.Step.Describe(), "workdir", resolved.WorkDir, "uid", resolved.UserID, "privileged", ps.Step.Privileged())

	if err := exec.Execute(ctx, ps.Step, resolved); err != nil {
		return err
	}

	if c, ok := ps.Step.Value().(*step.Container); ok {
		if base, ok := built[string(*c)]; ok {
			state.inherit(base, p.environ)
		}
	}
	state.apply(ps.Step)
	return nil
}
