package build

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/containerd/errdefs"
	"github.com/cruciblehq/cruxbuild/internal/settings"
	"github.com/cruciblehq/cruxbuild/internal/step"
)

// Applies build steps to a container.
//
// Implementations own the container filesystem and process execution. Run
// calls Begin once per container, Execute once per step in order, then
// Commit after the last step succeeds.
type Executor interface {

	// Prepares an empty container for the plan.
	Begin(ctx context.Context, plan *Plan) error

	// Applies one step using the effective state for that step.
	Execute(ctx context.Context, s step.Step, state *State) error

	// Stores the finished container under the plan's cache key.
	Commit(ctx context.Context, plan *Plan) error
}

// Controls plan execution.
type Options struct {
	Settings *settings.Settings // User settings. Defaults to [settings.Default].
}

// Returned after successful plan execution.
type Result struct {
	Built []*Plan // Plans executed, in build order.
}

// Executes plans in order against an executor.
//
// Plans must be in build order, as returned by [NewPlans]. Every RunAs step
// is checked against the configured uid and gid maps before anything runs. A
// failing step stops the build.
func Run(ctx context.Context, exec Executor, plans []*Plan, opts Options) (*Result, error) {
	if opts.Settings == nil {
		opts.Settings = settings.Default()
	}

	if err := checkIDs(plans, opts.Settings); err != nil {
		return nil, err
	}

	slog.Info("executing plans", "containers", len(plans))

	result := &Result{}
	built := make(map[string]*Plan, len(plans))
	for _, p := range plans {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		slog.Info("building container", "container", p.Container, "steps", len(p.Steps), "key", p.Key)

		if err := exec.Begin(ctx, p); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrBuild, p.Container, err)
		}

		state := newStepState(p.environ)
		if err := executeSteps(ctx, exec, p, state, built); err != nil {
			return nil, fmt.Errorf("%s: %w", p.Container, err)
		}

		if err := exec.Commit(ctx, p); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrBuild, p.Container, err)
		}
		built[p.Container] = p
		result.Built = append(result.Built, p)
	}

	return result, nil
}

// Checks that every RunAs step runs as ids covered by the id maps.
//
// Steps that map the user to an explicit host user are not checked.
func checkIDs(plans []*Plan, s *settings.Settings) error {
	for _, p := range plans {
		for i, ps := range p.Steps {
			r, ok := ps.Step.Value().(*step.RunAs)
			if !ok || r.ExternalUserID != nil {
				continue
			}
			if !s.UIDMap.Covers(r.UserID) {
				return fmt.Errorf("%w: %w: %s: step %d: uid %d", errdefs.ErrFailedPrecondition, ErrUnmappedID, p.Container, i+1, r.UserID)
			}
			for _, gid := range append([]uint32{r.GroupID}, r.SupplementaryGIDs...) {
				if !s.GIDMap.Covers(gid) {
					return fmt.Errorf("%w: %w: %s: step %d: gid %d", errdefs.ErrFailedPrecondition, ErrUnmappedID, p.Container, i+1, gid)
				}
			}
		}
	}
	return nil
}
