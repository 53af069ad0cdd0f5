package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/cruciblehq/cruxbuild/internal/build"
	"github.com/cruciblehq/cruxbuild/internal/manifest"
	"github.com/cruciblehq/cruxbuild/internal/paths"
	"github.com/cruciblehq/cruxbuild/internal/settings"
	"github.com/cruciblehq/cruxbuild/internal/step"
)

// Locates and loads the inputs that commands operate on.
type project struct {
	file     string    // Manifest path. Found from the working directory when empty.
	settings string    // Settings path. The user settings file when empty.
	out      io.Writer // Destination for command output.
}

// Loads the manifest.
func (p *project) manifest() (*manifest.Manifest, error) {
	path := p.file
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		if path, _, err = paths.FindManifest(wd); err != nil {
			return nil, err
		}
	}
	return manifest.Load(path)
}

// Loads the user settings.
func (p *project) loadSettings() (*settings.Settings, error) {
	path := p.settings
	if path == "" {
		path = paths.Settings()
	}
	return settings.Load(path)
}

// Loads the manifest and parses the step lists of all its containers.
//
// A fresh registry is built rather than using [step.Default], so that an
// inconsistent catalog surfaces as an error instead of a panic.
func (p *project) parse(ctx context.Context) (*manifest.Manifest, []manifest.Parsed, error) {
	m, err := p.manifest()
	if err != nil {
		return nil, nil, err
	}

	r, err := step.NewRegistry()
	if err != nil {
		return nil, nil, err
	}

	parsed, err := m.Parse(ctx, r)
	if err != nil {
		return nil, nil, err
	}
	return m, parsed, nil
}

// Loads, parses and plans the targets and their dependencies.
func (p *project) plans(ctx context.Context, targets []string) ([]*build.Plan, *settings.Settings, error) {
	s, err := p.loadSettings()
	if err != nil {
		return nil, nil, err
	}

	_, parsed, err := p.parse(ctx)
	if err != nil {
		return nil, nil, err
	}

	inputs, err := selectInputs(parsed, targets)
	if err != nil {
		return nil, nil, err
	}

	plans, err := build.NewPlans(inputs, build.PlanOptions{
		Targets:      targets,
		VersionCheck: s.VersionCheck,
	})
	if err != nil {
		return nil, nil, err
	}
	return plans, s, nil
}

// Returns the plan inputs for the valid containers.
//
// Fails if any target, or any container a target depends on, has invalid
// steps. Nil targets select every container.
func selectInputs(parsed []manifest.Parsed, targets []string) ([]build.Input, error) {
	byName := make(map[string]manifest.Parsed, len(parsed))
	for _, pr := range parsed {
		byName[pr.Container.Name] = pr
	}

	queue := slices.Clone(targets)
	if queue == nil {
		for _, pr := range parsed {
			queue = append(queue, pr.Container.Name)
		}
	}

	var errs []error
	seen := make(map[string]bool)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if seen[name] {
			continue
		}
		seen[name] = true

		pr, ok := byName[name]
		if !ok {
			continue // Reported by the planner.
		}
		if pr.Err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %w", build.ErrInvalidSteps, name, pr.Err))
			continue
		}
		queue = append(queue, pr.Steps.Dependencies()...)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	inputs := make([]build.Input, 0, len(parsed))
	for _, pr := range parsed {
		if pr.Err != nil {
			continue
		}
		inputs = append(inputs, build.Input{
			Name:    pr.Container.Name,
			Environ: pr.Container.Environ,
			Steps:   pr.Steps,
		})
	}
	return inputs, nil
}
