package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/cruciblehq/cruxbuild/internal/build"
)

// Represents the 'cruxbuild validate' command.
type ValidateCmd struct {
	Containers []string `arg:"" optional:"" help:"Containers to check. Defaults to every container."`
}

// Executes the validate command.
//
// Every selected container is checked, so one run reports all invalid
// steps. Dependencies between containers are checked once every step list
// is valid.
func (c *ValidateCmd) Run(ctx context.Context, p *project) error {
	m, parsed, err := p.parse(ctx)
	if err != nil {
		return err
	}

	for _, name := range c.Containers {
		if _, err := m.Container(name); err != nil {
			return err
		}
	}

	checked, failed := 0, 0
	for _, pr := range parsed {
		if len(c.Containers) > 0 && !slices.Contains(c.Containers, pr.Container.Name) {
			continue
		}
		checked++
		if pr.Err != nil {
			failed++
			fmt.Fprintf(p.out, "%s: invalid\n%v\n", pr.Container.Name, pr.Err)
			continue
		}
		fmt.Fprintf(p.out, "%s: ok (%d steps)\n", pr.Container.Name, len(pr.Steps))
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d containers have invalid steps", ErrValidationFailed, failed, checked)
	}

	inputs, err := selectInputs(parsed, targets(c.Containers))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	if _, err := build.NewPlans(inputs, build.PlanOptions{Targets: targets(c.Containers)}); err != nil {
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	return nil
}

// Returns nil for an empty selection, meaning every container.
func targets(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	return names
}
