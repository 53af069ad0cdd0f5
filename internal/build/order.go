package build

import (
	"fmt"
	"strings"

	"github.com/containerd/errdefs"
)

// Returns the containers needed to build targets, dependencies first.
//
// deps maps every known container to the containers it depends on. names
// lists the known containers in document order; independent containers are
// returned in that order, so the result is deterministic. A nil targets
// list selects every container.
func Order(names []string, deps map[string][]string, targets []string) ([]string, error) {
	known := make(map[string]bool, len(names))
	for _, name := range names {
		known[name] = true
	}
	if targets == nil {
		targets = names
	}

	const (
		visiting = iota + 1
		done
	)
	state := make(map[string]int, len(names))
	order := make([]string, 0, len(names))
	var stack []string

	var visit func(name, from string) error
	visit = func(name, from string) error {
		if !known[name] {
			if from == "" {
				return fmt.Errorf("%w: %w: %s", errdefs.ErrNotFound, ErrUnknownContainer, name)
			}
			return fmt.Errorf("%w: %w: %s requires %s", errdefs.ErrNotFound, ErrUnknownDependency, from, name)
		}

		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: %w: %s", errdefs.ErrFailedPrecondition, ErrDependencyCycle, cycle(stack, name))
		}

		state[name] = visiting
		stack = append(stack, name)
		for _, dep := range deps[name] {
			if err := visit(dep, name); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
		order = append(order, name)
		return nil
	}

	for _, name := range targets {
		if err := visit(name, ""); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// Renders the cycle closing at name, e.g. "a -> b -> a".
func cycle(stack []string, name string) string {
	for i, s := range stack {
		if s == name {
			return strings.Join(append(stack[i:len(stack):len(stack)], name), " -> ")
		}
	}
	return name
}
