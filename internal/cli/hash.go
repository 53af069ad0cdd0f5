package cli

import (
	"context"
	"fmt"
)

// Represents the 'cruxbuild hash' command.
type HashCmd struct {
	Container string `arg:"" help:"Container to hash."`
	Short     bool   `short:"s" help:"Print only the first 8 hex digits."`
}

// Executes the hash command.
//
// Prints the cache key of the finished container. The key changes whenever
// the container's steps change, and with version-check enabled, whenever a
// container it depends on changes.
func (c *HashCmd) Run(ctx context.Context, p *project) error {
	plans, _, err := p.plans(ctx, []string{c.Container})
	if err != nil {
		return err
	}

	key := plans[len(plans)-1].Key
	if c.Short {
		fmt.Fprintln(p.out, key.Encoded()[:8])
		return nil
	}
	fmt.Fprintln(p.out, key.Encoded())
	return nil
}
