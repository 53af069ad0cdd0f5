package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cruciblehq/cruxbuild/internal"
)

// Represents the 'cruxbuild version' command.
type VersionCmd struct {
	JSON bool `help:"Print the build metadata as JSON."`
}

// Executes the version command.
func (c *VersionCmd) Run(ctx context.Context, p *project) error {
	info := internal.Build()
	if !c.JSON {
		fmt.Fprintln(p.out, info)
		return nil
	}
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}
