package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cruciblehq/cruxbuild/internal/build"
	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Represents the 'cruxbuild plan' command.
type PlanCmd struct {
	Containers []string `arg:"" optional:"" help:"Containers to plan, with their dependencies. Defaults to every container."`
	JSON       bool     `help:"Print the plans as JSON."`
}

// A plan as printed by the plan command.
type planView struct {
	Container string        `json:"container"`
	Key       digest.Digest `json:"key"`
	Requires  []string      `json:"requires,omitempty"`
	Steps     []stepView    `json:"steps"`
	Image     ocispec.Image `json:"image"`
}

// A planned step as printed by the plan command.
type stepView struct {
	Tag         string        `json:"tag"`
	Description string        `json:"description"`
	Fingerprint digest.Digest `json:"fingerprint"`
	Key         digest.Digest `json:"key"`
	Privileged  bool          `json:"privileged"`
}

// Executes the plan command.
func (c *PlanCmd) Run(ctx context.Context, p *project) error {
	plans, _, err := p.plans(ctx, targets(c.Containers))
	if err != nil {
		return err
	}

	if c.JSON {
		views := make([]planView, len(plans))
		for i, pl := range plans {
			views[i] = newPlanView(pl)
		}
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}

	for i, pl := range plans {
		if i > 0 {
			fmt.Fprintln(p.out)
		}
		writePlan(p, pl)
	}
	return nil
}

func newPlanView(pl *build.Plan) planView {
	v := planView{
		Container: pl.Container,
		Key:       pl.Key,
		Requires:  pl.Requires,
		Steps:     make([]stepView, len(pl.Steps)),
		Image:     pl.Image,
	}
	for i, ps := range pl.Steps {
		v.Steps[i] = stepView{
			Tag:         ps.Step.Tag().String(),
			Description: ps.Step.Describe(),
			Fingerprint: ps.Step.Fingerprint(),
			Key:         ps.Key,
			Privileged:  ps.Step.Privileged(),
		}
	}
	return v
}

// Writes a plan in a compact text form, one line per step.
func writePlan(p *project, pl *build.Plan) {
	fmt.Fprintf(p.out, "%s %s [%s/%s]\n", pl.Container, shortKey(pl.Key), pl.Image.OS, pl.Image.Architecture)
	if len(pl.Requires) > 0 {
		fmt.Fprintf(p.out, "  requires %s\n", strings.Join(pl.Requires, ", "))
	}
	for i, ps := range pl.Steps {
		mark := " "
		if ps.Step.Privileged() {
			mark = "#"
		}
		fmt.Fprintf(p.out, "  %3d %s %s %s\n", i+1, shortKey(ps.Key), mark, ps.Step.Describe())
	}
}

// Returns the first 12 hex digits of a digest.
func shortKey(d digest.Digest) string {
	enc := d.Encoded()
	if len(enc) > 12 {
		enc = enc[:12]
	}
	return enc
}
