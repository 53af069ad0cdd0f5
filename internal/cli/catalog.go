package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/cruciblehq/cruxbuild/internal/step"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Represents the 'cruxbuild catalog' command.
type CatalogCmd struct {
	Tag string `arg:"" optional:"" help:"Step tag to describe. Lists every tag when omitted."`
}

// Executes the catalog command.
//
// Without a tag, prints every tag in catalog order. With a tag, prints the
// payload type, and for object payloads one line per attribute with its
// type and default.
func (c *CatalogCmd) Run(ctx context.Context, p *project) error {
	if c.Tag == "" {
		for _, name := range step.Catalog() {
			fmt.Fprintln(p.out, name)
		}
		return nil
	}

	t, err := step.Resolve(c.Tag)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnknownTag, err)
	}

	r, err := step.NewRegistry()
	if err != nil {
		return err
	}

	s := r.Validator().Schema(t)
	fmt.Fprintf(p.out, "%s: %s\n", t, s)

	attrs := s.Attributes()
	if len(attrs) == 0 {
		return nil
	}

	w := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	for _, name := range attrs {
		ty := s.Type.AttributeType(name)
		switch def, ok := s.DefaultFor(name); {
		case ok:
			raw, err := ctyjson.Marshal(def, def.Type())
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "  %s\t%s\tdefault %s\n", name, ty.FriendlyName(), raw)
		case s.Type.AttributeOptional(name):
			fmt.Fprintf(w, "  %s\t%s\toptional\n", name, ty.FriendlyName())
		default:
			fmt.Fprintf(w, "  %s\t%s\trequired\n", name, ty.FriendlyName())
		}
	}
	return w.Flush()
}
