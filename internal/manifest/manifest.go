package manifest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cruciblehq/cruxbuild/internal/step"
	"github.com/zclconf/go-cty/cty"
	"golang.org/x/sync/errgroup"
)

// A loaded manifest: the containers it defines, in document order.
type Manifest struct {
	Path       string       // File the manifest was read from.
	Containers []*Container // Containers in document order.
}

// A container definition with its raw, unparsed build steps.
type Container struct {
	Name      string            // Container name, unique within the manifest.
	Setup     cty.Value         // Raw step list as written.
	Environ   map[string]string // Environment set for commands run in the container.
	AutoClean bool              // Remove old builds of the container automatically.
}

// Returns the location of the container's step list within its manifest.
func (c *Container) SetupPath() cty.Path {
	return cty.GetAttrPath("containers").GetAttr(c.Name).GetAttr("setup")
}

// The outcome of parsing one container's step list.
type Parsed struct {
	Container *Container    // Container whose steps were parsed.
	Steps     step.Sequence // Parsed steps, nil if Err is set.
	Err       error         // Input errors found in the step list, joined.
}

// Reads a manifest, choosing the parser by file extension.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}

	slog.Debug("loading manifest", "path", path)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(path, data)
	case ".hcl":
		return ParseHCL(path, data)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// Returns the container with the given name.
func (m *Manifest) Container(name string) (*Container, error) {
	for _, c := range m.Containers {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrContainerNotFound, name)
}

// Returns the container names in document order.
func (m *Manifest) Names() []string {
	names := make([]string, len(m.Containers))
	for i, c := range m.Containers {
		names[i] = c.Name
	}
	return names
}

func (m *Manifest) add(c *Container) error {
	for _, existing := range m.Containers {
		if existing.Name == c.Name {
			return fmt.Errorf("%w: %s", ErrDuplicateContainer, c.Name)
		}
	}
	m.Containers = append(m.Containers, c)
	return nil
}

// Parses the step list of every container with r.
//
// Containers are parsed concurrently. Input errors are reported per
// container in [Parsed.Err] and never affect other containers. A registry
// fault aborts parsing and is returned as the error.
func (m *Manifest) Parse(ctx context.Context, r *step.Registry) ([]Parsed, error) {
	out := make([]Parsed, len(m.Containers))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, c := range m.Containers {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			seq, err := r.ParseSequenceAll(c.SetupPath(), c.Setup)
			if step.IsFault(err) {
				return err
			}

			out[i] = Parsed{Container: c, Steps: seq, Err: err}
			if err != nil {
				slog.Debug("container has invalid steps", "container", c.Name, "error", err)
			} else {
				slog.Debug("parsed container", "container", c.Name, "steps", len(seq))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Parses the step list of a single container with r.
func (m *Manifest) ParseContainer(r *step.Registry, name string) (step.Sequence, error) {
	c, err := m.Container(name)
	if err != nil {
		return nil, err
	}
	return r.ParseSequenceAll(c.SetupPath(), c.Setup)
}
