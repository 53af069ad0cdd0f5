package step

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cruciblehq/cruxbuild/internal/paths"
	"github.com/zclconf/go-cty/cty"
)

// Starts the build from the finished image of another container.
type Container string

func (c *Container) Tag() Tag                   { return TagContainer }
func (c *Container) Describe() string           { return "Container " + string(*c) }
func (c *Container) Privileged() bool           { return false }
func (c *Container) Dependency() (string, bool) { return string(*c), true }

func (c *Container) check() error {
	return containerName(string(*c))
}

// Copies build artifacts out of another container.
type Build struct {
	Container      string  `cty:"container"`       // Container to copy from.
	Source         string  `cty:"source"`          // Directory inside that container.
	Path           *string `cty:"path"`            // Destination. Defaults to Source.
	TemporaryMount *string `cty:"temporary_mount"` // Mount Source here for the rest of the build instead of copying.
}

var buildKind = object[Build](TagBuild,
	Required("container", cty.String),
	Defaulted("source", cty.StringVal("/")),
	Optional("path", cty.String),
	Optional("temporary_mount", cty.String),
)

func (b *Build) Tag() Tag                   { return TagBuild }
func (b *Build) Privileged() bool           { return false }
func (b *Build) Dependency() (string, bool) { return b.Container, true }

func (b *Build) Describe() string {
	switch {
	case b.TemporaryMount != nil:
		return fmt.Sprintf("Build %s:%s mounted at %s", b.Container, b.Source, *b.TemporaryMount)
	case b.Path != nil:
		return fmt.Sprintf("Build %s:%s -> %s", b.Container, b.Source, *b.Path)
	}
	return fmt.Sprintf("Build %s:%s", b.Container, b.Source)
}

func (b *Build) check() error {
	if err := containerName(b.Container); err != nil {
		return cty.GetAttrPath("container").NewError(err)
	}
	if err := absPath(b.Source, "source"); err != nil {
		return err
	}
	if b.Path != nil && b.TemporaryMount != nil {
		return errors.New("path and temporary_mount are mutually exclusive")
	}
	if b.Path != nil {
		return absPath(*b.Path, "path")
	}
	if b.TemporaryMount != nil {
		return absPath(*b.TemporaryMount, "temporary_mount")
	}
	return nil
}

// Builds a container defined in another manifest, generated by an earlier
// container or found in the project.
type SubConfig struct {
	Source    *string `cty:"source"`    // Container that generates the manifest. The project directory when unset.
	Path      string  `cty:"path"`      // Manifest path relative to Source.
	Container string  `cty:"container"` // Container to build from that manifest.
	Cache     *bool   `cty:"cache"`     // Reuse the generated manifest across builds.
}

var subConfigKind = object[SubConfig](TagSubConfig,
	Optional("source", cty.String),
	Defaulted("path", cty.StringVal(paths.ManifestNames[0])),
	Required("container", cty.String),
	Optional("cache", cty.Bool),
)

func (s *SubConfig) Tag() Tag         { return TagSubConfig }
func (s *SubConfig) Privileged() bool { return false }

// Reports the generating container, if the manifest comes from one.
func (s *SubConfig) Dependency() (string, bool) {
	if s.Source == nil {
		return "", false
	}
	return *s.Source, true
}

func (s *SubConfig) Describe() string {
	if s.Source != nil {
		return fmt.Sprintf("SubConfig %s:%s#%s", *s.Source, s.Path, s.Container)
	}
	return fmt.Sprintf("SubConfig %s#%s", s.Path, s.Container)
}

func (s *SubConfig) check() error {
	if s.Source != nil {
		if err := containerName(*s.Source); err != nil {
			return cty.GetAttrPath("source").NewError(err)
		}
	}
	if err := attrNotBlank(s.Path, "path"); err != nil {
		return err
	}
	if err := containerName(s.Container); err != nil {
		return cty.GetAttrPath("container").NewError(err)
	}
	return nil
}

// Fails on empty names and names containing a path separator.
func containerName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("container name must not be empty")
	}
	if strings.ContainsAny(name, "/ \t\n") {
		return fmt.Errorf("invalid container name %q", name)
	}
	return nil
}
