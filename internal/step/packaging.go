package step

import (
	"fmt"
	"strings"
)

// Enables a named distribution repository (e.g. "community" on Alpine).
type Repo string

func (r *Repo) Tag() Tag                   { return TagRepo }
func (r *Repo) Describe() string           { return fmt.Sprintf("Repo %s", string(*r)) }
func (r *Repo) Privileged() bool           { return true }
func (r *Repo) Dependency() (string, bool) { return "", false }

func (r *Repo) check() error {
	return notBlank(string(*r), "repository")
}

// Installs distribution packages that stay in the image.
type Install []string

func (i *Install) Tag() Tag                   { return TagInstall }
func (i *Install) Describe() string           { return "Install " + strings.Join(*i, " ") }
func (i *Install) Privileged() bool           { return true }
func (i *Install) Dependency() (string, bool) { return "", false }

func (i *Install) check() error {
	return packageNames(*i)
}

// Installs distribution packages that are removed when the build finishes.
type BuildDeps []string

func (d *BuildDeps) Tag() Tag                   { return TagBuildDeps }
func (d *BuildDeps) Describe() string           { return "BuildDeps " + strings.Join(*d, " ") }
func (d *BuildDeps) Privileged() bool           { return true }
func (d *BuildDeps) Dependency() (string, bool) { return "", false }

func (d *BuildDeps) check() error {
	return packageNames(*d)
}

// Fails on empty or whitespace-containing package names.
func packageNames(names []string) error {
	for i, name := range names {
		if name == "" || strings.ContainsAny(name, " \t\n") {
			return fmt.Errorf("package %d: invalid package name %q", i, name)
		}
	}
	return nil
}
