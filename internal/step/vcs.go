package step

import (
	"errors"
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Clones a git repository into the container.
type Git struct {
	URL      string  `cty:"url"`      // Repository URL.
	Revision *string `cty:"revision"` // Commit to check out. Mutually exclusive with Branch.
	Branch   *string `cty:"branch"`   // Branch to check out. Mutually exclusive with Revision.
	Path     string  `cty:"path"`     // Destination inside the container.
}

var gitKind = object[Git](TagGit,
	Required("url", cty.String),
	Optional("revision", cty.String),
	Optional("branch", cty.String),
	Required("path", cty.String),
)

func (g *Git) Tag() Tag                   { return TagGit }
func (g *Git) Privileged() bool           { return false }
func (g *Git) Dependency() (string, bool) { return "", false }

func (g *Git) Describe() string {
	return fmt.Sprintf("Git %s%s -> %s", g.URL, gitRef(g.Revision, g.Branch), g.Path)
}

func (g *Git) check() error {
	if err := attrNotBlank(g.URL, "url"); err != nil {
		return err
	}
	if err := exclusiveRef(g.Revision, g.Branch); err != nil {
		return err
	}
	return absPath(g.Path, "path")
}

// Clones a git repository and runs a build script in it.
type GitInstall struct {
	URL      string  `cty:"url"`      // Repository URL.
	Revision *string `cty:"revision"` // Commit to check out. Mutually exclusive with Branch.
	Branch   *string `cty:"branch"`   // Branch to check out. Mutually exclusive with Revision.
	Subdir   string  `cty:"subdir"`   // Directory within the checkout to run the script in.
	Script   string  `cty:"script"`   // Shell script to run.
}

var gitInstallKind = object[GitInstall](TagGitInstall,
	Required("url", cty.String),
	Optional("revision", cty.String),
	Optional("branch", cty.String),
	Defaulted("subdir", cty.StringVal(".")),
	Defaulted("script", cty.StringVal(defaultBuildScript)),
)

func (g *GitInstall) Tag() Tag                   { return TagGitInstall }
func (g *GitInstall) Privileged() bool           { return true }
func (g *GitInstall) Dependency() (string, bool) { return "", false }

func (g *GitInstall) Describe() string {
	return fmt.Sprintf("GitInstall %s%s", g.URL, gitRef(g.Revision, g.Branch))
}

func (g *GitInstall) check() error {
	if err := attrNotBlank(g.URL, "url"); err != nil {
		return err
	}
	return exclusiveRef(g.Revision, g.Branch)
}

// Records the output of "git describe" for a project repository.
type GitDescribe struct {
	Repo       string  `cty:"repo"`        // Repository directory as mounted in the build.
	OutputFile *string `cty:"output_file"` // File inside the container receiving the description.
}

var gitDescribeKind = object[GitDescribe](TagGitDescribe,
	Defaulted("repo", cty.StringVal("/work")),
	Optional("output_file", cty.String),
)

func (g *GitDescribe) Tag() Tag                   { return TagGitDescribe }
func (g *GitDescribe) Privileged() bool           { return false }
func (g *GitDescribe) Dependency() (string, bool) { return "", false }

func (g *GitDescribe) Describe() string {
	if g.OutputFile != nil {
		return fmt.Sprintf("GitDescribe %s -> %s", g.Repo, *g.OutputFile)
	}
	return fmt.Sprintf("GitDescribe %s", g.Repo)
}

func (g *GitDescribe) check() error {
	if g.OutputFile != nil {
		return absPath(*g.OutputFile, "output_file")
	}
	return nil
}

func gitRef(revision, branch *string) string {
	switch {
	case revision != nil:
		return "@" + *revision
	case branch != nil:
		return "#" + *branch
	}
	return ""
}

func exclusiveRef(revision, branch *string) error {
	if revision != nil && branch != nil {
		return errors.New("revision and branch are mutually exclusive")
	}
	return nil
}
