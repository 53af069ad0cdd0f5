package step

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Installs an Alpine Linux base system of the given version (e.g. "v3.18").
type Alpine string

func (a *Alpine) Tag() Tag                   { return TagAlpine }
func (a *Alpine) Describe() string           { return fmt.Sprintf("Alpine %s", string(*a)) }
func (a *Alpine) Privileged() bool           { return true }
func (a *Alpine) Dependency() (string, bool) { return "", false }

func (a *Alpine) check() error {
	return notBlank(string(*a), "version")
}

// Adds a repository to the Alpine package manager configuration.
type AlpineRepo struct {
	URL     *string `cty:"url"`    // Mirror URL. Defaults to the mirror of the base system.
	Branch  *string `cty:"branch"` // Alpine branch, e.g. "edge". Defaults to the installed version.
	Repo    string  `cty:"repo"`   // Repository name, e.g. "community".
	Pinning *string `cty:"tag"`    // Pinning tag, written as "@tag" before the repository line.
}

var alpineRepoKind = object[AlpineRepo](TagAlpineRepo,
	Optional("url", cty.String),
	Optional("branch", cty.String),
	Required("repo", cty.String),
	Optional("tag", cty.String),
)

func (r *AlpineRepo) Tag() Tag                   { return TagAlpineRepo }
func (r *AlpineRepo) Privileged() bool           { return true }
func (r *AlpineRepo) Dependency() (string, bool) { return "", false }

func (r *AlpineRepo) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "AlpineRepo %s", r.Repo)
	if r.Branch != nil {
		fmt.Fprintf(&b, " (%s)", *r.Branch)
	}
	if r.Pinning != nil {
		fmt.Fprintf(&b, " @%s", *r.Pinning)
	}
	return b.String()
}

func (r *AlpineRepo) check() error {
	return attrNotBlank(r.Repo, "repo")
}
