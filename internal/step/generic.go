package step

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Runs a shell script with /bin/sh.
type Sh string

func (s *Sh) Tag() Tag                   { return TagSh }
func (s *Sh) Describe() string           { return "Sh " + quoteScript(string(*s)) }
func (s *Sh) Privileged() bool           { return true }
func (s *Sh) Dependency() (string, bool) { return "", false }

func (s *Sh) check() error {
	return notBlank(string(*s), "script")
}

// Runs a command given as an argument vector, without a shell.
type Cmd []string

func (c *Cmd) Tag() Tag                   { return TagCmd }
func (c *Cmd) Describe() string           { return fmt.Sprintf("Cmd %q", []string(*c)) }
func (c *Cmd) Privileged() bool           { return true }
func (c *Cmd) Dependency() (string, bool) { return "", false }

func (c *Cmd) check() error {
	if len(*c) == 0 || (*c)[0] == "" {
		return errors.New("command must not be empty")
	}
	return nil
}

// Runs a shell script as a specific user.
type RunAs struct {
	UserID            uint32   `cty:"user_id"`            // User inside the container.
	GroupID           uint32   `cty:"group_id"`           // Primary group inside the container.
	SupplementaryGIDs []uint32 `cty:"supplementary_gids"` // Additional groups.
	ExternalUserID    *uint32  `cty:"external_user_id"`   // Host user to map the user to, instead of the configured uid map.
	WorkDir           string   `cty:"work_dir"`           // Working directory for the script.
	IsolateNetwork    bool     `cty:"isolate_network"`    // Run without network access.
	Script            string   `cty:"script"`             // Shell script to run.
}

var runAsKind = object[RunAs](TagRunAs,
	Defaulted("user_id", cty.Zero),
	Defaulted("group_id", cty.Zero),
	Defaulted("supplementary_gids", cty.ListValEmpty(cty.Number)),
	Optional("external_user_id", cty.Number),
	Defaulted("work_dir", cty.StringVal("/work")),
	Defaulted("isolate_network", cty.False),
	Required("script", cty.String),
)

func (r *RunAs) Tag() Tag                   { return TagRunAs }
func (r *RunAs) Dependency() (string, bool) { return "", false }

// Reports true only when the script runs as root with the default mapping.
func (r *RunAs) Privileged() bool {
	return r.UserID == 0 && r.ExternalUserID == nil
}

func (r *RunAs) Describe() string {
	return fmt.Sprintf("RunAs %d:%d %s", r.UserID, r.GroupID, quoteScript(r.Script))
}

func (r *RunAs) check() error {
	if err := attrNotBlank(r.Script, "script"); err != nil {
		return err
	}
	return absPath(r.WorkDir, "work_dir")
}

// Sets environment variables for the remaining steps of the build.
type Env map[string]string

func (e *Env) Tag() Tag                   { return TagEnv }
func (e *Env) Describe() string           { return "Env " + formatPairs(*e) }
func (e *Env) Privileged() bool           { return false }
func (e *Env) Dependency() (string, bool) { return "", false }

func (e *Env) check() error {
	for name := range *e {
		if name == "" || strings.ContainsAny(name, "=\x00") {
			return cty.IndexPath(cty.StringVal(name)).NewErrorf("invalid variable name %q", name)
		}
	}
	return nil
}

// Renders a map as space-separated key=value pairs, sorted by key.
func formatPairs(m map[string]string) string {
	keys := sortedKeys(m)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + m[k]
	}
	return strings.Join(pairs, " ")
}
