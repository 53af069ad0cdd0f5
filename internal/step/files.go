package step

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Writes files with literal contents, keyed by absolute path.
type Text map[string]string

func (t *Text) Tag() Tag                   { return TagText }
func (t *Text) Privileged() bool           { return false }
func (t *Text) Dependency() (string, bool) { return "", false }

func (t *Text) Describe() string {
	return "Text " + strings.Join(sortedKeys(*t), " ")
}

func (t *Text) check() error {
	for p := range *t {
		if !path.IsAbs(p) {
			return cty.IndexPath(cty.StringVal(p)).NewErrorf("path %q must be absolute", p)
		}
	}
	return nil
}

// Copies files from the project directory into the container.
type Copy struct {
	Source              string   `cty:"source"`               // Source directory or file, usually under /work.
	Path                string   `cty:"path"`                 // Destination inside the container.
	OwnerUID            *uint32  `cty:"owner_uid"`            // Owner of copied files. Preserved when unset.
	OwnerGID            *uint32  `cty:"owner_gid"`            // Group of copied files. Preserved when unset.
	IgnoreRegex         string   `cty:"ignore_regex"`         // Paths matching this are skipped.
	IncludeRegex        *string  `cty:"include_regex"`        // Only paths matching this are copied.
	PreservePermissions bool     `cty:"preserve_permissions"` // Keep source permission bits instead of applying Umask.
	PreserveTimes       bool     `cty:"preserve_times"`       // Keep source modification times.
	Umask               uint32   `cty:"umask"`                // Mask applied to permission bits.
	Rules               []string `cty:"rules"`                // Glob include rules. Mutually exclusive with the regexes.
}

var copyKind = object[Copy](TagCopy,
	Required("source", cty.String),
	Required("path", cty.String),
	Optional("owner_uid", cty.Number),
	Optional("owner_gid", cty.Number),
	Defaulted("ignore_regex", cty.StringVal(defaultIgnoreRegex)),
	Optional("include_regex", cty.String),
	Defaulted("preserve_permissions", cty.False),
	Defaulted("preserve_times", cty.False),
	Defaulted("umask", cty.NumberIntVal(0o002)),
	Defaulted("rules", cty.ListValEmpty(cty.String)),
)

func (c *Copy) Tag() Tag                   { return TagCopy }
func (c *Copy) Privileged() bool           { return false }
func (c *Copy) Dependency() (string, bool) { return "", false }

func (c *Copy) Describe() string {
	return fmt.Sprintf("Copy %s -> %s", c.Source, c.Path)
}

func (c *Copy) check() error {
	if err := absPath(c.Source, "source"); err != nil {
		return err
	}
	if err := absPath(c.Path, "path"); err != nil {
		return err
	}
	if err := validRegex(&c.IgnoreRegex, "ignore_regex"); err != nil {
		return err
	}
	if err := validRegex(c.IncludeRegex, "include_regex"); err != nil {
		return err
	}
	if c.Umask > 0o777 {
		return cty.GetAttrPath("umask").NewErrorf("umask %o out of range", c.Umask)
	}
	if len(c.Rules) > 0 && c.IncludeRegex != nil {
		return cty.GetAttrPath("rules").NewErrorf("rules and include_regex are mutually exclusive")
	}
	return nil
}

// Declares project files that the container depends on, so that changes
// to them invalidate the build.
type Depends struct {
	Path         string   `cty:"path"`          // File or directory relative to the project root.
	IgnoreRegex  string   `cty:"ignore_regex"`  // Paths matching this are not hashed.
	IncludeRegex *string  `cty:"include_regex"` // Only paths matching this are hashed.
	Rules        []string `cty:"rules"`         // Glob include rules. Mutually exclusive with the regexes.
}

var dependsKind = object[Depends](TagDepends,
	Required("path", cty.String),
	Defaulted("ignore_regex", cty.StringVal(defaultIgnoreRegex)),
	Optional("include_regex", cty.String),
	Defaulted("rules", cty.ListValEmpty(cty.String)),
)

func (d *Depends) Tag() Tag                   { return TagDepends }
func (d *Depends) Privileged() bool           { return false }
func (d *Depends) Dependency() (string, bool) { return "", false }

func (d *Depends) Describe() string {
	return fmt.Sprintf("Depends %s", d.Path)
}

func (d *Depends) check() error {
	if err := attrNotBlank(d.Path, "path"); err != nil {
		return err
	}
	if err := validRegex(&d.IgnoreRegex, "ignore_regex"); err != nil {
		return err
	}
	if err := validRegex(d.IncludeRegex, "include_regex"); err != nil {
		return err
	}
	if len(d.Rules) > 0 && d.IncludeRegex != nil {
		return cty.GetAttrPath("rules").NewErrorf("rules and include_regex are mutually exclusive")
	}
	return nil
}

// Creates a directory, with parents, inside the container.
type EnsureDir string

func (e *EnsureDir) Tag() Tag                   { return TagEnsureDir }
func (e *EnsureDir) Describe() string           { return "EnsureDir " + string(*e) }
func (e *EnsureDir) Privileged() bool           { return false }
func (e *EnsureDir) Dependency() (string, bool) { return "", false }
func (e *EnsureDir) check() error               { return containerPath(string(*e)) }

// Mounts persistent cache directories, keyed by path inside the container.
type CacheDirs map[string]string

func (c *CacheDirs) Tag() Tag                   { return TagCacheDirs }
func (c *CacheDirs) Privileged() bool           { return false }
func (c *CacheDirs) Dependency() (string, bool) { return "", false }

func (c *CacheDirs) Describe() string {
	return "CacheDirs " + formatPairs(*c)
}

func (c *CacheDirs) check() error {
	for p, name := range *c {
		if !path.IsAbs(p) {
			return cty.IndexPath(cty.StringVal(p)).NewErrorf("path %q must be absolute", p)
		}
		if name == "" || strings.Contains(name, "/") {
			return cty.IndexPath(cty.StringVal(p)).NewErrorf("invalid cache name %q", name)
		}
	}
	return nil
}

// Empties a directory, keeping the directory itself.
type EmptyDir string

func (e *EmptyDir) Tag() Tag                   { return TagEmptyDir }
func (e *EmptyDir) Describe() string           { return "EmptyDir " + string(*e) }
func (e *EmptyDir) Privileged() bool           { return false }
func (e *EmptyDir) Dependency() (string, bool) { return "", false }
func (e *EmptyDir) check() error               { return containerPath(string(*e)) }

// Removes a file or directory and keeps it empty in the final image.
type Remove string

func (r *Remove) Tag() Tag                   { return TagRemove }
func (r *Remove) Describe() string           { return "Remove " + string(*r) }
func (r *Remove) Privileged() bool           { return false }
func (r *Remove) Dependency() (string, bool) { return "", false }
func (r *Remove) check() error               { return containerPath(string(*r)) }

// Fails unless p is an absolute path other than the root.
func containerPath(p string) error {
	if !path.IsAbs(p) {
		return fmt.Errorf("path %q must be absolute", p)
	}
	if path.Clean(p) == "/" {
		return fmt.Errorf("path %q must not be the root directory", p)
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
