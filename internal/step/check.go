package step

import (
	"encoding/hex"
	"errors"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/containerd/platforms"
	"github.com/zclconf/go-cty/cty"
)

// Default ignore pattern for Copy and Depends: version control metadata,
// editor backups and merge leftovers.
const defaultIgnoreRegex = `(^|/)\.(git|hg|svn|vagga)($|/)|~$|\.bak$|\.orig$|^#.*#$`

// Default build script for GitInstall and TarInstall.
const defaultBuildScript = "./configure --prefix=/usr\nmake\nmake install\n"

// Fails if a scalar payload is empty or whitespace.
func notBlank(v, what string) error {
	if strings.TrimSpace(v) == "" {
		return errors.New(what + " must not be empty")
	}
	return nil
}

// Fails if an object attribute is empty or whitespace.
func attrNotBlank(v, attr string) error {
	if strings.TrimSpace(v) == "" {
		return cty.GetAttrPath(attr).NewErrorf("must not be empty")
	}
	return nil
}

// Fails unless v is an absolute path inside the container.
func absPath(v, attr string) error {
	if !path.IsAbs(v) {
		return cty.GetAttrPath(attr).NewErrorf("path %q must be absolute", v)
	}
	return nil
}

// Fails if an optional checksum is not 64 hexadecimal digits.
func sha256Hex(v *string, attr string) error {
	if v == nil {
		return nil
	}
	if b, err := hex.DecodeString(*v); err != nil || len(b) != 32 {
		return cty.GetAttrPath(attr).NewErrorf("expected 64 hexadecimal digits, got %q", *v)
	}
	return nil
}

// Fails if a regular expression does not compile.
func validRegex(v *string, attr string) error {
	if v == nil {
		return nil
	}
	if _, err := regexp.Compile(*v); err != nil {
		return cty.GetAttrPath(attr).NewError(err)
	}
	return nil
}

// Normalises a CPU architecture name (e.g. "x86_64" becomes "amd64").
// Operating system names parse as platforms too, so they are rejected here.
func normalizeArch(v, attr string) (string, error) {
	p, err := platforms.Parse(v)
	if err != nil || strings.Contains(v, "/") || p.OS == strings.ToLower(v) {
		return "", cty.GetAttrPath(attr).NewErrorf("unknown architecture %q", v)
	}
	return p.Architecture, nil
}

// Fails if v is set and not one of allowed.
func oneOf(v *string, attr string, allowed ...string) error {
	if v == nil {
		return nil
	}
	for _, a := range allowed {
		if *v == a {
			return nil
		}
	}
	return cty.GetAttrPath(attr).NewErrorf("must be one of %s, got %q", strings.Join(allowed, ", "), *v)
}

// Quotes a value for a step description, truncating long scripts to their
// first line.
func quoteScript(s string) string {
	line, _, more := strings.Cut(strings.TrimSpace(s), "\n")
	if more {
		return strconv.Quote(line) + " ..."
	}
	return strconv.Quote(line)
}
