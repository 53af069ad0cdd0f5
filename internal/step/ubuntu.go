package step

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Installs an Ubuntu base system by release codename (e.g. "jammy").
type Ubuntu string

func (u *Ubuntu) Tag() Tag                   { return TagUbuntu }
func (u *Ubuntu) Describe() string           { return fmt.Sprintf("Ubuntu %s", string(*u)) }
func (u *Ubuntu) Privileged() bool           { return true }
func (u *Ubuntu) Dependency() (string, bool) { return "", false }

func (u *Ubuntu) check() error {
	return notBlank(string(*u), "codename")
}

// Adds an apt source.
type UbuntuRepo struct {
	URL        *string  `cty:"url"`        // Archive URL. Defaults to the configured Ubuntu mirror.
	Suite      string   `cty:"suite"`      // Suite, e.g. "jammy-updates".
	Components []string `cty:"components"` // Archive components, e.g. ["main", "universe"].
	Trusted    bool     `cty:"trusted"`    // Skip signature checks for this source.
}

var ubuntuRepoKind = object[UbuntuRepo](TagUbuntuRepo,
	Optional("url", cty.String),
	Required("suite", cty.String),
	Defaulted("components", cty.ListValEmpty(cty.String)),
	Defaulted("trusted", cty.False),
)

func (r *UbuntuRepo) Tag() Tag                   { return TagUbuntuRepo }
func (r *UbuntuRepo) Privileged() bool           { return true }
func (r *UbuntuRepo) Dependency() (string, bool) { return "", false }

func (r *UbuntuRepo) Describe() string {
	if len(r.Components) == 0 {
		return fmt.Sprintf("UbuntuRepo %s", r.Suite)
	}
	return fmt.Sprintf("UbuntuRepo %s %s", r.Suite, strings.Join(r.Components, " "))
}

func (r *UbuntuRepo) check() error {
	return attrNotBlank(r.Suite, "suite")
}

// Installs an Ubuntu base system from a release image.
//
// Either the codename or the version must be given.
type UbuntuRelease struct {
	Codename        *string `cty:"codename"`          // Release codename, e.g. "jammy".
	Version         *string `cty:"version"`           // Release version, e.g. "22.04".
	URL             *string `cty:"url"`               // Image URL. Derived from the release when absent.
	Arch            string  `cty:"arch"`              // Target architecture, normalised (e.g. "x86_64" becomes "amd64").
	KeepChfnCommand bool    `cty:"keep_chfn_command"` // Keep /usr/bin/chfn, normally replaced by a stub.
	EatMyData       bool    `cty:"eatmydata"`         // Install eatmydata and use it for package operations.
}

var ubuntuReleaseKind = object[UbuntuRelease](TagUbuntuRelease,
	Optional("codename", cty.String),
	Optional("version", cty.String),
	Optional("url", cty.String),
	Defaulted("arch", cty.StringVal("amd64")),
	Defaulted("keep_chfn_command", cty.False),
	Defaulted("eatmydata", cty.True),
)

func (r *UbuntuRelease) Tag() Tag                   { return TagUbuntuRelease }
func (r *UbuntuRelease) Privileged() bool           { return true }
func (r *UbuntuRelease) Dependency() (string, bool) { return "", false }

func (r *UbuntuRelease) Describe() string {
	release := ""
	switch {
	case r.Codename != nil:
		release = *r.Codename
	case r.Version != nil:
		release = *r.Version
	}
	return fmt.Sprintf("UbuntuRelease %s [%s]", release, r.Arch)
}

func (r *UbuntuRelease) check() error {
	if r.Codename == nil && r.Version == nil {
		return errors.New("either codename or version is required")
	}
	arch, err := normalizeArch(r.Arch, "arch")
	if err != nil {
		return err
	}
	r.Arch = arch
	return nil
}

// Adds a Launchpad PPA, given as "user/ppa".
type UbuntuPPA string

func (p *UbuntuPPA) Tag() Tag                   { return TagUbuntuPPA }
func (p *UbuntuPPA) Describe() string           { return fmt.Sprintf("UbuntuPPA %s", string(*p)) }
func (p *UbuntuPPA) Privileged() bool           { return true }
func (p *UbuntuPPA) Dependency() (string, bool) { return "", false }

func (p *UbuntuPPA) check() error {
	user, name, ok := strings.Cut(string(*p), "/")
	if !ok || user == "" || name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("expected \"user/ppa\", got %q", string(*p))
	}
	return nil
}

// Enables the universe component of the installed Ubuntu release.
type UbuntuUniverse struct{}

func (u *UbuntuUniverse) Tag() Tag                   { return TagUbuntuUniverse }
func (u *UbuntuUniverse) Describe() string           { return "UbuntuUniverse" }
func (u *UbuntuUniverse) Privileged() bool           { return true }
func (u *UbuntuUniverse) Dependency() (string, bool) { return "", false }

// Imports apt signing keys from a key server.
type AptTrust struct {
	Server *string  `cty:"server"` // Key server. Defaults to the Ubuntu key server.
	Keys   []string `cty:"keys"`   // Key fingerprints.
}

var aptTrustKind = object[AptTrust](TagAptTrust,
	Optional("server", cty.String),
	Defaulted("keys", cty.ListValEmpty(cty.String)),
)

func (a *AptTrust) Tag() Tag                   { return TagAptTrust }
func (a *AptTrust) Privileged() bool           { return true }
func (a *AptTrust) Dependency() (string, bool) { return "", false }

func (a *AptTrust) Describe() string {
	return fmt.Sprintf("AptTrust %s", strings.Join(a.Keys, " "))
}
