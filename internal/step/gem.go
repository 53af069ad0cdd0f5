package step

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Installs Ruby gems.
type GemInstall []string

func (g *GemInstall) Tag() Tag                   { return TagGemInstall }
func (g *GemInstall) Describe() string           { return "GemInstall " + strings.Join(*g, " ") }
func (g *GemInstall) Privileged() bool           { return true }
func (g *GemInstall) Dependency() (string, bool) { return "", false }

// Installs the gems listed in a Gemfile with bundler.
type GemBundle struct {
	Gemfile     string   `cty:"gemfile"`      // Path of the Gemfile relative to the project root.
	Without     []string `cty:"without"`      // Gemfile groups to skip.
	TrustPolicy *string  `cty:"trust_policy"` // Gem signature policy.
}

var gemBundleKind = object[GemBundle](TagGemBundle,
	Defaulted("gemfile", cty.StringVal("Gemfile")),
	Defaulted("without", cty.ListValEmpty(cty.String)),
	Optional("trust_policy", cty.String),
)

func (g *GemBundle) Tag() Tag                   { return TagGemBundle }
func (g *GemBundle) Privileged() bool           { return true }
func (g *GemBundle) Dependency() (string, bool) { return "", false }

func (g *GemBundle) Describe() string {
	if len(g.Without) > 0 {
		return fmt.Sprintf("GemBundle %s without %s", g.Gemfile, strings.Join(g.Without, ","))
	}
	return fmt.Sprintf("GemBundle %s", g.Gemfile)
}

func (g *GemBundle) check() error {
	if err := attrNotBlank(g.Gemfile, "gemfile"); err != nil {
		return err
	}
	return oneOf(g.TrustPolicy, "trust_policy",
		"HighSecurity", "MediumSecurity", "LowSecurity", "AlmostNoSecurity", "NoSecurity")
}

// Configures how subsequent Ruby gem steps run.
type GemConfig struct {
	InstallRuby bool    `cty:"install_ruby"` // Install Ruby from distribution packages.
	GemExe      *string `cty:"gem_exe"`      // Gem command to use instead of the distribution default.
	UpdateGem   bool    `cty:"update_gem"`   // Update rubygems before installing.
}

var gemConfigKind = object[GemConfig](TagGemConfig,
	Defaulted("install_ruby", cty.True),
	Optional("gem_exe", cty.String),
	Defaulted("update_gem", cty.True),
)

func (g *GemConfig) Tag() Tag                   { return TagGemConfig }
func (g *GemConfig) Privileged() bool           { return false }
func (g *GemConfig) Dependency() (string, bool) { return "", false }

func (g *GemConfig) Describe() string {
	return fmt.Sprintf("GemConfig install_ruby=%t update_gem=%t", g.InstallRuby, g.UpdateGem)
}
