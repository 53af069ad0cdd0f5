package step

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Installs PHP packages globally with composer.
type ComposerInstall []string

func (c *ComposerInstall) Tag() Tag                   { return TagComposerInstall }
func (c *ComposerInstall) Describe() string           { return "ComposerInstall " + strings.Join(*c, " ") }
func (c *ComposerInstall) Privileged() bool           { return true }
func (c *ComposerInstall) Dependency() (string, bool) { return "", false }

// Installs the dependencies listed in a composer.json.
type ComposerDependencies struct {
	WorkingDir            *string `cty:"working_dir"`            // Project directory. The project root when unset.
	Dev                   bool    `cty:"dev"`                    // Install require-dev packages.
	Prefer                *string `cty:"prefer"`                 // Preferred package source, "source" or "dist".
	IgnorePlatformReqs    bool    `cty:"ignore_platform_reqs"`   // Ignore php and extension requirements.
	NoAutoloader          bool    `cty:"no_autoloader"`          // Skip autoloader generation.
	NoScripts             bool    `cty:"no_scripts"`             // Skip scripts defined in composer.json.
	NoPlugins             bool    `cty:"no_plugins"`             // Disable plugins.
	OptimizeAutoloader    bool    `cty:"optimize_autoloader"`    // Convert PSR-0/4 autoloading to a classmap.
	ClassmapAuthoritative bool    `cty:"classmap_authoritative"` // Autoload from the classmap only.
}

var composerDependenciesKind = object[ComposerDependencies](TagComposerDependencies,
	Optional("working_dir", cty.String),
	Defaulted("dev", cty.True),
	Optional("prefer", cty.String),
	Defaulted("ignore_platform_reqs", cty.False),
	Defaulted("no_autoloader", cty.False),
	Defaulted("no_scripts", cty.False),
	Defaulted("no_plugins", cty.False),
	Defaulted("optimize_autoloader", cty.False),
	Defaulted("classmap_authoritative", cty.False),
)

func (c *ComposerDependencies) Tag() Tag                   { return TagComposerDependencies }
func (c *ComposerDependencies) Privileged() bool           { return true }
func (c *ComposerDependencies) Dependency() (string, bool) { return "", false }

func (c *ComposerDependencies) Describe() string {
	if c.WorkingDir != nil {
		return fmt.Sprintf("ComposerDependencies %s", *c.WorkingDir)
	}
	return "ComposerDependencies"
}

func (c *ComposerDependencies) check() error {
	return oneOf(c.Prefer, "prefer", "source", "dist")
}

// Configures how subsequent PHP package steps run.
type ComposerConfig struct {
	InstallRuntime bool    `cty:"install_runtime"` // Install PHP from distribution packages.
	InstallDev     bool    `cty:"install_dev"`     // Install PHP development headers.
	RuntimeExe     *string `cty:"runtime_exe"`     // PHP interpreter to use instead of the distribution default.
	IncludePath    *string `cty:"include_path"`    // PHP include_path for the container.
	KeepComposer   bool    `cty:"keep_composer"`   // Keep composer in the final image.
	VendorDir      *string `cty:"vendor_dir"`      // Directory for installed dependencies.
}

var composerConfigKind = object[ComposerConfig](TagComposerConfig,
	Defaulted("install_runtime", cty.True),
	Defaulted("install_dev", cty.False),
	Optional("runtime_exe", cty.String),
	Optional("include_path", cty.String),
	Defaulted("keep_composer", cty.False),
	Optional("vendor_dir", cty.String),
)

func (c *ComposerConfig) Tag() Tag                   { return TagComposerConfig }
func (c *ComposerConfig) Privileged() bool           { return false }
func (c *ComposerConfig) Dependency() (string, bool) { return "", false }

func (c *ComposerConfig) Describe() string {
	return fmt.Sprintf("ComposerConfig install_runtime=%t keep_composer=%t", c.InstallRuntime, c.KeepComposer)
}
