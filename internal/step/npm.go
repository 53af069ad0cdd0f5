package step

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Configures how subsequent Node.js package steps run.
type NpmConfig struct {
	NpmExe      string `cty:"npm_exe"`      // Package manager command.
	InstallNode bool   `cty:"install_node"` // Install Node.js from distribution packages.
}

var npmConfigKind = object[NpmConfig](TagNpmConfig,
	Defaulted("npm_exe", cty.StringVal("npm")),
	Defaulted("install_node", cty.True),
)

func (n *NpmConfig) Tag() Tag                   { return TagNpmConfig }
func (n *NpmConfig) Privileged() bool           { return false }
func (n *NpmConfig) Dependency() (string, bool) { return "", false }

func (n *NpmConfig) Describe() string {
	return fmt.Sprintf("NpmConfig npm_exe=%s install_node=%t", n.NpmExe, n.InstallNode)
}

func (n *NpmConfig) check() error {
	return attrNotBlank(n.NpmExe, "npm_exe")
}

// Installs the dependencies listed in a package.json.
type NpmDependencies struct {
	File     string `cty:"file"`     // Path of package.json relative to the project root.
	Package  bool   `cty:"package"`  // Install regular dependencies.
	Dev      bool   `cty:"dev"`      // Install devDependencies.
	Peer     bool   `cty:"peer"`     // Install peerDependencies.
	Bundled  bool   `cty:"bundled"`  // Install bundledDependencies.
	Optional bool   `cty:"optional"` // Install optionalDependencies.
}

var npmDependenciesKind = object[NpmDependencies](TagNpmDependencies,
	Defaulted("file", cty.StringVal("package.json")),
	Defaulted("package", cty.True),
	Defaulted("dev", cty.True),
	Defaulted("peer", cty.False),
	Defaulted("bundled", cty.True),
	Defaulted("optional", cty.False),
)

func (n *NpmDependencies) Tag() Tag                   { return TagNpmDependencies }
func (n *NpmDependencies) Privileged() bool           { return true }
func (n *NpmDependencies) Dependency() (string, bool) { return "", false }

func (n *NpmDependencies) Describe() string {
	return fmt.Sprintf("NpmDependencies %s", n.File)
}

func (n *NpmDependencies) check() error {
	return attrNotBlank(n.File, "file")
}

// Installs the dependencies of a project with yarn.
type YarnDependencies struct {
	Dir        string `cty:"dir"`        // Project directory relative to the project root.
	Production bool   `cty:"production"` // Skip devDependencies.
	Optional   bool   `cty:"optional"`   // Install optionalDependencies.
}

var yarnDependenciesKind = object[YarnDependencies](TagYarnDependencies,
	Defaulted("dir", cty.StringVal(".")),
	Defaulted("production", cty.False),
	Defaulted("optional", cty.False),
)

func (y *YarnDependencies) Tag() Tag                   { return TagYarnDependencies }
func (y *YarnDependencies) Privileged() bool           { return true }
func (y *YarnDependencies) Dependency() (string, bool) { return "", false }

func (y *YarnDependencies) Describe() string {
	return fmt.Sprintf("YarnDependencies %s", y.Dir)
}

// Installs Node.js packages globally.
type NpmInstall []string

func (n *NpmInstall) Tag() Tag                   { return TagNpmInstall }
func (n *NpmInstall) Describe() string           { return "NpmInstall " + strings.Join(*n, " ") }
func (n *NpmInstall) Privileged() bool           { return true }
func (n *NpmInstall) Dependency() (string, bool) { return "", false }
