package step

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Configures how subsequent Python package steps run.
type PipConfig struct {
	Dependencies  bool     `cty:"dependencies"`   // Install dependencies of requested packages.
	FindLinks     []string `cty:"find_links"`     // Extra --find-links locations.
	IndexURLs     []string `cty:"index_urls"`     // Package indexes, the first one primary.
	TrustedHosts  []string `cty:"trusted_hosts"`  // Hosts exempt from TLS verification.
	CacheWheels   bool     `cty:"cache_wheels"`   // Keep built wheels in the build cache.
	InstallPython bool     `cty:"install_python"` // Install the interpreter from distribution packages.
	PythonExe     *string  `cty:"python_exe"`     // Interpreter to use instead of the distribution default.
}

var pipConfigKind = object[PipConfig](TagPipConfig,
	Defaulted("dependencies", cty.False),
	Defaulted("find_links", cty.ListValEmpty(cty.String)),
	Defaulted("index_urls", cty.ListValEmpty(cty.String)),
	Defaulted("trusted_hosts", cty.ListValEmpty(cty.String)),
	Defaulted("cache_wheels", cty.True),
	Defaulted("install_python", cty.True),
	Optional("python_exe", cty.String),
)

func (p *PipConfig) Tag() Tag                   { return TagPipConfig }
func (p *PipConfig) Privileged() bool           { return false }
func (p *PipConfig) Dependency() (string, bool) { return "", false }

func (p *PipConfig) Describe() string {
	var opts []string
	if p.Dependencies {
		opts = append(opts, "dependencies")
	}
	if len(p.IndexURLs) > 0 {
		opts = append(opts, "index="+p.IndexURLs[0])
	}
	if p.PythonExe != nil {
		opts = append(opts, "python="+*p.PythonExe)
	}
	return strings.TrimSpace("PipConfig " + strings.Join(opts, " "))
}

// Installs Python 2 packages with pip.
type Py2Install []string

func (p *Py2Install) Tag() Tag                   { return TagPy2Install }
func (p *Py2Install) Describe() string           { return "Py2Install " + strings.Join(*p, " ") }
func (p *Py2Install) Privileged() bool           { return true }
func (p *Py2Install) Dependency() (string, bool) { return "", false }

// Installs Python 2 packages listed in a requirements file.
type Py2Requirements string

func (p *Py2Requirements) Tag() Tag                   { return TagPy2Requirements }
func (p *Py2Requirements) Describe() string           { return fmt.Sprintf("Py2Requirements %s", string(*p)) }
func (p *Py2Requirements) Privileged() bool           { return true }
func (p *Py2Requirements) Dependency() (string, bool) { return "", false }

func (p *Py2Requirements) check() error {
	return notBlank(string(*p), "requirements file")
}

// Installs Python 3 packages with pip.
type Py3Install []string

func (p *Py3Install) Tag() Tag                   { return TagPy3Install }
func (p *Py3Install) Describe() string           { return "Py3Install " + strings.Join(*p, " ") }
func (p *Py3Install) Privileged() bool           { return true }
func (p *Py3Install) Dependency() (string, bool) { return "", false }

// Installs Python 3 packages listed in a requirements file.
type Py3Requirements string

func (p *Py3Requirements) Tag() Tag                   { return TagPy3Requirements }
func (p *Py3Requirements) Describe() string           { return fmt.Sprintf("Py3Requirements %s", string(*p)) }
func (p *Py3Requirements) Privileged() bool           { return true }
func (p *Py3Requirements) Dependency() (string, bool) { return "", false }

func (p *Py3Requirements) check() error {
	return notBlank(string(*p), "requirements file")
}
