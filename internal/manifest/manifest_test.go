package manifest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/cruciblehq/cruxbuild/internal/step"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
containers:
  base:
    auto-clean: true
    environ:
      LANG: C.UTF-8
    setup:
    - !Ubuntu jammy
    - !UbuntuUniverse
    - !Install [curl, git]
    - !Download
      url: https://example.com/tool
      path: /usr/bin/tool
      mode: 0o755
    - Sh: echo hi
  app:
    setup:
    - !Container base
    - !Env {PORT: "8080"}
    - !EnsureDir /data
`

const sampleHCL = `
container "base" {
  auto_clean = true
  environ = { LANG = "C.UTF-8" }
  setup = [
    { Ubuntu = "jammy" },
    { UbuntuUniverse = null },
    { Install = ["curl", "git"] },
    { Download = { url = "https://example.com/tool", path = "/usr/bin/tool", mode = 493 } },
    { Sh = "echo hi" },
  ]
}

container "app" {
  setup = [
    { Container = "base" },
    { Env = { PORT = "8080" } },
    { EnsureDir = "/data" },
  ]
}
`

func parseAll(t *testing.T, m *Manifest) map[string]Parsed {
	t.Helper()
	parsed, err := m.Parse(context.Background(), step.Default())
	require.NoError(t, err)

	out := make(map[string]Parsed)
	for _, p := range parsed {
		require.NoError(t, p.Err, p.Container.Name)
		out[p.Container.Name] = p
	}
	return out
}

func TestParseYAML(t *testing.T) {
	m, err := ParseYAML("cruxbuild.yaml", []byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"base", "app"}, m.Names())

	base, err := m.Container("base")
	require.NoError(t, err)
	assert.True(t, base.AutoClean)
	assert.Equal(t, map[string]string{"LANG": "C.UTF-8"}, base.Environ)

	parsed := parseAll(t, m)
	assert.Equal(t, []string{
		"Ubuntu jammy",
		"UbuntuUniverse",
		"Install curl git",
		"Download https://example.com/tool -> /usr/bin/tool (0755)",
		`Sh "echo hi"`,
	}, parsed["base"].Steps.Describe())
	assert.Equal(t, []string{"base"}, parsed["app"].Steps.Dependencies())
}

func TestYAMLAndHCLFingerprintsMatch(t *testing.T) {
	y, err := ParseYAML("cruxbuild.yaml", []byte(sampleYAML))
	require.NoError(t, err)
	h, err := ParseHCL("cruxbuild.hcl", []byte(sampleHCL))
	require.NoError(t, err)

	assert.Equal(t, y.Names(), h.Names())

	yp := parseAll(t, y)
	hp := parseAll(t, h)
	for _, name := range y.Names() {
		assert.Equal(t, yp[name].Steps.Fingerprints(), hp[name].Steps.Fingerprints(), name)
	}

	hb, err := h.Container("base")
	require.NoError(t, err)
	assert.True(t, hb.AutoClean)
	assert.Equal(t, "C.UTF-8", hb.Environ["LANG"])
}

func TestTaggedAndMappingFormsMatch(t *testing.T) {
	tagged, err := ParseYAML("a.yaml", []byte(`
containers:
  c:
    setup:
    - !Git {url: "https://example.com/r.git", path: /src}
    - !Sh echo hi
`))
	require.NoError(t, err)

	mapped, err := ParseYAML("b.yaml", []byte(`
containers:
  c:
    setup:
    - Git:
        url: https://example.com/r.git
        path: /src
    - Sh: echo hi
`))
	require.NoError(t, err)

	a := parseAll(t, tagged)["c"].Steps.Fingerprints()
	b := parseAll(t, mapped)["c"].Steps.Fingerprints()
	assert.Equal(t, a, b)
}

func TestParseReportsContainersIndependently(t *testing.T) {
	m, err := ParseYAML("cruxbuild.yaml", []byte(`
containers:
  good:
    setup:
    - !Sh "true"
  bad:
    setup:
    - !Sh "true"
    - !Bogus x
    - !EnsureDir relative
`))
	require.NoError(t, err)

	parsed, err := m.Parse(context.Background(), step.Default())
	require.NoError(t, err)
	require.Len(t, parsed, 2)

	assert.NoError(t, parsed[0].Err)
	assert.Len(t, parsed[0].Steps, 1)

	require.Error(t, parsed[1].Err)
	assert.Nil(t, parsed[1].Steps)
	assert.Contains(t, parsed[1].Err.Error(), `containers.bad.setup[1]: unknown build step "Bogus"`)
	assert.Contains(t, parsed[1].Err.Error(), "containers.bad.setup[2].EnsureDir: invalid EnsureDir step")
}

func TestParseCancelled(t *testing.T) {
	m, err := ParseYAML("cruxbuild.yaml", []byte(sampleYAML))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = m.Parse(ctx, step.Default())
	require.ErrorIs(t, err, context.Canceled)
}

func TestYAMLMergeKeys(t *testing.T) {
	m, err := ParseYAML("cruxbuild.yaml", []byte(`
containers:
  base: &base
    environ: {A: "1", B: "2"}
    setup:
    - !Sh "true"
  derived:
    <<: *base
    environ: {A: "override"}
`))
	require.NoError(t, err)

	d, err := m.Container("derived")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "override"}, d.Environ)

	parsed := parseAll(t, m)
	assert.Equal(t, parsed["base"].Steps.Fingerprints(), parsed["derived"].Steps.Fingerprints())
}

func TestYAMLAnchoredSteps(t *testing.T) {
	m, err := ParseYAML("cruxbuild.yaml", []byte(`
containers:
  a:
    setup:
    - &install !Install [curl]
  b:
    setup:
    - *install
`))
	require.NoError(t, err)

	parsed := parseAll(t, m)
	assert.Equal(t, parsed["a"].Steps.Fingerprints(), parsed["b"].Steps.Fingerprints())
}

func TestYAMLDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"not a mapping", "- a\n- b\n", "expected a mapping at the top level"},
		{"unknown top-level key", "volumes: {}\n", `unknown top-level key "volumes"`},
		{"unknown container key", "containers:\n  a:\n    uids: []\n", `container "a": unknown key "uids"`},
		{"duplicate container", "containers:\n  a: {}\n  a: {}\n", `duplicate key "a"`},
		{"containers not a mapping", "containers: [a]\n", "containers must be a mapping"},
		{"syntax", "containers: [\n", "cruxbuild.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML("cruxbuild.yaml", []byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidDocument)
			assert.True(t, errdefs.IsInvalidArgument(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestYAMLSelfReferencingAnchors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"sequence", "containers:\n  a:\n    setup: &x\n      - !Sh echo\n      - *x\n"},
		{"tagged payload", "containers:\n  a:\n    setup:\n      - &x !Env {A: *x}\n"},
		{"merge key", "containers:\n  a: &x\n    <<: *x\n"},
		{"merge sequence", "containers:\n  a: &x\n    <<: [*x]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML("cruxbuild.yaml", []byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidDocument)
			assert.Contains(t, err.Error(), `anchor "x" contains itself`)
		})
	}
}

func TestYAMLAliasExpansionLimit(t *testing.T) {
	var b strings.Builder
	b.WriteString("containers:\n  a:\n    setup:\n    - &l0 !Sh x\n")
	for i := 1; i <= 8; i++ {
		refs := strings.Repeat(fmt.Sprintf("*l%d, ", i-1), 8)
		fmt.Fprintf(&b, "    - &l%d [%s]\n", i, strings.TrimSuffix(refs, ", "))
	}

	_, err := ParseYAML("cruxbuild.yaml", []byte(b.String()))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDocument)
	assert.Contains(t, err.Error(), "aliases expand to more than")
}

func TestEmptyDocuments(t *testing.T) {
	for _, doc := range []string{"", "---\n", "containers:\n", "containers: {}\n"} {
		m, err := ParseYAML("cruxbuild.yaml", []byte(doc))
		require.NoError(t, err, "%q", doc)
		assert.Empty(t, m.Containers, "%q", doc)
	}

	m, err := ParseYAML("cruxbuild.yaml", []byte("containers:\n  empty:\n"))
	require.NoError(t, err)
	seq, err := m.ParseContainer(step.Default(), "empty")
	require.NoError(t, err)
	assert.Empty(t, seq)
}

func TestHCLErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"duplicate container", "container \"a\" {}\ncontainer \"a\" {}\n", ErrDuplicateContainer},
		{"unknown block", "volume \"a\" {}\n", ErrInvalidDocument},
		{"syntax", "container \"a\" {\n", ErrInvalidDocument},
		{"variables", "container \"a\" {\n  setup = [{ Sh = var.x }]\n}\n", ErrInvalidDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHCL("cruxbuild.hcl", []byte(tt.doc))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "cruxbuild.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(sampleYAML), 0o644))
	m, err := Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, yamlPath, m.Path)
	assert.Len(t, m.Containers, 2)

	hclPath := filepath.Join(dir, "cruxbuild.hcl")
	require.NoError(t, os.WriteFile(hclPath, []byte(sampleHCL), 0o644))
	m, err = Load(hclPath)
	require.NoError(t, err)
	assert.Len(t, m.Containers, 2)

	tomlPath := filepath.Join(dir, "cruxbuild.toml")
	require.NoError(t, os.WriteFile(tomlPath, nil, 0o644))
	_, err = Load(tomlPath)
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, ErrReadFailed)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestContainerNotFound(t *testing.T) {
	m, err := ParseYAML("cruxbuild.yaml", []byte(sampleYAML))
	require.NoError(t, err)

	_, err = m.Container("missing")
	require.ErrorIs(t, err, ErrContainerNotFound)

	_, err = m.ParseContainer(step.Default(), "missing")
	require.ErrorIs(t, err, ErrContainerNotFound)
}
