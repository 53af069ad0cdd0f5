package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/cruciblehq/cruxbuild/internal"
	"github.com/cruciblehq/cruxbuild/internal/build"
	"github.com/cruciblehq/cruxbuild/internal/manifest"
	"github.com/cruciblehq/cruxbuild/internal/step"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `
containers:
  base:
    environ: {LANG: C.UTF-8}
    setup:
    - !Alpine v3.19
    - !Install [curl]
  app:
    setup:
    - !Container base
    - !Env {PORT: "8080"}
    - !RunAs {user_id: 1000, group_id: 1000, script: make}
  broken:
    setup:
    - !Bogus x
  uses-broken:
    setup:
    - !Container broken
`

// Creates a project over a temporary manifest and an optional settings file.
func newProject(t *testing.T, doc, settingsDoc string) (*project, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()

	path := filepath.Join(dir, "cruxbuild.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	settingsPath := filepath.Join(dir, "settings.yaml")
	if settingsDoc != "" {
		require.NoError(t, os.WriteFile(settingsPath, []byte(settingsDoc), 0o644))
	}

	var out bytes.Buffer
	return &project{file: path, settings: settingsPath, out: &out}, &out
}

func TestValidateAll(t *testing.T) {
	p, out := newProject(t, sampleManifest, "")

	err := (&ValidateCmd{}).Run(context.Background(), p)
	require.ErrorIs(t, err, ErrValidationFailed)
	assert.Contains(t, err.Error(), "1 of 4 containers")
	assert.Equal(t, ExitFailure, ExitCode(err))

	assert.Contains(t, out.String(), "base: ok (2 steps)")
	assert.Contains(t, out.String(), "app: ok (3 steps)")
	assert.Contains(t, out.String(), "broken: invalid")
	assert.Contains(t, out.String(), "Bogus")
}

func TestValidateSelected(t *testing.T) {
	p, out := newProject(t, sampleManifest, "")

	require.NoError(t, (&ValidateCmd{Containers: []string{"app"}}).Run(context.Background(), p))
	assert.Equal(t, "app: ok (3 steps)\n", out.String())
}

func TestValidateInvalidDependency(t *testing.T) {
	p, _ := newProject(t, sampleManifest, "")

	err := (&ValidateCmd{Containers: []string{"uses-broken"}}).Run(context.Background(), p)
	require.ErrorIs(t, err, ErrValidationFailed)
	require.ErrorIs(t, err, build.ErrInvalidSteps)
}

func TestValidateUnknownContainer(t *testing.T) {
	p, _ := newProject(t, sampleManifest, "")

	err := (&ValidateCmd{Containers: []string{"missing"}}).Run(context.Background(), p)
	require.ErrorIs(t, err, manifest.ErrContainerNotFound)
	assert.Equal(t, ExitNotFound, ExitCode(err))
}

func TestValidateCycle(t *testing.T) {
	p, _ := newProject(t, `
containers:
  a:
    setup: [!Container b]
  b:
    setup: [!Container a]
`, "")

	err := (&ValidateCmd{}).Run(context.Background(), p)
	require.ErrorIs(t, err, ErrValidationFailed)
	require.ErrorIs(t, err, build.ErrDependencyCycle)
}

func TestPlanText(t *testing.T) {
	p, out := newProject(t, sampleManifest, "")

	require.NoError(t, (&PlanCmd{Containers: []string{"app"}}).Run(context.Background(), p))

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "base "), "dependencies come first:\n%s", text)
	assert.Contains(t, text, "requires base")
	assert.Contains(t, text, "  1 ")
	assert.Contains(t, text, "Install curl")
	assert.NotContains(t, text, "broken")
}

func TestPlanJSON(t *testing.T) {
	p, out := newProject(t, sampleManifest, "")

	require.NoError(t, (&PlanCmd{Containers: []string{"app"}, JSON: true}).Run(context.Background(), p))

	var views []planView
	require.NoError(t, json.Unmarshal(out.Bytes(), &views))
	require.Len(t, views, 2)

	app := views[1]
	assert.Equal(t, "app", app.Container)
	assert.Equal(t, []string{"base"}, app.Requires)
	require.Len(t, app.Steps, 3)
	assert.Equal(t, "RunAs", app.Steps[2].Tag)
	assert.False(t, app.Steps[2].Privileged)
	assert.Equal(t, app.Steps[2].Key, app.Key)
	assert.Equal(t, []string{"LANG=C.UTF-8", "PORT=8080"}, app.Image.Config.Env)
}

func TestPlanInvalidSteps(t *testing.T) {
	p, _ := newProject(t, sampleManifest, "")

	err := (&PlanCmd{}).Run(context.Background(), p)
	require.ErrorIs(t, err, build.ErrInvalidSteps)
	require.ErrorIs(t, err, step.ErrUnknownTag)
	assert.Contains(t, err.Error(), "broken")
}

func TestHash(t *testing.T) {
	p, out := newProject(t, sampleManifest, "")
	require.NoError(t, (&PlanCmd{Containers: []string{"app"}, JSON: true}).Run(context.Background(), p))

	var views []planView
	require.NoError(t, json.Unmarshal(out.Bytes(), &views))

	out.Reset()
	require.NoError(t, (&HashCmd{Container: "app"}).Run(context.Background(), p))
	assert.Equal(t, views[1].Key.Encoded()+"\n", out.String())

	out.Reset()
	require.NoError(t, (&HashCmd{Container: "app", Short: true}).Run(context.Background(), p))
	assert.Equal(t, views[1].Key.Encoded()[:8]+"\n", out.String())

	err := (&HashCmd{Container: "missing"}).Run(context.Background(), p)
	require.ErrorIs(t, err, build.ErrUnknownContainer)
	assert.Equal(t, ExitNotFound, ExitCode(err))
}

func TestHashVersionCheck(t *testing.T) {
	hash := func(baseScript, settingsDoc string) string {
		doc := strings.Replace(sampleManifest, "[curl]", baseScript, 1)
		p, out := newProject(t, doc, settingsDoc)
		require.NoError(t, (&HashCmd{Container: "app"}).Run(context.Background(), p))
		return out.String()
	}

	assert.NotEqual(t, hash("[curl]", ""), hash("[wget]", ""))
	assert.Equal(t, hash("[curl]", "version-check: false\n"), hash("[wget]", "version-check: false\n"))
}

func TestDryRun(t *testing.T) {
	p, out := newProject(t, sampleManifest, "")

	require.NoError(t, (&DryRunCmd{Containers: []string{"app"}}).Run(context.Background(), p))
	assert.Contains(t, out.String(), "container base (")
	assert.Contains(t, out.String(), "container app (")
	assert.Contains(t, out.String(), "[as 1000:1000 in /work]")
}

func TestDryRunUnmappedID(t *testing.T) {
	p, out := newProject(t, sampleManifest, "uid-map: [[0, 1000, 1]]\n")

	err := (&DryRunCmd{Containers: []string{"app"}}).Run(context.Background(), p)
	require.ErrorIs(t, err, build.ErrUnmappedID)
	assert.Empty(t, out.String())
}

func TestInvalidSettings(t *testing.T) {
	p, _ := newProject(t, sampleManifest, "uid-map: nope\n")

	err := (&PlanCmd{}).Run(context.Background(), p)
	require.Error(t, err)
	assert.Equal(t, ExitSettings, ExitCode(err))
}

func TestCatalog(t *testing.T) {
	p, out := newProject(t, sampleManifest, "")

	require.NoError(t, (&CatalogCmd{}).Run(context.Background(), p))
	assert.Equal(t, strings.Join(step.Catalog(), "\n")+"\n", out.String())

	out.Reset()
	require.NoError(t, (&CatalogCmd{Tag: "Download"}).Run(context.Background(), p))
	text := out.String()
	assert.True(t, strings.HasPrefix(text, "Download: object\n"), text)
	assert.Regexp(t, `mode\s+number\s+default 420`, text)
	assert.Regexp(t, `sha256\s+string\s+optional`, text)
	assert.Regexp(t, `url\s+string\s+required`, text)

	out.Reset()
	require.NoError(t, (&CatalogCmd{Tag: "Sh"}).Run(context.Background(), p))
	assert.Equal(t, "Sh: string\n", out.String())

	err := (&CatalogCmd{Tag: "Bogus"}).Run(context.Background(), p)
	require.ErrorIs(t, err, ErrUnknownTag)
	require.ErrorIs(t, err, step.ErrUnknownTag)
}

func TestVersion(t *testing.T) {
	p, out := newProject(t, sampleManifest, "")
	require.NoError(t, (&VersionCmd{}).Run(context.Background(), p))
	assert.Equal(t, "(local)\n", out.String())

	out.Reset()
	require.NoError(t, (&VersionCmd{JSON: true}).Run(context.Background(), p))
	var info internal.BuildInfo
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.True(t, info.Local)
	assert.Equal(t, "(undefined)", info.Version)
}

func TestCommandLine(t *testing.T) {
	root := RootCmd
	parser, err := kong.New(&root, kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)

	kctx, err := parser.Parse([]string{"-d", "-f", "/tmp/x.yaml", "plan", "--json", "app", "base"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(kctx.Command(), "plan"), kctx.Command())
	assert.True(t, root.Debug)
	assert.Equal(t, "/tmp/x.yaml", root.File)
	assert.True(t, root.Plan.JSON)
	assert.Equal(t, []string{"app", "base"}, root.Plan.Containers)

	kctx, err = parser.Parse([]string{"dry-run"})
	require.NoError(t, err)
	assert.Equal(t, "dry-run", kctx.Command())
}
