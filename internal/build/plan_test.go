package build

import (
	"testing"

	"github.com/cruciblehq/cruxbuild/internal/step"
	"github.com/google/go-cmp/cmp"
	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

var amd64 = &ocispec.Platform{OS: "linux", Architecture: "amd64"}

func keys(p *Plan) []digest.Digest {
	out := make([]digest.Digest, len(p.Steps))
	for i, ps := range p.Steps {
		out[i] = ps.Key
	}
	return out
}

func planOne(t *testing.T, in Input) *Plan {
	t.Helper()
	plans, err := NewPlans([]Input{in}, PlanOptions{Platform: amd64})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	return plans[0]
}

func TestPlanKeysChain(t *testing.T) {
	a := planOne(t, Input{Name: "app", Steps: step.Sequence{sh(t, "one"), sh(t, "two"), sh(t, "three")}})
	b := planOne(t, Input{Name: "app", Steps: step.Sequence{sh(t, "one"), sh(t, "changed"), sh(t, "three")}})

	ka, kb := keys(a), keys(b)
	assert.Equal(t, ka[0], kb[0])
	assert.NotEqual(t, ka[1], kb[1])
	assert.NotEqual(t, ka[2], kb[2])
	assert.Equal(t, ka[2], a.Key)
	assert.Equal(t, kb[2], b.Key)
}

func TestPlanKeysDeterministic(t *testing.T) {
	in := Input{
		Name:    "app",
		Environ: map[string]string{"A": "1", "B": "2"},
		Steps:   step.Sequence{sh(t, "make")},
	}
	a := planOne(t, in)
	b := planOne(t, in)
	assert.Equal(t, keys(a), keys(b))

	// The container name is not part of the key.
	in.Name = "other"
	assert.Equal(t, a.Key, planOne(t, in).Key)

	in.Environ = map[string]string{"A": "1"}
	assert.NotEqual(t, a.Key, planOne(t, in).Key)
}

func TestPlanKeysPlatform(t *testing.T) {
	in := []Input{{Name: "app", Steps: step.Sequence{sh(t, "make")}}}

	a, err := NewPlans(in, PlanOptions{Platform: amd64})
	require.NoError(t, err)
	b, err := NewPlans(in, PlanOptions{Platform: &ocispec.Platform{OS: "linux", Architecture: "arm64"}})
	require.NoError(t, err)

	assert.NotEqual(t, a[0].Key, b[0].Key)
}

func TestPlanEmptySequence(t *testing.T) {
	p := planOne(t, Input{Name: "empty"})
	assert.Empty(t, p.Steps)
	assert.NotEmpty(t, p.Key)
	assert.Empty(t, p.Image.History)
}

func TestPlanImage(t *testing.T) {
	p := planOne(t, Input{
		Name:    "app",
		Environ: map[string]string{"LANG": "C.UTF-8"},
		Steps: step.Sequence{
			parse(t, "Alpine", cty.StringVal("v3.19")),
			env(t, "PATH", "/usr/bin", "HOME", "/root"),
			sh(t, "make"),
		},
	})

	want := ocispec.Image{
		Platform: ocispec.Platform{OS: "linux", Architecture: "amd64"},
		Config: ocispec.ImageConfig{
			Env:    []string{"HOME=/root", "LANG=C.UTF-8", "PATH=/usr/bin"},
			Labels: map[string]string{ocispec.AnnotationTitle: "app"},
		},
		RootFS: ocispec.RootFS{Type: "layers"},
		History: []ocispec.History{
			{CreatedBy: "Alpine v3.19"},
			{CreatedBy: "Env HOME=/root PATH=/usr/bin", EmptyLayer: true},
			{CreatedBy: `Sh "make"`},
		},
	}
	if diff := cmp.Diff(want, p.Image); diff != "" {
		t.Fatalf("image mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanUbuntuReleaseArch(t *testing.T) {
	p := planOne(t, Input{
		Name: "arm",
		Steps: step.Sequence{parse(t, "UbuntuRelease", cty.ObjectVal(map[string]cty.Value{
			"codename": cty.StringVal("jammy"),
			"arch":     cty.StringVal("aarch64"),
		}))},
	})
	assert.Equal(t, "arm64", p.Image.Architecture)
	assert.Equal(t, "linux", p.Image.OS)
}

func TestPlanDependencies(t *testing.T) {
	base := Input{
		Name:    "base",
		Environ: map[string]string{"LANG": "C", "FROM_BASE": "1"},
		Steps: step.Sequence{
			parse(t, "UbuntuRelease", cty.ObjectVal(map[string]cty.Value{
				"codename": cty.StringVal("jammy"),
				"arch":     cty.StringVal("arm64"),
			})),
			env(t, "PATH", "/opt/bin"),
		},
	}
	app := Input{
		Name:    "app",
		Environ: map[string]string{"LANG": "C.UTF-8"},
		Steps:   step.Sequence{parse(t, "Container", cty.StringVal("base")), sh(t, "make")},
	}

	plans, err := NewPlans([]Input{app, base}, PlanOptions{Platform: amd64, Targets: []string{"app"}})
	require.NoError(t, err)
	require.Len(t, plans, 2)

	assert.Equal(t, "base", plans[0].Container)
	assert.Equal(t, "app", plans[1].Container)
	assert.Equal(t, []string{"base"}, plans[1].Requires)

	img := plans[1].Image
	assert.Equal(t, "arm64", img.Architecture)
	assert.Equal(t, []string{"FROM_BASE=1", "LANG=C.UTF-8", "PATH=/opt/bin"}, img.Config.Env)
}

func TestPlanVersionCheck(t *testing.T) {
	inputs := func(baseScript string) []Input {
		return []Input{
			{Name: "base", Steps: step.Sequence{sh(t, baseScript)}},
			{Name: "app", Steps: step.Sequence{parse(t, "Container", cty.StringVal("base")), sh(t, "make")}},
		}
	}

	plan := func(script string, check bool) []*Plan {
		plans, err := NewPlans(inputs(script), PlanOptions{Platform: amd64, VersionCheck: check})
		require.NoError(t, err)
		return plans
	}

	checked, changed := plan("v1", true), plan("v2", true)
	assert.NotEqual(t, checked[1].Key, changed[1].Key)

	unchecked, changed := plan("v1", false), plan("v2", false)
	assert.NotEqual(t, unchecked[0].Key, changed[0].Key)
	assert.Equal(t, unchecked[1].Key, changed[1].Key)
}

func TestPlanErrors(t *testing.T) {
	_, err := NewPlans([]Input{
		{Name: "app", Steps: step.Sequence{parse(t, "Container", cty.StringVal("missing"))}},
	}, PlanOptions{Platform: amd64})
	require.ErrorIs(t, err, ErrUnknownDependency)

	_, err = NewPlans([]Input{
		{Name: "a", Steps: step.Sequence{parse(t, "Container", cty.StringVal("b"))}},
		{Name: "b", Steps: step.Sequence{parse(t, "Container", cty.StringVal("a"))}},
	}, PlanOptions{Platform: amd64})
	require.ErrorIs(t, err, ErrDependencyCycle)
}
