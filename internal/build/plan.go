package build

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/containerd/platforms"
	"github.com/cruciblehq/cruxbuild/internal/step"
	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// A container to plan: its name, environment and parsed steps.
type Input struct {
	Name    string            // Container name, unique among inputs.
	Environ map[string]string // Environment set for commands run in the container.
	Steps   step.Sequence     // Parsed setup steps, in document order.
}

// Controls planning.
type PlanOptions struct {
	Targets      []string          // Containers to plan, with their dependencies. Nil plans every input.
	Platform     *ocispec.Platform // Target platform. Defaults to the host architecture on linux.
	VersionCheck bool              // Fold dependency cache keys into the keys of the steps that use them.
}

// One step of a plan with the cache key of the container state after it.
type PlannedStep struct {
	Step step.Step     // The parsed step.
	Key  digest.Digest // Cache key after the step has been applied.
}

// The build plan of a single container.
type Plan struct {
	Container string        // Container name.
	Requires  []string      // Containers that must be built first, in order of first use.
	Steps     []PlannedStep // Steps in document order.
	Key       digest.Digest // Cache key of the finished container.
	Image     ocispec.Image // Image configuration of the finished container.

	environ map[string]string // Environment set in the document.
	final   map[string]string // Environment inherited by containers built on this one.
}

// Steps that never change the container filesystem.
var emptyLayerTags = map[step.Tag]bool{
	step.TagEnv:            true,
	step.TagCacheDirs:      true,
	step.TagDepends:        true,
	step.TagPipConfig:      true,
	step.TagNpmConfig:      true,
	step.TagGemConfig:      true,
	step.TagComposerConfig: true,
}

// Creates plans for the selected inputs, dependencies first.
//
// Each step's cache key chains the previous key with the step's
// fingerprint, so changing one step changes the keys of that step and every
// step after it, and nothing before it. The first key is derived from the
// platform and the container environment.
func NewPlans(inputs []Input, opts PlanOptions) ([]*Plan, error) {
	byName := make(map[string]*Input, len(inputs))
	names := make([]string, len(inputs))
	deps := make(map[string][]string, len(inputs))
	for i := range inputs {
		in := &inputs[i]
		byName[in.Name] = in
		names[i] = in.Name
		deps[in.Name] = in.Steps.Dependencies()
	}

	order, err := Order(names, deps, opts.Targets)
	if err != nil {
		return nil, err
	}

	platform := platforms.Normalize(platforms.DefaultSpec())
	platform.OS = "linux"
	if opts.Platform != nil {
		platform = platforms.Normalize(*opts.Platform)
	}

	plans := make([]*Plan, 0, len(order))
	done := make(map[string]*Plan, len(order))
	for _, name := range order {
		p := newPlan(byName[name], platform, done, opts.VersionCheck)
		slog.Debug("planned container", "container", name, "steps", len(p.Steps), "key", p.Key)
		plans = append(plans, p)
		done[name] = p
	}
	return plans, nil
}

// Plans a single container whose dependencies are already planned.
func newPlan(in *Input, platform ocispec.Platform, done map[string]*Plan, versionCheck bool) *Plan {
	p := &Plan{
		Container: in.Name,
		Requires:  in.Steps.Dependencies(),
		Steps:     make([]PlannedStep, len(in.Steps)),
		environ:   in.Environ,
	}

	state := newStepState(in.Environ)
	history := make([]ocispec.History, len(in.Steps))
	key := baseKey(platform, in.Environ)

	for i, st := range in.Steps {
		var depKey digest.Digest
		if dep, ok := st.Dependency(); ok && versionCheck {
			depKey = done[dep].Key
		}

		switch v := st.Value().(type) {
		case *step.Container:
			base := done[string(*v)]
			platform = base.Image.Platform
			state.inherit(base, in.Environ)
		case *step.UbuntuRelease:
			platform.Architecture, platform.Variant = v.Arch, ""
			platform = platforms.Normalize(platform)
		}

		state.apply(st)
		key = chainKey(key, st, depKey)
		p.Steps[i] = PlannedStep{Step: st, Key: key}
		history[i] = ocispec.History{
			CreatedBy:  st.Describe(),
			EmptyLayer: emptyLayerTags[st.Tag()],
		}
	}

	p.Key = key
	p.final = state.env
	p.Image = ocispec.Image{
		Platform: platform,
		Config: ocispec.ImageConfig{
			Env:    (&State{Env: state.env}).Environ(),
			Labels: map[string]string{ocispec.AnnotationTitle: in.Name},
		},
		RootFS:  ocispec.RootFS{Type: "layers"},
		History: history,
	}
	return p
}

// Returns the cache key of an empty container.
func baseKey(platform ocispec.Platform, environ map[string]string) digest.Digest {
	s := platforms.Format(platform)
	for _, k := range slices.Sorted(maps.Keys(environ)) {
		s += "\n" + k + "=" + environ[k]
	}
	return digest.FromString(s)
}

// Returns the cache key after applying st to the state identified by prev.
func chainKey(prev digest.Digest, st step.Step, dep digest.Digest) digest.Digest {
	s := fmt.Sprintf("%s\n%s", prev, st.Fingerprint())
	if dep != "" {
		s += "\n" + dep.String()
	}
	return digest.FromString(s)
}
