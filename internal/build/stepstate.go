package build

import (
	"maps"
	"slices"

	"github.com/cruciblehq/cruxbuild/internal/step"
)

// Working directory for steps that do not set one.
const defaultWorkDir = "/work"

// The effective settings for executing one step.
//
// A State is a snapshot. Executors may read it freely but must not retain
// the maps past the call.
type State struct {
	Env     map[string]string      // Environment variables visible to the step.
	WorkDir string                 // Working directory inside the container.
	UserID  uint32                 // User the step's processes run as.
	GroupID uint32                 // Primary group the step's processes run as.
	Caches  map[string]string      // Cache directories mounted, keyed by container path.
	Configs map[step.Tag]step.Step // Latest package manager configuration step, by tag.
}

// Formats the environment as a sorted list of "key=value" strings suitable
// for passing to a process.
func (s *State) Environ() []string {
	env := make([]string, 0, len(s.Env))
	for _, k := range slices.Sorted(maps.Keys(s.Env)) {
		env = append(env, k+"="+s.Env[k])
	}
	return env
}

// Tags whose steps configure the package manager steps that follow them.
var configTags = map[step.Tag]bool{
	step.TagPipConfig:      true,
	step.TagNpmConfig:      true,
	step.TagGemConfig:      true,
	step.TagComposerConfig: true,
}

// Tracks settings accumulated while walking a container's steps.
//
// State flows linearly through the step list. Env, CacheDirs and package
// manager configuration steps update the state permanently via apply. Other
// steps read the effective values for themselves via resolve without
// modifying the persistent state.
type stepState struct {
	env     map[string]string
	caches  map[string]string
	configs map[step.Tag]step.Step
}

// Creates a new [stepState] seeded with the container's environment.
func newStepState(environ map[string]string) *stepState {
	s := &stepState{
		env:     make(map[string]string, len(environ)),
		caches:  make(map[string]string),
		configs: make(map[step.Tag]step.Step),
	}
	maps.Copy(s.env, environ)
	return s
}

// Persists the effect of a step into the state.
//
// Steps that carry no persistent settings leave the state unchanged.
func (s *stepState) apply(st step.Step) {
	switch v := st.Value().(type) {
	case *step.Env:
		maps.Copy(s.env, *v)
	case *step.CacheDirs:
		maps.Copy(s.caches, *v)
	default:
		if configTags[st.Tag()] {
			s.configs[st.Tag()] = st
		}
	}
}

// Adopts the environment of a base container. Variables set in the
// container's own environment take precedence.
func (s *stepState) inherit(base *Plan, environ map[string]string) {
	maps.Copy(s.env, base.final)
	maps.Copy(s.env, environ)
}

// Returns the effective settings for a single step. The receiver is not
// modified.
//
// A RunAs step overrides the user, group and working directory for itself
// only.
func (s *stepState) resolve(st step.Step) *State {
	resolved := &State{
		Env:     maps.Clone(s.env),
		WorkDir: defaultWorkDir,
		Caches:  maps.Clone(s.caches),
		Configs: maps.Clone(s.configs),
	}

	if r, ok := st.Value().(*step.RunAs); ok {
		resolved.WorkDir = r.WorkDir
		resolved.UserID = r.UserID
		resolved.GroupID = r.GroupID
	}

	return resolved
}
