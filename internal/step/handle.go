package step

import (
	"github.com/opencontainers/go-digest"
)

// The capability surface shared by every concrete step value.
//
// Consumers never need the concrete type to describe, fingerprint or order
// steps. Execution engines that do need it type-switch on [Step.Value].
type BuildStep interface {

	// Returns the catalog entry this value was parsed from.
	Tag() Tag

	// Returns a single-line human-readable description.
	Describe() string

	// Reports whether the step runs processes as root inside the container.
	Privileged() bool

	// Returns the name of another container this step needs to be built
	// first, if any.
	Dependency() (string, bool)
}

// Immutable state shared by all copies of a [Step].
type entry struct {
	value       BuildStep     // Concrete step value, never mutated.
	fingerprint digest.Digest // Content digest of the tag and normalised configuration.
}

// A shared, immutable handle over one concrete step value.
//
// Copying a Step copies a pointer; the concrete value is never duplicated.
// The zero Step holds nothing and is only produced by failed parses.
type Step struct {
	e *entry
}

func newStep(value BuildStep, fingerprint digest.Digest) Step {
	return Step{e: &entry{value: value, fingerprint: fingerprint}}
}

// Returns the step's tag.
func (s Step) Tag() Tag {
	return s.e.value.Tag()
}

// Returns the human-readable description of the step.
func (s Step) Describe() string {
	return s.e.value.Describe()
}

// Reports whether the step needs elevated privilege.
func (s Step) Privileged() bool {
	return s.e.value.Privileged()
}

// Returns the container this step depends on, if any.
func (s Step) Dependency() (string, bool) {
	return s.e.value.Dependency()
}

// Returns the content digest of the step.
//
// Two steps parsed from equivalent configuration have equal fingerprints,
// regardless of how the configuration was written (defaults spelled out or
// omitted, YAML or HCL).
func (s Step) Fingerprint() digest.Digest {
	return s.e.fingerprint
}

// Returns the concrete step value.
//
// The value is shared by every copy of the handle and must be treated as
// read-only.
func (s Step) Value() BuildStep {
	return s.e.value
}

// Returns a handle sharing the same concrete value.
func (s Step) Clone() Step {
	return s
}

// Reports whether both handles share the same concrete value.
func (s Step) Same(o Step) bool {
	return s.e == o.e
}

// Reports whether both steps have the same configuration.
func (s Step) Equal(o Step) bool {
	if s.e == nil || o.e == nil {
		return s.e == o.e
	}
	return s.e.fingerprint == o.e.fingerprint
}

// Reports whether the handle is empty.
func (s Step) IsZero() bool {
	return s.e == nil
}

func (s Step) String() string {
	if s.e == nil {
		return "<empty step>"
	}
	return s.Describe()
}

// An ordered list of steps, in document order.
type Sequence []Step

// Returns a new sequence sharing the same step values.
func (seq Sequence) Clone() Sequence {
	if seq == nil {
		return nil
	}
	out := make(Sequence, len(seq))
	copy(out, seq)
	return out
}

// Returns the fingerprint of each step, in order.
func (seq Sequence) Fingerprints() []digest.Digest {
	out := make([]digest.Digest, len(seq))
	for i, s := range seq {
		out[i] = s.Fingerprint()
	}
	return out
}

// Returns the description of each step, in order.
func (seq Sequence) Describe() []string {
	out := make([]string, len(seq))
	for i, s := range seq {
		out[i] = s.Describe()
	}
	return out
}

// Returns the distinct container dependencies of the sequence, in order of
// first appearance.
func (seq Sequence) Dependencies() []string {
	var deps []string
	seen := make(map[string]bool)
	for _, s := range seq {
		if name, ok := s.Dependency(); ok && !seen[name] {
			seen[name] = true
			deps = append(deps, name)
		}
	}
	return deps
}
