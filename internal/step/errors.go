package step

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/zclconf/go-cty/cty"
)

var (
	ErrMalformedStep = errors.New("malformed build step")
	ErrUnknownTag    = errors.New("unknown build step")
	ErrInvalidConfig = errors.New("invalid build step configuration")
	ErrRegistryFault = errors.New("build step registry is inconsistent")
)

// Returned when a step node does not carry exactly one tag.
type MalformedStepError struct {
	Path cty.Path // Location of the node within the document.
	Tags []string // Tags found on the node, sorted. Empty if none.
}

func (e *MalformedStepError) Error() string {
	var detail string
	switch len(e.Tags) {
	case 0:
		detail = "no build step tag"
	default:
		detail = fmt.Sprintf("%d build step tags (%s), expected exactly one", len(e.Tags), strings.Join(e.Tags, ", "))
	}
	return at(e.Path, fmt.Sprintf("%s: %s", ErrMalformedStep, detail))
}

func (e *MalformedStepError) Unwrap() []error {
	return []error{ErrMalformedStep, errdefs.ErrInvalidArgument}
}

// Returns the list index of the offending node, or -1 if the path does not
// end in a list index.
func (e *MalformedStepError) Index() int {
	return lastIndex(e.Path)
}

// Returned when a tag name is not part of the catalog.
type UnknownTagError struct {
	Path cty.Path // Location of the node within the document, if known.
	Name string   // The tag name that failed to resolve.
}

func (e *UnknownTagError) Error() string {
	return at(e.Path, fmt.Sprintf("%s %q, expected one of %s", ErrUnknownTag, e.Name, catalogList()))
}

func (e *UnknownTagError) Unwrap() []error {
	return []error{ErrUnknownTag, errdefs.ErrNotFound}
}

// Returned when the payload of a known tag fails schema validation or
// semantic checks.
type InvalidConfigError struct {
	Tag  Tag      // Tag whose payload failed.
	Path cty.Path // Location of the failing field, from the document root.
	Err  error    // Underlying cause.
}

func (e *InvalidConfigError) Error() string {
	return at(e.Path, fmt.Sprintf("invalid %s step: %v", e.Tag, e.Err))
}

func (e *InvalidConfigError) Unwrap() []error {
	return []error{ErrInvalidConfig, errdefs.ErrInvalidArgument, e.Err}
}

// Reports a catalog entry with no registered schema or parser.
//
// A fault is a defect in the program, never a property of the input. It must
// not be reported as a validation error.
type RegistryFault struct {
	Tag    Tag    // Offending catalog entry.
	Reason string // What is missing or mismatched.
}

func (e *RegistryFault) Error() string {
	return fmt.Sprintf("%s: unimplemented tag %s: %s", ErrRegistryFault, e.Tag, e.Reason)
}

func (e *RegistryFault) Unwrap() []error {
	return []error{ErrRegistryFault, errdefs.ErrInternal}
}

// Returns true if err is, or wraps, a [RegistryFault].
func IsFault(err error) bool {
	return errors.Is(err, ErrRegistryFault)
}

// Prefixes msg with the formatted path, if any.
func at(path cty.Path, msg string) string {
	if len(path) == 0 {
		return msg
	}
	return FormatPath(path) + ": " + msg
}

// Formats a path as a dotted attribute chain with bracketed indexes, for
// example "setup[2].url".
func FormatPath(path cty.Path) string {
	var b strings.Builder
	for _, s := range path {
		switch s := s.(type) {
		case cty.GetAttrStep:
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(s.Name)
		case cty.IndexStep:
			b.WriteString(formatIndex(s.Key))
		}
	}
	return b.String()
}

func formatIndex(key cty.Value) string {
	if key.IsNull() || !key.IsKnown() {
		return "[?]"
	}
	switch key.Type() {
	case cty.Number:
		return "[" + key.AsBigFloat().Text('f', -1) + "]"
	case cty.String:
		return fmt.Sprintf("[%q]", key.AsString())
	}
	return "[?]"
}

func lastIndex(path cty.Path) int {
	if len(path) == 0 {
		return -1
	}
	s, ok := path[len(path)-1].(cty.IndexStep)
	if !ok || s.Key.IsNull() || !s.Key.IsKnown() || s.Key.Type() != cty.Number {
		return -1
	}
	i, acc := s.Key.AsBigFloat().Int64()
	if acc != big.Exact {
		return -1
	}
	return int(i)
}
