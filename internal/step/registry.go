package step

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/containerd/errdefs"
	"github.com/opencontainers/go-digest"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Returned when a step list is not a list.
var ErrNotSequence = errors.New("build steps must be a list")

// Validates raw step nodes against the per-kind schemas.
//
// A Validator is a tagged choice over the whole catalog: the node's tag
// selects exactly one alternative, and the payload is checked against that
// alternative's schema. It is immutable and safe for concurrent use.
type Validator struct {
	schemas [tagCount]*Schema
}

// Creates a [Validator] over the built-in schemas.
//
// Panics with a [RegistryFault] if a catalog entry has no schema.
func NewValidator() *Validator {
	v, err := newValidator(kinds[:])
	if err != nil {
		panic(err)
	}
	return v
}

func newValidator(table []kind) (*Validator, error) {
	v := &Validator{}
	for _, k := range table {
		if !k.tag.valid() {
			return nil, &RegistryFault{Tag: k.tag, Reason: "tag outside the catalog"}
		}
		if v.schemas[k.tag] != nil {
			return nil, &RegistryFault{Tag: k.tag, Reason: "schema registered twice"}
		}
		v.schemas[k.tag] = k.schema
	}
	for i, s := range v.schemas {
		if s == nil {
			return nil, &RegistryFault{Tag: Tag(i), Reason: "no schema registered"}
		}
	}
	return v, nil
}

// Returns the schema registered for a tag.
func (v *Validator) Schema(t Tag) *Schema {
	return v.schemas[t]
}

// Checks a single raw step node.
func (v *Validator) Validate(node cty.Value) error {
	_, _, err := v.validate(nil, node)
	return err
}

// Checks every node of a step list.
func (v *Validator) ValidateSequence(list cty.Value) error {
	return eachNode(nil, list, func(path cty.Path, node cty.Value) error {
		_, _, err := v.validate(path, node)
		return err
	})
}

// Resolves the node's tag and normalises its payload.
func (v *Validator) validate(path cty.Path, node cty.Value) (Tag, cty.Value, error) {
	name, payload, err := splitNode(path, node)
	if err != nil {
		return 0, cty.NilVal, err
	}

	t, err := Resolve(name)
	if err != nil {
		return 0, cty.NilVal, &UnknownTagError{Path: path, Name: name}
	}

	schema := v.schemas[t]
	if schema == nil {
		return t, cty.NilVal, &RegistryFault{Tag: t, Reason: "no schema registered"}
	}

	val, err := schema.Normalize(payload)
	if err != nil {
		return t, cty.NilVal, invalid(t, path.GetAttr(name), err)
	}
	return t, val, nil
}

// Validates and parses raw step nodes into [Step] handles.
//
// A Registry is immutable and safe for concurrent use.
type Registry struct {
	validator *Validator
	decoders  [tagCount]decodeFunc
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r, err := NewRegistry()
	if err != nil {
		panic(err)
	}
	return r
})

// Returns the shared registry over the built-in step kinds.
//
// Panics with a [RegistryFault] the first time it is called if the built-in
// table is inconsistent.
func Default() *Registry {
	return defaultRegistry()
}

// Creates a registry over the built-in step kinds and verifies that every
// catalog entry has a schema and a parser.
func NewRegistry() (*Registry, error) {
	r, err := newRegistry(kinds[:])
	if err != nil {
		return nil, err
	}
	if err := r.Check(); err != nil {
		return nil, err
	}
	return r, nil
}

func newRegistry(table []kind) (*Registry, error) {
	v, err := newValidator(table)
	if err != nil {
		return nil, err
	}
	r := &Registry{validator: v}
	for _, k := range table {
		r.decoders[k.tag] = k.decode
	}
	return r, nil
}

// Verifies that every catalog entry has a schema and a parser.
//
// Returns the first [RegistryFault] found, in catalog order.
func (r *Registry) Check() error {
	for _, t := range Tags() {
		if r.validator.schemas[t] == nil {
			return &RegistryFault{Tag: t, Reason: "no schema registered"}
		}
		if r.decoders[t] == nil {
			return &RegistryFault{Tag: t, Reason: "no parser registered"}
		}
	}
	return nil
}

// Returns the registry's validator.
func (r *Registry) Validator() *Validator {
	return r.validator
}

// Parses a single raw step node.
func (r *Registry) Parse(node cty.Value) (Step, error) {
	return r.ParseAt(nil, node)
}

// Parses a single raw step node located at path within its document. The
// path prefixes every error location.
func (r *Registry) ParseAt(path cty.Path, node cty.Value) (Step, error) {
	t, payload, err := r.validator.validate(path, node)
	if err != nil {
		return Step{}, err
	}

	decode := r.decoders[t]
	if decode == nil {
		return Step{}, &RegistryFault{Tag: t, Reason: "no parser registered"}
	}

	value, err := decode(payload)
	if err != nil {
		return Step{}, invalid(t, path.GetAttr(t.String()), err)
	}
	if value.Tag() != t {
		return Step{}, &RegistryFault{Tag: t, Reason: fmt.Sprintf("parser produced a %s step", value.Tag())}
	}

	fp, err := fingerprint(t, r.validator.schemas[t], value)
	if err != nil {
		return Step{}, &RegistryFault{Tag: t, Reason: err.Error()}
	}

	return newStep(value, fp), nil
}

// Parses a step list, stopping at the first error.
func (r *Registry) ParseSequence(list cty.Value) (Sequence, error) {
	return r.ParseSequenceAt(nil, list)
}

// Parses a step list located at path within its document, stopping at the
// first error.
func (r *Registry) ParseSequenceAt(path cty.Path, list cty.Value) (Sequence, error) {
	var seq Sequence
	err := eachNode(path, list, func(p cty.Path, node cty.Value) error {
		s, err := r.ParseAt(p, node)
		if err != nil {
			return err
		}
		seq = append(seq, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return seq, nil
}

// Parses a step list located at path, reporting every invalid node.
//
// User-input errors are joined. A [RegistryFault] stops parsing at once and
// is returned alone.
func (r *Registry) ParseSequenceAll(path cty.Path, list cty.Value) (Sequence, error) {
	var seq Sequence
	var errs []error
	err := eachNode(path, list, func(p cty.Path, node cty.Value) error {
		s, err := r.ParseAt(p, node)
		switch {
		case err == nil:
			seq = append(seq, s)
		case IsFault(err):
			return err
		default:
			errs = append(errs, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return seq, nil
}

// Calls fn for each element of a list or tuple, in order. A null list has
// no elements.
func eachNode(path cty.Path, list cty.Value, fn func(cty.Path, cty.Value) error) error {
	if list.IsNull() {
		return nil
	}
	ty := list.Type()
	if !ty.IsTupleType() && !ty.IsListType() {
		return fmt.Errorf("%w: %w", errdefs.ErrInvalidArgument, errorAt(path, ErrNotSequence))
	}

	it := list.ElementIterator()
	for i := 0; it.Next(); i++ {
		_, node := it.Element()
		if err := fn(path.Index(cty.NumberIntVal(int64(i))), node); err != nil {
			return err
		}
	}
	return nil
}

// Splits a raw node into its single tag name and payload.
func splitNode(path cty.Path, node cty.Value) (string, cty.Value, error) {
	if node.IsNull() || !node.IsKnown() {
		return "", cty.NilVal, &MalformedStepError{Path: path}
	}

	ty := node.Type()
	var names []string
	switch {
	case ty.IsObjectType():
		for name := range ty.AttributeTypes() {
			names = append(names, name)
		}
	case ty.IsMapType():
		for it := node.ElementIterator(); it.Next(); {
			k, _ := it.Element()
			names = append(names, k.AsString())
		}
	default:
		return "", cty.NilVal, &MalformedStepError{Path: path}
	}

	if len(names) != 1 {
		sort.Strings(names)
		return "", cty.NilVal, &MalformedStepError{Path: path, Tags: names}
	}

	name := names[0]
	if ty.IsObjectType() {
		return name, node.GetAttr(name), nil
	}
	return name, node.Index(cty.StringVal(name)), nil
}

// Wraps a payload error, qualifying cty path errors with the payload's
// location.
func invalid(t Tag, base cty.Path, err error) error {
	path := base
	var pe cty.PathError
	if errors.As(err, &pe) {
		path = append(base.Copy(), pe.Path...)
	}
	return &InvalidConfigError{Tag: t, Path: path, Err: err}
}

// Computes the content digest of a concrete step value.
//
// The value is re-encoded through its schema's decoded type so that the
// digest depends only on configuration, never on how it was spelled.
func fingerprint(t Tag, s *Schema, value BuildStep) (digest.Digest, error) {
	ty := s.Decoded()

	val := cty.EmptyObjectVal
	if !s.unit {
		var err error
		if val, err = gocty.ToCtyValue(value, ty); err != nil {
			return "", err
		}
	}

	js, err := ctyjson.Marshal(val, ty)
	if err != nil {
		return "", err
	}

	d := digest.Canonical.Digester()
	h := d.Hash()
	h.Write([]byte(t.String()))
	h.Write([]byte{0})
	h.Write(js)
	return d.Digest(), nil
}

func errorAt(path cty.Path, err error) error {
	if len(path) == 0 {
		return err
	}
	return fmt.Errorf("%s: %w", FormatPath(path), err)
}
