package step

import (
	"errors"
	"sort"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Describes the accepted shape of one step kind's payload.
//
// A schema is a cty type, possibly an object with optional attributes, plus
// default values for some of those optional attributes. Schemas are built
// once and never mutated.
type Schema struct {
	Type     cty.Type             // Accepted payload type.
	unit     bool                 // Payload carries no data; null and empty values are accepted.
	defaults map[string]cty.Value // Replacements for absent optional attributes.
}

// A single attribute of an object schema.
type Attr struct {
	name     string
	ty       cty.Type
	optional bool
	hasDef   bool
	def      cty.Value
}

// Declares an attribute that must be present.
func Required(name string, ty cty.Type) Attr {
	return Attr{name: name, ty: ty}
}

// Declares an attribute that may be absent, in which case it decodes as null.
func Optional(name string, ty cty.Type) Attr {
	return Attr{name: name, ty: ty, optional: true}
}

// Declares an attribute that takes def when absent. The attribute type is
// the type of def.
func Defaulted(name string, def cty.Value) Attr {
	return Attr{name: name, ty: def.Type(), optional: true, hasDef: true, def: def}
}

// Creates a schema for a payload with a single primitive or collection type.
func Primitive(ty cty.Type) *Schema {
	return &Schema{Type: ty}
}

// Creates a schema for a payload that carries no data.
func Unit() *Schema {
	return &Schema{Type: cty.DynamicPseudoType, unit: true}
}

// Creates a schema for an object payload.
func Object(attrs ...Attr) *Schema {
	types := make(map[string]cty.Type, len(attrs))
	var optional []string
	defaults := make(map[string]cty.Value)

	for _, a := range attrs {
		types[a.name] = a.ty
		if a.optional {
			optional = append(optional, a.name)
		}
		if a.hasDef {
			defaults[a.name] = a.def
		}
	}

	return &Schema{
		Type:     cty.ObjectWithOptionalAttrs(types, optional),
		defaults: defaults,
	}
}

// Returns the type of a payload after [Schema.Normalize], with optional
// attribute markers removed.
func (s *Schema) Decoded() cty.Type {
	if s.unit {
		return cty.EmptyObject
	}
	return s.Type.WithoutOptionalAttributesDeep()
}

// Returns the names of the attributes of an object schema, sorted, or nil
// for other schemas.
func (s *Schema) Attributes() []string {
	if !s.Type.IsObjectType() {
		return nil
	}
	names := make([]string, 0, len(s.Type.AttributeTypes()))
	for name := range s.Type.AttributeTypes() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Returns the default value of an object attribute, if it has one.
func (s *Schema) DefaultFor(name string) (cty.Value, bool) {
	v, ok := s.defaults[name]
	return v, ok
}

// Returns a short human-readable rendering of the schema.
func (s *Schema) String() string {
	if s.unit {
		return "nothing"
	}
	return s.Type.FriendlyNameForConstraint()
}

// Converts a payload to the schema type and fills in defaults.
//
// Errors carry a [cty.Path] relative to the payload when the failing field
// can be located.
func (s *Schema) Normalize(payload cty.Value) (cty.Value, error) {
	if s.unit {
		if !isEmpty(payload) {
			return cty.NilVal, errors.New("no value expected")
		}
		return cty.EmptyObjectVal, nil
	}

	if payload.IsNull() {
		return cty.NilVal, errors.New("a value is required")
	}

	if err := s.unsupported(payload); err != nil {
		return cty.NilVal, err
	}

	val, err := convert.Convert(payload, s.Type)
	if err != nil {
		return cty.NilVal, err
	}

	if len(s.defaults) == 0 || !val.Type().IsObjectType() {
		return val, nil
	}

	attrs := val.AsValueMap()
	for name, def := range s.defaults {
		if v, ok := attrs[name]; !ok || v.IsNull() {
			attrs[name] = def
		}
	}
	return cty.ObjectVal(attrs), nil
}

// Fails on object attributes or map keys an object schema does not declare.
// Conversion alone would drop them silently.
func (s *Schema) unsupported(payload cty.Value) error {
	if !s.Type.IsObjectType() {
		return nil
	}
	var names []string
	switch ty := payload.Type(); {
	case ty.IsObjectType():
		for name := range ty.AttributeTypes() {
			names = append(names, name)
		}
	case ty.IsMapType() && payload.IsKnown():
		for it := payload.ElementIterator(); it.Next(); {
			k, _ := it.Element()
			names = append(names, k.AsString())
		}
	}
	var extra []string
	for _, name := range names {
		if !s.Type.HasAttribute(name) {
			extra = append(extra, name)
		}
	}
	if len(extra) == 0 {
		return nil
	}
	sort.Strings(extra)
	return cty.GetAttrPath(extra[0]).NewErrorf("unsupported attribute %q", extra[0])
}

// Reports whether a payload counts as "no data" for a unit schema.
func isEmpty(v cty.Value) bool {
	if v.IsNull() {
		return true
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString() == ""
	case ty.IsObjectType(), ty.IsTupleType(), ty.IsMapType(), ty.IsListType():
		return v.LengthInt() == 0
	}
	return false
}
