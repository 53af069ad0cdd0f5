package manifest

import (
	"fmt"
	"math"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// Parses a YAML manifest.
//
// Build steps may be written with a local tag ("- !Install [curl]") or as a
// single-key mapping ("- Install: [curl]"). Both forms produce the same raw
// step node.
func ParseYAML(filename string, data []byte) (*Manifest, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, invalid(filename, err)
	}

	m := &Manifest{Path: filename}
	if doc.Kind == 0 {
		return m, nil
	}

	w := newWalker(len(data))
	root := &doc
	if len(root.Content) > 0 {
		root = root.Content[0]
	}
	root, release, err := w.enter(root)
	if err != nil {
		return nil, invalid(filename, err)
	}
	defer release()

	if root.Kind == yaml.DocumentNode || isNull(root) {
		return m, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, invalidf(filename, "line %d: expected a mapping at the top level", root.Line)
	}

	entries, err := w.mappingEntries(root)
	if err != nil {
		return nil, invalid(filename, err)
	}

	for _, e := range entries {
		switch e.key {
		case "containers":
			if err := w.decodeContainers(m, e.value); err != nil {
				return nil, invalid(filename, err)
			}
		case "commands", "minimum-vagga":
			// Handled by the command runner, not the builder.
		default:
			return nil, invalidf(filename, "line %d: unknown top-level key %q", e.line, e.key)
		}
	}

	return m, nil
}

// Limits the number of nodes a document may expand to through aliases.
const (
	minNodeLimit = 10000
	nodesPerByte = 64
)

// Walks a YAML node tree, following aliases.
//
// yaml.v3 only guards against alias expansion when decoding into Go values,
// so the walker keeps its own: an anchored node may not be reached again
// from inside itself, and the total number of visited nodes is bounded by
// the size of the input.
type walker struct {
	active map[*yaml.Node]bool // Anchored nodes on the current path
	nodes  int                 // Nodes visited so far
	limit  int                 // Maximum number of nodes to visit
}

func newWalker(size int) *walker {
	return &walker{
		active: make(map[*yaml.Node]bool),
		limit:  minNodeLimit + nodesPerByte*size,
	}
}

// Resolves aliases and marks an anchored node as being walked until the
// returned release function is called.
func (w *walker) enter(node *yaml.Node) (*yaml.Node, func(), error) {
	node = resolveAlias(node)

	w.nodes++
	if w.nodes > w.limit {
		return nil, nil, fmt.Errorf("line %d: aliases expand to more than %d nodes", node.Line, w.limit)
	}

	if node.Anchor == "" {
		return node, func() {}, nil
	}
	if w.active[node] {
		return nil, nil, fmt.Errorf("line %d: anchor %q contains itself", node.Line, node.Anchor)
	}
	w.active[node] = true
	return node, func() { delete(w.active, node) }, nil
}

func (w *walker) decodeContainers(m *Manifest, node *yaml.Node) error {
	node, release, err := w.enter(node)
	if err != nil {
		return err
	}
	defer release()

	if isNull(node) {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: containers must be a mapping", node.Line)
	}

	entries, err := w.mappingEntries(node)
	if err != nil {
		return err
	}

	for _, e := range entries {
		c, err := w.decodeContainer(e.key, e.value)
		if err != nil {
			return err
		}
		if err := m.add(c); err != nil {
			return fmt.Errorf("line %d: %w", e.line, err)
		}
	}
	return nil
}

func (w *walker) decodeContainer(name string, node *yaml.Node) (*Container, error) {
	c := &Container{Name: name, Setup: cty.EmptyTupleVal}
	node, release, err := w.enter(node)
	if err != nil {
		return nil, err
	}
	defer release()

	if isNull(node) {
		return c, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: container %q must be a mapping", node.Line, name)
	}

	entries, err := w.mappingEntries(node)
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		switch e.key {
		case "setup":
			v, err := w.toCty(e.value)
			if err != nil {
				return nil, err
			}
			c.Setup = v
		case "environ":
			if err := e.value.Decode(&c.Environ); err != nil {
				return nil, fmt.Errorf("line %d: container %q: environ: %w", e.line, name, err)
			}
		case "auto-clean":
			if err := e.value.Decode(&c.AutoClean); err != nil {
				return nil, fmt.Errorf("line %d: container %q: auto-clean: %w", e.line, name, err)
			}
		default:
			return nil, fmt.Errorf("line %d: container %q: unknown key %q", e.line, name, e.key)
		}
	}
	return c, nil
}

// A key-value pair of a mapping node, after merge keys are applied.
type entry struct {
	key   string
	value *yaml.Node
	line  int
}

// Returns the entries of a mapping node in document order.
//
// Keys from merged mappings ("<<") never override keys written explicitly,
// and are placed after them. Duplicate explicit keys are rejected.
func (w *walker) mappingEntries(node *yaml.Node) ([]entry, error) {
	var own, merged []entry
	seen := make(map[string]bool)

	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := resolveAlias(node.Content[i]), node.Content[i+1]
		if k.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
		}

		if k.ShortTag() == "!!merge" {
			m, err := w.mergeSources(v)
			if err != nil {
				return nil, err
			}
			merged = append(merged, m...)
			continue
		}

		if seen[k.Value] {
			return nil, fmt.Errorf("line %d: duplicate key %q", k.Line, k.Value)
		}
		seen[k.Value] = true
		own = append(own, entry{key: k.Value, value: v, line: k.Line})
	}

	for _, e := range merged {
		if !seen[e.key] {
			seen[e.key] = true
			own = append(own, e)
		}
	}
	return own, nil
}

// Returns the entries contributed by the value of a merge key: a mapping or
// a sequence of mappings, earlier ones taking precedence.
func (w *walker) mergeSources(v *yaml.Node) ([]entry, error) {
	v, release, err := w.enter(v)
	if err != nil {
		return nil, err
	}
	defer release()

	switch v.Kind {
	case yaml.MappingNode:
		return w.mappingEntries(v)
	case yaml.SequenceNode:
		var out []entry
		for _, item := range v.Content {
			entries, err := w.mergeSource(item)
			if err != nil {
				return nil, err
			}
			out = append(out, entries...)
		}
		return out, nil
	}
	return nil, fmt.Errorf("line %d: merge sources must be mappings", v.Line)
}

func (w *walker) mergeSource(item *yaml.Node) ([]entry, error) {
	item, release, err := w.enter(item)
	if err != nil {
		return nil, err
	}
	defer release()

	if item.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: merge sources must be mappings", item.Line)
	}
	return w.mappingEntries(item)
}

// Converts a YAML node to a raw cty tree.
//
// A node with a local tag ("!Name") becomes a single-attribute object whose
// attribute is the tag name. Mappings become objects, sequences become
// tuples and untagged scalars take their resolved YAML type.
func (w *walker) toCty(node *yaml.Node) (cty.Value, error) {
	node, release, err := w.enter(node)
	if err != nil {
		return cty.NilVal, err
	}
	defer release()

	if name, ok := localTag(node); ok {
		payload, err := w.taggedPayload(node)
		if err != nil {
			return cty.NilVal, err
		}
		return cty.ObjectVal(map[string]cty.Value{name: payload}), nil
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return cty.NullVal(cty.DynamicPseudoType), nil
		}
		return w.toCty(node.Content[0])
	case yaml.SequenceNode:
		return w.sequenceToCty(node)
	case yaml.MappingNode:
		return w.mappingToCty(node)
	case yaml.ScalarNode:
		return scalarToCty(node)
	}
	return cty.NilVal, fmt.Errorf("line %d: unsupported YAML node", node.Line)
}

// Scalar styles that make an empty value an explicit empty string.
const quotedStyles = yaml.DoubleQuotedStyle | yaml.SingleQuotedStyle | yaml.LiteralStyle | yaml.FoldedStyle

// Converts the content of a node carrying a local tag. An empty plain
// scalar ("- !UbuntuUniverse") is null.
func (w *walker) taggedPayload(node *yaml.Node) (cty.Value, error) {
	switch node.Kind {
	case yaml.SequenceNode:
		return w.sequenceToCty(node)
	case yaml.MappingNode:
		return w.mappingToCty(node)
	}
	if node.Style&quotedStyles == 0 && node.Value == "" {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	return cty.StringVal(node.Value), nil
}

func (w *walker) sequenceToCty(node *yaml.Node) (cty.Value, error) {
	vals := make([]cty.Value, len(node.Content))
	for i, item := range node.Content {
		v, err := w.toCty(item)
		if err != nil {
			return cty.NilVal, err
		}
		vals[i] = v
	}
	return cty.TupleVal(vals), nil
}

func (w *walker) mappingToCty(node *yaml.Node) (cty.Value, error) {
	entries, err := w.mappingEntries(node)
	if err != nil {
		return cty.NilVal, err
	}
	attrs := make(map[string]cty.Value, len(entries))
	for _, e := range entries {
		v, err := w.toCty(e.value)
		if err != nil {
			return cty.NilVal, err
		}
		attrs[e.key] = v
	}
	return cty.ObjectVal(attrs), nil
}

func scalarToCty(node *yaml.Node) (cty.Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return cty.NullVal(cty.DynamicPseudoType), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return cty.NilVal, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return cty.BoolVal(b), nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			return cty.NilVal, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return cty.NumberIntVal(i), nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return cty.NilVal, fmt.Errorf("line %d: %w", node.Line, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return cty.NilVal, fmt.Errorf("line %d: unsupported number %s", node.Line, node.Value)
		}
		return cty.NumberFloatVal(f), nil
	}
	return cty.StringVal(node.Value), nil
}

// Returns the name of a local tag ("!Install" gives "Install").
func localTag(node *yaml.Node) (string, bool) {
	if !strings.HasPrefix(node.Tag, "!") || strings.HasPrefix(node.Tag, "!!") {
		return "", false
	}
	return node.Tag[1:], true
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null"
}
