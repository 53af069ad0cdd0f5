package manifest

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// Top-level structure of an HCL manifest.
type hclFile struct {
	Containers []*hclContainer `hcl:"container,block"`
}

// A container block. Steps are a list of single-attribute objects, e.g.
// setup = [{ Ubuntu = "jammy" }, { Install = ["curl"] }].
type hclContainer struct {
	Name      string            `hcl:"name,label"`
	Setup     hcl.Expression    `hcl:"setup,optional"`
	Environ   map[string]string `hcl:"environ,optional"`
	AutoClean bool              `hcl:"auto_clean,optional"`
}

// Parses an HCL manifest.
func ParseHCL(filename string, data []byte) (*Manifest, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, invalid(filename, diags)
	}

	var parsed hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, invalid(filename, diags)
	}

	m := &Manifest{Path: filename}
	for _, block := range parsed.Containers {
		setup := cty.EmptyTupleVal
		if block.Setup != nil {
			v, diags := block.Setup.Value(nil)
			if diags.HasErrors() {
				return nil, invalid(filename, diags)
			}
			if !v.IsNull() {
				setup = v
			}
		}

		c := &Container{
			Name:      block.Name,
			Setup:     setup,
			Environ:   block.Environ,
			AutoClean: block.AutoClean,
		}
		if err := m.add(c); err != nil {
			return nil, invalid(filename, err)
		}
	}

	return m, nil
}
