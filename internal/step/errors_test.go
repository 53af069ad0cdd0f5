package step

import (
	"testing"

	"github.com/zclconf/go-cty/cty"
)

func TestFormatPath(t *testing.T) {
	tests := []struct {
		path cty.Path
		want string
	}{
		{nil, ""},
		{cty.GetAttrPath("containers"), "containers"},
		{cty.GetAttrPath("setup").IndexInt(2).GetAttr("Git").GetAttr("url"), "setup[2].Git.url"},
		{cty.IndexPath(cty.NumberIntVal(0)).GetAttr("Sh"), "[0].Sh"},
		{cty.GetAttrPath("Text").Index(cty.StringVal("/etc/motd")), `Text["/etc/motd"]`},
		{cty.GetAttrPath("x").Index(cty.UnknownVal(cty.Number)), "x[?]"},
	}

	for _, tt := range tests {
		if got := FormatPath(tt.path); got != tt.want {
			t.Fatalf("FormatPath(%#v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestMalformedStepIndex(t *testing.T) {
	tests := []struct {
		path cty.Path
		want int
	}{
		{nil, -1},
		{cty.GetAttrPath("setup").IndexInt(7), 7},
		{cty.GetAttrPath("setup"), -1},
		{cty.GetAttrPath("setup").Index(cty.StringVal("a")), -1},
	}

	for _, tt := range tests {
		e := &MalformedStepError{Path: tt.path}
		if got := e.Index(); got != tt.want {
			t.Fatalf("Index() = %d, want %d for %s", got, tt.want, FormatPath(tt.path))
		}
	}
}
