package build

import (
	"testing"

	"github.com/containerd/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrder(t *testing.T) {
	names := []string{"app", "base", "tools", "docs"}
	deps := map[string][]string{
		"app":   {"tools", "base"},
		"tools": {"base"},
	}

	tests := []struct {
		name    string
		targets []string
		want    []string
	}{
		{"all", nil, []string{"base", "tools", "app", "docs"}},
		{"one target", []string{"app"}, []string{"base", "tools", "app"}},
		{"leaf", []string{"docs"}, []string{"docs"}},
		{"repeated", []string{"tools", "app", "tools"}, []string{"base", "tools", "app"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Order(names, deps, tt.targets)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOrderCycle(t *testing.T) {
	names := []string{"a", "b", "c"}
	deps := map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"c": {"b"},
	}

	_, err := Order(names, deps, nil)
	require.ErrorIs(t, err, ErrDependencyCycle)
	assert.True(t, errdefs.IsFailedPrecondition(err))
	assert.Contains(t, err.Error(), "b -> c -> b")
}

func TestOrderSelfCycle(t *testing.T) {
	_, err := Order([]string{"a"}, map[string][]string{"a": {"a"}}, nil)
	require.ErrorIs(t, err, ErrDependencyCycle)
	assert.Contains(t, err.Error(), "a -> a")
}

func TestOrderUnknown(t *testing.T) {
	names := []string{"app"}

	_, err := Order(names, map[string][]string{"app": {"base"}}, nil)
	require.ErrorIs(t, err, ErrUnknownDependency)
	assert.True(t, errdefs.IsNotFound(err))
	assert.Contains(t, err.Error(), "app requires base")

	_, err = Order(names, nil, []string{"missing"})
	require.ErrorIs(t, err, ErrUnknownContainer)
	assert.True(t, errdefs.IsNotFound(err))
}
