package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	specs "github.com/opencontainers/runtime-spec/specs-go"
	"gopkg.in/yaml.v3"
)

// Mirror used for Ubuntu base systems when none is configured.
const DefaultUbuntuMirror = "http://archive.ubuntu.com/ubuntu/"

// User settings for the builder.
type Settings struct {
	VersionCheck bool   `yaml:"version-check"` // Rebuild containers whose dependencies changed.
	UbuntuMirror string `yaml:"ubuntu-mirror"` // Mirror for Ubuntu base systems and apt sources.
	UIDMap       IDMap  `yaml:"uid-map"`       // User namespace mapping. Empty means no restriction.
	GIDMap       IDMap  `yaml:"gid-map"`       // Group namespace mapping. Empty means no restriction.
}

// Returns the settings used when no settings file exists.
func Default() *Settings {
	return &Settings{
		VersionCheck: true,
		UbuntuMirror: DefaultUbuntuMirror,
	}
}

// Reads settings from a file.
//
// A missing file yields [Default]. Keys present in the file override the
// defaults; unknown keys are rejected.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("no settings file, using defaults", "path", path)
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parses settings from YAML or JSON.
func Parse(data []byte) (*Settings, error) {
	s := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Checks that the id maps are well formed.
func (s *Settings) Validate() error {
	if err := s.UIDMap.validate(); err != nil {
		return fmt.Errorf("%w: uid-map: %w", ErrInvalidSettings, err)
	}
	if err := s.GIDMap.validate(); err != nil {
		return fmt.Errorf("%w: gid-map: %w", ErrInvalidSettings, err)
	}
	return nil
}

// An id namespace mapping, written as a list of [inside, outside, count]
// triples.
type IDMap []specs.LinuxIDMapping

// Decodes a list of [inside, outside, count] triples.
func (m *IDMap) UnmarshalYAML(node *yaml.Node) error {
	var triples [][3]uint32
	if err := node.Decode(&triples); err != nil {
		return fmt.Errorf("line %d: expected a list of [inside, outside, count] triples: %w", node.Line, err)
	}

	out := make(IDMap, len(triples))
	for i, t := range triples {
		out[i] = specs.LinuxIDMapping{ContainerID: t[0], HostID: t[1], Size: t[2]}
	}
	*m = out
	return nil
}

// Encodes the map as [inside, outside, count] triples.
func (m IDMap) MarshalYAML() (any, error) {
	triples := make([][3]uint32, len(m))
	for i, e := range m {
		triples[i] = [3]uint32{e.ContainerID, e.HostID, e.Size}
	}
	return triples, nil
}

// Reports whether id falls inside the container side of the map. An empty
// map covers every id.
func (m IDMap) Covers(id uint32) bool {
	if len(m) == 0 {
		return true
	}
	for _, e := range m {
		if uint64(id) >= uint64(e.ContainerID) && uint64(id) < uint64(e.ContainerID)+uint64(e.Size) {
			return true
		}
	}
	return false
}

// Fails on empty ranges and on ranges that overlap inside the container.
func (m IDMap) validate() error {
	sorted := make(IDMap, len(m))
	copy(sorted, m)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ContainerID < sorted[j].ContainerID
	})

	for i, e := range sorted {
		if e.Size == 0 {
			return fmt.Errorf("range starting at %d is empty", e.ContainerID)
		}
		if uint64(e.ContainerID)+uint64(e.Size) > 1<<32 || uint64(e.HostID)+uint64(e.Size) > 1<<32 {
			return fmt.Errorf("range starting at %d overflows", e.ContainerID)
		}
		if i > 0 {
			prev := sorted[i-1]
			if uint64(prev.ContainerID)+uint64(prev.Size) > uint64(e.ContainerID) {
				return fmt.Errorf("ranges starting at %d and %d overlap", prev.ContainerID, e.ContainerID)
			}
		}
	}
	return nil
}
