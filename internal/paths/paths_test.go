package paths

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFindManifest(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, DefaultDirMode); err != nil {
		t.Fatal(err)
	}

	want := filepath.Join(root, "cruxbuild.hcl")
	if err := os.WriteFile(want, nil, DefaultFileMode); err != nil {
		t.Fatal(err)
	}

	got, dir, err := FindManifest(nested)
	if err != nil {
		t.Fatalf("FindManifest: %v", err)
	}
	if got != want {
		t.Fatalf("manifest = %q, want %q", got, want)
	}
	if dir != root {
		t.Fatalf("root = %q, want %q", dir, root)
	}
}

func TestFindManifestPrefersYAML(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"cruxbuild.hcl", "cruxbuild.yaml"} {
		if err := os.WriteFile(filepath.Join(root, name), nil, DefaultFileMode); err != nil {
			t.Fatal(err)
		}
	}

	got, _, err := FindManifest(root)
	if err != nil {
		t.Fatalf("FindManifest: %v", err)
	}
	if filepath.Base(got) != "cruxbuild.yaml" {
		t.Fatalf("manifest = %q, want cruxbuild.yaml", got)
	}
}

func TestFindManifestClosestWins(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	if err := os.MkdirAll(sub, DefaultDirMode); err != nil {
		t.Fatal(err)
	}
	for _, dir := range []string{root, sub} {
		if err := os.WriteFile(filepath.Join(dir, "cruxbuild.yml"), nil, DefaultFileMode); err != nil {
			t.Fatal(err)
		}
	}

	_, dir, err := FindManifest(sub)
	if err != nil {
		t.Fatalf("FindManifest: %v", err)
	}
	if dir != sub {
		t.Fatalf("root = %q, want %q", dir, sub)
	}
}

func TestFindManifestIgnoresDirectories(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "cruxbuild.yaml"), DefaultDirMode); err != nil {
		t.Fatal(err)
	}

	_, _, err := FindManifest(root)
	if !errors.Is(err, ErrManifestNotFound) {
		t.Fatalf("err = %v, want ErrManifestNotFound", err)
	}
}

func TestSettingsPath(t *testing.T) {
	if !strings.HasSuffix(Settings(), filepath.Join(appName, "settings.yaml")) {
		t.Fatalf("Settings() = %q", Settings())
	}
}
