package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	appName = "cruxbuild"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Manifest file names, in lookup order.
var ManifestNames = []string{"cruxbuild.yaml", "cruxbuild.yml", "cruxbuild.hcl"}

// Returned when no manifest is found between a directory and the root.
var ErrManifestNotFound = errors.New("manifest not found")

// Path to the user settings file.
//
//	Linux:   $XDG_CONFIG_HOME/cruxbuild/settings.yaml or ~/.config/cruxbuild/settings.yaml
//	macOS:   ~/Library/Application Support/cruxbuild/settings.yaml
func Settings() string {
	return filepath.Join(xdg.ConfigHome, appName, "settings.yaml")
}

// Finds the manifest that applies to dir.
//
// Looks for each of [ManifestNames] in dir, then in each parent directory up
// to the filesystem root. Returns the manifest path and the directory
// containing it (the project root).
func FindManifest(dir string) (manifest, root string, err error) {
	dir, err = filepath.Abs(dir)
	if err != nil {
		return "", "", err
	}

	for {
		for _, name := range ManifestNames {
			candidate := filepath.Join(dir, name)
			info, err := os.Stat(candidate)
			if err == nil && info.Mode().IsRegular() {
				return candidate, dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", fmt.Errorf("%w: looked for %v", ErrManifestNotFound, ManifestNames)
		}
		dir = parent
	}
}
