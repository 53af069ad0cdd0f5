package step

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Downloads a tarball and unpacks it into the container.
type Tar struct {
	URL    string  `cty:"url"`    // Archive URL, or a path relative to the project root.
	SHA256 *string `cty:"sha256"` // Expected checksum of the archive.
	Path   string  `cty:"path"`   // Destination inside the container.
	Subdir string  `cty:"subdir"` // Directory within the archive to unpack.
}

var tarKind = object[Tar](TagTar,
	Required("url", cty.String),
	Optional("sha256", cty.String),
	Defaulted("path", cty.StringVal("/")),
	Defaulted("subdir", cty.StringVal(".")),
)

func (t *Tar) Tag() Tag                   { return TagTar }
func (t *Tar) Privileged() bool           { return false }
func (t *Tar) Dependency() (string, bool) { return "", false }

func (t *Tar) Describe() string {
	return fmt.Sprintf("Tar %s -> %s", t.URL, t.Path)
}

func (t *Tar) check() error {
	if err := attrNotBlank(t.URL, "url"); err != nil {
		return err
	}
	if err := sha256Hex(t.SHA256, "sha256"); err != nil {
		return err
	}
	return absPath(t.Path, "path")
}

// Downloads a tarball, unpacks it and runs a build script in it.
type TarInstall struct {
	URL    string  `cty:"url"`    // Archive URL, or a path relative to the project root.
	SHA256 *string `cty:"sha256"` // Expected checksum of the archive.
	Subdir *string `cty:"subdir"` // Directory to run the script in. Defaults to the single top-level directory.
	Script string  `cty:"script"` // Shell script to run.
}

var tarInstallKind = object[TarInstall](TagTarInstall,
	Required("url", cty.String),
	Optional("sha256", cty.String),
	Optional("subdir", cty.String),
	Defaulted("script", cty.StringVal(defaultBuildScript)),
)

func (t *TarInstall) Tag() Tag                   { return TagTarInstall }
func (t *TarInstall) Privileged() bool           { return true }
func (t *TarInstall) Dependency() (string, bool) { return "", false }

func (t *TarInstall) Describe() string {
	return fmt.Sprintf("TarInstall %s", t.URL)
}

func (t *TarInstall) check() error {
	if err := attrNotBlank(t.URL, "url"); err != nil {
		return err
	}
	return sha256Hex(t.SHA256, "sha256")
}

// Downloads a zip archive and unpacks it into the container.
type Unzip struct {
	URL    string  `cty:"url"`    // Archive URL, or a path relative to the project root.
	SHA256 *string `cty:"sha256"` // Expected checksum of the archive.
	Path   string  `cty:"path"`   // Destination inside the container.
	Subdir string  `cty:"subdir"` // Directory within the archive to unpack.
}

var unzipKind = object[Unzip](TagUnzip,
	Required("url", cty.String),
	Optional("sha256", cty.String),
	Defaulted("path", cty.StringVal("/")),
	Defaulted("subdir", cty.StringVal(".")),
)

func (u *Unzip) Tag() Tag                   { return TagUnzip }
func (u *Unzip) Privileged() bool           { return false }
func (u *Unzip) Dependency() (string, bool) { return "", false }

func (u *Unzip) Describe() string {
	return fmt.Sprintf("Unzip %s -> %s", u.URL, u.Path)
}

func (u *Unzip) check() error {
	if err := attrNotBlank(u.URL, "url"); err != nil {
		return err
	}
	if err := sha256Hex(u.SHA256, "sha256"); err != nil {
		return err
	}
	return absPath(u.Path, "path")
}

// Downloads a single file into the container.
type Download struct {
	URL    string  `cty:"url"`    // File URL.
	Path   string  `cty:"path"`   // Destination file inside the container.
	Mode   uint32  `cty:"mode"`   // Permission bits of the downloaded file.
	SHA256 *string `cty:"sha256"` // Expected checksum of the file.
}

var downloadKind = object[Download](TagDownload,
	Required("url", cty.String),
	Required("path", cty.String),
	Defaulted("mode", cty.NumberIntVal(0o644)),
	Optional("sha256", cty.String),
)

func (d *Download) Tag() Tag                   { return TagDownload }
func (d *Download) Privileged() bool           { return false }
func (d *Download) Dependency() (string, bool) { return "", false }

func (d *Download) Describe() string {
	return fmt.Sprintf("Download %s -> %s (%04o)", d.URL, d.Path, d.Mode)
}

func (d *Download) check() error {
	if err := attrNotBlank(d.URL, "url"); err != nil {
		return err
	}
	if err := absPath(d.Path, "path"); err != nil {
		return err
	}
	if d.Mode > 0o7777 {
		return cty.GetAttrPath("mode").NewErrorf("mode %o out of range", d.Mode)
	}
	return sha256Hex(d.SHA256, "sha256")
}
