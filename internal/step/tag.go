package step

import (
	"strconv"
	"strings"
)

// Identifies a build step kind.
//
// The set of tags is closed. Tags are declared in catalog order, and that
// order is observable through [Catalog] and unknown-tag error messages.
type Tag uint8

const (
	TagAlpine Tag = iota
	TagAlpineRepo
	TagUbuntu
	TagUbuntuRepo
	TagUbuntuRelease
	TagUbuntuPPA
	TagUbuntuUniverse
	TagAptTrust
	TagRepo
	TagInstall
	TagBuildDeps
	TagGit
	TagGitInstall
	TagGitDescribe
	TagPipConfig
	TagPy2Install
	TagPy2Requirements
	TagPy3Install
	TagPy3Requirements
	TagTar
	TagTarInstall
	TagUnzip
	TagSh
	TagCmd
	TagRunAs
	TagEnv
	TagText
	TagCopy
	TagDownload
	TagEnsureDir
	TagCacheDirs
	TagEmptyDir
	TagRemove
	TagDepends
	TagContainer
	TagBuild
	TagSubConfig
	TagNpmConfig
	TagNpmDependencies
	TagYarnDependencies
	TagNpmInstall
	TagGemInstall
	TagGemBundle
	TagGemConfig
	TagComposerInstall
	TagComposerDependencies
	TagComposerConfig

	tagCount int = iota
)

// Names of all tags, indexed by [Tag].
var tagNames = [tagCount]string{
	TagAlpine:               "Alpine",
	TagAlpineRepo:           "AlpineRepo",
	TagUbuntu:               "Ubuntu",
	TagUbuntuRepo:           "UbuntuRepo",
	TagUbuntuRelease:        "UbuntuRelease",
	TagUbuntuPPA:            "UbuntuPPA",
	TagUbuntuUniverse:       "UbuntuUniverse",
	TagAptTrust:             "AptTrust",
	TagRepo:                 "Repo",
	TagInstall:              "Install",
	TagBuildDeps:            "BuildDeps",
	TagGit:                  "Git",
	TagGitInstall:           "GitInstall",
	TagGitDescribe:          "GitDescribe",
	TagPipConfig:            "PipConfig",
	TagPy2Install:           "Py2Install",
	TagPy2Requirements:      "Py2Requirements",
	TagPy3Install:           "Py3Install",
	TagPy3Requirements:      "Py3Requirements",
	TagTar:                  "Tar",
	TagTarInstall:           "TarInstall",
	TagUnzip:                "Unzip",
	TagSh:                   "Sh",
	TagCmd:                  "Cmd",
	TagRunAs:                "RunAs",
	TagEnv:                  "Env",
	TagText:                 "Text",
	TagCopy:                 "Copy",
	TagDownload:             "Download",
	TagEnsureDir:            "EnsureDir",
	TagCacheDirs:            "CacheDirs",
	TagEmptyDir:             "EmptyDir",
	TagRemove:               "Remove",
	TagDepends:              "Depends",
	TagContainer:            "Container",
	TagBuild:                "Build",
	TagSubConfig:            "SubConfig",
	TagNpmConfig:            "NpmConfig",
	TagNpmDependencies:      "NpmDependencies",
	TagYarnDependencies:     "YarnDependencies",
	TagNpmInstall:           "NpmInstall",
	TagGemInstall:           "GemInstall",
	TagGemBundle:            "GemBundle",
	TagGemConfig:            "GemConfig",
	TagComposerInstall:      "ComposerInstall",
	TagComposerDependencies: "ComposerDependencies",
	TagComposerConfig:       "ComposerConfig",
}

// Reverse lookup from name to tag.
var tagsByName = func() map[string]Tag {
	m := make(map[string]Tag, tagCount)
	for i, name := range tagNames {
		m[name] = Tag(i)
	}
	return m
}()

// Returns the tag name, or "Tag(n)" for values outside the catalog.
func (t Tag) String() string {
	if !t.valid() {
		return "Tag(" + strconv.Itoa(int(t)) + ")"
	}
	return tagNames[t]
}

func (t Tag) valid() bool {
	return int(t) < tagCount
}

// Resolves a tag name to its [Tag].
//
// Matching is exact and case-sensitive. Names outside the catalog fail with
// an [UnknownTagError] that lists every catalog entry in order.
func Resolve(name string) (Tag, error) {
	if t, ok := tagsByName[name]; ok {
		return t, nil
	}
	return 0, &UnknownTagError{Name: name}
}

// Returns every tag in catalog order.
func Tags() []Tag {
	tags := make([]Tag, tagCount)
	for i := range tags {
		tags[i] = Tag(i)
	}
	return tags
}

// Returns every tag name in catalog order.
func Catalog() []string {
	names := make([]string, tagCount)
	copy(names, tagNames[:])
	return names
}

func catalogList() string {
	return strings.Join(tagNames[:], ", ")
}
