package step

import (
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Decodes a normalised payload into a concrete step value.
type decodeFunc func(payload cty.Value) (BuildStep, error)

// One catalog entry: its schema and its parser.
type kind struct {
	tag    Tag
	schema *Schema
	decode decodeFunc
}

// Implemented by concrete values that need semantic checks or
// normalisation beyond their schema. Runs once, before the value is sealed
// in a handle.
type checker interface {
	check() error
}

// Constrains P to be a pointer to T that implements [BuildStep].
type stepPtr[T any] interface {
	*T
	BuildStep
}

// Builds a parser that decodes the payload into a new T by its cty struct
// tags (or by its underlying kind for named scalar, list and map types).
func decodeInto[T any, P stepPtr[T]]() decodeFunc {
	return func(payload cty.Value) (BuildStep, error) {
		if err := wholeNumbers(payload); err != nil {
			return nil, err
		}
		p := P(new(T))
		if err := gocty.FromCtyValue(payload, p); err != nil {
			return nil, err
		}
		if c, ok := any(p).(checker); ok {
			if err := c.check(); err != nil {
				return nil, err
			}
		}
		return p, nil
	}
}

// Fails on fractional numbers. Every numeric field is an integer, and gocty
// truncates fractions when decoding into one.
func wholeNumbers(payload cty.Value) error {
	return cty.Walk(payload, func(path cty.Path, v cty.Value) (bool, error) {
		if v.Type() != cty.Number || v.IsNull() || !v.IsKnown() {
			return true, nil
		}
		if !v.AsBigFloat().IsInt() {
			return false, path.Copy().NewErrorf("must be a whole number")
		}
		return true, nil
	})
}

// Declares a step kind whose payload is a single string.
func scalar[T ~string, P stepPtr[T]](tag Tag) kind {
	return kind{tag: tag, schema: Primitive(cty.String), decode: decodeInto[T, P]()}
}

// Declares a step kind whose payload is a list of strings.
func list[T ~[]string, P stepPtr[T]](tag Tag) kind {
	return kind{tag: tag, schema: Primitive(cty.List(cty.String)), decode: decodeInto[T, P]()}
}

// Declares a step kind whose payload is a map of strings.
func dict[T ~map[string]string, P stepPtr[T]](tag Tag) kind {
	return kind{tag: tag, schema: Primitive(cty.Map(cty.String)), decode: decodeInto[T, P]()}
}

// Declares a step kind whose payload carries no data.
func unit[T any, P stepPtr[T]](tag Tag) kind {
	return kind{tag: tag, schema: Unit(), decode: func(cty.Value) (BuildStep, error) {
		return P(new(T)), nil
	}}
}

// Declares a step kind whose payload is an object decoded into struct T.
func object[T any, P stepPtr[T]](tag Tag, attrs ...Attr) kind {
	return kind{tag: tag, schema: Object(attrs...), decode: decodeInto[T, P]()}
}

// The built-in step kinds, one per tag, in catalog order.
var kinds = [...]kind{
	scalar[Alpine](TagAlpine),
	alpineRepoKind,
	scalar[Ubuntu](TagUbuntu),
	ubuntuRepoKind,
	ubuntuReleaseKind,
	scalar[UbuntuPPA](TagUbuntuPPA),
	unit[UbuntuUniverse](TagUbuntuUniverse),
	aptTrustKind,
	scalar[Repo](TagRepo),
	list[Install](TagInstall),
	list[BuildDeps](TagBuildDeps),
	gitKind,
	gitInstallKind,
	gitDescribeKind,
	pipConfigKind,
	list[Py2Install](TagPy2Install),
	scalar[Py2Requirements](TagPy2Requirements),
	list[Py3Install](TagPy3Install),
	scalar[Py3Requirements](TagPy3Requirements),
	tarKind,
	tarInstallKind,
	unzipKind,
	scalar[Sh](TagSh),
	list[Cmd](TagCmd),
	runAsKind,
	dict[Env](TagEnv),
	dict[Text](TagText),
	copyKind,
	downloadKind,
	scalar[EnsureDir](TagEnsureDir),
	dict[CacheDirs](TagCacheDirs),
	scalar[EmptyDir](TagEmptyDir),
	scalar[Remove](TagRemove),
	dependsKind,
	scalar[Container](TagContainer),
	buildKind,
	subConfigKind,
	npmConfigKind,
	npmDependenciesKind,
	yarnDependenciesKind,
	list[NpmInstall](TagNpmInstall),
	list[GemInstall](TagGemInstall),
	gemBundleKind,
	gemConfigKind,
	list[ComposerInstall](TagComposerInstall),
	composerDependenciesKind,
	composerConfigKind,
}

// Fails to compile unless the table has exactly one entry per tag.
var _ = [1]struct{}{}[len(kinds)-tagCount]
