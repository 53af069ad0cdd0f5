// Package step defines the closed catalog of container build steps and the
// registry that validates and parses them.
//
// A build step is written in a manifest as a single-key mapping whose key is
// the step's tag (for example "Install") and whose value is the step's
// payload. Every tag has exactly one payload schema and one parser. The
// [Registry] resolves the tag, checks the payload against its schema, fills
// in defaults, runs the kind's semantic checks and seals the resulting
// concrete value in an immutable [Step] handle.
//
// Handles expose the shared capability surface of all kinds ([BuildStep]):
// a description, the privilege requirement, an optional dependency on
// another container and a content fingerprint. The fingerprint depends only
// on the normalised configuration, so equivalent steps written differently
// fingerprint the same.
//
// Input errors ([MalformedStepError], [UnknownTagError], [InvalidConfigError])
// carry the location of the offending node. A [RegistryFault] reports a
// catalog entry with no schema or parser; it is a program defect, classed as
// an internal error, and is never mixed with input errors.
//
// Example usage:
//
//	node := cty.ObjectVal(map[string]cty.Value{
//	    "Install": cty.TupleVal([]cty.Value{cty.StringVal("curl")}),
//	})
//	s, err := step.Default().Parse(node)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(s.Describe(), s.Fingerprint())
package step
