// Package manifest loads container build manifests.
//
// A manifest defines named containers, each with an ordered list of build
// steps. Manifests are written in YAML or HCL. Either way, the loader turns
// every step list into a raw cty tree without interpreting it. Step
// validation and parsing belong to the step package and run through
// [Manifest.Parse].
//
// In YAML, a step is either a value with a local tag or a single-key
// mapping:
//
//	containers:
//	  app:
//	    environ: {LANG: C.UTF-8}
//	    setup:
//	    - !Ubuntu jammy
//	    - !Install [curl, git]
//	    - Sh: make install
//
// In HCL, each container is a block and its steps are single-attribute
// objects:
//
//	container "app" {
//	  environ = { LANG = "C.UTF-8" }
//	  setup = [
//	    { Ubuntu = "jammy" },
//	    { Install = ["curl", "git"] },
//	    { Sh = "make install" },
//	  ]
//	}
//
// Example usage:
//
//	m, err := manifest.Load("cruxbuild.yaml")
//	if err != nil {
//	    return err
//	}
//	parsed, err := m.Parse(ctx, step.Default())
//	if err != nil {
//	    return err // Registry fault.
//	}
//	for _, p := range parsed {
//	    if p.Err != nil {
//	        fmt.Println(p.Container.Name, p.Err)
//	    }
//	}
package manifest
