// Package build turns parsed step sequences into build plans and drives
// their execution.
//
// A plan covers one container. Containers that use another container
// (through Container, Build or SubConfig steps) are planned after it, and
// dependency cycles are rejected. Every planned step carries a cache key
// chained from the previous key and the step's fingerprint, so an engine
// can reuse the longest unchanged prefix of a previous build. A plan also
// carries the OCI image configuration of the finished container: its
// platform, environment and one history entry per step.
//
// Execution is delegated to an [Executor]. Step state (environment
// variables, cache directories and package manager configuration) is
// accumulated across a container's steps; RunAs steps override the user and
// working directory for themselves only.
//
// Example usage:
//
//	plans, err := build.NewPlans(inputs, build.PlanOptions{
//	    Targets:      []string{"app"},
//	    VersionCheck: s.VersionCheck,
//	})
//	if err != nil {
//	    return err
//	}
//	result, err := build.Run(ctx, &build.DryRun{Out: os.Stdout}, plans, build.Options{
//	    Settings: s,
//	})
//	if err != nil {
//	    return err
//	}
package build
