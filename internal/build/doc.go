// Package build orchestrates provisioning recipes against container runtimes.
//
// A recipe is an ordered sequence of stages, each backed by a container
// created from a base image pulled from its registry. The build pipeline
// starts a container for each stage, dispatches its steps, and exports the
// final non-transient stage as an OCI image with the recipe's export config
// (entrypoint, environment, user, workdir) applied. Multi-platform builds
// repeat the pipeline per platform, writing each result to a
// platform-specific output directory.
//
// Steps execute strictly sequentially; the first failing step aborts the
// whole build with a [StepError] identifying the stage, the step's position,
// the command, its exit code, and the captured output. There is no retry,
// no rollback, and no partial artifact.
//
// Generic steps run shell commands and copy files (from the host or from
// named stages). Typed provisioning steps (system packages, timezone,
// account creation, pip and conda installs, clone-and-build, cache cleanup)
// are compiled to deterministic shell command sequences before execution.
// Package-manager commands run with a non-interactive frontend for the
// duration of the command only. Step state (environment variables, working
// directory, shell) is accumulated across steps within a stage and reset
// between stages.
//
// Example usage:
//
//	result, err := build.Run(ctx, rt, build.Options{
//	    Recipe:    recipe,
//	    Resource:  "speaker-env",
//	    Output:    "dist",
//	    Root:      ".",
//	    Platforms: []string{"linux/amd64"},
//	})
//	if err != nil {
//	    return err
//	}
package build
