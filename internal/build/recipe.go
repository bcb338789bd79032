package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spkenv/spkenvd/internal/manifest"
	"github.com/spkenv/spkenvd/internal/paths"
	"github.com/spkenv/spkenvd/internal/runtime"
)

// Holds shared state for provisioning all stages of a recipe.
type recipe struct {
	rt         *runtime.Runtime     // Container runtime for image and container operations.
	resource   string               // Resource name, used as a prefix for container IDs.
	output     string               // Output directory for the final build artifact.
	context    string               // Directory containing the manifest, root for resolving copy sources.
	export     manifest.Export      // Image config stamped on the exported artifact.
	platforms  []string             // Target platforms to build for.
	containers []*runtime.Container // All stage containers across all platforms, destroyed after the build completes.
}

// Creates a new [recipe] from the given options.
func newRecipe(rt *runtime.Runtime, opts Options) *recipe {
	return &recipe{
		rt:        rt,
		resource:  opts.Resource,
		output:    opts.Output,
		context:   opts.Root,
		export:    opts.Recipe.Export,
		platforms: opts.Platforms,
	}
}

// Provisions the recipe end-to-end against the container runtime.
//
// Each target platform is built independently. Stages are built in
// declaration order for each platform. The non-transient stage is exported
// as the final image to the platform's output directory. All stage
// containers are destroyed when the build completes.
func (r *recipe) build(ctx context.Context, recipeStages []manifest.Stage) (*Result, error) {
	defer r.destroyContainers(ctx)

	for _, platform := range r.platforms {
		if err := r.buildPlatform(ctx, recipeStages, platform); err != nil {
			return nil, err
		}
	}

	return &Result{Output: r.output}, nil
}

// Provisions all stages of the recipe for a single platform.
//
// Each platform maintains its own set of named stage containers for
// cross-stage copy lookups. The output is written to a platform-specific
// subdirectory when building for multiple platforms.
func (r *recipe) buildPlatform(ctx context.Context, recipeStages []manifest.Stage, platform string) error {
	slog.Info("provisioning platform", "platform", platform)

	output := r.platformOutput(platform)
	if err := os.MkdirAll(output, paths.DefaultDirMode); err != nil {
		return fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	stages := make(map[string]*runtime.Container)

	for i, stage := range recipeStages {
		if err := r.buildStage(ctx, stage, i, platform, output, stages); err != nil {
			var stepErr *StepError
			if errors.As(err, &stepErr) {
				return err
			}
			return fmt.Errorf("%w: platform %s, stage %s: %w", ErrBuild, platform, stageLabel(stage.Name, i), err)
		}
	}

	return nil
}

// Provisions a single stage for a specific platform.
//
// Pulls the stage's base image, starts a provisioning container, executes
// the stage's steps in order, then commits the result. Non-transient stages
// are exported to the output directory with the recipe's export config
// applied.
func (r *recipe) buildStage(ctx context.Context, stage manifest.Stage, index int, platform, output string, stages map[string]*runtime.Container) error {
	label := stageLabel(stage.Name, index)
	slog.Info(fmt.Sprintf("provisioning stage %s", label), "platform", platform, "from", stage.From)

	id := r.containerID(stage.Name, index, platform)
	ctr, err := r.rt.StartContainer(ctx, stage.From, id, platform)
	if err != nil {
		return err
	}

	r.containers = append(r.containers, ctr)
	if stage.Name != "" {
		stages[stage.Name] = ctr
	}

	if err := executeSteps(ctx, ctr, stage.Steps, newStepState(), r.context, stages); err != nil {
		var stepErr *StepError
		if errors.As(err, &stepErr) && stepErr.Stage == "" {
			stepErr.Stage = label
		}
		return err
	}

	if !stage.Transient {
		if err := ctr.Stop(ctx); err != nil {
			return err
		}

		if err := ctr.Export(ctx, output, exportConfig(r.export)); err != nil {
			return err
		}
	}

	return nil
}

// Destroys all stage containers.
func (r *recipe) destroyContainers(ctx context.Context) {
	for _, ctr := range r.containers {
		ctr.Destroy(ctx)
	}
}

// Converts the recipe's export section into the runtime's image config.
//
// Env entries are emitted in sorted key order so the exported config is
// deterministic across builds.
func exportConfig(e manifest.Export) runtime.ImageConfig {
	env := make([]string, 0, len(e.Env))
	for _, k := range slices.Sorted(maps.Keys(e.Env)) {
		env = append(env, k+"="+e.Env[k])
	}

	return runtime.ImageConfig{
		Entrypoint: e.Entrypoint,
		Cmd:        e.Cmd,
		Env:        env,
		User:       e.User,
		Workdir:    e.Workdir,
	}
}

// Returns a unique container ID for a stage, scoped to this resource and platform.
func (r *recipe) containerID(name string, index int, platform string) string {
	slug := platformSlug(platform)
	if name != "" {
		return fmt.Sprintf("%s-%s-stage-%s", r.resource, slug, name)
	}
	return fmt.Sprintf("%s-%s-stage-%d", r.resource, slug, index+1)
}

// Returns the output directory for a specific platform.
//
// When building for a single platform, the output directory is left as-is
// to preserve the {output}/image.tar convention. For multi-platform builds,
// each platform gets a subdirectory (e.g., {output}/linux-amd64).
func (r *recipe) platformOutput(platform string) string {
	if len(r.platforms) == 1 {
		return r.output
	}
	return filepath.Join(r.output, platformSlug(platform))
}

// Converts a platform string to a filesystem-safe slug.
//
// Replaces slashes with dashes (e.g., "linux/amd64" becomes "linux-amd64").
func platformSlug(platform string) string {
	return strings.ReplaceAll(platform, "/", "-")
}

// Returns a label for a stage, preferring the name when available and falling
// back to the 1-based index.
func stageLabel(name string, index int) string {
	if name != "" {
		return fmt.Sprintf("%q", name)
	}
	return fmt.Sprintf("%d", index+1)
}
