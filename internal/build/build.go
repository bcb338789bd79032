package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spkenv/spkenvd/internal/manifest"
	"github.com/spkenv/spkenvd/internal/paths"
	"github.com/spkenv/spkenvd/internal/runtime"
)

// Controls recipe execution.
type Options struct {
	Recipe    *manifest.Recipe // Recipe to execute.
	Resource  string           // Resource name, used as a prefix for container IDs.
	Output    string           // Directory for the exported image.
	Root      string           // Build context root, for resolving copy sources.
	Platforms []string         // Target platforms (e.g., ["linux/amd64"]). Defaults to host.
}

// Returned after successful recipe execution.
type Result struct {
	Output string // Directory containing the exported image.
}

// Executes a provisioning recipe against the container runtime.
//
// Stages are built in declaration order. Each stage starts a container from
// its base image and executes the stage's steps strictly sequentially; the
// first failing step aborts the whole build with no retry and no partial
// artifact. The non-transient stage is exported as the final image to the
// output directory with the recipe's export config applied.
func Run(ctx context.Context, rt *runtime.Runtime, opts Options) (*Result, error) {
	if len(opts.Platforms) == 0 {
		opts.Platforms = []string{runtime.DefaultPlatform()}
	}

	slog.Info("executing recipe",
		"resource", opts.Resource,
		"output", opts.Output,
		"stages", len(opts.Recipe.Stages),
		"platforms", opts.Platforms,
	)

	if err := os.MkdirAll(opts.Output, paths.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	return newRecipe(rt, opts).build(ctx, opts.Recipe.Stages)
}
