package cli

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spkenv/spkenvd/internal/build"
	"github.com/spkenv/spkenvd/internal/manifest"
	"github.com/spkenv/spkenvd/internal/runtime"
	"github.com/spkenv/spkenvd/internal/server"
)

// Represents the 'spkenvd build' command.
type BuildCmd struct {
	Manifest   string   `short:"f" default:"spkenv.yaml" help:"Path to the provisioning manifest."`
	Output     string   `short:"o" default:"dist" help:"Directory for the exported image."`
	Resource   string   `help:"Name prefix for stage containers. Defaults to a generated ID." placeholder:"NAME"`
	Platform   []string `help:"Target platform (e.g. linux/amd64). Repeatable; defaults to the host." placeholder:"OS/ARCH"`
	Containerd string   `help:"Override the containerd socket address." placeholder:"PATH"`
	Namespace  string   `help:"Override the containerd namespace." placeholder:"NAME"`
}

// Executes the build command.
//
// Loads the manifest, connects to containerd, and runs the recipe to
// completion. The build context for copy sources is the directory containing
// the manifest.
func (c *BuildCmd) Run(ctx context.Context) error {
	recipe, err := manifest.Load(c.Manifest)
	if err != nil {
		return err
	}

	root, err := filepath.Abs(filepath.Dir(c.Manifest))
	if err != nil {
		return err
	}

	resource := c.Resource
	if resource == "" {
		// Random suffix so concurrent one-shot builds never collide on
		// container IDs.
		resource = "spkenv-" + uuid.NewString()[:8]
	}

	address := c.Containerd
	if address == "" {
		address = server.DefaultContainerdAddress
	}
	namespace := c.Namespace
	if namespace == "" {
		namespace = server.DefaultContainerdNamespace
	}

	rt, err := runtime.New(address, namespace)
	if err != nil {
		return err
	}
	defer rt.Close()

	result, err := build.Run(ctx, rt, build.Options{
		Recipe:    recipe,
		Resource:  resource,
		Output:    c.Output,
		Root:      root,
		Platforms: c.Platform,
	})
	if err != nil {
		return err
	}

	slog.Info("build complete", "output", result.Output)
	return nil
}
