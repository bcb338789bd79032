package cli

import (
	"context"
	"log/slog"

	"github.com/spkenv/spkenvd/internal/server"
)

// Represents the 'spkenvd start' command.
type StartCmd struct {
	Containerd string `help:"Override the containerd socket address." placeholder:"PATH"`
	Namespace  string `help:"Override the containerd namespace." placeholder:"NAME"`
}

// Executes the start command.
//
// Starts the daemon on a Unix domain socket and blocks until the context
// is cancelled (e.g. via SIGINT or SIGTERM).
func (c *StartCmd) Run(ctx context.Context) error {
	srv, err := server.New(server.Config{
		SocketPath:          RootCmd.Socket,
		ContainerdAddress:   c.Containerd,
		ContainerdNamespace: c.Namespace,
	})
	if err != nil {
		return err
	}

	if err := srv.Start(); err != nil {
		return err
	}

	slog.Info("spkenvd is running")

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
		return srv.Stop()
	case <-srv.Done():
		// Stopped via a shutdown command.
		return nil
	}
}
