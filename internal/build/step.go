package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spkenv/spkenvd/internal/manifest"
	"github.com/spkenv/spkenvd/internal/runtime"
)

// Executes a list of steps in order against the provisioning container.
//
// The first failing step aborts the list. Step failures carry their 1-based
// position; other errors are annotated with it.
func executeSteps(ctx context.Context, ctr *runtime.Container, steps []manifest.Step, state *stepState, buildCtx string, stages map[string]*runtime.Container) error {
	for i, step := range steps {
		if err := executeStep(ctx, ctr, step, state, buildCtx, stages); err != nil {
			var stepErr *StepError
			if errors.As(err, &stepErr) {
				if stepErr.Index == 0 {
					stepErr.Index = i + 1
				}
				return err
			}
			return fmt.Errorf("%w: step %d: %w", ErrBuild, i+1, err)
		}
	}
	return nil
}

// Executes a single step, dispatching to operation execution, group
// recursion, or state mutation depending on the step's fields.
func executeStep(ctx context.Context, ctr *runtime.Container, step manifest.Step, state *stepState, buildCtx string, stages map[string]*runtime.Container) error {

	// Group: apply group-level modifiers and recurse.
	if len(step.Steps) > 0 {
		state.apply(step)
		return executeSteps(ctx, ctr, step.Steps, state, buildCtx, stages)
	}

	// Operation with optional scoped modifiers.
	if step.IsOperation() {
		return executeOperation(ctx, ctr, step, state, buildCtx, stages)
	}

	// Standalone modifier(s): persist in state.
	state.apply(step)
	return nil
}

// Executes one operation with scoped modifier overrides.
//
// Step-level modifiers override the persistent state for this operation
// only. Generic run steps execute as-is; typed provisioning steps are
// compiled to their shell command sequence first.
func executeOperation(ctx context.Context, ctr *runtime.Container, step manifest.Step, state *stepState, buildCtx string, stages map[string]*runtime.Container) error {
	resolved := state.resolve(step)

	if resolved.workdir != "" {
		if err := ctr.MkdirAll(ctx, resolved.workdir); err != nil {
			return err
		}
	}

	if step.Copy != "" {
		return executeCopy(ctx, ctr, step.Copy, resolved.workdir, buildCtx, stages)
	}

	commands := compileStep(step)
	if step.Run != "" {
		commands = []command{{line: step.Run}}
	}

	return runCommands(ctx, ctr, commands, resolved)
}

// Runs a compiled command sequence, aborting on the first non-zero exit.
//
// Each command runs with the step's resolved environment plus any
// command-scoped extras (e.g. the non-interactive frontend for package
// installs), and the step's working directory unless the command overrides
// it.
func runCommands(ctx context.Context, ctr *runtime.Container, commands []command, state *stepState) error {
	for _, cmd := range commands {
		env := state.environ()
		env = append(env, cmd.env...)

		workdir := state.workdir
		if cmd.workdir != "" {
			workdir = cmd.workdir
		}

		slog.Debug("run", "command", cmd.line, "shell", state.shell)

		result, err := ctr.Exec(ctx, state.shell, cmd.line, env, workdir)
		if err != nil {
			return err
		}
		if result.ExitCode != 0 {
			return &StepError{
				Command:  cmd.line,
				ExitCode: result.ExitCode,
				Output:   strings.TrimSpace(result.Stderr),
			}
		}
	}
	return nil
}
