package build

import (
	"errors"
	"fmt"
)

var (
	ErrBuild               = errors.New("build failed")
	ErrStepFailed          = errors.New("step failed")
	ErrFileSystemOperation = errors.New("file system operation failed")
	ErrCopy                = errors.New("copy failed")
)

// Describes the first failing step of a build.
//
// The build aborts as soon as one step fails: no retry, no rollback, no
// partial artifact. Stage and Index are filled in as the error propagates
// up through the step and stage loops.
type StepError struct {
	Stage    string // Stage label (name or 1-based position).
	Index    int    // 1-based step index within the stage.
	Command  string // Command that failed.
	ExitCode int    // Exit code of the failed command.
	Output   string // Captured standard error of the failed command.
}

func (e *StepError) Error() string {
	msg := fmt.Sprintf("stage %s, step %d: %q exited with code %d", e.Stage, e.Index, e.Command, e.ExitCode)
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

func (e *StepError) Unwrap() error {
	return ErrStepFailed
}
