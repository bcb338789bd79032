package build

import (
	"errors"
	"testing"
)

func TestStepError(t *testing.T) {
	err := &StepError{
		Stage:    `"base"`,
		Index:    4,
		Command:  "apt-get update",
		ExitCode: 100,
		Output:   "E: Unable to fetch some archives",
	}

	want := `stage "base", step 4: "apt-get update" exited with code 100: E: Unable to fetch some archives`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	if !errors.Is(err, ErrStepFailed) {
		t.Error("StepError does not unwrap to ErrStepFailed")
	}
}

func TestStepErrorWithoutOutput(t *testing.T) {
	err := &StepError{Stage: "1", Index: 2, Command: "make", ExitCode: 2}

	want := `stage 1, step 2: "make" exited with code 2`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
