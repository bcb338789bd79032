package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	ErrManifest   = errors.New("invalid manifest")
	ErrUnreadable = errors.New("manifest not readable")
)

// Loads and validates a recipe from a YAML file.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	return Parse(data)
}

// Parses and validates a recipe from YAML bytes.
//
// Unknown fields are rejected so that typos in step keys fail the load
// instead of silently producing a modifier-only step.
func Parse(data []byte) (*Recipe, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var r Recipe
	if err := dec.Decode(&r); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty manifest", ErrManifest)
		}
		return nil, fmt.Errorf("%w: %w", ErrManifest, err)
	}

	if err := r.Finalize(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validates the recipe and fills in defaulted fields.
//
// Parse calls this for recipes loaded from YAML files. Recipes arriving on
// other paths (e.g. decoded from a daemon build request) must be finalized
// before execution, otherwise user steps keep zero uid/gid and malformed
// steps slip past validation.
func (r *Recipe) Finalize() error {
	if err := r.validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrManifest, err)
	}
	r.applyDefaults()
	return nil
}

// Checks structural constraints the build engine relies on.
func (r *Recipe) validate() error {
	if len(r.Stages) == 0 {
		return errors.New("at least one stage is required")
	}

	exported := 0
	for i := range r.Stages {
		stage := &r.Stages[i]
		if stage.From == "" {
			return fmt.Errorf("stage %s: missing base image", stageLabel(stage.Name, i))
		}
		if !stage.Transient {
			exported++
		}
		if err := validateSteps(stage.Steps, stage.Name, i); err != nil {
			return err
		}
	}

	if exported == 0 {
		return errors.New("all stages are transient, nothing to export")
	}
	return nil
}

// Validates a step list, including nested groups.
func validateSteps(steps []Step, stageName string, stageIdx int) error {
	for i := range steps {
		step := &steps[i]

		if n := step.operations(); n > 1 {
			return fmt.Errorf("stage %s, step %d: %d operations in one step, want at most one",
				stageLabel(stageName, stageIdx), i+1, n)
		} else if n > 0 && len(step.Steps) > 0 {
			return fmt.Errorf("stage %s, step %d: a group step cannot also carry an operation",
				stageLabel(stageName, stageIdx), i+1)
		}

		if err := validateStep(step, stageName, stageIdx, i); err != nil {
			return err
		}

		if len(step.Steps) > 0 {
			if err := validateSteps(step.Steps, stageName, stageIdx); err != nil {
				return err
			}
		}
	}
	return nil
}

// Per-operation field constraints.
func validateStep(step *Step, stageName string, stageIdx, stepIdx int) error {
	fail := func(format string, args ...any) error {
		prefix := fmt.Sprintf("stage %s, step %d: ", stageLabel(stageName, stageIdx), stepIdx+1)
		return fmt.Errorf(prefix+format, args...)
	}

	switch {
	case step.Packages != nil:
		if !step.Packages.Update && !step.Packages.Upgrade && len(step.Packages.Install) == 0 {
			return fail("packages step does nothing")
		}
	case step.User != nil:
		if step.User.Name == "" {
			return fail("user step requires a name")
		}
	case step.Conda != nil:
		if step.Conda.Installer == "" {
			return fail("conda step requires an installer URL")
		}
	case step.Clone != nil:
		if step.Clone.URL == "" {
			return fail("clone step requires a url")
		}
		if step.Clone.Dest == "" {
			return fail("clone step requires a dest")
		}
	}
	return nil
}

// Fills in defaulted fields after validation.
func (r *Recipe) applyDefaults() {
	for i := range r.Stages {
		applyStepDefaults(r.Stages[i].Steps)
	}
}

func applyStepDefaults(steps []Step) {
	for i := range steps {
		step := &steps[i]
		if step.User != nil {
			if step.User.UID == 0 {
				step.User.UID = DefaultUID
			}
			if step.User.GID == 0 {
				step.User.GID = DefaultGID
			}
		}
		if step.Conda != nil && step.Conda.Prefix == "" {
			step.Conda.Prefix = DefaultCondaPrefix
		}
		applyStepDefaults(step.Steps)
	}
}

// Returns a label for a stage, preferring the name when available and falling
// back to the 1-based index.
func stageLabel(name string, index int) string {
	if name != "" {
		return fmt.Sprintf("%q", name)
	}
	return fmt.Sprintf("%d", index+1)
}
