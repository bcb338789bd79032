package manifest

// Default user and group ID for provisioned accounts. Chosen to match the
// first regular user on most host distributions, so bind-mounted paths keep
// usable permissions.
const (
	DefaultUID = 1000
	DefaultGID = 1000
)

// Default install prefix for the secondary (conda) package environment.
const DefaultCondaPrefix = "/opt/conda"

// An ordered provisioning procedure producing a single image artifact.
type Recipe struct {
	Stages []Stage `yaml:"stages" json:"stages"` // Build stages, executed in declaration order.
	Export Export  `yaml:"export" json:"export"` // Image config stamped on the exported artifact.
}

// One build stage, backed by a container created from a base image.
//
// Transient stages exist only to be copied from by later stages and are not
// exported.
type Stage struct {
	Name      string `yaml:"name" json:"name"`           // Optional name, referenced by cross-stage copies.
	From      string `yaml:"from" json:"from"`           // Base image reference (e.g., "docker.io/library/ubuntu:16.04").
	Transient bool   `yaml:"transient" json:"transient"` // Whether the stage is excluded from export.
	Steps     []Step `yaml:"steps" json:"steps"`         // Provisioning steps, executed in order.
}

// One provisioning step.
//
// A step carries either exactly one operation (generic or typed), a set of
// standalone modifiers, or a nested group. Modifiers on an operation step
// apply to that operation only; standalone modifiers persist for all
// subsequent steps of the stage.
type Step struct {

	// Modifiers.
	Shell   string            `yaml:"shell,omitempty" json:"shell,omitempty"`
	Workdir string            `yaml:"workdir,omitempty" json:"workdir,omitempty"`
	Env     map[string]string `yaml:"env,omitempty" json:"env,omitempty"`

	// Generic operations.
	Run  string `yaml:"run,omitempty" json:"run,omitempty"`   // Shell command.
	Copy string `yaml:"copy,omitempty" json:"copy,omitempty"` // "src dest"; src may be "stage:path".

	// Typed provisioning operations.
	Packages *Packages `yaml:"packages,omitempty" json:"packages,omitempty"` // System package refresh/upgrade/install.
	Timezone string    `yaml:"timezone,omitempty" json:"timezone,omitempty"` // Non-interactive timezone configuration.
	User     *User     `yaml:"user,omitempty" json:"user,omitempty"`         // Non-privileged administrative account.
	Pip      []string  `yaml:"pip,omitempty" json:"pip,omitempty"`           // Packages for the primary language package manager.
	Conda    *Conda    `yaml:"conda,omitempty" json:"conda,omitempty"`       // Secondary, isolated package environment.
	Clone    *Clone    `yaml:"clone,omitempty" json:"clone,omitempty"`       // External repository clone + native build.
	Clean    []string  `yaml:"clean,omitempty" json:"clean,omitempty"`       // Cache paths removed to shrink the artifact.

	// Nested group. Group-level modifiers persist for the group's steps.
	Steps []Step `yaml:"steps,omitempty" json:"steps,omitempty"`
}

// System package-manager operation.
type Packages struct {
	Update  bool     `yaml:"update" json:"update"`   // Refresh the package index first.
	Upgrade bool     `yaml:"upgrade" json:"upgrade"` // Upgrade installed packages.
	Install []string `yaml:"install" json:"install"` // Packages to install.
}

// Account-creation operation.
//
// UID and GID default to 1000. Sudo grants passwordless elevation.
type User struct {
	Name   string   `yaml:"name" json:"name"`
	UID    int      `yaml:"uid" json:"uid"`
	GID    int      `yaml:"gid" json:"gid"`
	Groups []string `yaml:"groups" json:"groups"`
	Sudo   bool     `yaml:"sudo" json:"sudo"`
	Shell  string   `yaml:"shell" json:"shell"`
}

// Secondary package-environment operation.
//
// Bootstraps a conda installation from the installer script and installs the
// listed packages. Prefix defaults to [DefaultCondaPrefix].
type Conda struct {
	Installer string   `yaml:"installer" json:"installer"` // URL of the installer script.
	Prefix    string   `yaml:"prefix" json:"prefix"`       // Install location.
	Channels  []string `yaml:"channels" json:"channels"`   // Extra channels, searched in order.
	Packages  []string `yaml:"packages" json:"packages"`   // Packages to install.
}

// Clone-and-build operation for an external source repository.
type Clone struct {
	URL   string `yaml:"url" json:"url"`     // Repository URL.
	Ref   string `yaml:"ref" json:"ref"`     // Optional branch or tag.
	Dest  string `yaml:"dest" json:"dest"`   // Checkout directory.
	Build string `yaml:"build" json:"build"` // Optional command run inside Dest after cloning.
}

// Image config applied to the exported artifact.
//
// Env entries are merged over the base image's environment, so a PATH set
// here survives into run time. Setting Entrypoint clears any Cmd inherited
// from the base image unless Cmd is also set.
type Export struct {
	Entrypoint []string          `yaml:"entrypoint" json:"entrypoint"`
	Cmd        []string          `yaml:"cmd" json:"cmd"`
	Env        map[string]string `yaml:"env" json:"env"`
	User       string            `yaml:"user" json:"user"`
	Workdir    string            `yaml:"workdir" json:"workdir"`
}

// Returns the number of operations carried by the step.
//
// Modifier fields and nested groups do not count as operations.
func (s *Step) operations() int {
	n := 0
	if s.Run != "" {
		n++
	}
	if s.Copy != "" {
		n++
	}
	if s.Packages != nil {
		n++
	}
	if s.Timezone != "" {
		n++
	}
	if s.User != nil {
		n++
	}
	if len(s.Pip) > 0 {
		n++
	}
	if s.Conda != nil {
		n++
	}
	if s.Clone != nil {
		n++
	}
	if len(s.Clean) > 0 {
		n++
	}
	return n
}

// Whether the step carries an operation (as opposed to standalone modifiers
// or a nested group).
func (s *Step) IsOperation() bool {
	return s.operations() > 0
}
