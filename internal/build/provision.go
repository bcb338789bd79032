package build

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spkenv/spkenvd/internal/manifest"
)

// Extra environment injected into package-manager commands so installs never
// block on interactive prompts. Scoped to the command; nothing is persisted
// into the image environment.
var noninteractive = []string{"DEBIAN_FRONTEND=noninteractive"}

// Package index state removed by every clean step.
const aptListsPath = "/var/lib/apt/lists/*"

// Where the conda installer script is staged inside the container.
const condaInstallerPath = "/tmp/conda-installer.sh"

// Login shell assigned to provisioned accounts unless overridden.
const defaultUserShell = "/bin/bash"

// One shell command produced by compiling a typed provisioning step.
type command struct {
	line    string   // Shell command line.
	env     []string // Extra environment for this command only.
	workdir string   // Working directory override; empty keeps the step's.
}

// Compiles a typed provisioning operation into its shell command sequence.
//
// Compilation is deterministic: the same step always yields the same commands
// in the same order. Returns nil for steps carrying no typed operation.
func compileStep(step manifest.Step) []command {
	switch {
	case step.Packages != nil:
		return compilePackages(*step.Packages)
	case step.Timezone != "":
		return compileTimezone(step.Timezone)
	case step.User != nil:
		return compileUser(*step.User)
	case len(step.Pip) > 0:
		return compilePip(step.Pip)
	case step.Conda != nil:
		return compileConda(*step.Conda)
	case step.Clone != nil:
		return compileClone(*step.Clone)
	case len(step.Clean) > 0:
		return compileClean(step.Clean)
	}
	return nil
}

// Index refresh, upgrade, and install, in that order.
func compilePackages(p manifest.Packages) []command {
	var cmds []command
	if p.Update {
		cmds = append(cmds, command{line: "apt-get update", env: noninteractive})
	}
	if p.Upgrade {
		cmds = append(cmds, command{line: "apt-get upgrade -y", env: noninteractive})
	}
	if len(p.Install) > 0 {
		cmds = append(cmds, command{
			line: "apt-get install -y --no-install-recommends " + strings.Join(p.Install, " "),
			env:  noninteractive,
		})
	}
	return cmds
}

// Non-interactive timezone configuration.
func compileTimezone(tz string) []command {
	return []command{
		{line: fmt.Sprintf("ln -snf /usr/share/zoneinfo/%s /etc/localtime", tz)},
		{line: fmt.Sprintf("echo %s > /etc/timezone", tz)},
		{line: "dpkg-reconfigure -f noninteractive tzdata", env: noninteractive},
	}
}

// Account creation with fixed numeric IDs.
//
// The group is created first so the uid/gid pairing is stable regardless of
// what the base image already allocated. Sudo membership implies the sudo
// group and a passwordless sudoers drop-in.
func compileUser(u manifest.User) []command {
	shell := u.Shell
	if shell == "" {
		shell = defaultUserShell
	}

	cmds := []command{
		{line: fmt.Sprintf("groupadd -g %d %s", u.GID, u.Name)},
		{line: fmt.Sprintf("useradd -m -u %d -g %d -s %s %s", u.UID, u.GID, shell, u.Name)},
	}

	groups := slices.Clone(u.Groups)
	if u.Sudo && !slices.Contains(groups, "sudo") {
		groups = append(groups, "sudo")
	}
	if len(groups) > 0 {
		cmds = append(cmds, command{line: fmt.Sprintf("usermod -aG %s %s", strings.Join(groups, ","), u.Name)})
	}

	if u.Sudo {
		cmds = append(cmds,
			command{line: fmt.Sprintf("echo '%s ALL=(ALL) NOPASSWD:ALL' > /etc/sudoers.d/%s", u.Name, u.Name)},
			command{line: fmt.Sprintf("chmod 0440 /etc/sudoers.d/%s", u.Name)},
		)
	}

	return cmds
}

// Install through the primary language package manager.
func compilePip(packages []string) []command {
	return []command{
		{line: "pip install --no-cache-dir " + strings.Join(packages, " ")},
	}
}

// Bootstrap of the secondary, isolated package environment.
//
// The installer script is fetched, run in batch mode against the prefix,
// and removed. Packages are installed through the prefixed conda binary so
// the step works without the prefix being on PATH.
func compileConda(c manifest.Conda) []command {
	cmds := []command{
		{line: fmt.Sprintf("wget -q %s -O %s", c.Installer, condaInstallerPath)},
		{line: fmt.Sprintf("sh %s -b -p %s", condaInstallerPath, c.Prefix)},
		{line: "rm -f " + condaInstallerPath},
	}

	if len(c.Packages) > 0 {
		var b strings.Builder
		b.WriteString(c.Prefix + "/bin/conda install -y")
		for _, ch := range c.Channels {
			b.WriteString(" -c " + ch)
		}
		b.WriteString(" " + strings.Join(c.Packages, " "))
		cmds = append(cmds, command{line: b.String()})
	}

	return cmds
}

// Repository clone plus optional native build, run inside the checkout.
func compileClone(c manifest.Clone) []command {
	clone := "git clone"
	if c.Ref != "" {
		clone += " --branch " + c.Ref
	}
	clone += " " + c.URL + " " + c.Dest

	cmds := []command{{line: clone}}
	if c.Build != "" {
		cmds = append(cmds, command{line: c.Build, workdir: c.Dest})
	}
	return cmds
}

// Cache removal to shrink the artifact.
//
// The package-manager cache clean and index-list removal always run; the
// manifest's paths are removed alongside them.
func compileClean(paths []string) []command {
	all := append(slices.Clone(paths), aptListsPath)
	return []command{
		{line: "apt-get clean", env: noninteractive},
		{line: "rm -rf " + strings.Join(all, " ")},
	}
}
