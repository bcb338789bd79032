package build

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spkenv/spkenvd/internal/manifest"
)

var commandCmp = cmp.AllowUnexported(command{})

func TestCompileStepDeterministic(t *testing.T) {
	step := manifest.Step{
		Conda: &manifest.Conda{
			Installer: "https://repo.continuum.io/miniconda/Miniconda2-latest-Linux-x86_64.sh",
			Prefix:    "/opt/conda",
			Channels:  []string{"conda-forge"},
			Packages:  []string{"numpy", "scipy", "scikit-learn"},
		},
	}

	first := compileStep(step)
	second := compileStep(step)
	if diff := cmp.Diff(first, second, commandCmp); diff != "" {
		t.Fatalf("compilation is not deterministic (-first +second):\n%s", diff)
	}
}

func TestCompileStepNoOperation(t *testing.T) {
	if cmds := compileStep(manifest.Step{Workdir: "/opt"}); cmds != nil {
		t.Fatalf("expected nil for modifier-only step, got %v", cmds)
	}
}

func TestCompilePackages(t *testing.T) {
	tests := []struct {
		name     string
		packages manifest.Packages
		want     []command
	}{
		{
			name:     "update only",
			packages: manifest.Packages{Update: true},
			want: []command{
				{line: "apt-get update", env: noninteractive},
			},
		},
		{
			name:     "update upgrade install",
			packages: manifest.Packages{Update: true, Upgrade: true, Install: []string{"python", "python-pip"}},
			want: []command{
				{line: "apt-get update", env: noninteractive},
				{line: "apt-get upgrade -y", env: noninteractive},
				{line: "apt-get install -y --no-install-recommends python python-pip", env: noninteractive},
			},
		},
		{
			name:     "install only",
			packages: manifest.Packages{Install: []string{"libfftw3-dev"}},
			want: []command{
				{line: "apt-get install -y --no-install-recommends libfftw3-dev", env: noninteractive},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compilePackages(tt.packages)
			if diff := cmp.Diff(tt.want, got, commandCmp); diff != "" {
				t.Errorf("compilePackages mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompilePackagesNoninteractive(t *testing.T) {
	cmds := compilePackages(manifest.Packages{Update: true, Upgrade: true, Install: []string{"curl"}})
	for _, cmd := range cmds {
		if diff := cmp.Diff(noninteractive, cmd.env); diff != "" {
			t.Errorf("%q missing noninteractive env (-want +got):\n%s", cmd.line, diff)
		}
	}
}

func TestCompileTimezone(t *testing.T) {
	want := []command{
		{line: "ln -snf /usr/share/zoneinfo/Asia/Shanghai /etc/localtime"},
		{line: "echo Asia/Shanghai > /etc/timezone"},
		{line: "dpkg-reconfigure -f noninteractive tzdata", env: noninteractive},
	}
	got := compileTimezone("Asia/Shanghai")
	if diff := cmp.Diff(want, got, commandCmp); diff != "" {
		t.Errorf("compileTimezone mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileUser(t *testing.T) {
	tests := []struct {
		name string
		user manifest.User
		want []command
	}{
		{
			name: "sudo user with fixed ids",
			user: manifest.User{Name: "speaker", UID: 1000, GID: 1000, Sudo: true},
			want: []command{
				{line: "groupadd -g 1000 speaker"},
				{line: "useradd -m -u 1000 -g 1000 -s /bin/bash speaker"},
				{line: "usermod -aG sudo speaker"},
				{line: "echo 'speaker ALL=(ALL) NOPASSWD:ALL' > /etc/sudoers.d/speaker"},
				{line: "chmod 0440 /etc/sudoers.d/speaker"},
			},
		},
		{
			name: "plain user without sudo",
			user: manifest.User{Name: "worker", UID: 1001, GID: 1001},
			want: []command{
				{line: "groupadd -g 1001 worker"},
				{line: "useradd -m -u 1001 -g 1001 -s /bin/bash worker"},
			},
		},
		{
			name: "extra groups and custom shell",
			user: manifest.User{Name: "dev", UID: 1000, GID: 1000, Groups: []string{"audio", "video"}, Shell: "/bin/zsh", Sudo: true},
			want: []command{
				{line: "groupadd -g 1000 dev"},
				{line: "useradd -m -u 1000 -g 1000 -s /bin/zsh dev"},
				{line: "usermod -aG audio,video,sudo dev"},
				{line: "echo 'dev ALL=(ALL) NOPASSWD:ALL' > /etc/sudoers.d/dev"},
				{line: "chmod 0440 /etc/sudoers.d/dev"},
			},
		},
		{
			name: "sudo already in groups",
			user: manifest.User{Name: "ops", UID: 1000, GID: 1000, Groups: []string{"sudo"}, Sudo: true},
			want: []command{
				{line: "groupadd -g 1000 ops"},
				{line: "useradd -m -u 1000 -g 1000 -s /bin/bash ops"},
				{line: "usermod -aG sudo ops"},
				{line: "echo 'ops ALL=(ALL) NOPASSWD:ALL' > /etc/sudoers.d/ops"},
				{line: "chmod 0440 /etc/sudoers.d/ops"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compileUser(tt.user)
			if diff := cmp.Diff(tt.want, got, commandCmp); diff != "" {
				t.Errorf("compileUser mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompilePip(t *testing.T) {
	want := []command{
		{line: "pip install --no-cache-dir numpy scipy"},
	}
	got := compilePip([]string{"numpy", "scipy"})
	if diff := cmp.Diff(want, got, commandCmp); diff != "" {
		t.Errorf("compilePip mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileConda(t *testing.T) {
	tests := []struct {
		name  string
		conda manifest.Conda
		want  []command
	}{
		{
			name: "installer with packages and channel",
			conda: manifest.Conda{
				Installer: "https://example.com/miniconda.sh",
				Prefix:    "/opt/conda",
				Channels:  []string{"conda-forge"},
				Packages:  []string{"scikit-learn", "scikits.talkbox"},
			},
			want: []command{
				{line: "wget -q https://example.com/miniconda.sh -O /tmp/conda-installer.sh"},
				{line: "sh /tmp/conda-installer.sh -b -p /opt/conda"},
				{line: "rm -f /tmp/conda-installer.sh"},
				{line: "/opt/conda/bin/conda install -y -c conda-forge scikit-learn scikits.talkbox"},
			},
		},
		{
			name: "installer only",
			conda: manifest.Conda{
				Installer: "https://example.com/miniconda.sh",
				Prefix:    "/opt/conda",
			},
			want: []command{
				{line: "wget -q https://example.com/miniconda.sh -O /tmp/conda-installer.sh"},
				{line: "sh /tmp/conda-installer.sh -b -p /opt/conda"},
				{line: "rm -f /tmp/conda-installer.sh"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compileConda(tt.conda)
			if diff := cmp.Diff(tt.want, got, commandCmp); diff != "" {
				t.Errorf("compileConda mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompileClone(t *testing.T) {
	tests := []struct {
		name  string
		clone manifest.Clone
		want  []command
	}{
		{
			name: "clone with build command",
			clone: manifest.Clone{
				URL:   "https://github.com/ppwwyyxx/speaker-recognition.git",
				Dest:  "/home/speaker/speaker-recognition",
				Build: "make -C src/gmm",
			},
			want: []command{
				{line: "git clone https://github.com/ppwwyyxx/speaker-recognition.git /home/speaker/speaker-recognition"},
				{line: "make -C src/gmm", workdir: "/home/speaker/speaker-recognition"},
			},
		},
		{
			name: "clone with ref",
			clone: manifest.Clone{
				URL:  "https://github.com/example/tool.git",
				Ref:  "v1.2.0",
				Dest: "/opt/tool",
			},
			want: []command{
				{line: "git clone --branch v1.2.0 https://github.com/example/tool.git /opt/tool"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compileClone(tt.clone)
			if diff := cmp.Diff(tt.want, got, commandCmp); diff != "" {
				t.Errorf("compileClone mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompileClean(t *testing.T) {
	want := []command{
		{line: "apt-get clean", env: noninteractive},
		{line: "rm -rf /tmp/* /var/lib/apt/lists/*"},
	}
	got := compileClean([]string{"/tmp/*"})
	if diff := cmp.Diff(want, got, commandCmp); diff != "" {
		t.Errorf("compileClean mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileCleanAlwaysPurgesIndexes(t *testing.T) {
	got := compileClean(nil)
	want := []command{
		{line: "apt-get clean", env: noninteractive},
		{line: "rm -rf " + aptListsPath},
	}
	if diff := cmp.Diff(want, got, commandCmp); diff != "" {
		t.Errorf("compileClean mismatch (-want +got):\n%s", diff)
	}
}
