package runtime

import (
	"testing"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

func TestApplyImageConfigEntrypoint(t *testing.T) {
	config := ocispec.Image{}
	config.Config.Entrypoint = []string{"/bin/sh"}
	config.Config.Cmd = []string{"-c", "inherited"}

	applyImageConfig(&config, ImageConfig{
		Entrypoint: []string{"python", "/opt/app/main.py"},
	})

	if got := config.Config.Entrypoint; len(got) != 2 || got[0] != "python" {
		t.Fatalf("entrypoint = %v, want [python /opt/app/main.py]", got)
	}
	if config.Config.Cmd != nil {
		t.Fatalf("cmd = %v, want nil (inherited cmd cleared)", config.Config.Cmd)
	}
}

func TestApplyImageConfigCmdOnly(t *testing.T) {
	config := ocispec.Image{}
	config.Config.Cmd = []string{"inherited"}

	applyImageConfig(&config, ImageConfig{Cmd: []string{"--gui"}})

	if got := config.Config.Cmd; len(got) != 1 || got[0] != "--gui" {
		t.Fatalf("cmd = %v, want [--gui]", got)
	}
	if config.Config.Entrypoint != nil {
		t.Fatalf("entrypoint = %v, want nil", config.Config.Entrypoint)
	}
}

func TestApplyImageConfigEnvMerge(t *testing.T) {
	config := ocispec.Image{}
	config.Config.Env = []string{"PATH=/usr/bin", "LANG=C"}

	applyImageConfig(&config, ImageConfig{
		Env:     []string{"PATH=/opt/conda/bin:/usr/bin"},
		User:    "lab",
		Workdir: "/opt/app",
	})

	if got := config.Config.Env[0]; got != "PATH=/opt/conda/bin:/usr/bin" {
		t.Fatalf("env[0] = %q, want overridden PATH", got)
	}
	if got := config.Config.Env[1]; got != "LANG=C" {
		t.Fatalf("env[1] = %q, want LANG=C preserved", got)
	}
	if config.Config.User != "lab" {
		t.Fatalf("user = %q, want lab", config.Config.User)
	}
	if config.Config.WorkingDir != "/opt/app" {
		t.Fatalf("workdir = %q, want /opt/app", config.Config.WorkingDir)
	}
}

func TestApplyImageConfigEmpty(t *testing.T) {
	config := ocispec.Image{}
	config.Config.Entrypoint = []string{"/bin/sh"}
	config.Config.Env = []string{"A=1"}

	applyImageConfig(&config, ImageConfig{})

	if got := config.Config.Entrypoint; len(got) != 1 || got[0] != "/bin/sh" {
		t.Fatalf("entrypoint = %v, want untouched", got)
	}
	if got := config.Config.Env; len(got) != 1 || got[0] != "A=1" {
		t.Fatalf("env = %v, want untouched", got)
	}
}

func TestManifestGCLabels(t *testing.T) {
	m := ocispec.Manifest{
		Config: ocispec.Descriptor{
			Digest: digest.FromString("config"),
		},
		Layers: []ocispec.Descriptor{
			{Digest: digest.FromString("layer0")},
			{Digest: digest.FromString("layer1")},
		},
	}

	labels := manifestGCLabels(m)

	configLabel := labels["containerd.io/gc.ref.content.config"]
	if configLabel != m.Config.Digest.String() {
		t.Fatalf("config label = %q, want %q", configLabel, m.Config.Digest.String())
	}

	for i, layer := range m.Layers {
		key := "containerd.io/gc.ref.content.l." + string(rune('0'+i))
		got := labels[key]
		if got != layer.Digest.String() {
			t.Fatalf("labels[%q] = %q, want %q", key, got, layer.Digest.String())
		}
	}

	if len(labels) != 3 {
		t.Fatalf("len(labels) = %d, want 3", len(labels))
	}
}

func TestIndexGCLabels(t *testing.T) {
	idx := ocispec.Index{
		Manifests: []ocispec.Descriptor{
			{Digest: digest.FromString("m0")},
		},
	}

	labels := indexGCLabels(idx)
	if len(labels) != 1 {
		t.Fatalf("len(labels) = %d, want 1", len(labels))
	}
	if labels["containerd.io/gc.ref.content.m.0"] != idx.Manifests[0].Digest.String() {
		t.Fatal("manifest label mismatch")
	}
}
