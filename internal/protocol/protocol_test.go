package protocol

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spkenv/spkenvd/internal/manifest"
)

func TestEncodeDecodeRoundtrip(t *testing.T) {
	req := BuildRequest{
		Recipe: &manifest.Recipe{
			Stages: []manifest.Stage{
				{
					From: "docker.io/library/ubuntu:16.04",
					Steps: []manifest.Step{
						{Timezone: "Asia/Shanghai"},
						{Pip: []string{"webrtcvad"}},
					},
				},
			},
			Export: manifest.Export{
				Entrypoint: []string{"/opt/app/run.py"},
				Env:        map[string]string{"PATH": "/opt/conda/bin:/usr/bin"},
			},
		},
		Resource:  "spkenv-abc123",
		Output:    "dist",
		Root:      "/home/user/project",
		Platforms: []string{"linux/amd64"},
	}

	data, err := Encode(CmdBuild, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	env, payload, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Command != CmdBuild {
		t.Fatalf("command = %q, want %q", env.Command, CmdBuild)
	}

	decoded, err := DecodePayload[BuildRequest](payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(&req, decoded); diff != "" {
		t.Errorf("roundtrip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeWithoutPayload(t *testing.T) {
	data, err := Encode(CmdShutdown, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	env, payload, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Command != CmdShutdown {
		t.Fatalf("command = %q, want %q", env.Command, CmdShutdown)
	}
	if len(payload) != 0 {
		t.Fatalf("payload = %s, want empty", payload)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: "not json"},
		{name: "missing command", data: `{"payload":{}}`},
		{name: "empty object", data: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode([]byte(tt.data))
			if !errors.Is(err, ErrProtocol) {
				t.Fatalf("error = %v, want ErrProtocol", err)
			}
		})
	}
}

func TestDecodePayloadMissing(t *testing.T) {
	_, err := DecodePayload[StatusResult](nil)
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("error = %v, want ErrProtocol", err)
	}
}

func TestDecodePayloadInvalid(t *testing.T) {
	_, err := DecodePayload[StatusResult]([]byte(`{"running": "yes"}`))
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("error = %v, want ErrProtocol", err)
	}
}
