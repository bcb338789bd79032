package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spkenv/spkenvd/internal/manifest"
)

var ErrProtocol = errors.New("protocol error")

// A command carried by an envelope.
type Command string

const (
	CmdBuild    Command = "build"    // Execute a provisioning recipe.
	CmdStatus   Command = "status"   // Query daemon status.
	CmdShutdown Command = "shutdown" // Request daemon shutdown.

	CmdOK    Command = "ok"    // Successful response.
	CmdError Command = "error" // Failed response.
)

// Wire framing for one message: a command plus an opaque payload.
//
// Messages are newline-delimited JSON; one request and one response per
// connection.
type Envelope struct {
	Command Command         `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Asks the daemon to execute a provisioning recipe.
type BuildRequest struct {
	Recipe    *manifest.Recipe `json:"recipe"`              // Recipe to execute.
	Resource  string           `json:"resource"`            // Name prefix for stage containers.
	Output    string           `json:"output"`              // Directory for the exported image.
	Root      string           `json:"root"`                // Build context root for copy sources.
	Platforms []string         `json:"platforms,omitempty"` // Target platforms; empty means host.
}

// Reports a successful build.
type BuildResult struct {
	Output string `json:"output"` // Directory containing the exported image.
}

// Reports daemon health and counters.
type StatusResult struct {
	Running bool   `json:"running"`
	Version string `json:"version"`
	Pid     int    `json:"pid"`
	Uptime  string `json:"uptime"`
	Builds  int    `json:"builds"`
}

// Carries the message of a failed command.
type ErrorResult struct {
	Message string `json:"message"`
}

// Serializes a command and payload into an envelope.
func Encode(cmd Command, payload any) ([]byte, error) {
	env := Envelope{Command: cmd}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrProtocol, err)
		}
		env.Payload = data
	}

	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	return data, nil
}

// Parses an envelope, returning it together with its raw payload.
func Decode(data []byte) (Envelope, json.RawMessage, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, nil, fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	if env.Command == "" {
		return Envelope{}, nil, fmt.Errorf("%w: missing command", ErrProtocol)
	}
	return env, env.Payload, nil
}

// Parses a raw payload into a concrete request or result type.
func DecodePayload[T any](payload json.RawMessage) (*T, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: missing payload", ErrProtocol)
	}
	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	return &v, nil
}
