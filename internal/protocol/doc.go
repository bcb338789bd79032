// Package protocol defines the wire format between the CLI and the daemon.
//
// Messages are newline-delimited JSON envelopes carrying a command name and
// an opaque payload. Each connection holds a single request-response
// exchange. Request payloads carry the full recipe inline so the daemon
// never reads manifest files itself.
package protocol
