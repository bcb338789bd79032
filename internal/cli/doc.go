// Parses flags and dispatches commands for the spkenvd binary.
//
// The binary accepts the following global flags:
//
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Enable verbose output.
//	-d, --debug     Enable debug output.
//	-s, --socket    Unix socket path (daemon mode).
//
// Flags override build-time defaults set via linker flags. After parsing, the
// global logger is reconfigured to reflect the final level and verbosity
// before the selected command runs.
//
// The build command provisions an environment image directly against the
// local containerd socket; start runs the daemon that accepts the same
// builds over a Unix socket.
package cli
