// Package clawshell is the backend of the OpenClaw desktop shell. The
// operations live in internal/dispatch and are served by internal/mcp.
package clawshell

// Version is the clawshell release, overridden at build time with
// -ldflags "-X github.com/deixis/clawshell.Version=...".
var Version = "v0.1.0-dev"
