package golimit

// Version is the release of the golimit module, reported by the CLI and
// the HTTP and MCP servers.
const Version = "0.1.0"
