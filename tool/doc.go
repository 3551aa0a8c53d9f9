// Package tool defines the contract between backend operations and the surfaces
// that expose them to calling agents.
//
// The package is split by concern:
//   - descriptor: tool names, descriptions and parameter schemas
//   - adapter: argument validation and translation of operation outcomes into Results
//   - registry: the process-scoped set of tools, lookup and invocation
//   - validate: descriptor diagnostics run at registration time
//   - error: the ToolError taxonomy shared by every surface
//
// Nothing here knows about MCP or HTTP, so the MCP server, the HTTP handlers
// and the CLI all drive the same Registry.
package tool
