// Package driving provides interfaces for external actors (primary/inbound
// ports): the CLI, the chat TUI, and the MCP server.
package driving
