// Package mcp exposes the word search game to AI agents over the Model
// Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a REST request against
// a running api server, and the JSON answer is rendered as plain text an
// agent can read (grid with column and row indexes, found cells in brackets).
//
// MCP Tools:
//   - create_session: start a session on a named source, a URL, or the default feed
//   - list_sessions, get_session: inspect sessions
//   - puzzle_state: current grid and progress
//   - select_word: one gesture given as "column,row,column,row,..."
//   - next_puzzle, restart_group: move through the group
//   - describe_cell: read one cell
//   - list_sources: puzzle source catalog
//   - game_instructions: rules and coordinate conventions
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal().Err(err).Msg("mcp server stopped")
//	}
package mcp
