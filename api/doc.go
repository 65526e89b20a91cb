// Package api provides the HTTP REST API for the word search server.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session {source, iteration_method}; an
//     empty source fetches the remote group and falls back to the local one
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get a session with its current puzzle
//   - DELETE /api/sessions/{id} - Delete a session
//
// Play:
//   - GET /api/sessions/{id}/puzzle - Current puzzle view
//   - POST /api/sessions/{id}/gesture/begin - Start a gesture at {column,row}
//   - POST /api/sessions/{id}/gesture/hit - Extend the gesture with {column,row}
//   - POST /api/sessions/{id}/gesture/end - Validate and clear the gesture
//   - POST /api/sessions/{id}/gesture - Whole gesture in one call {points:[...]}
//   - POST /api/sessions/{id}/next - Move to the next unsolved puzzle
//   - POST /api/sessions/{id}/restart - Reset every puzzle {iteration_method}
//   - GET /api/sessions/{id}/cells/{column}/{row} - Describe one cell
//
// Puzzle Sources:
//   - GET /api/sources - List the catalog with validation stats
//   - GET /api/sources/{name} - Parse a source and summarize its puzzles
//   - POST /api/sources - Store a source {name, blob}
//
// Other:
//   - GET /ws?session={id} - Subscribe to puzzle updates (see transport/websocket)
//   - GET /health
//
// Every mutation of a session is pushed to its websocket subscribers.
//
// Error Handling:
//
// Errors are returned as JSON with an HTTP status derived from the error:
//
//	{"error": "session not found: session not found"}
//
//   - 400: malformed body, unknown iteration method, point outside the grid,
//     source with no valid puzzle
//   - 404: unknown session or source
//   - 409: every puzzle of the group is solved
//   - 503: neither the remote nor the local source could be loaded
//   - 500: anything else
package api
