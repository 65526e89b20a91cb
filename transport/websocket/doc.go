// Package websocket pushes puzzle updates to browsers watching a session.
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a read and a
// write goroutine; registration, removal and fan-out all happen inside
// Hub.Run, so the REST handlers can broadcast from any goroutine.
//
// Message Protocol:
//
// Clients connect with ?session=<id>. The server never expects input beyond
// keep-alive frames. Outgoing messages are JSON:
//
//	{"session_id":"ab12cd34","event":"puzzle_update","puzzle":{...},"events":[...]}
//
// where puzzle is the service.PuzzleView after the change and events lists
// what caused it (word_found, puzzle_solved, group_completed, ...).
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
//	hub.BroadcastToSession(id, view, events)
//
// Slow clients whose send buffer is full are dropped rather than blocking
// the hub. Cancelling the context passed to Run disconnects everyone.
package websocket
