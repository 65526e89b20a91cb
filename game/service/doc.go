// Package service provides the business logic layer for the word search game.
//
// The service package implements:
//   - Multi-session play, each session owning a puzzle group and a selection engine
//   - Gesture handling (begin, hit, end) and whole-path selection
//   - Puzzle iteration and group restart
//   - Access to the puzzle source catalog
//
// Core Interfaces:
//
// GameService is the main service interface used by the REST, WebSocket and
// MCP transports. SessionManager stores sessions, SourceCatalog serves named
// puzzle blobs and GroupAcquirer builds groups from a remote URL with a local
// fallback.
//
// Usage:
//
//	sessions := session.NewManager()
//	catalog, _ := config.NewManager("puzzles")
//	acquirer := source.NewAcquirer(settings.SourceConfig(), catalog)
//	gameService := service.NewGameService(sessions, catalog, acquirer)
//
//	info, err := gameService.CreateSession(ctx, service.CreateSessionRequest{Source: "main"})
//	result, err := gameService.SelectPath(ctx, info.ID, []puzzle.Point{{Column: 0, Row: 0}, {Column: 0, Row: 2}})
package service
