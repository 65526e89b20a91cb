// Package config provides the puzzle source catalog and application settings.
//
// The catalog serves named puzzle blobs (one JSON record per line). A source
// named "main" resolves to main.txt in the source directory when present and
// to the copy bundled into the binary otherwise. Blobs are cached and the
// cache entry is dropped when the file changes on disk (see Manager.Watch).
//
// Settings are read from a TOML file:
//
//	remote_url          = "https://example.com/puzzles.txt"
//	fallback_source     = "main"
//	iteration_method    = "random"
//	fetch_timeout       = "5s"
//	remote_min_interval = "30s"
//	display_translation = false
//	session_max_age     = "24h"
//
// Usage:
//
//	catalog, err := config.NewManager("puzzles")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	blob, err := catalog.LoadBlob("main")
//	sources, err := catalog.ListSources()
package config
