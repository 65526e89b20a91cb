// Package source acquires puzzle groups for new sessions.
//
// An Acquirer tries a remote URL once with a bounded wait and, on any failure
// (network error, timeout, non-2xx status, a blob with no valid puzzle, or a
// rate-limited request), falls back to a local catalog source once. The
// Outcome reports which path produced the group.
//
//	acq := source.NewAcquirer(source.Config{
//		RemoteURL:      "https://example.com/puzzles.txt",
//		FallbackSource: "main",
//		Timeout:        5 * time.Second,
//	}, catalog)
//
//	g, outcome, err := acq.Acquire(ctx, group.Random)
package source
