// Package session provides in-memory session storage for the word search game.
//
// A session owns one puzzle group and one selection engine. Sessions are
// keyed by a short case-insensitive ID, live only in memory, and expire after
// a period without access (see Manager.RunExpiry).
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", "main", g)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
package session
