// Package group manages an ordered collection of word search puzzles.
//
// A Group is built from a bulk blob with one puzzle record per line. Lines
// that fail to parse are skipped and tallied in ValidationStats; the load
// only fails when no line produces a puzzle. After loading, the group offers
// unsolved puzzles one at a time, either in record order or at random, and
// can be restarted to replay every puzzle.
//
//	g, err := group.Load("main.txt", blob, group.Random)
//	if err != nil {
//		var groupErr *group.GroupError
//		if errors.As(err, &groupErr) {
//			fmt.Println(groupErr.Stats)
//		}
//		return err
//	}
//
//	for p := g.CurrentPuzzle(); p != nil; p = g.SelectNext() {
//		// play p until p.IsSolved()
//	}
package group
