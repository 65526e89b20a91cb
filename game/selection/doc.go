// Package selection turns a stream of grid hits into word guesses.
//
// An Engine follows one pointer gesture at a time. BeginHit starts a new
// path, AddHit extends it (filling in cells a fast gesture skipped along a
// straight line, and popping the last cell when the gesture backs up), and
// EndGesture asks the puzzle whether the path spells one of its words in
// either direction. Cells of a found word stay matched until the puzzle
// changes.
package selection
