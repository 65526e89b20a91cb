// Command validate lints puzzle source files. Each file is scanned line by
// line with the same parser the server uses, and the report lists:
//   - lines that failed to parse and why
//   - duplicate puzzles within a file
//   - the language pairs and grid sizes found
//
// Without arguments it checks every source in the catalog (the bundled set
// plus --dir when given). It exits with non-zero status if any source has an
// error; with --strict a single bad line is enough.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/wordsearch-translate/game/config"
	"github.com/wricardo/wordsearch-translate/game/group"
	"github.com/wricardo/wordsearch-translate/game/puzzle"
)

var errInvalidSources = errors.New("some puzzle sources have errors")

// ValidationResult captures the outcome of validating a single source.
// Errors explain why a source is invalid; Info holds the summary lines
// printed for valid sources.
type ValidationResult struct {
	File   string
	Valid  bool
	Stats  group.ValidationStats
	Errors []string
	Info   []string
}

// validateBlob scans one source. Bad lines only invalidate it when strict is set.
func validateBlob(name string, blob []byte, strict bool) ValidationResult {
	result := ValidationResult{
		File:   name,
		Valid:  true,
		Errors: []string{},
		Info:   []string{},
	}

	puzzles, stats, err := group.Scan(name, blob)
	result.Stats = stats
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
	}

	for _, failure := range stats.Failures {
		msg := fmt.Sprintf("Line %d: %s", failure.Line, failure.Error)
		if strict {
			result.Valid = false
			result.Errors = append(result.Errors, msg)
		} else {
			result.Info = append(result.Info, "⚠ "+msg)
		}
	}

	for _, dup := range findDuplicates(puzzles) {
		result.Info = append(result.Info, fmt.Sprintf("⚠ Duplicate puzzle %q (records %d and %d)", puzzles[dup[1]].SourceWord(), dup[0]+1, dup[1]+1))
	}

	if len(puzzles) > 0 {
		result.Info = append(result.Info, fmt.Sprintf("✓ Puzzles: %d of %d lines", stats.JSONProcessingSuccess, stats.LineCount))
		result.Info = append(result.Info, fmt.Sprintf("✓ Languages: %s", strings.Join(languagePairs(puzzles), ", ")))
		result.Info = append(result.Info, fmt.Sprintf("✓ Grids: %s", strings.Join(gridSizes(puzzles), ", ")))
	}

	return result
}

// findDuplicates returns index pairs of puzzles with identical content
func findDuplicates(puzzles []*puzzle.Puzzle) [][2]int {
	var dups [][2]int
	for i := range puzzles {
		for j := i + 1; j < len(puzzles); j++ {
			if puzzles[i].Equal(puzzles[j]) {
				dups = append(dups, [2]int{i, j})
				break
			}
		}
	}
	return dups
}

func languagePairs(puzzles []*puzzle.Puzzle) []string {
	seen := make(map[string]bool)
	for _, p := range puzzles {
		seen[p.SourceLanguage()+"→"+p.TargetLanguage()] = true
	}
	return sortedKeys(seen)
}

func gridSizes(puzzles []*puzzle.Puzzle) []string {
	seen := make(map[string]bool)
	for _, p := range puzzles {
		d := p.Dimensions()
		seen[fmt.Sprintf("%dx%d", d.Columns, d.Rows)] = true
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// catalogResults validates every source the catalog lists
func catalogResults(dir string, strict bool) ([]ValidationResult, error) {
	catalog, err := config.NewManager(dir)
	if err != nil {
		return nil, err
	}
	sources, err := catalog.ListSources()
	if err != nil {
		return nil, err
	}

	results := make([]ValidationResult, 0, len(sources))
	for _, src := range sources {
		blob, err := catalog.LoadBlob(src.Name)
		if err != nil {
			results = append(results, ValidationResult{File: src.Filename, Errors: []string{err.Error()}})
			continue
		}
		result := validateBlob(src.Filename, blob, strict)
		result.File = fmt.Sprintf("%s (%s)", src.Filename, src.Origin)
		results = append(results, result)
	}
	return results, nil
}

func fileResults(files []string, strict bool) []ValidationResult {
	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		blob, err := os.ReadFile(file)
		if err != nil {
			results = append(results, ValidationResult{
				File:   filepath.Base(file),
				Errors: []string{fmt.Sprintf("Failed to read file: %v", err)},
			})
			continue
		}
		results = append(results, validateBlob(filepath.Base(file), blob, strict))
	}
	return results
}

// printReport writes the results and reports whether all of them are valid
func printReport(w io.Writer, results []ValidationResult) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Info {
				fmt.Fprintln(w, "  "+info)
			}
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Fprintln(w, "  ❌ "+err)
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All puzzle sources are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some puzzle sources have errors")
	}
	return allValid
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Lint word search puzzle source files",
		ArgsUsage: "[file.txt ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Usage:   "Puzzle directory checked when no files are given",
				Sources: cli.EnvVars("PUZZLE_DIR"),
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Treat any unparseable line as an error",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log every skipped line",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			level := zerolog.ErrorLevel
			if cmd.Bool("verbose") {
				level = zerolog.DebugLevel
			}
			log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.Root().ErrWriter}).Level(level)

			var results []ValidationResult
			if cmd.Args().Len() > 0 {
				results = fileResults(cmd.Args().Slice(), cmd.Bool("strict"))
			} else {
				var err error
				results, err = catalogResults(cmd.String("dir"), cmd.Bool("strict"))
				if err != nil {
					return err
				}
			}

			if !printReport(cmd.Root().Writer, results) {
				return errInvalidSources
			}
			return nil
		},
	}
}

// main validates the given files and exits with status 1 when any is invalid.
func main() {
	app := newApp()
	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr
	if err := app.Run(context.Background(), os.Args); err != nil {
		if !errors.Is(err, errInvalidSources) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
