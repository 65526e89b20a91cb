// Command analyze prints quick, human-readable statistics about puzzle
// sources: how many puzzles parsed, which language pairs they cover, grid
// sizes, and how many words each grid hides. Sources are files given as
// arguments or, without arguments, the whole catalog.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/wordsearch-translate/game/config"
	"github.com/wricardo/wordsearch-translate/game/group"
	"github.com/wricardo/wordsearch-translate/game/puzzle"
)

// SourceAnalysis summarizes one puzzle source
type SourceAnalysis struct {
	Name          string                `json:"name"`
	Puzzles       int                   `json:"puzzles"`
	Stats         group.ValidationStats `json:"stats"`
	Error         string                `json:"error,omitempty"`
	LanguagePairs map[string]int        `json:"language_pairs,omitempty"`
	GridSizes     map[string]int        `json:"grid_sizes,omitempty"`
	SquareGrids   int                   `json:"square_grids"`
	TotalWords    int                   `json:"total_words"`
	MinWords      int                   `json:"min_words"`
	MaxWords      int                   `json:"max_words"`
	LongestWord   string                `json:"longest_word,omitempty"`
}

// AverageWords returns the mean number of hidden words per puzzle
func (a SourceAnalysis) AverageWords() float64 {
	if a.Puzzles == 0 {
		return 0
	}
	return float64(a.TotalWords) / float64(a.Puzzles)
}

func analyzeBlob(name string, blob []byte) SourceAnalysis {
	puzzles, stats, err := group.Scan(name, blob)
	analysis := summarize(name, puzzles)
	analysis.Stats = stats
	if err != nil {
		analysis.Error = err.Error()
	}
	return analysis
}

func summarize(name string, puzzles []*puzzle.Puzzle) SourceAnalysis {
	analysis := SourceAnalysis{
		Name:          name,
		Puzzles:       len(puzzles),
		LanguagePairs: make(map[string]int),
		GridSizes:     make(map[string]int),
	}

	for i, p := range puzzles {
		analysis.LanguagePairs[p.SourceLanguage()+"→"+p.TargetLanguage()]++

		d := p.Dimensions()
		analysis.GridSizes[fmt.Sprintf("%dx%d", d.Columns, d.Rows)]++
		if p.IsSquare() {
			analysis.SquareGrids++
		}

		words := p.TargetWords()
		analysis.TotalWords += len(words)
		if i == 0 || len(words) < analysis.MinWords {
			analysis.MinWords = len(words)
		}
		if len(words) > analysis.MaxWords {
			analysis.MaxWords = len(words)
		}
		for _, w := range words {
			if utf8.RuneCountInString(w) > utf8.RuneCountInString(analysis.LongestWord) {
				analysis.LongestWord = w
			}
		}
	}

	return analysis
}

func analyzeFiles(files []string) []SourceAnalysis {
	results := make([]SourceAnalysis, 0, len(files))
	for _, file := range files {
		blob, err := os.ReadFile(file)
		if err != nil {
			results = append(results, SourceAnalysis{Name: filepath.Base(file), Error: err.Error()})
			continue
		}
		results = append(results, analyzeBlob(filepath.Base(file), blob))
	}
	return results
}

func analyzeCatalog(dir string) ([]SourceAnalysis, error) {
	catalog, err := config.NewManager(dir)
	if err != nil {
		return nil, err
	}
	sources, err := catalog.ListSources()
	if err != nil {
		return nil, err
	}

	results := make([]SourceAnalysis, 0, len(sources))
	for _, src := range sources {
		blob, err := catalog.LoadBlob(src.Name)
		if err != nil {
			results = append(results, SourceAnalysis{Name: src.Name, Error: err.Error()})
			continue
		}
		results = append(results, analyzeBlob(src.Name, blob))
	}
	return results, nil
}

func sortedCounts(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s×%d", k, m[k]))
	}
	return out
}

func printAnalysis(w io.Writer, results []SourceAnalysis) {
	for _, a := range results {
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", a.Name)
		if a.Error != "" {
			fmt.Fprintf(w, "Error: %s\n", a.Error)
			if a.Puzzles == 0 {
				continue
			}
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "Puzzles:\t%d (%d lines, %d empty, %d failed)\n",
			a.Puzzles, a.Stats.LineCount, a.Stats.EmptyLines, a.Stats.JSONProcessingFailure)
		fmt.Fprintf(tw, "Languages:\t%v\n", sortedCounts(a.LanguagePairs))
		fmt.Fprintf(tw, "Grids:\t%v (%d square)\n", sortedCounts(a.GridSizes), a.SquareGrids)
		fmt.Fprintf(tw, "Words:\t%d total, %d-%d per puzzle, %.1f average\n",
			a.TotalWords, a.MinWords, a.MaxWords, a.AverageWords())
		if a.LongestWord != "" {
			fmt.Fprintf(tw, "Longest word:\t%s\n", a.LongestWord)
		}
		tw.Flush()
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Print statistics about word search puzzle sources",
		ArgsUsage: "[file.txt ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Usage:   "Puzzle directory analyzed when no files are given",
				Sources: cli.EnvVars("PUZZLE_DIR"),
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the analysis as JSON",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.Root().ErrWriter}).Level(zerolog.ErrorLevel)

			var results []SourceAnalysis
			if cmd.Args().Len() > 0 {
				results = analyzeFiles(cmd.Args().Slice())
			} else {
				var err error
				results, err = analyzeCatalog(cmd.String("dir"))
				if err != nil {
					return err
				}
			}

			if cmd.Bool("json") {
				enc := json.NewEncoder(cmd.Root().Writer)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			printAnalysis(cmd.Root().Writer, results)
			return nil
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
