// Command autoplay is a bot that plays a word search session through the
// REST API until every puzzle in the group is solved. When translations are
// displayed it searches the grid for each listed word; otherwise it sweeps
// every straight run of cells and lets the server judge them.
//
// The session ID is saved to .session so the next run resumes it; pass
// --continue to pick a session explicitly or --fresh to always start over.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

const sessionFile = ".session"

var errGaveUp = errors.New("gave up before the group was completed")

// PlayStats summarizes one run
type PlayStats struct {
	Gestures      int
	Matches       int
	PuzzlesSolved int
}

// play solves puzzles until the group is complete or a puzzle exhausts its
// gesture budget.
func play(ctx context.Context, client *Client, strategy *Strategy, maxGestures int) (PlayStats, error) {
	var stats PlayStats

	view, err := client.Puzzle(ctx)
	if err != nil {
		return stats, err
	}

	for !view.GroupCompleted {
		if len(view.Grid) == 0 || view.PuzzleSolved {
			if view, err = client.Next(ctx); err != nil {
				return stats, err
			}
			strategy.Reset()
			continue
		}

		log.Info().
			Int("puzzle", view.PuzzleIndex).
			Str("word", view.SourceWord).
			Str("from", view.SourceLanguage).
			Str("to", view.TargetLanguage).
			Int("words", view.TotalWords).
			Msg("solving puzzle")

		candidates := strategy.Candidates(view)
		if len(candidates) == 0 {
			return stats, fmt.Errorf("%w: no paths left for puzzle %d (%d words unmatched)", errGaveUp, view.PuzzleIndex, view.UnmatchedCount)
		}

		gestures := 0
		for _, path := range candidates {
			if gestures >= maxGestures {
				return stats, fmt.Errorf("%w: puzzle %d used %d gestures", errGaveUp, view.PuzzleIndex, gestures)
			}

			result, err := client.SelectPath(ctx, path)
			if err != nil {
				return stats, err
			}
			gestures++
			stats.Gestures++

			if result.Matched {
				stats.Matches++
				log.Info().Str("word", result.Word).Bool("reversed", result.Reversed).Msg("word found")
			}
			if result.Puzzle != nil {
				view = result.Puzzle
			}
			if result.PuzzleSolved {
				stats.PuzzlesSolved++
				log.Info().Int("gestures", gestures).Int("unsolved", view.UnsolvedPuzzles).Msg("puzzle solved")
				break
			}
		}
	}

	return stats, nil
}

func loadSavedSession() string {
	data, err := os.ReadFile(sessionFile)
	if err != nil {
		return ""
	}
	return string(bytes.TrimSpace(data))
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "autoplay",
		Usage: "Solve a word search session through the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Value:   "http://localhost:8080",
				Usage:   "Game server URL",
				Sources: cli.EnvVars("WORDSEARCH_API_URL"),
			},
			&cli.StringFlag{
				Name:  "source",
				Usage: "Puzzle source for a new session (empty uses the server default)",
			},
			&cli.StringFlag{
				Name:  "method",
				Usage: "Iteration method for a new session (sequential or random)",
			},
			&cli.StringFlag{
				Name:  "continue",
				Usage: "Resume playing an existing session by ID",
			},
			&cli.BoolFlag{
				Name:  "fresh",
				Usage: "Ignore the saved session and create a new one",
			},
			&cli.BoolFlag{
				Name:  "restart",
				Usage: "Restart the group before playing",
			},
			&cli.IntFlag{
				Name:  "max-gestures",
				Value: 5000,
				Usage: "Maximum gestures per puzzle",
			},
			&cli.FloatFlag{
				Name:  "rps",
				Value: 0,
				Usage: "Requests per second (0 = unlimited)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Verbose output",
			},
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	level := zerolog.InfoLevel
	if cmd.Bool("verbose") {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.Root().ErrWriter}).Level(level).With().Timestamp().Logger()

	log.Info().Str("url", cmd.String("url")).Msg("connecting to game server")
	client := NewClient(cmd.String("url"), cmd.Float("rps"))

	savedID := cmd.String("continue")
	if savedID == "" && !cmd.Bool("fresh") {
		savedID = loadSavedSession()
	}

	resumed := false
	if savedID != "" {
		info, err := client.Resume(ctx, savedID)
		if err != nil {
			log.Warn().Err(err).Str("session", savedID).Msg("failed to resume session, creating a new one")
		} else {
			resumed = true
			log.Info().Str("session", info.ID).Str("source", info.Source).Int("unsolved", info.UnsolvedPuzzles).Msg("session resumed")
		}
	}

	if !resumed {
		info, err := client.CreateSession(ctx, cmd.String("source"), cmd.String("method"))
		if err != nil {
			return err
		}
		log.Info().Str("session", info.ID).Str("source", info.Source).Int("puzzles", info.PuzzleCount).Msg("session created")

		if err := os.WriteFile(sessionFile, []byte(info.ID), 0644); err != nil {
			log.Warn().Err(err).Msg("failed to save session ID")
		}
	}

	if cmd.Bool("restart") {
		if _, err := client.Restart(ctx); err != nil {
			return err
		}
		log.Info().Msg("group restarted")
	}

	stats, err := play(ctx, client, NewStrategy(), cmd.Int("max-gestures"))
	log.Info().
		Str("session", client.SessionID()).
		Int("gestures", stats.Gestures).
		Int("matches", stats.Matches).
		Int("puzzles_solved", stats.PuzzlesSolved).
		Msg("run finished")
	if err != nil {
		return err
	}

	log.Info().Msg("group completed")
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
