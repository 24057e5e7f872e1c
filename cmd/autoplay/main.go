// Command autoplay plays tic-tac-toe matches against a running server through
// its REST API. Two bot players take the X and O seats, each driven by a
// strategy ("minimax" or "random"), and the final leaderboard is printed.
//
// It is handy for smoke-testing a deployment and for filling the statistics
// tables with data.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/tictactoe/game/engine"
	"github.com/wricardo/tictactoe/game/service"
	"github.com/wricardo/tictactoe/transport/mcp"
)

// Tally counts match outcomes from X's point of view
type Tally struct {
	XWins int
	OWins int
	Draws int
}

// Options controls a run of matches
type Options struct {
	Games    int
	Resume   string // match ID to finish before starting new ones
	XName    string
	OName    string
	Delay    time.Duration
	Verbose  bool
	Strategy map[engine.Mark]Strategy
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "autoplay: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "autoplay",
		Usage: "play bot matches against a tic-tac-toe server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "game server URL"},
			&cli.IntFlag{Name: "games", Value: 10, Usage: "number of new matches to play"},
			&cli.StringFlag{Name: "x", Value: "minimax", Usage: "strategy for X: minimax or random"},
			&cli.StringFlag{Name: "o", Value: "random", Usage: "strategy for O: minimax or random"},
			&cli.IntFlag{Name: "seed", Value: 1, Usage: "seed for random strategies"},
			&cli.StringFlag{Name: "continue", Usage: "finish an existing match by ID first"},
			&cli.DurationFlag{Name: "delay", Usage: "pause between moves"},
			&cli.BoolFlag{Name: "v", Usage: "verbose output"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			defer logger.Sync()

			seed := uint64(cmd.Int("seed"))
			xs, err := NewStrategy(cmd.String("x"), seed)
			if err != nil {
				return err
			}
			ostrat, err := NewStrategy(cmd.String("o"), seed+1)
			if err != nil {
				return err
			}

			opts := Options{
				Games:    int(cmd.Int("games")),
				Resume:   cmd.String("continue"),
				XName:    "bot-x-" + xs.Name(),
				OName:    "bot-o-" + ostrat.Name(),
				Delay:    cmd.Duration("delay"),
				Verbose:  cmd.Bool("v"),
				Strategy: map[engine.Mark]Strategy{engine.X: xs, engine.O: ostrat},
			}

			client := NewClient(cmd.String("url"))
			logger.Info("connecting to game server", zap.String("url", cmd.String("url")))

			tally, err := Run(ctx, client, opts, logger)
			if err != nil {
				return err
			}
			return printSummary(ctx, cmd.Root().Writer, client, tally)
		},
	}
}

// Run plays opts.Games matches, finishing opts.Resume first when set
func Run(ctx context.Context, client *Client, opts Options, logger *zap.Logger) (Tally, error) {
	var tally Tally

	if opts.Resume != "" {
		view, err := client.GetMatch(ctx, opts.Resume)
		if err != nil {
			return tally, err
		}
		logger.Info("resuming match", zap.String("match_id", view.MatchID), zap.String("turn", string(view.Turn)))
		if err := playMatch(ctx, client, view, opts, logger, &tally); err != nil {
			return tally, err
		}
	}

	if opts.Games <= 0 {
		return tally, nil
	}

	px, err := client.EnsurePlayer(ctx, opts.XName)
	if err != nil {
		return tally, err
	}
	po, err := client.EnsurePlayer(ctx, opts.OName)
	if err != nil {
		return tally, err
	}

	for i := 0; i < opts.Games; i++ {
		view, err := client.StartMatch(ctx, px.ID, po.ID)
		if err != nil {
			return tally, err
		}
		logger.Info("match started",
			zap.Int("game", i+1),
			zap.Int("of", opts.Games),
			zap.String("match_id", view.MatchID))

		if err := playMatch(ctx, client, view, opts, logger, &tally); err != nil {
			return tally, err
		}
	}
	return tally, nil
}

func playMatch(ctx context.Context, client *Client, view *service.MatchView, opts Options, logger *zap.Logger, tally *Tally) error {
	state := view.GameState
	winner := view.Winner

	for !state.Terminal {
		strategy, ok := opts.Strategy[state.Turn]
		if !ok {
			return fmt.Errorf("no strategy for %s", state.Turn)
		}
		pos, err := strategy.NextMove(state)
		if err != nil {
			return err
		}

		result, err := client.Move(ctx, view.MatchID, pos)
		if err != nil {
			return err
		}
		if opts.Verbose {
			logger.Debug("move",
				zap.String("match_id", view.MatchID),
				zap.String("mark", string(state.Turn)),
				zap.Int("position", pos),
				zap.String("result", string(result.Result)))
		}

		state = result.GameState
		winner = result.Winner

		if opts.Delay > 0 {
			select {
			case <-time.After(opts.Delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	switch {
	case winner == nil:
		tally.Draws++
	case *winner == engine.X:
		tally.XWins++
	default:
		tally.OWins++
	}

	outcome := "draw"
	if winner != nil {
		outcome = string(*winner) + " wins"
	}
	logger.Info("match finished", zap.String("match_id", view.MatchID), zap.String("outcome", outcome))
	return nil
}

func printSummary(ctx context.Context, w io.Writer, client *Client, tally Tally) error {
	fmt.Fprintf(w, "\nX wins: %d  O wins: %d  Draws: %d\n\n", tally.XWins, tally.OWins, tally.Draws)

	stats, err := client.Leaderboard(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, mcp.FormatLeaderboard(stats))
	return err
}
