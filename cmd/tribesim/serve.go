package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/talgya/neolithic/internal/api"
)

var (
	servePort     int
	serveInterval time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the game over HTTP",
	Long: `Serve exposes the game as a JSON API with a websocket turn stream.

Orders and turn resolution are POST endpoints guarded by the bearer token in
TRIBESIM_ADMIN_KEY. With --interval, turns also resolve on a timer.

Examples:
  tribesim serve --port 8080
  tribesim serve --interval 30s --turns-per-season 3`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Port to listen on")
	serveCmd.Flags().DurationVar(&serveInterval, "interval", 0, "Resolve a turn on this interval; 0 waits for POST /api/v1/turn")
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := api.NewServer(rt.game, servePort, "")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx) })
	if serveInterval > 0 {
		g.Go(func() error { return autoResolve(ctx, rt, serveInterval) })
	}

	slog.Info("serving", "port", servePort, "seed", rt.seed, "interval", serveInterval)
	return g.Wait()
}

func autoResolve(ctx context.Context, rt *app, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			res := rt.game.Resolve(ctx)
			slog.Info("auto turn", "turn", res.Outcome.Turn, "label", res.Outcome.Label)
		}
	}
}
