// Command tribesim runs the Neolithic settlement turn engine, either as a
// console game or as an HTTP service.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/talgya/neolithic/internal/config"
	"github.com/talgya/neolithic/internal/economy"
	"github.com/talgya/neolithic/internal/entropy"
	"github.com/talgya/neolithic/internal/game"
	"github.com/talgya/neolithic/internal/llm"
	"github.com/talgya/neolithic/internal/persistence"
)

var version = "0.3.0"

// Global flags.
var (
	configPath     string
	seedFlag       int64
	dbPath         string
	journalPath    string
	seasonFlag     string
	logLevel       string
	turnsPerSeason int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tribesim",
	Short: "Turn engine for a Neolithic settlement",
	Long: `tribesim resolves turns for a small Neolithic settlement: workers are
assigned to activities, production and food are settled, services are
covered, and seasonal events roll from a seeded stream.

Run "tribesim play" for the console game or "tribesim serve" for the HTTP API.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(logLevel)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "Rules and scenario YAML file (defaults built in)")
	pf.Int64Var(&seedFlag, "seed", 0, "Event stream seed (default: config seed, else random)")
	pf.StringVar(&dbPath, "db", "data/tribesim.db", "Turn history database; empty disables")
	pf.StringVar(&journalPath, "journal", "", "Compressed JSONL turn journal; empty disables")
	pf.StringVar(&seasonFlag, "season", "", "Starting season (overrides config)")
	pf.StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	pf.IntVar(&turnsPerSeason, "turns-per-season", 0, "Advance the season every N turns; 0 keeps it fixed")

	rootCmd.AddCommand(playCmd, serveCmd, historyCmd, validateCmd, rulesCmd)
}

func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	}))
	slog.SetDefault(logger)
	return nil
}

// app is everything a game-running command opens.
type app struct {
	cfg     config.Config
	seed    int64
	db      *persistence.DB
	journal *persistence.Journal
	game    *game.Game
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if seasonFlag != "" {
		cfg.Season = economy.NormalizeSeason(seasonFlag)
	}
	return cfg, nil
}

// resolveSeed picks the flag, then the config seed, then a fresh one.
func resolveSeed(cmd *cobra.Command, cfg config.Config) int64 {
	switch {
	case cmd.Flags().Changed("seed"):
		return seedFlag
	case cfg.HasSeed:
		return cfg.Seed
	default:
		return entropy.NewSeed(entropy.NewClient(os.Getenv("RANDOM_ORG_API_KEY")))
	}
}

func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	rt := &app{cfg: cfg, seed: resolveSeed(cmd, cfg)}

	if strings.TrimSpace(dbPath) != "" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		rt.db, err = persistence.Open(dbPath)
		if err != nil {
			return nil, err
		}
		slog.Info("database opened", "path", dbPath)
	}
	if strings.TrimSpace(journalPath) != "" {
		rt.journal, err = persistence.OpenJournal(journalPath)
		if err != nil {
			rt.close()
			return nil, err
		}
	}

	client := llm.NewClient(os.Getenv("ANTHROPIC_API_KEY"))
	if client.Enabled() {
		slog.Info("advisor enabled")
	}

	rt.game, err = game.New(cfg, rt.seed, game.Options{DB: rt.db, Journal: rt.journal, LLM: client})
	if err != nil {
		rt.close()
		return nil, err
	}
	rt.game.SetTurnsPerSeason(turnsPerSeason)
	return rt, nil
}

func (rt *app) close() {
	if rt.journal != nil {
		if err := rt.journal.Close(); err != nil {
			slog.Error("close journal", "error", err)
		}
	}
	if rt.db != nil {
		if err := rt.db.Close(); err != nil {
			slog.Error("close database", "error", err)
		}
	}
}
