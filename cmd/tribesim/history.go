package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/talgya/neolithic/internal/config"
	"github.com/talgya/neolithic/internal/persistence"
	"github.com/talgya/neolithic/internal/render"
)

var (
	historyLimit   int
	historySession string
	historyTable   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded turns of a session",
	Long: `History prints the most recent turns stored in the database, newest
first. Without --session it shows the last session started.

A journal file can be read instead with --journal.`,
	RunE: runHistory,
}

var validateCmd = &cobra.Command{
	Use:   "validate [config.yaml]",
	Short: "Check a rules file against the schema and resolve it",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidate,
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the effective rule set as JSON",
	RunE:  runRules,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of turns to show")
	historyCmd.Flags().StringVar(&historySession, "session", "", "Session ID (default: last session)")
	historyCmd.Flags().BoolVar(&historyTable, "table", false, "Render each turn as a table")
}

func runHistory(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if journalPath != "" {
		recs, err := persistence.ReadJournal(journalPath)
		if err != nil {
			return err
		}
		start := max(len(recs)-historyLimit, 0)
		for i := len(recs) - 1; i >= start; i-- {
			o := recs[i].Outcome
			fmt.Fprintln(out, render.Title(o.Label))
			if err := render.Table(out, o.Report); err != nil {
				return err
			}
			fmt.Fprintln(out, render.Events(o.Events))
		}
		return nil
	}

	db, err := persistence.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	id := historySession
	if id == "" {
		id, err = db.GetMeta("last_session")
		if err != nil {
			return fmt.Errorf("no recorded session: %w", err)
		}
	}
	sess, err := db.GetSession(id)
	if err != nil {
		return err
	}
	rows, err := db.RecentTurns(id, historyLimit)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "session %s, seed %d, started %s\n", sess.ID, sess.Seed, sess.CreatedAt)
	if len(rows) == 0 {
		fmt.Fprintln(out, "no turns recorded")
		return nil
	}
	for _, row := range rows {
		fmt.Fprintln(out, render.Title(row.Label))
		if historyTable {
			rep, err := row.Report()
			if err != nil {
				return err
			}
			if err := render.Table(out, rep); err != nil {
				return err
			}
		}
		evs, err := row.Events()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, render.Events(evs))
		if row.Orders != "" {
			fmt.Fprintf(out, "orders: %s\n", row.Orders)
		}
	}
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := configPath
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return errors.New("no config file given")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	cfg, err := config.Parse(b)
	if err != nil {
		return err
	}
	events := 0
	for _, s := range cfg.Rules.EventSeasons() {
		events += len(cfg.Rules.Events(s))
	}
	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "%s: ok (%d people, %d events, season %s)\n",
		path, cfg.Scenario.Demographics.Total(), events, cfg.Season)
	return nil
}

func runRules(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(cfg.Rules)
}
