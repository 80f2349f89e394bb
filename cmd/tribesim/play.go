package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/talgya/neolithic/internal/render"
)

var playTurns int

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the settlement from the console",
	Long: `Play reads orders from standard input, one per line:

  assign 3 farmer agriculture
  move 2 man agriculture fishing
  remove 1 soldier hunting
  set 4 woman childcare
  clear governance

An empty line or "next" resolves the turn. "status" shows the settlement,
"table" the last turn as a table, and "quit" leaves.

With --turns N, play resolves N turns without reading input.`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().IntVarP(&playTurns, "turns", "n", 0, "Resolve this many turns non-interactively")
}

func runPlay(cmd *cobra.Command, args []string) error {
	rt, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "seed %d, %s\n", rt.seed, rt.cfg.Season)

	if playTurns > 0 {
		for range playTurns {
			printTurn(cmd.Context(), out, rt)
		}
		return nil
	}
	return playLoop(cmd.Context(), cmd.InOrStdin(), out, rt)
}

func playLoop(ctx context.Context, in io.Reader, out io.Writer, rt *app) error {
	warn := color.New(color.FgRed)
	ok := color.New(color.FgGreen)

	sc := bufio.NewScanner(in)
	prompt := func() { fmt.Fprint(out, "> ") }
	prompt()
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch strings.ToLower(line) {
		case "quit", "exit":
			return nil
		case "", "next", "end":
			printTurn(ctx, out, rt)
		case "status":
			st := rt.game.Status()
			fmt.Fprintf(out, "turn %d, %s, %d people, %d assigned, %d orders pending\n",
				st.Turn, st.Season, st.Population, st.Assigned, st.Pending)
			if preview := rt.game.Preview(); preview != "" {
				fmt.Fprintln(out, preview)
			}
		case "table":
			last := rt.game.Last()
			if last == nil {
				fmt.Fprintln(out, "no turn resolved yet")
				break
			}
			if err := render.Table(out, last.Outcome.Report); err != nil {
				return err
			}
		case "help":
			fmt.Fprintln(out, "orders: assign|remove|set N archetype activity, move N archetype from to, clear activity")
			fmt.Fprintln(out, "commands: next, status, table, quit")
		default:
			applied, err := rt.game.SubmitOrders(line)
			if err != nil {
				warn.Fprintf(out, "rejected: %v\n", err)
				break
			}
			for _, o := range applied {
				ok.Fprintf(out, "ok: %s\n", o)
			}
		}
		prompt()
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read orders: %w", err)
	}
	fmt.Fprintln(out)
	return nil
}

func printTurn(ctx context.Context, out io.Writer, rt *app) {
	res := rt.game.Resolve(ctx)
	fmt.Fprintln(out, render.Title(res.Outcome.Label))
	fmt.Fprintln(out, res.Compact)
	fmt.Fprintf(out, "\nEvents >\n%s\n\n", render.Events(res.Outcome.Events))
	fmt.Fprintln(out, res.Advice.Text())
	fmt.Fprintln(out)
}
