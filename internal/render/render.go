// Package render formats turn reports for the console and the advisor prompt.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/talgya/neolithic/internal/economy"
	"github.com/talgya/neolithic/internal/engine"
	"github.com/talgya/neolithic/internal/workers"
)

const rule = "——"

var (
	titleColor = color.New(color.FgCyan, color.Bold)
	eventColor = color.New(color.FgYellow)
	alertColor = color.New(color.FgRed, color.Bold)
)

// Crew renders the non-zero counts of one activity as symbol+count pairs in
// archetype order.
func Crew(as economy.Assignments, act economy.Activity) string {
	var b strings.Builder
	crew := as[act]
	for _, a := range workers.All() {
		if n := crew[a]; n != 0 {
			fmt.Fprintf(&b, "%s%d", a.Symbol(), n)
		}
	}
	return b.String()
}

// TurnsOfFood is how many turns the storage stock lasts at this turn's consumption.
func TurnsOfFood(rep engine.TurnReport) int {
	return max(0, rep.Stocks[economy.ActivityStorage]/max(1, rep.FoodSettlement.Consumed))
}

// Compact renders a report as the multi-line status block shown to the player
// and embedded in the advisor prompt.
func Compact(rep engine.TurnReport, as economy.Assignments, d workers.Demographics) string {
	food := rep.FoodSettlement
	flow := func(act economy.Activity) string {
		return fmt.Sprintf("%s%d•%s", act.Symbol(), rep.Flows[act], Crew(as, act))
	}
	coverage := func(act economy.Activity) string {
		return fmt.Sprintf("%s %.1f%%•%s", act.Symbol(), rep.Coverage[act].CoveragePct, Crew(as, act))
	}

	lines := []string{
		fmt.Sprintf("👥%d (💪%d)", rep.PopulationTotal, d.Workforce()),
		demographics(d),
		rule,
		fmt.Sprintf("%s %s(+%d)•%s | ~%dt",
			economy.ActivityStorage.Symbol(), humanize.Comma(int64(rep.Stocks[economy.ActivityStorage])),
			food.Stored, Crew(as, economy.ActivityStorage), TurnsOfFood(rep)),
		fmt.Sprintf("%s +%d(-%d) = %+d", economy.FoodNet.Symbol(), food.Produced, food.Consumed, food.Net),
		"{ " + strings.Join([]string{
			flow(economy.ActivityAgriculture), "|", flow(economy.ActivityFishing), "|", flow(economy.ActivityHunting),
		}, " ") + " }",
		rule,
		fmt.Sprintf("%s %s(+%d)•%s", economy.ActivityTools.Symbol(),
			humanize.Comma(int64(rep.Stocks[economy.ActivityTools])), rep.Flows[economy.ActivityTools], Crew(as, economy.ActivityTools)),
		fmt.Sprintf("%s +%d•%s", economy.ActivityResearch.Symbol(), rep.Flows[economy.ActivityResearch], Crew(as, economy.ActivityResearch)),
		fmt.Sprintf("%s +%d•%s", economy.ActivityConstruction.Symbol(), rep.Flows[economy.ActivityConstruction], Crew(as, economy.ActivityConstruction)),
		fmt.Sprintf("%s %d•%s", economy.ActivityDefense.Symbol(), rep.Flows[economy.ActivityDefense], Crew(as, economy.ActivityDefense)),
	}
	for _, act := range sortedCoverage(rep) {
		lines = append(lines, coverage(act))
	}
	lines = append(lines,
		fmt.Sprintf("%s %d•%s", economy.ActivityGovernance.Symbol(), rep.Governance.MaturityIndex, Crew(as, economy.ActivityGovernance)),
		rule,
	)
	return strings.Join(lines, "\n")
}

func demographics(d workers.Demographics) string {
	parts := make([]string, 0, 7)
	for _, a := range []workers.Archetype{
		workers.ArchetypeMan, workers.ArchetypeWoman, workers.ArchetypePregnant, workers.ArchetypeInfant,
		workers.ArchetypeChild, workers.ArchetypeElderMan, workers.ArchetypeElderWoman,
	} {
		parts = append(parts, fmt.Sprintf("%s%d", a.Symbol(), d.Count(a)))
	}
	return strings.Join(parts, " ")
}

func sortedCoverage(rep engine.TurnReport) []economy.Activity {
	var out []economy.Activity
	for _, act := range economy.Activities() {
		if _, ok := rep.Coverage[act]; ok {
			out = append(out, act)
		}
	}
	return out
}

// Table writes flows, stocks and coverage as a table.
func Table(w io.Writer, rep engine.TurnReport) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"", "Activity", "Flow", "Stock", "Coverage"}),
	)
	for _, act := range economy.Activities() {
		flow, hasFlow := rep.Flows[act]
		cov, hasCov := rep.Coverage[act]
		if !hasFlow && !hasCov {
			continue
		}
		row := []string{act.Symbol(), act.String(), "", "", ""}
		if hasFlow {
			row[2] = humanize.Comma(int64(flow))
		}
		if stock, ok := rep.Stocks[act]; ok {
			row[3] = humanize.Comma(int64(stock))
		}
		if hasCov {
			row[4] = fmt.Sprintf("%.1f%%", cov.CoveragePct)
		}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("append %s: %w", act, err)
		}
	}
	if err := table.Append([]string{economy.FoodNet.Symbol(), economy.FoodNet.String(),
		fmt.Sprintf("%+d", rep.FoodSettlement.Net), "", ""}); err != nil {
		return fmt.Errorf("append food: %w", err)
	}
	return table.Render()
}

// Events renders one line per fired event.
func Events(events []engine.FiredEvent) string {
	if len(events) == 0 {
		return " - (none)"
	}
	lines := make([]string, len(events))
	for i, ev := range events {
		line := fmt.Sprintf(" - %s", ev.Description)
		if ev.Severity >= 2 {
			line = alertColor.Sprint(line)
		} else {
			line = eventColor.Sprint(line)
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// Title renders a turn heading.
func Title(label string) string {
	return titleColor.Sprintf("===== %s =====", label)
}

// Outcome renders a resolved turn: heading, compact block and events.
func Outcome(o engine.Outcome, as economy.Assignments, d workers.Demographics) string {
	var b strings.Builder
	b.WriteString(Title(o.Label))
	b.WriteString("\n")
	b.WriteString(Compact(o.Report, as, d))
	b.WriteString("\n\nEvents >\n")
	b.WriteString(Events(o.Events))
	return b.String()
}
