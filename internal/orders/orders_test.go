package orders

import (
	"errors"
	"strings"
	"testing"

	"github.com/talgya/neolithic/internal/economy"
	"github.com/talgya/neolithic/internal/workers"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "assign 3 farmer agriculture", want: "assign 3 farmer agriculture"},
		{in: "ASSIGN 3 Farmers Agriculture", want: "assign 3 farmer agriculture"},
		{in: "add 2 women childcare", want: "assign 2 woman childcare"},
		{in: "move 2 man agricultre fishing", want: "move 2 man agriculture fishing"},
		{in: "remove 1 elder-man education", want: "remove 1 elder_man education"},
		{in: "set 0 soldier defense", want: "set 0 soldier defense"},
		{in: "clear governance", want: "clear governance"},
		{in: "assign 1 🧑‍🌾 🌾", want: "assign 1 farmer agriculture"},
		{in: "assign 4 children fishing", want: "assign 4 child fishing"},
	}
	for _, tc := range tests {
		o, err := ParseLine(tc.in)
		if err != nil {
			t.Fatalf("ParseLine(%q): %v", tc.in, err)
		}
		if got := o.String(); got != tc.want {
			t.Fatalf("ParseLine(%q)=%q want=%q", tc.in, got, tc.want)
		}
	}
}

func TestParseLineErrors(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{in: "hire 3 man tools", want: ErrSyntax},
		{in: "assign x man tools", want: ErrSyntax},
		{in: "assign 0 man tools", want: ErrSyntax},
		{in: "assign -2 man tools", want: ErrSyntax},
		{in: "assign 2 man", want: ErrSyntax},
		{in: "move 2 man tools", want: ErrSyntax},
		{in: "clear", want: ErrSyntax},
		{in: "assign 1 wizard tools", want: ErrUnknownArchetype},
		{in: "assign 1 wman tools", want: ErrUnknownArchetype},
		{in: "assign 1 man alchemy", want: ErrUnknownActivity},
		{in: "assign 1 man food_net", want: ErrUnknownActivity},
		{in: "move 1 man tools nowhere", want: ErrUnknownActivity},
	}
	for _, tc := range tests {
		_, err := ParseLine(tc.in)
		if !errors.Is(err, tc.want) {
			t.Fatalf("ParseLine(%q) err=%v want %v", tc.in, err, tc.want)
		}
	}
}

func TestParseSkipsCommentsAndBlankLines(t *testing.T) {
	text := `
# spring plan
assign 2 farmer agriculture   # more grain

move 1 man storage tools
`
	got, err := Parse(text)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("orders = %d, want 2", len(got))
	}
	if got[0].Line != 3 || got[1].Line != 5 {
		t.Fatalf("line numbers = %d, %d", got[0].Line, got[1].Line)
	}
	if Summary(got) != "assign 2 farmer agriculture; move 1 man storage tools" {
		t.Fatalf("summary = %q", Summary(got))
	}
}

func TestParseReportsLine(t *testing.T) {
	_, err := Parse("assign 1 man tools\nassign 1 wizard tools\n")
	if !errors.Is(err, ErrUnknownArchetype) {
		t.Fatalf("err = %v", err)
	}
	if !strings.HasPrefix(err.Error(), "line 2:") {
		t.Fatalf("err = %q, want line 2 prefix", err)
	}
}

func TestApply(t *testing.T) {
	base := economy.Assignments{}
	base.Set(economy.ActivityStorage, workers.ArchetypeMan, 3)
	base.Set(economy.ActivityGovernance, workers.ArchetypeLeader, 1)

	orders, err := Parse(`
move 2 man storage tools
assign 1 storekeeper storage
set 2 organizer governance
clear governance
assign 1 organizer governance
`)
	if err != nil {
		t.Fatal(err)
	}
	next, err := Apply(base, orders)
	if err != nil {
		t.Fatal(err)
	}

	checks := []struct {
		act  economy.Activity
		a    workers.Archetype
		want int
	}{
		{economy.ActivityStorage, workers.ArchetypeMan, 1},
		{economy.ActivityTools, workers.ArchetypeMan, 2},
		{economy.ActivityStorage, workers.ArchetypeStorekeeper, 1},
		{economy.ActivityGovernance, workers.ArchetypeLeader, 0},
		{economy.ActivityGovernance, workers.ArchetypeOrganizer, 1},
	}
	for _, c := range checks {
		if got := next.Count(c.act, c.a); got != c.want {
			t.Errorf("%s/%s = %d, want %d", c.act, c.a, got, c.want)
		}
	}
	if base.Count(economy.ActivityStorage, workers.ArchetypeMan) != 3 {
		t.Fatalf("Apply mutated its input")
	}
}

func TestApplyIsAllOrNothing(t *testing.T) {
	base := economy.Assignments{}
	base.Set(economy.ActivityStorage, workers.ArchetypeMan, 3)

	orders, err := Parse("assign 5 man tools\nremove 4 man storage\n")
	if err != nil {
		t.Fatal(err)
	}
	next, err := Apply(base, orders)
	if !errors.Is(err, ErrInsufficientWorkers) {
		t.Fatalf("err = %v, want ErrInsufficientWorkers", err)
	}
	if next != nil {
		t.Fatalf("failed apply returned a table")
	}
	if base.Count(economy.ActivityTools, workers.ArchetypeMan) != 0 {
		t.Fatalf("partial orders leaked into the original table")
	}
}

func TestApplyDoesNotCheckDemographics(t *testing.T) {
	orders, err := Parse("assign 500 man construction")
	if err != nil {
		t.Fatal(err)
	}
	next, err := Apply(economy.Assignments{}, orders)
	if err != nil {
		t.Fatalf("over-assignment should be accepted: %v", err)
	}
	if next.Count(economy.ActivityConstruction, workers.ArchetypeMan) != 500 {
		t.Fatalf("count = %d", next.Count(economy.ActivityConstruction, workers.ArchetypeMan))
	}
}

func TestClearKeepsEntry(t *testing.T) {
	base := economy.Assignments{}
	base.Set(economy.ActivityHunting, workers.ArchetypeSoldier, 3)
	next, err := Apply(base, []Order{{Verb: VerbClear, Activity: economy.ActivityHunting}})
	if err != nil {
		t.Fatal(err)
	}
	crew, ok := next[economy.ActivityHunting]
	if !ok || !crew.Empty() {
		t.Fatalf("cleared activity should remain with an empty crew, got %v %v", crew, ok)
	}
}

func TestSuggest(t *testing.T) {
	if got := Suggest("storekeepr", workers.Names()); got != "storekeeper" {
		t.Fatalf("Suggest = %q", got)
	}
	if got := Suggest("zzzzzzzzzz", economy.ActivityNames()); got != "" {
		t.Fatalf("Suggest should give up on noise, got %q", got)
	}
}
