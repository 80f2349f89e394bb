package persistence

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/talgya/neolithic/internal/config"
	"github.com/talgya/neolithic/internal/economy"
	"github.com/talgya/neolithic/internal/engine"
)

func resolveTurns(t *testing.T, n int) []engine.Outcome {
	t.Helper()
	sess := config.Default().NewSession(11)
	out := make([]engine.Outcome, n)
	for i := range out {
		out[i] = sess.Resolve()
	}
	return out
}

func TestHistoryRoundTrip(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	id, err := db.BeginSession(11, config.Default().Rules)
	if err != nil {
		t.Fatal(err)
	}
	if last, err := db.GetMeta("last_session"); err != nil || last != id {
		t.Fatalf("last_session = %q, %v", last, err)
	}
	sess, err := db.GetSession(id)
	if err != nil {
		t.Fatal(err)
	}
	if sess.Seed != 11 || !json.Valid([]byte(sess.RulesJSON)) {
		t.Fatalf("session = %+v", sess)
	}

	outcomes := resolveTurns(t, 3)
	for _, o := range outcomes {
		if err := db.RecordTurn(TurnRecord{SessionID: id, Outcome: o, Orders: "assign 1 man tools", Advice: "hold"}); err != nil {
			t.Fatal(err)
		}
	}

	rows, err := db.RecentTurns(id, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0].Turn != 3 || rows[1].Turn != 2 {
		t.Fatalf("rows = %+v", rows)
	}
	rep, err := rows[0].Report()
	if err != nil {
		t.Fatal(err)
	}
	want := outcomes[2].Report
	if rep.PopulationTotal != want.PopulationTotal || rep.FoodSettlement != want.FoodSettlement {
		t.Fatalf("report = %+v, want %+v", rep, want)
	}
	if rep.Stocks[economy.ActivityStorage] != want.Stocks[economy.ActivityStorage] {
		t.Fatalf("storage stock = %d, want %d", rep.Stocks[economy.ActivityStorage], want.Stocks[economy.ActivityStorage])
	}
	if rep.Coverage[economy.ActivityCulture] != want.Coverage[economy.ActivityCulture] {
		t.Fatalf("coverage lost in round trip")
	}
	evs, err := rows[0].Events()
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != len(outcomes[2].Events) {
		t.Fatalf("events = %v, want %v", evs, outcomes[2].Events)
	}
	if rows[0].Draws != int64(outcomes[2].Draws) || rows[0].Orders != "assign 1 man tools" {
		t.Fatalf("row = %+v", rows[0])
	}

	if other, err := db.RecentTurns("missing", 10); err != nil || len(other) != 0 {
		t.Fatalf("unknown session returned %v, %v", other, err)
	}
}

func TestMetaOverwrite(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "meta.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if err := db.SaveMeta("k", "1"); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveMeta("k", "2"); err != nil {
		t.Fatal(err)
	}
	if v, err := db.GetMeta("k"); err != nil || v != "2" {
		t.Fatalf("meta = %q, %v", v, err)
	}
	if _, err := db.GetMeta("absent"); err == nil {
		t.Fatalf("missing key should error")
	}
}

func TestJournalAppendsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal", "turns.jsonl.zst")
	outcomes := resolveTurns(t, 3)

	j, err := OpenJournal(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, o := range outcomes[:2] {
		if err := j.Write(TurnRecord{SessionID: "s1", Outcome: o}); err != nil {
			t.Fatal(err)
		}
	}
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}
	if err := j.Write(TurnRecord{}); err == nil {
		t.Fatalf("write after close should fail")
	}

	j, err = OpenJournal(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := j.Write(TurnRecord{SessionID: "s1", Outcome: outcomes[2], Orders: "clear culture"}); err != nil {
		t.Fatal(err)
	}
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}

	recs, err := ReadJournal(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("records = %d, want 3", len(recs))
	}
	for i, rec := range recs {
		if rec.Outcome.Turn != i+1 {
			t.Fatalf("record %d has turn %d", i, rec.Outcome.Turn)
		}
	}
	if recs[2].Orders != "clear culture" || recs[2].Outcome.Report.FoodSettlement != outcomes[2].Report.FoodSettlement {
		t.Fatalf("last record = %+v", recs[2])
	}
}
