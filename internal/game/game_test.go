package game

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/talgya/neolithic/internal/config"
	"github.com/talgya/neolithic/internal/economy"
	"github.com/talgya/neolithic/internal/llm"
	"github.com/talgya/neolithic/internal/orders"
	"github.com/talgya/neolithic/internal/persistence"
	"github.com/talgya/neolithic/internal/workers"
)

func newTestGame(t *testing.T, opts Options) *Game {
	t.Helper()
	g, err := New(config.Default(), 7, opts)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestSubmitOrdersAllOrNothing(t *testing.T) {
	g := newTestGame(t, Options{})
	as := func() economy.Assignments { return g.session.Settlement.Assignments }

	_, err := g.SubmitOrders("move 2 man agriculture fishing\nremove 50 soldier hunting")
	if !errors.Is(err, orders.ErrInsufficientWorkers) {
		t.Fatalf("err=%v want ErrInsufficientWorkers", err)
	}
	if got := as().Count(economy.ActivityAgriculture, workers.ArchetypeMan); got != 10 {
		t.Fatalf("agriculture men after rejected batch = %d want 10", got)
	}
	if st := g.Status(); st.Pending != 0 {
		t.Fatalf("pending=%d want 0", st.Pending)
	}

	applied, err := g.SubmitOrders("move 2 man agriculture fishing")
	if err != nil {
		t.Fatal(err)
	}
	if len(applied) != 1 {
		t.Fatalf("applied=%d want 1", len(applied))
	}
	if got := as().Count(economy.ActivityAgriculture, workers.ArchetypeMan); got != 8 {
		t.Fatalf("agriculture men = %d want 8", got)
	}
	if got := as().Count(economy.ActivityFishing, workers.ArchetypeMan); got != 2 {
		t.Fatalf("fishing men = %d want 2", got)
	}
	if st := g.Status(); st.Pending != 1 {
		t.Fatalf("pending=%d want 1", st.Pending)
	}
}

func TestSubmitOrdersParseError(t *testing.T) {
	g := newTestGame(t, Options{})
	if _, err := g.SubmitOrders("assign 1 wizard tools"); !errors.Is(err, orders.ErrUnknownArchetype) {
		t.Fatalf("err=%v want ErrUnknownArchetype", err)
	}
}

func TestResolveRecordsAndNotifies(t *testing.T) {
	dir := t.TempDir()
	db, err := persistence.Open(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	journalPath := filepath.Join(dir, "turns.jsonl.zst")
	j, err := persistence.OpenJournal(journalPath)
	if err != nil {
		t.Fatal(err)
	}

	g := newTestGame(t, Options{DB: db, Journal: j})
	id, ch := g.Subscribe()
	defer g.Unsubscribe(id)

	if g.Last() != nil {
		t.Fatal("Last before first turn should be nil")
	}
	if _, err := g.SubmitOrders("move 2 man agriculture fishing"); err != nil {
		t.Fatal(err)
	}
	res := g.Resolve(context.Background())

	if res.Outcome.Turn != 1 {
		t.Fatalf("turn=%d want 1", res.Outcome.Turn)
	}
	if res.Orders != "move 2 man agriculture fishing" {
		t.Fatalf("orders=%q", res.Orders)
	}
	if !res.Advice.Fallback {
		t.Fatal("advice without a client should be the fallback")
	}
	if res.Compact == "" {
		t.Fatal("compact report is empty")
	}

	select {
	case got := <-ch:
		if got.Outcome.Turn != 1 {
			t.Fatalf("subscriber got turn %d", got.Outcome.Turn)
		}
	default:
		t.Fatal("subscriber not notified")
	}

	st := g.Status()
	if st.Turn != 1 || st.Pending != 0 || st.Phase != "idle" {
		t.Fatalf("status=%+v", st)
	}
	if last := g.Last(); last == nil || last.Outcome.Turn != 1 {
		t.Fatalf("Last=%+v", last)
	}

	rows, err := g.History(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Orders != res.Orders {
		t.Fatalf("history rows=%+v", rows)
	}

	if err := j.Close(); err != nil {
		t.Fatal(err)
	}
	recs, err := persistence.ReadJournal(journalPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Outcome.Turn != 1 {
		t.Fatalf("journal records=%+v", recs)
	}
}

func TestHistoryWithoutStorage(t *testing.T) {
	g := newTestGame(t, Options{})
	if _, err := g.History(5); err == nil {
		t.Fatal("expected an error without a database")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	g := newTestGame(t, Options{})
	id, ch := g.Subscribe()
	g.Unsubscribe(id)
	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed")
	}
	// A resolve after unsubscribing must not panic on the closed channel.
	g.Resolve(context.Background())
}

func TestSeasonRotation(t *testing.T) {
	g := newTestGame(t, Options{})
	g.SetTurnsPerSeason(1)
	first := g.Resolve(context.Background())
	if first.Outcome.Label != "Turn 1, summer, Year 1" {
		t.Fatalf("label=%q", first.Outcome.Label)
	}
	if st := g.Status(); st.Season != "autumn" {
		t.Fatalf("season=%q want autumn", st.Season)
	}
}

// stallingAdvisor answers once release is closed or the caller gives up.
func stallingAdvisor(t *testing.T) (*llm.Client, chan struct{}, chan struct{}) {
	t.Helper()
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entered <- struct{}{}
		select {
		case <-r.Context().Done():
			return
		case <-release:
		}
		reply := `{"narrative":"The river rose.","status":"wet","opportunities":["reeds"],"options":["a","b","c"]}`
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": reply}},
		})
	}))
	t.Cleanup(srv.Close)
	return llm.NewClient("k", llm.WithURL(srv.URL)), entered, release
}

func TestPhaseResolvedWhileAdvising(t *testing.T) {
	client, entered, release := stallingAdvisor(t)
	g := newTestGame(t, Options{LLM: client})

	done := make(chan TurnResult)
	go func() { done <- g.Resolve(context.Background()) }()

	<-entered
	if st := g.Status(); st.Phase != "resolved" || st.Turn != 1 {
		t.Fatalf("status during advice = %+v", st)
	}
	if _, err := g.SubmitOrders("move 1 man agriculture fishing"); err != nil {
		t.Fatalf("orders during advice: %v", err)
	}
	close(release)

	res := <-done
	if res.Advice.Fallback || res.Advice.Narrative != "The river rose." {
		t.Fatalf("advice = %+v", res.Advice)
	}
	if st := g.Status(); st.Phase != "idle" || st.Pending != 1 {
		t.Fatalf("status after turn = %+v", st)
	}
}

func TestResolveCancelledAdvisorFallsBack(t *testing.T) {
	client, entered, release := stallingAdvisor(t)
	defer close(release)
	g := newTestGame(t, Options{LLM: client})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan TurnResult)
	go func() { done <- g.Resolve(ctx) }()

	<-entered
	cancel()
	select {
	case res := <-done:
		if !res.Advice.Fallback || res.Outcome.Turn != 1 {
			t.Fatalf("result = %+v", res)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Resolve did not return after cancel")
	}
	if st := g.Status(); st.Phase != "idle" || st.Turn != 1 {
		t.Fatalf("status = %+v", st)
	}
}

func TestHistoryKeepsFullAdvice(t *testing.T) {
	g := newTestGame(t, Options{})
	res := g.Resolve(context.Background())
	recent := g.history.Recent()
	if !strings.HasPrefix(recent, res.Outcome.Label+"\n") {
		t.Fatalf("history does not start with the label:\n%s", recent)
	}
	for _, opt := range res.Advice.Options {
		if !strings.Contains(recent, opt) {
			t.Errorf("history missing option %q:\n%s", opt, recent)
		}
	}
}
