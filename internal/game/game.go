// Package game ties a session to its surroundings: order intake, the advisor,
// turn history, and live subscribers. Every engine access holds one mutex,
// so the engine itself stays single-threaded.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/talgya/neolithic/internal/config"
	"github.com/talgya/neolithic/internal/economy"
	"github.com/talgya/neolithic/internal/engine"
	"github.com/talgya/neolithic/internal/llm"
	"github.com/talgya/neolithic/internal/orders"
	"github.com/talgya/neolithic/internal/persistence"
	"github.com/talgya/neolithic/internal/render"
	"github.com/talgya/neolithic/internal/rules"
)

// subscriberBuffer is how many results a slow subscriber may fall behind
// before results are dropped for it.
const subscriberBuffer = 8

// TurnResult is a resolved turn together with what surrounds it.
type TurnResult struct {
	Outcome engine.Outcome `json:"outcome"`
	Compact string         `json:"compact"`
	Advice  llm.Advice     `json:"advice"`
	Orders  string         `json:"orders"`
}

// Options are the optional collaborators of a Game. Nil fields are disabled.
type Options struct {
	DB      *persistence.DB
	Journal *persistence.Journal
	LLM     *llm.Client
}

// Game owns one session.
type Game struct {
	turnMu sync.Mutex // serialises Resolve end to end
	mu     sync.Mutex // guards the session, pending orders, last and subs

	cfg       config.Config
	seed      int64
	session   *engine.Session
	opts      Options
	history   *llm.HistoryBuffer
	sessionID string

	phase   engine.Phase
	pending []orders.Order
	last    *TurnResult

	subs    map[int]chan TurnResult
	nextSub int
}

// New creates a game from cfg seeded with seed and registers it in the
// history database when one is configured.
func New(cfg config.Config, seed int64, opts Options) (*Game, error) {
	g := &Game{
		cfg:     cfg,
		seed:    seed,
		session: cfg.NewSession(seed),
		opts:    opts,
		history: llm.NewHistoryBuffer(llm.DefaultHistoryLines),
		subs:    make(map[int]chan TurnResult),
	}
	if opts.DB != nil {
		id, err := opts.DB.BeginSession(seed, cfg.Rules)
		if err != nil {
			return nil, fmt.Errorf("begin session: %w", err)
		}
		g.sessionID = id
	}
	slog.Info("game created",
		"seed", seed,
		"season", cfg.Season,
		"population", cfg.Scenario.Demographics.Total(),
		"advisor", opts.LLM.Enabled(),
	)
	return g, nil
}

// SetTurnsPerSeason makes the season rotate every n turns; 0 keeps it fixed.
func (g *Game) SetTurnsPerSeason(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.session.TurnsPerSeason = n
}

// SubmitOrders parses text and applies it to the assignment table. Either
// every order applies or none does.
func (g *Game) SubmitOrders(text string) ([]orders.Order, error) {
	parsed, err := orders.Parse(text)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	s := g.session.Settlement
	next, err := orders.Apply(s.Assignments, parsed)
	if err != nil {
		return nil, err
	}
	s.Assignments = next
	g.pending = append(g.pending, parsed...)
	slog.Info("orders applied", "count", len(parsed), "orders", orders.Summary(parsed))
	return parsed, nil
}

// Resolve runs one turn, asks the advisor, records the result and notifies
// subscribers. Storage failures are logged, not returned: the turn has
// already happened. The state lock is released while the advisor runs, and
// the phase reads resolved until subscribers are notified. Cancelling ctx
// cuts the advisor call short and yields the fallback advice.
func (g *Game) Resolve(ctx context.Context) TurnResult {
	g.turnMu.Lock()
	defer g.turnMu.Unlock()

	g.mu.Lock()
	out := g.session.Resolve()
	g.phase = engine.PhaseResolved
	s := g.session.Settlement
	res := TurnResult{
		Outcome: out,
		Compact: render.Compact(out.Report, s.Assignments, s.Demographics),
		Orders:  orders.Summary(g.pending),
	}
	g.pending = nil
	g.mu.Unlock()

	advice, err := llm.AdviseOrFallback(ctx, g.opts.LLM, &llm.AdvisorContext{
		Label:      out.Label,
		Compact:    res.Compact,
		State:      out.Report,
		History:    g.history.Recent(),
		Events:     out.Descriptions(),
		LastOrders: res.Orders,
	})
	if err != nil && g.opts.LLM.Enabled() {
		slog.Warn("advisor unavailable", "turn", out.Turn, "error", err)
	}
	res.Advice = advice
	g.history.Add(out.Label + "\n" + advice.Text())

	rec := persistence.TurnRecord{SessionID: g.sessionID, Outcome: out, Orders: res.Orders, Advice: advice.Text()}
	if g.opts.DB != nil {
		if err := g.opts.DB.RecordTurn(rec); err != nil {
			slog.Error("record turn", "turn", out.Turn, "error", err)
		}
	}
	if g.opts.Journal != nil {
		if err := g.opts.Journal.Write(rec); err != nil {
			slog.Error("journal turn", "turn", out.Turn, "error", err)
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.last = &res
	g.phase = engine.PhaseIdle
	for id, ch := range g.subs {
		select {
		case ch <- res:
		default:
			slog.Warn("subscriber behind, dropping result", "sub_id", id, "turn", out.Turn)
		}
	}
	return res
}

// Status is a point-in-time summary of the game.
type Status struct {
	SessionID  string `json:"session_id,omitempty"`
	Seed       int64  `json:"seed"`
	Turn       int    `json:"turn"`
	Season     string `json:"season"`
	Phase      string `json:"phase"`
	Population int    `json:"population"`
	Assigned   int    `json:"assigned"`
	Pending    int    `json:"pending_orders"`
	Advisor    bool   `json:"advisor"`

	Assignments economy.Assignments `json:"assignments"`
}

// Status returns the current summary.
func (g *Game) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := g.session.Settlement
	return Status{
		SessionID:  g.sessionID,
		Seed:       g.seed,
		Turn:       g.session.Turn(),
		Season:     string(s.Season),
		Phase:      g.phase.String(),
		Population: s.Demographics.Total(),
		Assigned:   s.Assignments.Assigned(),
		Pending:    len(g.pending),
		Advisor:    g.opts.LLM.Enabled(),

		Assignments: s.Assignments.Clone(),
	}
}

// Last returns the most recent result, or nil before the first turn.
func (g *Game) Last() *TurnResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.last == nil {
		return nil
	}
	res := *g.last
	return &res
}

// Rules returns the session's rule set.
func (g *Game) Rules() rules.Rules {
	return g.cfg.Rules
}

// Preview renders the current settlement as it would stand after the last turn.
func (g *Game) Preview() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.last == nil {
		return ""
	}
	s := g.session.Settlement
	return render.Compact(g.last.Outcome.Report, s.Assignments, s.Demographics)
}

// History returns up to limit stored turns, newest first.
func (g *Game) History(limit int) ([]persistence.TurnRow, error) {
	if g.opts.DB == nil {
		return nil, fmt.Errorf("history storage not configured")
	}
	return g.opts.DB.RecentTurns(g.sessionID, limit)
}

// Subscribe registers a listener for resolved turns.
func (g *Game) Subscribe() (int, <-chan TurnResult) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.nextSub
	g.nextSub++
	ch := make(chan TurnResult, subscriberBuffer)
	g.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a listener and closes its channel.
func (g *Game) Unsubscribe(id int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if ch, ok := g.subs[id]; ok {
		delete(g.subs, id)
		close(ch)
	}
}
