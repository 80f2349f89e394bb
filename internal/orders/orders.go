// Package orders parses player order text and applies it to a settlement's
// assignment table between turns.
package orders

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/talgya/neolithic/internal/economy"
	"github.com/talgya/neolithic/internal/workers"
)

var (
	ErrSyntax              = errors.New("syntax error")
	ErrUnknownArchetype    = errors.New("unknown archetype")
	ErrUnknownActivity     = errors.New("unknown activity")
	ErrInsufficientWorkers = errors.New("insufficient workers")
)

// Verb is the kind of change an order makes.
type Verb uint8

const (
	VerbAssign Verb = iota
	VerbRemove
	VerbMove
	VerbSet
	VerbClear
)

var verbNames = map[string]Verb{
	"assign": VerbAssign,
	"add":    VerbAssign,
	"remove": VerbRemove,
	"move":   VerbMove,
	"set":    VerbSet,
	"clear":  VerbClear,
}

func (v Verb) String() string {
	switch v {
	case VerbAssign:
		return "assign"
	case VerbRemove:
		return "remove"
	case VerbMove:
		return "move"
	case VerbSet:
		return "set"
	case VerbClear:
		return "clear"
	}
	return "unknown"
}

// Order is one parsed line. Activity is the target for every verb except
// move, where it is the source and To is the destination.
type Order struct {
	Verb      Verb
	Count     int
	Archetype workers.Archetype
	Activity  economy.Activity
	To        economy.Activity
	Line      int
}

// String renders the order in canonical form.
func (o Order) String() string {
	switch o.Verb {
	case VerbClear:
		return fmt.Sprintf("clear %s", o.Activity)
	case VerbMove:
		return fmt.Sprintf("move %d %s %s %s", o.Count, o.Archetype, o.Activity, o.To)
	}
	return fmt.Sprintf("%s %d %s %s", o.Verb, o.Count, o.Archetype, o.Activity)
}

// Parse reads one order per line. Blank lines and '#' comments are skipped.
// The first bad line aborts parsing.
func Parse(text string) ([]Order, error) {
	var out []Order
	sc := bufio.NewScanner(strings.NewReader(text))
	n := 0
	for sc.Scan() {
		n++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		o, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		o.Line = n
		out = append(out, o)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read orders: %w", err)
	}
	return out, nil
}

// ParseLine parses a single order.
func ParseLine(line string) (Order, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return Order{}, fmt.Errorf("%w: empty order", ErrSyntax)
	}
	verb, ok := verbNames[fields[0]]
	if !ok {
		return Order{}, fmt.Errorf("%w: unknown verb %q%s", ErrSyntax, fields[0], hint(fields[0], []string{"assign", "remove", "move", "set", "clear"}))
	}
	o := Order{Verb: verb}
	args := fields[1:]

	if verb == VerbClear {
		if len(args) != 1 {
			return Order{}, fmt.Errorf("%w: usage: clear <activity>", ErrSyntax)
		}
		act, err := ResolveActivity(args[0])
		if err != nil {
			return Order{}, err
		}
		o.Activity = act
		return o, nil
	}

	want := 3
	usage := fmt.Sprintf("%s N <archetype> <activity>", verb)
	if verb == VerbMove {
		want = 4
		usage = "move N <archetype> <from> <to>"
	}
	if len(args) != want {
		return Order{}, fmt.Errorf("%w: usage: %s", ErrSyntax, usage)
	}

	count, err := strconv.Atoi(args[0])
	if err != nil || count < 0 || (count == 0 && verb != VerbSet) {
		return Order{}, fmt.Errorf("%w: bad count %q", ErrSyntax, args[0])
	}
	o.Count = count

	if o.Archetype, err = ResolveArchetype(args[1]); err != nil {
		return Order{}, err
	}
	if o.Activity, err = ResolveActivity(args[2]); err != nil {
		return Order{}, err
	}
	if verb == VerbMove {
		if o.To, err = ResolveActivity(args[3]); err != nil {
			return Order{}, err
		}
	}
	return o, nil
}

// Apply runs the orders against a copy of as and returns the copy. If any
// order fails, as is left untouched and the error is returned.
// Counts are not checked against demographics.
func Apply(as economy.Assignments, orders []Order) (economy.Assignments, error) {
	next := as.Clone()
	for _, o := range orders {
		if err := apply(next, o); err != nil {
			return nil, fmt.Errorf("%s: %w", o, err)
		}
	}
	return next, nil
}

func apply(as economy.Assignments, o Order) error {
	switch o.Verb {
	case VerbAssign:
		as.Add(o.Activity, o.Archetype, o.Count)
	case VerbRemove:
		if err := take(as, o.Activity, o.Archetype, o.Count); err != nil {
			return err
		}
	case VerbMove:
		if err := take(as, o.Activity, o.Archetype, o.Count); err != nil {
			return err
		}
		as.Add(o.To, o.Archetype, o.Count)
	case VerbSet:
		as.Set(o.Activity, o.Archetype, o.Count)
	case VerbClear:
		// Keep the emptied entry so the inertia tracker still sees the change.
		as[o.Activity] = workers.Crew{}
	default:
		return fmt.Errorf("%w: verb %d", ErrSyntax, o.Verb)
	}
	return nil
}

func take(as economy.Assignments, act economy.Activity, a workers.Archetype, n int) error {
	have := as.Count(act, a)
	if have < n {
		return fmt.Errorf("%w: %d %s on %s, %d requested", ErrInsufficientWorkers, have, a, act, n)
	}
	as.Add(act, a, -n)
	return nil
}

// Summary joins the canonical form of each order for storage in turn history.
func Summary(orders []Order) string {
	parts := make([]string, len(orders))
	for i, o := range orders {
		parts[i] = o.String()
	}
	return strings.Join(parts, "; ")
}
