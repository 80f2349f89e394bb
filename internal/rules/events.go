package rules

import (
	"fmt"

	"github.com/talgya/neolithic/internal/economy"
)

// EffectKind tags the state mutation an event performs.
type EffectKind uint8

const (
	EffectNote           EffectKind = iota // message only
	EffectScaleFlow                        // flow = int(flow × factor)
	EffectScaleFlowFloor                   // flow = max(0, int(flow × factor))
	EffectAddStock                         // stock += amount
)

var effectKindNames = map[EffectKind]string{
	EffectNote:           "note",
	EffectScaleFlow:      "modify_flow_factor",
	EffectScaleFlowFloor: "modify_flow_factor_floor",
	EffectAddStock:       "add_stock",
}

func (k EffectKind) String() string {
	if s, ok := effectKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("effect(%d)", uint8(k))
}

// ParseEffectKind resolves a configuration effect type.
func ParseEffectKind(s string) (EffectKind, bool) {
	for k, name := range effectKindNames {
		if name == s {
			return k, true
		}
	}
	return EffectNote, false
}

// EffectKindNames lists the recognised effect types.
func EffectKindNames() []string {
	return []string{"note", "modify_flow_factor", "modify_flow_factor_floor", "add_stock"}
}

func (k EffectKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *EffectKind) UnmarshalText(b []byte) error {
	v, ok := ParseEffectKind(string(b))
	if !ok {
		return fmt.Errorf("unknown effect type %q", string(b))
	}
	*k = v
	return nil
}

// Effect is the typed, serialisable description of what an event does.
// Target names a flow for the scale kinds and a stock for EffectAddStock.
type Effect struct {
	Kind    EffectKind       `json:"type"`
	Target  economy.Activity `json:"target"`
	Factor  float64          `json:"factor,omitempty"`
	Amount  int              `json:"amount,omitempty"`
	Message string           `json:"message"`
}

// EventSpec is one entry in a season's event list.
type EventSpec struct {
	Name        string  `json:"name"`
	Probability float64 `json:"probability"`
	Severity    int     `json:"severity"`
	Effect      Effect  `json:"effect"`
}

// ScaleFlow builds a flow-scaling effect.
func ScaleFlow(target economy.Activity, factor float64, msg string) Effect {
	return Effect{Kind: EffectScaleFlow, Target: target, Factor: factor, Message: msg}
}

// ScaleFlowFloor builds a flow-scaling effect clamped at zero.
func ScaleFlowFloor(target economy.Activity, factor float64, msg string) Effect {
	return Effect{Kind: EffectScaleFlowFloor, Target: target, Factor: factor, Message: msg}
}

// AddStock builds a stock delta effect.
func AddStock(target economy.Activity, amount int, msg string) Effect {
	return Effect{Kind: EffectAddStock, Target: target, Amount: amount, Message: msg}
}
