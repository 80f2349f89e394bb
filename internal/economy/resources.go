package economy

// Ledger is a per-activity integer quantity map (flows or stocks).
type Ledger map[Activity]int

// Clone returns an independent copy; a nil ledger clones to an empty one.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// Resources holds the persistent stocks and this turn's flows.
type Resources struct {
	// Stocks persist across turns and change only through explicit deltas.
	Stocks Ledger `json:"stocks"`
	// Flows are replaced wholesale every turn.
	Flows Ledger `json:"flows"`
}

// NewResources returns empty storage and tool stocks.
func NewResources() Resources {
	return Resources{
		Stocks: Ledger{ActivityStorage: 0, ActivityTools: 0},
		Flows:  Ledger{},
	}
}
