package steward

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const (
	maxRecords    = 10
	promptRecords = 5 // how many recent records to include in the Haiku prompt
)

// CycleRecord captures what happened in a single steward cycle.
type CycleRecord struct {
	Turn        int      `json:"turn"`
	Action      string   `json:"action"`
	CrisisLevel string   `json:"crisis_level"`
	FoodNet     int      `json:"food_net"`
	Orders      []string `json:"orders,omitempty"`
	Rationale   string   `json:"rationale,omitempty"`
}

// CycleMemory manages a ring of recent steward cycle records.
type CycleMemory struct {
	Records []CycleRecord `json:"records"`

	path string
}

// LoadMemory reads the memory file at path. A missing or empty path gives an
// empty memory; an empty path also disables Save.
func LoadMemory(path string) *CycleMemory {
	mem := &CycleMemory{path: path}
	if path == "" {
		return mem
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return mem
	}
	if err := json.Unmarshal(data, mem); err != nil {
		slog.Warn("steward memory corrupted, starting fresh", "error", err)
		return &CycleMemory{path: path}
	}
	return mem
}

// Save writes the memory to disk.
func (m *CycleMemory) Save() {
	if m.path == "" {
		return
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		slog.Error("failed to marshal steward memory", "error", err)
		return
	}
	if err := os.WriteFile(m.path, data, 0644); err != nil {
		slog.Error("failed to write steward memory", "error", err)
	}
}

// Record adds a cycle record, trimming to maxRecords.
func (m *CycleMemory) Record(r CycleRecord) {
	m.Records = append(m.Records, r)
	if len(m.Records) > maxRecords {
		m.Records = m.Records[len(m.Records)-maxRecords:]
	}
}

// FormatForPrompt summarises the last few cycles for the Haiku prompt.
func (m *CycleMemory) FormatForPrompt() string {
	if len(m.Records) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("## Recent Steward Cycles\n")

	start := max(len(m.Records)-promptRecords, 0)
	for _, r := range m.Records[start:] {
		fmt.Fprintf(&b, "- Turn %d: action=%s, crisis=%s, food_net=%+d", r.Turn, r.Action, r.CrisisLevel, r.FoodNet)
		if len(r.Orders) > 0 {
			fmt.Fprintf(&b, ", orders=%s", strings.Join(r.Orders, "; "))
		}
		b.WriteString("\n")
	}
	return b.String()
}
