// Package config loads a session's game configuration: rule overrides,
// leader and inertia settings, the starting scenario, and the event seed.
// Missing files and empty documents yield the built-in defaults.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/talgya/neolithic/internal/economy"
	"github.com/talgya/neolithic/internal/engine"
	"github.com/talgya/neolithic/internal/orders"
	"github.com/talgya/neolithic/internal/rules"
	"github.com/talgya/neolithic/internal/workers"
)

//go:embed tribe.schema.json
var schemaJSON string

// File is the YAML document as written by the user.
type File struct {
	Seed            *int64                        `yaml:"seed"`
	Season          string                        `yaml:"season"`
	SeasonalAgri    map[string]float64            `yaml:"seasonal_agri"`
	ProductionRules map[string]map[string]float64 `yaml:"production_rules"`
	NonStockRules   map[string]NonStockSpec       `yaml:"nonstock_rules"`
	Events          map[string][]EventSpec        `yaml:"events"`
	Leader          *LeaderSpec                   `yaml:"leader"`
	Inertia         *InertiaSpec                  `yaml:"inertia"`
	Scenario        *ScenarioSpec                 `yaml:"scenario"`
}

type NonStockSpec struct {
	Capacity map[string]float64 `yaml:"capacity"`
	Needs    string             `yaml:"needs"`
}

type EventSpec struct {
	Name        string     `yaml:"name"`
	Probability *float64   `yaml:"probability"`
	Prob        *float64   `yaml:"prob"`
	Severity    *int       `yaml:"severity"`
	Effect      EffectSpec `yaml:"effect"`
}

type EffectSpec struct {
	Type     string   `yaml:"type"`
	Activity string   `yaml:"activity"`
	Flow     string   `yaml:"flow"`
	Stock    string   `yaml:"stock"`
	Factor   *float64 `yaml:"factor"`
	Amount   int      `yaml:"amount"`
	Message  *string  `yaml:"message"`
}

type LeaderSpec struct {
	Activity string   `yaml:"activity"`
	Bonus    *float64 `yaml:"bonus"`
}

type InertiaSpec struct {
	Threshold *int     `yaml:"threshold"`
	Cooldown  *int     `yaml:"cooldown"`
	Penalty   *float64 `yaml:"penalty"`
}

type ScenarioSpec struct {
	Demographics *workers.Demographics     `yaml:"demographics"`
	Assignments  map[string]map[string]int `yaml:"assignments"`
	Stocks       map[string]int            `yaml:"stocks"`
}

// Event defaults applied when a configured event omits them.
const (
	DefaultEventProbability = 0.1
	DefaultEventSeverity    = 1
)

// Scenario is the settlement a session starts from.
type Scenario struct {
	Demographics workers.Demographics
	Assignments  economy.Assignments
	Stocks       economy.Ledger
}

// Inertia holds the tracker settings.
type Inertia struct {
	Threshold int
	Cooldown  int
	Penalty   float64
}

// Config is the resolved configuration.
type Config struct {
	Rules          rules.Rules
	LeaderActivity economy.Activity
	LeaderBonus    float64
	Inertia        Inertia
	Season         economy.Season
	Scenario       Scenario

	// Seed is the event stream seed; HasSeed is false when the file leaves it unset.
	Seed    int64
	HasSeed bool
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Rules:          rules.Default(),
		LeaderActivity: engine.DefaultLeaderActivity,
		LeaderBonus:    engine.DefaultLeaderBonus,
		Inertia: Inertia{
			Threshold: engine.DefaultInertiaThreshold,
			Cooldown:  engine.DefaultInertiaCooldown,
			Penalty:   engine.DefaultInertiaPenalty,
		},
		Season:   economy.SeasonSummer,
		Scenario: DefaultScenario(),
	}
}

// Load reads a YAML file. An empty path returns Default.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse validates a YAML document against the embedded schema and resolves it
// over the defaults.
func Parse(b []byte) (Config, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return Default(), nil
	}
	if err := Validate(b); err != nil {
		return Config{}, err
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return Config{}, fmt.Errorf("decode yaml: %w", err)
	}
	return f.Resolve()
}

// Validate checks the raw document against the embedded JSON Schema.
func Validate(b []byte) error {
	schema, err := jsonschema.CompileString("tribe.schema.json", schemaJSON)
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var raw any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("decode yaml: %w", err)
	}
	if raw == nil {
		return nil
	}
	// The validator expects encoding/json values.
	jb, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("convert yaml: %w", err)
	}
	var doc any
	if err := json.Unmarshal(jb, &doc); err != nil {
		return fmt.Errorf("convert yaml: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Resolve applies the file's overrides to Default. Names are matched exactly;
// unknown names are rejected with a suggestion.
func (f File) Resolve() (Config, error) {
	cfg := Default()
	r := cfg.Rules

	if f.Season != "" {
		cfg.Season = economy.NormalizeSeason(f.Season)
	}
	if f.Seed != nil {
		cfg.Seed, cfg.HasSeed = *f.Seed, true
	}

	if len(f.SeasonalAgri) > 0 {
		m := make(map[economy.Season]float64, len(f.SeasonalAgri))
		for s, v := range f.SeasonalAgri {
			m[economy.NormalizeSeason(s)] = v
		}
		r = r.WithSeasonal(m)
	}

	for _, actName := range sortedKeys(f.ProductionRules) {
		act, err := activity(actName)
		if err != nil {
			return Config{}, fmt.Errorf("production_rules: %w", err)
		}
		if !act.Stockable() {
			return Config{}, fmt.Errorf("production_rules: %s is not a stockable activity", act)
		}
		coefs, err := coefficients(f.ProductionRules[actName])
		if err != nil {
			return Config{}, fmt.Errorf("production_rules.%s: %w", actName, err)
		}
		r = r.WithCoefficients(act, coefs)
	}

	for _, actName := range sortedKeys(f.NonStockRules) {
		spec := f.NonStockRules[actName]
		act, err := activity(actName)
		if err != nil {
			return Config{}, fmt.Errorf("nonstock_rules: %w", err)
		}
		if act.Stockable() {
			return Config{}, fmt.Errorf("nonstock_rules: %s is a stockable activity", act)
		}
		rule, _ := r.NonStock(act)
		if spec.Needs != "" {
			needs, ok := rules.ParseNeedsRef(spec.Needs)
			if !ok {
				return Config{}, fmt.Errorf("nonstock_rules.%s: unknown needs %q", actName, spec.Needs)
			}
			rule.Needs = needs
		}
		coefs, err := coefficients(spec.Capacity)
		if err != nil {
			return Config{}, fmt.Errorf("nonstock_rules.%s: %w", actName, err)
		}
		for a, v := range coefs {
			rule.Capacity[a] = v
		}
		r = r.WithNonStock(act, rule)
	}

	for _, season := range sortedKeys(f.Events) {
		specs := make([]rules.EventSpec, 0, len(f.Events[season]))
		for i, ev := range f.Events[season] {
			spec, err := ev.resolve()
			if err != nil {
				return Config{}, fmt.Errorf("events.%s[%d]: %w", season, i, err)
			}
			specs = append(specs, spec)
		}
		r = r.WithEvents(economy.NormalizeSeason(season), specs)
	}
	cfg.Rules = r

	if f.Leader != nil {
		if f.Leader.Activity != "" {
			act, err := activity(f.Leader.Activity)
			if err != nil {
				return Config{}, fmt.Errorf("leader: %w", err)
			}
			cfg.LeaderActivity = act
		}
		if f.Leader.Bonus != nil {
			cfg.LeaderBonus = *f.Leader.Bonus
		}
	}

	if in := f.Inertia; in != nil {
		if in.Threshold != nil {
			cfg.Inertia.Threshold = *in.Threshold
		}
		if in.Cooldown != nil {
			cfg.Inertia.Cooldown = *in.Cooldown
		}
		if in.Penalty != nil {
			cfg.Inertia.Penalty = *in.Penalty
		}
	}

	if f.Scenario != nil {
		sc, err := f.Scenario.resolve(cfg.Scenario)
		if err != nil {
			return Config{}, fmt.Errorf("scenario: %w", err)
		}
		cfg.Scenario = sc
	}
	return cfg, nil
}

func (ev EventSpec) resolve() (rules.EventSpec, error) {
	spec := rules.EventSpec{
		Name:        ev.Name,
		Probability: DefaultEventProbability,
		Severity:    DefaultEventSeverity,
	}
	switch {
	case ev.Probability != nil:
		spec.Probability = *ev.Probability
	case ev.Prob != nil:
		spec.Probability = *ev.Prob
	}
	if ev.Severity != nil {
		spec.Severity = *ev.Severity
	}

	fx := ev.Effect
	msg := ev.Name
	if fx.Message != nil {
		msg = *fx.Message
	}
	factor := 1.0
	if fx.Factor != nil {
		factor = *fx.Factor
	}
	target := fx.Activity
	if target == "" {
		target = fx.Flow
	}

	switch fx.Type {
	case "", "note":
		spec.Effect = rules.Effect{Kind: rules.EffectNote, Message: msg}
	case "modify_flow_factor", "modify_flow_factor_floor":
		act, err := activity(target)
		if err != nil {
			return spec, fmt.Errorf("effect target: %w", err)
		}
		if fx.Type == "modify_flow_factor" {
			spec.Effect = rules.ScaleFlow(act, factor, msg)
		} else {
			spec.Effect = rules.ScaleFlowFloor(act, factor, msg)
		}
	case "add_stock":
		stock := economy.ActivityTools
		if fx.Stock != "" {
			act, err := activity(fx.Stock)
			if err != nil {
				return spec, fmt.Errorf("effect stock: %w", err)
			}
			stock = act
		}
		spec.Effect = rules.AddStock(stock, fx.Amount, msg)
	default:
		return spec, fmt.Errorf("unknown effect type %q%s", fx.Type, suggestion(fx.Type, rules.EffectKindNames()))
	}
	return spec, nil
}

func (s ScenarioSpec) resolve(base Scenario) (Scenario, error) {
	out := base
	if s.Demographics != nil {
		out.Demographics = *s.Demographics
	}
	if s.Assignments != nil {
		out.Assignments = economy.Assignments{}
		for _, actName := range sortedKeys(s.Assignments) {
			act, err := activity(actName)
			if err != nil {
				return out, fmt.Errorf("assignments: %w", err)
			}
			for _, aName := range sortedKeys(s.Assignments[actName]) {
				a, err := archetype(aName)
				if err != nil {
					return out, fmt.Errorf("assignments.%s: %w", actName, err)
				}
				out.Assignments.Set(act, a, s.Assignments[actName][aName])
			}
		}
	}
	if s.Stocks != nil {
		out.Stocks = base.Stocks.Clone()
		for _, name := range sortedKeys(s.Stocks) {
			act, err := activity(name)
			if err != nil {
				return out, fmt.Errorf("stocks: %w", err)
			}
			out.Stocks[act] = s.Stocks[name]
		}
	}
	return out, nil
}

func coefficients(m map[string]float64) (map[workers.Archetype]float64, error) {
	out := make(map[workers.Archetype]float64, len(m))
	for name, v := range m {
		a, err := archetype(name)
		if err != nil {
			return nil, err
		}
		out[a] = v
	}
	return out, nil
}

func activity(name string) (economy.Activity, error) {
	act, ok := economy.ParseActivity(name)
	if !ok || !act.Valid() {
		return 0, fmt.Errorf("unknown activity %q%s", name, suggestion(name, economy.ActivityNames()))
	}
	return act, nil
}

func archetype(name string) (workers.Archetype, error) {
	a, ok := workers.ParseArchetype(name)
	if !ok {
		return 0, fmt.Errorf("unknown archetype %q%s", name, suggestion(name, workers.Names()))
	}
	return a, nil
}

func suggestion(name string, names []string) string {
	if s := orders.Suggest(name, names); s != "" {
		return fmt.Sprintf(" (did you mean %q?)", s)
	}
	return ""
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
