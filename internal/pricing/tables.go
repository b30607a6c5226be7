package pricing

import (
	"sort"
	"strings"

	"tribuna/internal/config"
)

// Tables holds every knob the pricing engine reads. Instances are
// injected and treated as immutable so quotes stay deterministic;
// deployments swap the whole table set, never individual entries.
type Tables struct {
	Version string

	// Rivalry multipliers keyed by the unordered team pair (see PairKey).
	Rivalry map[string]float64

	// Popularity scores per team in [0, 1]. Teams missing from the table
	// fall back to DefaultPopularity.
	Popularity        map[string]float64
	DefaultPopularity float64

	// Applied only when the match is a playoff fixture.
	PlayoffMultiplier float64

	// Band the popularity-derived demand multiplier is clamped to.
	DemandBand Band

	// Timing tiers sorted by MinDays descending. The first tier whose
	// MinDays <= days-until-match wins. Days in the past get multiplier 1.0.
	TimingTiers []TimingTier
}

type Band struct {
	Min float64
	Max float64
}

type TimingTier struct {
	MinDays    int
	Multiplier float64
}

// PairKey builds the unordered lookup key for a team pair.
func PairKey(a, b string) string {
	teams := []string{strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))}
	sort.Strings(teams)
	return teams[0] + "|" + teams[1]
}

// TablesFromConfig overlays the environment knobs on the defaults.
// Both binaries build their engine through this, so the API and the
// consumers can never price differently.
func TablesFromConfig(cfg config.PricingConfig) Tables {
	tables := DefaultTables()
	tables.PlayoffMultiplier = cfg.PlayoffMultiplier
	tables.DemandBand = Band{Min: cfg.DemandBandMin, Max: cfg.DemandBandMax}
	tables.DefaultPopularity = cfg.DefaultPopularity
	return tables
}

// DefaultTables returns the production defaults. Early purchases are
// discounted, match-week purchases surge.
func DefaultTables() Tables {
	return Tables{
		Version:           "default-v1",
		Rivalry:           map[string]float64{},
		Popularity:        map[string]float64{},
		DefaultPopularity: 0.5,
		PlayoffMultiplier: 1.5,
		DemandBand:        Band{Min: 0.8, Max: 1.2},
		TimingTiers: []TimingTier{
			{MinDays: 30, Multiplier: 0.85},
			{MinDays: 15, Multiplier: 0.90},
			{MinDays: 8, Multiplier: 0.95},
			{MinDays: 4, Multiplier: 1.00},
			{MinDays: 2, Multiplier: 1.10},
			{MinDays: 0, Multiplier: 1.25},
		},
	}
}
