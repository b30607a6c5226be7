package pricing

import (
	"math"
	"time"

	"tribuna/internal/models"
)

// Engine computes seat prices from a base price and match context.
// Quote is pure: same inputs, same output, no stored state touched.
type Engine struct {
	tables Tables
}

func NewEngine(tables Tables) *Engine {
	return &Engine{tables: tables}
}

// Quote is the per-factor result of a price computation. Prices are in
// paise; FinalPrice is rounded to the nearest whole rupee.
type Quote struct {
	BasePrice  int64     `json:"base_price"`
	FinalPrice int64     `json:"final_price"`
	Multiplier float64   `json:"multiplier"`
	Breakdown  Breakdown `json:"breakdown"`
}

// Breakdown exposes each factor for display and audit.
type Breakdown struct {
	Rivalry float64 `json:"rivalry"`
	Playoff float64 `json:"playoff"`
	Demand  float64 `json:"demand"`
	Timing  float64 `json:"timing"`
}

// Quote prices one seat unit of the given base price for the match as of
// the supplied reference time. A nil match fails open: the base price is
// returned unchanged with multiplier 1.0, since this is a quote, not a
// security check.
func (e *Engine) Quote(match *models.Match, basePrice int64, asOf time.Time) Quote {
	if match == nil {
		return Quote{
			BasePrice:  basePrice,
			FinalPrice: basePrice,
			Multiplier: 1.0,
			Breakdown:  Breakdown{Rivalry: 1.0, Playoff: 1.0, Demand: 1.0, Timing: 1.0},
		}
	}

	rivalry := e.rivalryFactor(match)
	playoff := 1.0
	if match.IsPlayoff {
		playoff = e.tables.PlayoffMultiplier
	}
	demand := e.demandFactor(match)
	timing := e.timingFactor(daysUntil(match.StartsAt, asOf))

	multiplier := rivalry * playoff * demand * timing
	final := roundToRupee(float64(basePrice) * multiplier)

	return Quote{
		BasePrice:  basePrice,
		FinalPrice: final,
		Multiplier: multiplier,
		Breakdown:  Breakdown{Rivalry: rivalry, Playoff: playoff, Demand: demand, Timing: timing},
	}
}

// rivalryFactor takes the stronger of the configured rivalry multiplier
// for the pair and any demand multiplier already stored on the match.
func (e *Engine) rivalryFactor(match *models.Match) float64 {
	factor := 1.0
	if r, ok := e.tables.Rivalry[PairKey(match.HomeTeam, match.AwayTeam)]; ok {
		factor = r
	}
	if match.DemandMultiplier > factor {
		factor = match.DemandMultiplier
	}
	return factor
}

func (e *Engine) demandFactor(match *models.Match) float64 {
	home := e.popularity(match.HomeTeam)
	away := e.popularity(match.AwayTeam)
	pop := (home + away) / 2

	band := e.tables.DemandBand
	factor := band.Min + pop*(band.Max-band.Min)
	if factor < band.Min {
		factor = band.Min
	}
	if factor > band.Max {
		factor = band.Max
	}
	return factor
}

func (e *Engine) popularity(team string) float64 {
	if p, ok := e.tables.Popularity[team]; ok {
		return p
	}
	return e.tables.DefaultPopularity
}

// timingFactor picks the first tier whose MinDays threshold is met.
// Zero or negative day counts never panic: matches already underway or
// past price at the identity multiplier.
func (e *Engine) timingFactor(days int) float64 {
	if days < 0 {
		return 1.0
	}
	for _, tier := range e.tables.TimingTiers {
		if days >= tier.MinDays {
			return tier.Multiplier
		}
	}
	return 1.0
}

func daysUntil(startsAt, asOf time.Time) int {
	diff := startsAt.Sub(asOf)
	if diff < 0 {
		return -1
	}
	return int(diff.Hours() / 24)
}

func roundToRupee(paise float64) int64 {
	return int64(math.Round(paise/100.0)) * 100
}
