package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tribuna/internal/config"
	"tribuna/internal/models"
)

func testTables() Tables {
	t := DefaultTables()
	t.Rivalry = map[string]float64{
		PairKey("Mumbai", "Chennai"): 2.0,
	}
	t.Popularity = map[string]float64{
		"Mumbai":  1.0,
		"Chennai": 1.0,
		"Punjab":  0.0,
		"Gujarat": 0.0,
	}
	return t
}

func matchAt(home, away string, playoff bool, startsAt time.Time) *models.Match {
	return &models.Match{
		ID:        42,
		HomeTeam:  home,
		AwayTeam:  away,
		IsPlayoff: playoff,
		StartsAt:  startsAt,
	}
}

func TestQuoteRivalryWithTimingDiscount(t *testing.T) {
	engine := NewEngine(testTables())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	match := matchAt("Mumbai", "Chennai", false, now.Add(10*24*time.Hour))

	quote := engine.Quote(match, 100000, now)

	// rivalry 2.0, no playoff, max popularity pushes demand to band max
	// 1.2, 10 days out lands in the 0.95 tier
	assert.Equal(t, 2.0, quote.Breakdown.Rivalry)
	assert.Equal(t, 1.0, quote.Breakdown.Playoff)
	assert.Equal(t, 1.2, quote.Breakdown.Demand)
	assert.Equal(t, 0.95, quote.Breakdown.Timing)
	assert.Equal(t, int64(228000), quote.FinalPrice)
}

func TestQuotePairKeyIsUnordered(t *testing.T) {
	engine := NewEngine(testTables())
	now := time.Now()
	home := engine.Quote(matchAt("Mumbai", "Chennai", false, now.Add(48*time.Hour)), 100000, now)
	away := engine.Quote(matchAt("Chennai", "Mumbai", false, now.Add(48*time.Hour)), 100000, now)

	assert.Equal(t, home.FinalPrice, away.FinalPrice)
	assert.Equal(t, 2.0, away.Breakdown.Rivalry)
}

func TestQuoteStoredDemandBeatsRivalry(t *testing.T) {
	engine := NewEngine(testTables())
	now := time.Now()
	match := matchAt("Mumbai", "Chennai", false, now.Add(10*24*time.Hour))
	match.DemandMultiplier = 3.0

	quote := engine.Quote(match, 100000, now)
	assert.Equal(t, 3.0, quote.Breakdown.Rivalry)
}

func TestQuotePlayoffMultiplier(t *testing.T) {
	engine := NewEngine(testTables())
	now := time.Now()
	regular := engine.Quote(matchAt("Punjab", "Gujarat", false, now.Add(10*24*time.Hour)), 100000, now)
	playoff := engine.Quote(matchAt("Punjab", "Gujarat", true, now.Add(10*24*time.Hour)), 100000, now)

	assert.Equal(t, 1.5, playoff.Breakdown.Playoff)
	assert.Greater(t, playoff.FinalPrice, regular.FinalPrice)
}

func TestQuoteDemandClampedToBand(t *testing.T) {
	engine := NewEngine(testTables())
	now := time.Now()

	low := engine.Quote(matchAt("Punjab", "Gujarat", false, now.Add(10*24*time.Hour)), 100000, now)
	high := engine.Quote(matchAt("Mumbai", "Chennai", false, now.Add(10*24*time.Hour)), 100000, now)

	assert.Equal(t, 0.8, low.Breakdown.Demand)
	assert.Equal(t, 1.2, high.Breakdown.Demand)
}

func TestQuoteTimingTiers(t *testing.T) {
	engine := NewEngine(testTables())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		days int
		want float64
	}{
		{"sixty days early discount", 60, 0.85},
		{"twenty days", 20, 0.90},
		{"ten days", 10, 0.95},
		{"five days", 5, 1.00},
		{"three days surge", 3, 1.10},
		{"match day surge", 0, 1.25},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			match := matchAt("Punjab", "Gujarat", false, now.Add(time.Duration(tc.days)*24*time.Hour))
			quote := engine.Quote(match, 100000, now)
			assert.Equal(t, tc.want, quote.Breakdown.Timing)
		})
	}
}

func TestQuotePastMatchDoesNotPanic(t *testing.T) {
	engine := NewEngine(testTables())
	now := time.Now()
	match := matchAt("Punjab", "Gujarat", false, now.Add(-72*time.Hour))

	quote := engine.Quote(match, 100000, now)
	assert.Equal(t, 1.0, quote.Breakdown.Timing)
	assert.Positive(t, quote.FinalPrice)
}

func TestQuoteMissingMatchFailsOpen(t *testing.T) {
	engine := NewEngine(testTables())

	quote := engine.Quote(nil, 123400, time.Now())
	assert.Equal(t, int64(123400), quote.FinalPrice)
	assert.Equal(t, 1.0, quote.Multiplier)
}

func TestQuoteUnknownTeamsUseDefaultPopularity(t *testing.T) {
	engine := NewEngine(testTables())
	now := time.Now()
	match := matchAt("Nagpur", "Ranchi", false, now.Add(10*24*time.Hour))

	quote := engine.Quote(match, 100000, now)
	// default popularity 0.5 sits at the middle of the 0.8..1.2 band
	assert.Equal(t, 1.0, quote.Breakdown.Demand)
}

func TestQuoteRoundsToWholeRupee(t *testing.T) {
	engine := NewEngine(testTables())
	now := time.Now()
	match := matchAt("Nagpur", "Ranchi", false, now.Add(10*24*time.Hour))

	quote := engine.Quote(match, 99990, now)
	assert.Zero(t, quote.FinalPrice%100)
}

func TestTablesFromConfigOverridesKnobs(t *testing.T) {
	tables := TablesFromConfig(config.PricingConfig{
		PlayoffMultiplier: 2.0,
		DemandBandMin:     0.9,
		DemandBandMax:     1.1,
		DefaultPopularity: 0.25,
	})

	assert.Equal(t, 2.0, tables.PlayoffMultiplier)
	assert.Equal(t, Band{Min: 0.9, Max: 1.1}, tables.DemandBand)
	assert.Equal(t, 0.25, tables.DefaultPopularity)
	assert.Equal(t, DefaultTables().TimingTiers, tables.TimingTiers)
}

func TestQuoteIsDeterministic(t *testing.T) {
	engine := NewEngine(testTables())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	match := matchAt("Mumbai", "Chennai", true, now.Add(6*24*time.Hour))

	first := engine.Quote(match, 250000, now)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, engine.Quote(match, 250000, now))
	}
}
