package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tribuna/internal/errors"
	"tribuna/internal/models"
)

func TestCreateMatchProvisionsSeats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.matches.Create(ctx, &models.CreateMatchRequest{
		HomeTeam: "Delhi Dynamos",
		AwayTeam: "Kolkata Knights",
		StartsAt: "2026-10-01T18:00:00Z",
		Sections: []models.Stand{
			{SectionID: "EAST", Rows: 2, SeatsPerRow: 3, BasePrice: 75000},
			{SectionID: "WEST", Rows: 1, SeatsPerRow: 4, BasePrice: 120000},
		},
	})
	require.NoError(t, err)

	seats, err := env.quotes.ListSeats(ctx, resp.ID, 1, 100, nil, nil)
	require.NoError(t, err)
	assert.Len(t, seats, 10)

	match, err := env.matches.Get(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Delhi Dynamos", match.HomeTeam)
	assert.Equal(t, 1.0, match.DemandMultiplier)
}

func TestCreateMatchRejectsBadStartTime(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.matches.Create(context.Background(), &models.CreateMatchRequest{
		HomeTeam: "A",
		AwayTeam: "B",
		StartsAt: "tomorrow evening",
	})
	assert.Error(t, err)
}

func TestSetDemandMultiplierValidation(t *testing.T) {
	env := newTestEnv(t)
	matchID, _ := env.createMatch(t, 100000, 1)

	assert.Error(t, env.matches.SetDemandMultiplier(context.Background(), matchID, 0))
	assert.Error(t, env.matches.SetDemandMultiplier(context.Background(), matchID, -1.5))
	assert.NoError(t, env.matches.SetDemandMultiplier(context.Background(), matchID, 1.8))
}

func TestBlockedSeatCannotBeHeld(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	matchID, seats := env.createMatch(t, 100000, 1)

	require.NoError(t, env.matches.BlockSeat(ctx, seats[0]))
	assert.Equal(t, models.SeatBlocked, env.seatStatus(seats[0]))

	_, err := env.reservations.CreateHold(ctx, 1, &models.CreateHoldRequest{
		MatchID:     matchID,
		SeatUnitIDs: seats,
	})
	blocked, ok := apperrors.IsSeatUnavailable(err)
	require.True(t, ok)
	assert.Equal(t, seats, blocked)

	require.NoError(t, env.matches.UnblockSeat(ctx, seats[0]))

	_, err = env.reservations.CreateHold(ctx, 1, &models.CreateHoldRequest{
		MatchID:     matchID,
		SeatUnitIDs: seats,
	})
	assert.NoError(t, err)
}

func TestBlockHeldSeatRefused(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	matchID, seats := env.createMatch(t, 100000, 1)

	_, err := env.reservations.CreateHold(ctx, 1, &models.CreateHoldRequest{
		MatchID:     matchID,
		SeatUnitIDs: seats,
	})
	require.NoError(t, err)

	err = env.matches.BlockSeat(ctx, seats[0])
	_, ok := apperrors.IsSeatUnavailable(err)
	assert.True(t, ok)
}
