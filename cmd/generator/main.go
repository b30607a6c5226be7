package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"tribuna/internal/config"
	"tribuna/internal/database"
	"tribuna/internal/logger"
	"tribuna/internal/models"
	"tribuna/internal/repository"
)

var (
	matchCount = flag.Int("matches", 4, "Number of sample matches to create")
	dryRun     = flag.Bool("dry-run", false, "Show what would be generated without making changes")
)

// Sample fixtures for local development and load testing.
var teams = [][2]string{
	{"Mumbai Mavericks", "Chennai Chargers"},
	{"Delhi Dynamos", "Kolkata Knights"},
	{"Bengaluru Blasters", "Hyderabad Hawks"},
	{"Punjab Panthers", "Rajasthan Royals"},
}

var stands = []models.Stand{
	{SectionID: "NORTH", Rows: 20, SeatsPerRow: 40, BasePrice: 50000},
	{SectionID: "SOUTH", Rows: 20, SeatsPerRow: 40, BasePrice: 50000},
	{SectionID: "EAST", Rows: 15, SeatsPerRow: 30, BasePrice: 80000},
	{SectionID: "WEST-PREMIUM", Rows: 10, SeatsPerRow: 20, BasePrice: 150000},
}

func main() {
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, "text")

	slog.Info("Starting match generator...")

	db, err := database.Connect(cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	repos := repository.NewRepositories(db)
	ctx := context.Background()

	n := *matchCount
	if n > len(teams) {
		n = len(teams)
	}

	capacity := 0
	for _, stand := range stands {
		capacity += stand.Rows * stand.SeatsPerRow
	}

	for i := 0; i < n; i++ {
		match := &models.Match{
			HomeTeam:         teams[i][0],
			AwayTeam:         teams[i][1],
			IsPlayoff:        i == n-1,
			VenueCapacity:    capacity,
			DemandMultiplier: 1.0,
			StartsAt:         time.Now().AddDate(0, 0, 7*(i+1)),
		}

		if *dryRun {
			fmt.Printf("would create: %s vs %s, %d seats, starts %s\n",
				match.HomeTeam, match.AwayTeam, capacity, match.StartsAt.Format(time.RFC3339))
			continue
		}

		if err := repos.Matches.Create(ctx, match); err != nil {
			slog.Error("Failed to create match", "error", err)
			os.Exit(1)
		}

		if err := repos.SeatUnits.CreateSeatsForMatch(ctx, match.ID, stands); err != nil {
			slog.Error("Failed to provision seats", "error", err, "match_id", match.ID)
			os.Exit(1)
		}

		slog.Info("Created match",
			"match_id", match.ID,
			"home", match.HomeTeam,
			"away", match.AwayTeam,
			"seats", capacity)
	}

	slog.Info("Match generation completed successfully!")
}
