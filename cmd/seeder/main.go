package main

import (
	"context"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mauv0809/catchboard/internal/competition"
	"github.com/mauv0809/catchboard/internal/database"
	"github.com/mauv0809/catchboard/internal/entry"
	"github.com/mauv0809/catchboard/internal/store"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{
		"DB_NAME":           "catchboard.db",
		"TURSO_PRIMARY_URL": "",
		"TURSO_AUTH_TOKEN":  "",
		"SEED_TEAM":         "",
		"SEED_ENTRIES":      "false",
	}
	for key := range config {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		}
	}
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()
	ctx := context.Background()

	db, dbTeardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer dbTeardown()
	entryStore := store.New(db)

	existing, err := entryStore.GetCompetitors(ctx)
	if err != nil {
		log.Fatalf("Failed to read competitors: %s", err)
	}
	if len(existing) > 0 {
		log.Fatal("Store already has competitors, clear it before seeding", "competitors", len(existing))
	}

	roster := competition.GenerateRoster(nil, cfg["SEED_TEAM"])
	if err := entryStore.UpsertCompetitors(ctx, roster); err != nil {
		log.Fatalf("Failed to insert roster: %s", err)
	}
	log.Info("Inserted roster", "competitors", len(roster))

	withEntries, _ := strconv.ParseBool(cfg["SEED_ENTRIES"])
	if !withEntries {
		return
	}

	startTime := time.Now()
	hourly, bigCatches := 0, 0
	for _, c := range roster {
		for h := 1; h <= competition.Hours; h++ {
			// Leave some hours empty so the board has gaps.
			if rand.Intn(4) == 0 {
				continue
			}
			fish := rand.Intn(6)
			weight := 0
			if fish > 0 {
				weight = fish * (80 + rand.Intn(400))
			}
			_, err := entryStore.PutHourlyEntry(ctx, entry.HourlyEntry{
				CompetitorID: c.ID,
				Hour:         h,
				FishCount:    fish,
				TotalWeight:  weight,
				Status:       entry.StatusLockedAdmin,
				Source:       entry.RoleAdmin,
				Timestamp:    startTime.Add(time.Duration(h) * time.Hour),
			}, 0)
			if err != nil {
				log.Fatalf("Failed to insert hourly entry for %s: %s", c.BoxCode(), err)
			}
			hourly++
		}

		if rand.Intn(2) == 0 {
			continue
		}
		_, err := entryStore.PutBigCatchEntry(ctx, entry.BigCatchEntry{
			CompetitorID: c.ID,
			BiggestCatch: 200 + rand.Intn(1500),
			Status:       entry.StatusLockedAdmin,
			Source:       entry.RoleAdmin,
			Timestamp:    startTime.Add(competition.Hours * time.Hour),
		}, 0)
		if err != nil {
			log.Fatalf("Failed to insert big catch for %s: %s", c.BoxCode(), err)
		}
		bigCatches++
	}

	log.Info("Successfully inserted random entries.", "hourly", hourly, "big_catches", bigCatches, "duration", time.Since(startTime))
}
