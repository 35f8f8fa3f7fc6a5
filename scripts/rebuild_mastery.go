// Manually rebuild derived mastery state from the event log.
//
// The API exposes the same operation per user via POST /api/mastery/rebuild;
// this script exists for operational sweeps, e.g. after a bad deploy poisoned
// several accounts or after restoring the events table from a backup.
//
// Usage: go run scripts/rebuild_mastery.go -user 42
//
//	go run scripts/rebuild_mastery.go -all
package main

import (
	"context"
	"flag"
	"log"

	"maang_tracker_backend/internal/config"
	"maang_tracker_backend/internal/repository"
	"maang_tracker_backend/internal/service"
	"maang_tracker_backend/pkg/database"
	"maang_tracker_backend/pkg/logger"
)

func main() {
	userID := flag.Uint("user", 0, "rebuild a single user")
	all := flag.Bool("all", false, "rebuild every user with events")
	flag.Parse()

	if *userID == 0 && !*all {
		log.Fatal("pass -user <id> or -all")
	}

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	events := repository.NewEventRepository(db)
	mastery := repository.NewMasteryRepository(db)
	problems := repository.NewProblemRepository(db)
	topics := repository.NewTopicRepository(db)

	taxonomy, err := service.NewTaxonomyService(topics)
	if err != nil {
		log.Fatalf("failed to load taxonomy: %v", err)
	}
	masteries := service.NewMasteryService(
		events, mastery, problems, taxonomy,
		service.NewVerifierService(cfg),
		service.NewUserLockRegistry(),
		nil, nil, cfg,
	)

	ctx := context.Background()
	ids := []uint{*userID}
	if *all {
		ids, err = events.DistinctUserIDs()
		if err != nil {
			log.Fatalf("failed to list users with events: %v", err)
		}
	}

	for _, id := range ids {
		if err := masteries.RebuildFromLog(ctx, id); err != nil {
			log.Printf("user %d: rebuild failed: %v", id, err)
			continue
		}
		log.Printf("user %d: rebuilt", id)
	}
	log.Println("done")
}
