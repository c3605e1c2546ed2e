package main

import (
	"context"
	"time"

	"greenbin_backend/internal/geocode"
	"greenbin_backend/internal/reports/repository"
	"greenbin_backend/platform/config"
	"greenbin_backend/platform/db"
	"greenbin_backend/platform/logger"
)

// Backfills coordinates for reports that were filed with an address only.
// Runs until the backlog is empty or a batch makes no progress.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting report geocode backfill")

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	repo := repository.New(pool)
	geocoder := geocode.NewService(cfg, log)

	const batchSize = 25
	for {
		pending, err := repo.ListMissingCoordinates(ctx, batchSize)
		if err != nil {
			log.Error("failed to list reports", "error", err)
			return
		}
		if len(pending) == 0 {
			log.Info("no reports left to geocode")
			return
		}

		progress := false

		for _, report := range pending {
			suggestions, err := geocoder.Search(ctx, report.Address)
			if err != nil {
				log.Error("geocode failed", "reportId", report.ID, "error", err)
				time.Sleep(time.Second)
				continue
			}
			if len(suggestions) == 0 {
				log.Info("no geocode result", "reportId", report.ID, "address", report.Address)
				time.Sleep(time.Second)
				continue
			}

			coord := suggestions[0].Coordinate
			if err := repo.UpdateCoordinate(ctx, report.ID, coord); err != nil {
				log.Error("failed to update report", "reportId", report.ID, "error", err)
				time.Sleep(time.Second)
				continue
			}

			log.Info("report geocoded", "reportId", report.ID, "lat", coord.Lat, "lng", coord.Lng)
			progress = true
			time.Sleep(time.Second)
		}

		if !progress {
			log.Info("no geocode progress in batch, stopping")
			return
		}
	}
}
