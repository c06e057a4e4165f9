package seeds

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rzane/advanced-demo/internal/db"
	"github.com/rzane/advanced-demo/internal/places"
	"gorm.io/gorm"
)

type Options struct {
	// Namespace for deterministic state and city IDs.
	Namespace uuid.UUID
	// Wipe empties cities and states before inserting.
	Wipe bool
	// AdvisoryLock, when non-zero, serializes concurrent seeders on Postgres.
	AdvisoryLock int64
}

type Result struct {
	States   int
	Cities   int
	Duration time.Duration
}

// Seed inserts every group inside a single transaction. Nothing is written
// unless all rows are.
func Seed(ctx context.Context, d *gorm.DB, groups []StateGroup, opts Options) (Result, error) {
	start := time.Now()
	var res Result

	err := d.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if opts.AdvisoryLock != 0 && tx.Dialector.Name() == "postgres" {
			if err := tx.Exec(`SELECT pg_advisory_xact_lock(?)`, opts.AdvisoryLock).Error; err != nil {
				return fmt.Errorf("advisory lock: %w", err)
			}
		}

		if opts.Wipe {
			if err := db.TruncateTables(tx, "cities", "states"); err != nil {
				return fmt.Errorf("wipe: %w", err)
			}
		}

		for _, g := range groups {
			state := places.State{
				ID:   places.StateID(opts.Namespace, g.Name),
				Name: g.Name,
			}
			if err := tx.Create(&state).Error; err != nil {
				return insertError("state "+g.Name, err, opts.Wipe)
			}
			res.States++

			if len(g.Cities) == 0 {
				continue
			}
			cities := make([]places.City, len(g.Cities))
			for i, c := range g.Cities {
				cities[i] = places.City{
					ID:         places.CityID(opts.Namespace, g.Name, c.Name),
					Name:       c.Name,
					Rank:       c.Rank,
					Population: c.Population,
					StateID:    state.ID,
				}
			}
			if err := tx.Create(&cities).Error; err != nil {
				return insertError("cities of "+g.Name, err, opts.Wipe)
			}
			res.Cities += len(cities)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	res.Duration = time.Since(start)
	return res, nil
}

func insertError(what string, err error, wiped bool) error {
	if db.IsUniqueViolation(err) && !wiped {
		return fmt.Errorf("insert %s: already seeded (rerun with -wipe): %w", what, err)
	}
	return fmt.Errorf("insert %s: %w", what, err)
}
