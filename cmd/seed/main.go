package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rzane/advanced-demo/internal/config"
	"github.com/rzane/advanced-demo/internal/db"
	"github.com/rzane/advanced-demo/internal/logging"
	"github.com/rzane/advanced-demo/internal/places"
	"github.com/rzane/advanced-demo/internal/seeds"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load(".env.local")

	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}

// run parses args, validates the seed file and, unless -dry-run is set,
// writes it to the database named by DATABASE_URL.
func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	var (
		file        = fs.String("file", seeds.DefaultPath, "Path to the seed file (.json, .yaml or .yml)")
		wipe        = fs.Bool("wipe", false, "DANGER: empties cities and states before seeding")
		dryRun      = fs.Bool("dry-run", false, "Parse + validate only; no DB writes")
		advisoryKey = fs.Int64("advisory-lock", 0, "Optional Postgres advisory lock key (e.g., 424242). 0 = disabled")
		timeout     = fs.Duration("timeout", 5*time.Minute, "Give up if seeding takes longer than this")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	if _, err := logging.Init(cfg.LogLevel); err != nil {
		return err
	}
	defer logging.Sync()
	log := logging.L.Named("seed")

	records, err := seeds.Load(*file)
	if err != nil {
		return err
	}
	groups, err := seeds.Plan(records)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	log.Info("loaded seed file", zap.String("file", *file), zap.Int("records", len(records)), zap.Int("states", len(groups)))

	if *dryRun {
		for _, g := range groups {
			fmt.Fprintf(stdout, "%s: %d cities\n", g.Name, len(g.Cities))
		}
		fmt.Fprintln(stdout, "Dry run complete. No changes made.")
		return nil
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := db.Connect(cfg); err != nil {
		return err
	}
	defer db.Close(db.DB)

	if err := places.Init(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	res, err := seeds.Seed(ctx, db.DB, groups, seeds.Options{
		Namespace:    cfg.SeedNamespace,
		Wipe:         *wipe,
		AdvisoryLock: *advisoryKey,
	})
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	log.Info("seeded",
		zap.Int("states", res.States),
		zap.Int("cities", res.Cities),
		zap.Duration("duration", res.Duration),
	)
	fmt.Fprintf(stdout, "Seeded %d states and %d cities.\n", res.States, res.Cities)
	return nil
}
