package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samirrijal/globetrotter/internal/adapters/postgres"
	"github.com/samirrijal/globetrotter/internal/adapters/static"
	"github.com/samirrijal/globetrotter/internal/core/domain"
	"github.com/samirrijal/globetrotter/internal/pkg/config"
)

const migrationsDir = "migrations"

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down|seed> [cities.yaml]")
	}

	cfg, err := config.Load("globetrotter-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "up":
		runMigrations(ctx, db, upFiles())
	case "down":
		runMigrations(ctx, db, downFiles())
	case "seed":
		seedCities(ctx, db, os.Args[2:])
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

func upFiles() []string {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.sql"))
	if err != nil {
		log.Fatalf("list migrations: %v", err)
	}
	var up []string
	for _, f := range files {
		if !strings.HasSuffix(f, ".down.sql") {
			up = append(up, f)
		}
	}
	sort.Strings(up)
	return up
}

func downFiles() []string {
	down, err := filepath.Glob(filepath.Join(migrationsDir, "*.down.sql"))
	if err != nil {
		log.Fatalf("list migrations: %v", err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(down)))
	return down
}

func runMigrations(ctx context.Context, db *postgres.DB, files []string) {
	if len(files) == 0 {
		log.Fatalf("no migrations found in %s", migrationsDir)
	}

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("read %s: %v", f, err)
		}

		if _, err := db.Pool.Exec(ctx, string(data)); err != nil {
			log.Fatalf("exec %s: %v", f, err)
		}

		fmt.Printf("OK  %s\n", f)
	}

	log.Println("all migrations applied")
}

// seedCities loads the builtin list, or the YAML file given as argument, into
// reference_cities.
func seedCities(ctx context.Context, db *postgres.DB, args []string) {
	cities := domain.DefaultCities()
	if len(args) > 0 {
		repo, err := static.LoadCityFile(args[0])
		if err != nil {
			log.Fatalf("load %s: %v", args[0], err)
		}
		cities, err = repo.List(ctx)
		if err != nil {
			log.Fatalf("list cities: %v", err)
		}
	}

	if err := postgres.NewCityRepo(db).UpsertAll(ctx, cities); err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.Printf("seeded %d reference cities", len(cities))
}
