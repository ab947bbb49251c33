package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/JaimeStill/proctor/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

const envDSN = "PROCTOR_DB_DSN"

func main() {
	var (
		dsn     = flag.String("dsn", "", "Database connection URL (defaults to $PROCTOR_DB_DSN, then config.toml)")
		up      = flag.Bool("up", false, "Run all up migrations")
		down    = flag.Bool("down", false, "Run all down migrations")
		steps   = flag.Int("steps", 0, "Number of migrations (positive=up, negative=down)")
		version = flag.Bool("version", false, "Print current migration version")
		force   = flag.Int("force", -1, "Force set version (use with caution)")
	)
	flag.Parse()

	forceSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "force" {
			forceSet = true
		}
	})

	if *dsn == "" {
		*dsn = os.Getenv(envDSN)
	}
	if *dsn == "" {
		cfg, err := config.Load()
		if err != nil {
			log.Fatalf("no -dsn or %s given and config failed to load: %v", envDSN, err)
		}
		*dsn = cfg.Database.URL()
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		log.Fatalf("failed to create migration source: %v", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, *dsn)
	if err != nil {
		log.Fatalf("failed to create migrator: %v", err)
	}
	defer m.Close()

	switch {
	case *version:
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("version: none")
			return
		}
		if err != nil {
			log.Fatalf("failed to get version: %v", err)
		}
		fmt.Printf("version: %d, dirty: %v\n", v, dirty)
	case forceSet:
		if err := m.Force(*force); err != nil {
			log.Fatalf("failed to force version: %v", err)
		}
		fmt.Printf("forced to version %d\n", *force)
	case *up:
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("failed to run up migrations: %v", err)
		}
		fmt.Println("migrations applied successfully")
	case *down:
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("failed to run down migrations: %v", err)
		}
		fmt.Println("migrations reverted successfully")
	case *steps != 0:
		if err := m.Steps(*steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("failed to run migrations: %v", err)
		}
		fmt.Printf("applied %d migration steps\n", *steps)
	default:
		fmt.Println("usage: migrate [-dsn <url>] [-up|-down|-steps N|-version|-force N]")
		flag.PrintDefaults()
	}
}
