package main

import (
	"context"
	"log"
	"os"
	"time"

	"discscore/adapters/db/postgres/migrations"
	"discscore/internal/config"
	"discscore/internal/container"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	if len(os.Args) > 1 {
		os.Setenv("DATABASE_URL", os.Args[1])
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if !cfg.Database.Enabled() {
		log.Fatal("Usage: migrate [database_url] (or set DATABASE_URL)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	log.Printf("Migrating %s ledger", cfg.Database.Driver)
	db, err := container.OpenDatabase(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	defer db.Close()

	statuses, err := migrations.NewMigrator(db).Status(ctx)
	if err != nil {
		log.Fatalf("Failed to read migration status: %v", err)
	}
	for _, s := range statuses {
		log.Printf("%s %s applied=%v", s.Version, s.Name, s.Applied)
	}
}
