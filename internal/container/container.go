package container

import (
	"context"
	"fmt"
	"log"

	"discscore/adapters/db/postgres/migrations"
	"discscore/adapters/postgres"
	"discscore/adapters/rng"
	"discscore/app"
	"discscore/internal/config"
	"discscore/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB  *sqlx.DB
	RNG ports.RNGPort

	// Repositories (data access layer)
	RunRepo ports.RunRepository

	// Services
	Discrepancy *app.DiscrepancyService
	SampleSize  *app.SampleSizeService
	Runs        *app.RunService
}

// New creates a container with ledger-less services
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		RNG:    rng.NewStreams(),
	}
	c.initServices()
	return c, nil
}

// OpenDatabase connects to the configured ledger and applies pending migrations
func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, cfg.Driver, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s ledger: %w", cfg.Driver, err)
	}
	if cfg.Driver == "sqlite3" {
		db.SetMaxOpenConns(1)
	}

	applied, err := migrations.NewMigrator(db).Up(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	for _, version := range applied {
		log.Printf("Applied migration %s", version)
	}
	return db, nil
}

// InitWithDatabase attaches the run ledger and rebuilds the services around it
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	c.DB = db

	// Test database connection
	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	c.RunRepo = postgres.NewRunRepository(db)
	c.initServices()

	log.Printf("Container initialized with %s run ledger", db.DriverName())
	return nil
}

func (c *Container) initServices() {
	c.Discrepancy = app.NewDiscrepancyService(c.RNG, c.RunRepo, c.Config.Engine)
	c.SampleSize = app.NewSampleSizeService(c.RNG, c.RunRepo, c.Config.Engine)
	c.Runs = app.NewRunService(c.RunRepo)
}

// Shutdown releases the database connection
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB == nil {
		return nil
	}
	if err := c.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
