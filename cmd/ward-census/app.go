package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"ward-census/internal/catalog"
	"ward-census/internal/config"
	"ward-census/internal/database"
	"ward-census/internal/datetime"
	"ward-census/internal/events"
	"ward-census/internal/importer"
	"ward-census/internal/occupancy"
	"ward-census/internal/repository"
	"ward-census/internal/service"
	"ward-census/internal/store"
)

// app holds the wired backends and services shared by every command.
type app struct {
	cfg    *config.Config
	logger *zap.Logger

	db          *sql.DB       // nil without DB_ENABLED
	redisClient *redis.Client // nil without REDIS_ENABLED or when unreachable
	store       repository.Store
	storeName   string

	occupancy *service.OccupancyService
	patients  *service.PatientService
	imports   *service.ImportService
	cleanup   *service.CleanupService
	settings  *service.SettingsService
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return nil, err
	}

	if cfg.DBEnabled {
		db, err := database.NewPostgresDB(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.EnsureSchema(ctx, db); err != nil {
			_ = database.Close(db)
			return nil, err
		}
		a.db = db
		a.store = repository.NewPostgresStore(db)
		a.storeName = "postgres"
		logger.Info("DB enabled for ward-census", zap.String("database", cfg.Database.Database))
	} else {
		a.store = repository.NewMemoryStore()
		a.storeName = "memory"
		logger.Warn("DB disabled, records are kept in memory only")
	}

	var (
		kv        store.KV
		publisher events.Publisher = events.NopPublisher{}
	)
	if cfg.RedisEnabled {
		client := store.NewRedisClient(&cfg.Redis)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Warn("Redis enabled but unreachable, running without cache and events", zap.Error(err))
			_ = client.Close()
		} else {
			a.redisClient = client
			kv = store.NewRedisKV(client)
			publisher = events.NewStreamPublisher(client, cfg.EventsStream, logger)
		}
	}

	affirmatives := append([]string{}, importer.DefaultAffirmatives...)
	affirmatives = append(affirmatives, cat.Affirmatives...)
	importOpts := importer.Options{
		Synonyms:        cat.HeaderSynonyms(),
		Affirmatives:    affirmatives,
		FallbackToFirst: cfg.Import.FallbackToFirst,
		Now:             func() time.Time { return datetime.Wall(time.Now(), cfg.Location) },
	}

	a.occupancy = service.NewOccupancyService(a.store, kv, cfg.Snapshot.CacheTTL,
		occupancy.Options{InclusiveDischarge: cfg.Snapshot.InclusiveDischarge}, cfg.Location, logger)
	a.patients = service.NewPatientService(a.store, a.occupancy, publisher, logger)
	a.imports = service.NewImportService(a.store, a.occupancy, publisher, cfg.Import.SheetName, importOpts, logger)
	a.cleanup = service.NewCleanupService(a.store, a.occupancy, publisher, logger)
	a.settings = service.NewSettingsService(a.store, a.occupancy, logger)

	if err := a.settings.Seed(ctx, cat); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) Close() {
	if a.redisClient != nil {
		_ = a.redisClient.Close()
	}
	if a.db != nil {
		_ = database.Close(a.db)
	}
}
