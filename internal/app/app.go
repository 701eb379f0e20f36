// Package app arma los servicios a partir de la configuración; lo comparten el
// servidor HTTP y la CLI.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/WINTERANDREA/vet-sheet-parser/internal/adapters/cache"
	fssource "github.com/WINTERANDREA/vet-sheet-parser/internal/adapters/source/fs"
	miniosource "github.com/WINTERANDREA/vet-sheet-parser/internal/adapters/source/minio"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/adapters/storage/memory"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/adapters/storage/sqlstore"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/domain/documents"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/domain/records"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/export"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/ingest"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/platform/config"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/platform/logger"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/platform/metrics"
)

type App struct {
	Config  *config.Config
	Log     logger.Logger
	Metrics *metrics.Metrics

	Documents *documents.Service
	Records   *records.Service
	Export    *export.Service
	Importer  *ingest.Importer

	closers []func() error
}

// NewLogger construye el logger según cfg.Log.
func NewLogger(cfg *config.Config) logger.Logger {
	return logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.Log.App,
	})
}

// New abre storage, fuente y cache. Llamar Close al terminar.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg)
	}
	a := &App{Config: cfg, Log: log, Metrics: metrics.New()}

	repo, err := a.openRepository(cfg.Storage)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	src, err := openSource(cfg.Source)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	docOpts := []documents.Option{documents.WithLogger(log), documents.WithMetrics(a.Metrics)}
	if c := a.openCache(ctx, cfg.Cache); c != nil {
		docOpts = append(docOpts, documents.WithCache(c))
	}

	a.Documents = documents.NewService(src, docOpts...)
	a.Records = records.NewService(repo, records.WithLogger(log), records.WithMetrics(a.Metrics))
	a.Export = export.NewService(a.Records, log)
	a.Importer = ingest.NewImporter(a.Documents, a.Records, log, cfg.Parser.KeepRaw)

	log.Info("app.ready", map[string]any{
		"storage": cfg.Storage.Driver,
		"source":  cfg.Source.Kind,
		"cache":   cfg.Cache.Kind,
	})
	return a, nil
}

func (a *App) openRepository(cfg config.StorageConfig) (records.Repository, error) {
	switch cfg.Driver {
	case "memory", "":
		return memory.NewRecordsRepo(), nil
	case sqlstore.DriverPostgres, sqlstore.DriverSQLite:
		if cfg.AutoMigrate {
			if err := sqlstore.Migrate(cfg.Driver, cfg.DSN); err != nil {
				return nil, err
			}
		}
		db, err := sqlstore.Open(cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
		}
		a.onClose(db)
		return sqlstore.NewRecordsRepo(db, cfg.Driver), nil
	default:
		return nil, fmt.Errorf("%w: storage.driver %q", config.ErrInvalidConfig, cfg.Driver)
	}
}

func openSource(cfg config.SourceConfig) (documents.Source, error) {
	switch cfg.Kind {
	case "fs", "":
		return fssource.New(cfg.Dir), nil
	case "minio":
		return miniosource.New(miniosource.Config{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Bucket:    cfg.MinIO.Bucket,
			Prefix:    cfg.MinIO.Prefix,
			UseSSL:    cfg.MinIO.UseSSL,
		})
	default:
		return nil, fmt.Errorf("%w: source.kind %q", config.ErrInvalidConfig, cfg.Kind)
	}
}

// openCache nunca falla: sin cache se parsea igual.
func (a *App) openCache(ctx context.Context, cfg config.CacheConfig) documents.ParseCache {
	switch cfg.Kind {
	case "lru":
		c, err := cache.NewLRU(cfg.Size)
		if err != nil {
			a.Log.Warn("cache disabled", map[string]any{"kind": cfg.Kind, "error": err})
			return nil
		}
		return c
	case "redis":
		c := cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
			TTL:      cfg.TTL,
		})
		a.closers = append(a.closers, c.Close)
		if err := c.Ping(ctx); err != nil {
			a.Log.Warn("redis not reachable; lookups will miss", map[string]any{"addr": cfg.Redis.Addr, "error": err})
		}
		return c
	default:
		return nil
	}
}

func (a *App) onClose(db *sql.DB) {
	a.closers = append(a.closers, db.Close)
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
