// Package bootstrap wires configuration into the catalog, engine and
// snapshot services shared by the server and the CLI.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pension/backend/internal/application/catalog"
	"github.com/pension/backend/internal/application/recommend"
	"github.com/pension/backend/internal/domain/shared"
	"github.com/pension/backend/internal/infrastructure/config"
	"github.com/pension/backend/internal/infrastructure/demo"
	csvimport "github.com/pension/backend/internal/infrastructure/import"
	"github.com/pension/backend/internal/infrastructure/metrics"
	"github.com/pension/backend/internal/infrastructure/storage"
)

// Catalog sources reported by LoadCatalog
const (
	SourceSnapshot = "snapshot"
)

// App holds the long-lived services of one process
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Loader  *csvimport.Loader
	Catalog *catalog.Service
	Engine  *recommend.Engine
	// Store is nil when the snapshot backend is "none"
	Store shared.SnapshotStore
	// Metrics is nil when metrics are disabled
	Metrics *metrics.Collector
}

// New builds the services described by cfg. Nothing is loaded yet.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	app := &App{
		Config: cfg,
		Logger: logger,
		Loader: NewLoader(cfg.Data),
	}

	if cfg.Metrics.Enabled {
		app.Metrics = metrics.NewCollector(metrics.WithProcessCollectors())
	}

	store, err := storage.NewSnapshotStore(ctx, cfg, logger.Named("snapshot"))
	if err != nil {
		return nil, fmt.Errorf("snapshot store: %w", err)
	}
	app.Store = store

	catalogOpts := []catalog.ServiceOption{catalog.WithLogger(logger.Named("catalog"))}
	engineOpts := []recommend.Option{
		recommend.WithLogger(logger.Named("recommend")),
		recommend.WithWeights(cfg.Recommend.Weights),
	}
	if store != nil {
		catalogOpts = append(catalogOpts, catalog.WithSnapshotStore(store, cfg.Snapshot.CatalogKey))
		engineOpts = append(engineOpts, recommend.WithHistoryStore(store, cfg.Snapshot.HistoryKey))
	}
	if app.Metrics != nil {
		catalogOpts = append(catalogOpts, catalog.WithRecorder(app.Metrics))
		engineOpts = append(engineOpts, recommend.WithRecorder(app.Metrics))
	}

	app.Catalog = catalog.NewService(catalogOpts...)
	engine, err := recommend.NewEngine(app.Catalog, engineOpts...)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Engine = engine
	return app, nil
}

// NewLoader creates the table loader configured by the data section
func NewLoader(cfg config.DataConfig) *csvimport.Loader {
	return csvimport.NewLoader(
		csvimport.WithSheet(cfg.Sheet),
		csvimport.WithCSVDelimiter(cfg.DelimiterRune()),
	)
}

// LoadCatalog fills the catalog and returns where it came from.
// A configured data file wins; otherwise a saved catalog snapshot is used
// when load_on_start is set, and the built-in demo catalog is the fallback.
func (a *App) LoadCatalog(ctx context.Context) (string, error) {
	if path := a.Config.Data.Path; path != "" {
		return path, a.loadFile(ctx, path)
	}

	if a.Store != nil && a.Config.Snapshot.LoadOnStart {
		n, err := a.Catalog.LoadSnapshot(ctx)
		switch {
		case err == nil:
			a.Logger.Info("catalog restored from snapshot", zap.Int("products", n))
			return SourceSnapshot, nil
		case errors.Is(err, shared.ErrSnapshotNotFound):
			a.Logger.Debug("no catalog snapshot, using demo data")
		default:
			a.Logger.Warn("catalog snapshot unreadable, using demo data", zap.Error(err))
		}
	}

	rows, err := demo.Rows()
	if err != nil {
		return "", err
	}
	if _, err := a.Catalog.Rebuild(ctx, rows); err != nil {
		return "", err
	}
	return demo.Source, nil
}

func (a *App) loadFile(ctx context.Context, path string) error {
	res, err := a.Loader.LoadFile(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	if len(res.Missing) > 0 {
		a.Logger.Warn("product table lacks columns, defaults apply",
			zap.String("source", path),
			zap.Strings("missing", res.Missing),
		)
	}
	if _, err := a.Catalog.Rebuild(ctx, res.RawRows()); err != nil {
		return fmt.Errorf("build catalog from %s: %w", path, err)
	}
	return nil
}

// RestoreHistory loads the saved recommendation history when load_on_start is set.
// A missing snapshot is not an error.
func (a *App) RestoreHistory(ctx context.Context) error {
	if a.Store == nil || !a.Config.Snapshot.LoadOnStart {
		return nil
	}
	err := a.Engine.LoadHistory(ctx)
	if errors.Is(err, shared.ErrSnapshotNotFound) {
		a.Logger.Debug("no recommendation history snapshot")
		return nil
	}
	return err
}

// Persist saves history and catalog snapshots when save_on_stop is set
func (a *App) Persist(ctx context.Context) error {
	if a.Store == nil || !a.Config.Snapshot.SaveOnStop {
		return nil
	}
	return errors.Join(
		a.Engine.SaveHistory(ctx),
		a.Catalog.SaveSnapshot(ctx),
	)
}

// Close releases the snapshot store
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}
