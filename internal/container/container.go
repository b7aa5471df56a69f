package container

import (
	"context"
	"fmt"

	"factorio/wiki/internal/client"
	"factorio/wiki/internal/config"
	"factorio/wiki/internal/repository"
	"factorio/wiki/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config  *config.Config
	Client  client.WikiClient
	Store   repository.ItemStore
	Mirror  repository.ItemRepository
	Service *service.Service

	logger log.FieldLogger
	db     *pgxpool.Pool
}

// New creates a new container with all dependencies initialized. The
// database mirror is only connected when enabled and not readonly.
func New(ctx context.Context, cfg *config.Config, logger log.FieldLogger, readonly bool) (*Container, error) {
	container := &Container{
		Config: cfg,
		logger: logger,
	}

	container.Store = repository.NewFileItemStore(cfg.Storage.CachePath(), logger.WithField("component", "store"))
	container.Client = client.NewWikiClient(cfg.Wiki, logger.WithField("component", "client"))

	if cfg.Database.Enabled && !readonly {
		db, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.Ping(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		if err := repository.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("✅ Connected to database mirror")

		container.db = db
		container.Mirror = repository.NewItemRepository(db)
	}

	container.Service = service.NewService(
		container.Store,
		container.Client,
		container.Mirror,
		cfg.Storage.ImagePath(),
		logger.WithField("component", "builder"),
	)

	return container, nil
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	if c.db != nil {
		c.db.Close()
		c.logger.Debug("Database pool closed")
	}
	return nil
}
