package db

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/crucial707/educompanion/internal/config"
	"github.com/crucial707/educompanion/internal/repo"
	"github.com/crucial707/educompanion/internal/repo/memrepo"
	"github.com/crucial707/educompanion/internal/repo/mongorepo"
)

const startupTimeout = 10 * time.Second

// Open builds the stores for cfg.StoreDriver. Connectivity and migration
// failures are logged and do not abort startup: requests that need the
// database fail individually until it becomes reachable. The returned func
// releases the connection.
func Open(ctx context.Context, cfg config.Config, logger *zerolog.Logger) (*repo.Stores, func(context.Context) error, error) {
	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		database, err := Connect(ctx, cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
		if database == nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err != nil {
			logger.Error().Err(err).Msg("postgres unreachable, continuing degraded")
		} else {
			logger.Info().Msg("connected to postgres")
			version, err := Migrate(cfg.DatabaseURL)
			if err != nil {
				logger.Error().Err(err).Msg("migrations failed")
			} else {
				logger.Info().Uint("version", version).Msg("schema up to date")
			}
		}
		return repo.NewPostgresStores(database), func(context.Context) error { return database.Close() }, nil

	case config.DriverMongo:
		client, err := ConnectMongo(ctx, cfg.MongoURI)
		if client == nil {
			return nil, nil, fmt.Errorf("open mongo: %w", err)
		}
		if err != nil {
			logger.Error().Err(err).Msg("mongo unreachable, continuing degraded")
		} else {
			logger.Info().Str("database", cfg.MongoDatabase).Msg("connected to mongo")
		}
		stores := mongorepo.NewStores(ctx, logger, client, client.Database(cfg.MongoDatabase))
		return stores, client.Disconnect, nil

	case config.DriverMemory:
		logger.Warn().Msg("using in-memory store, data is lost on restart")
		return memrepo.New().Stores(), func(context.Context) error { return nil }, nil
	}

	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
