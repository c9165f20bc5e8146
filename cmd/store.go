package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vibast-solutions/ms-go-apikeys/app/repository"
	"github.com/vibast-solutions/ms-go-apikeys/config"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func dialectFor(driver string) (repository.Dialect, error) {
	switch driver {
	case config.StoreDriverMySQL:
		return repository.DialectMySQL, nil
	case config.StoreDriverPostgres:
		return repository.DialectPostgres, nil
	default:
		return "", fmt.Errorf("store driver %q has no SQL dialect", driver)
	}
}

func openDatabase(cfg *config.Config) (*sql.DB, repository.Dialect, error) {
	dialect, err := dialectFor(cfg.StoreDriver)
	if err != nil {
		return nil, "", err
	}

	db, err := sql.Open(dialect.DriverName(), cfg.DSN())
	if err != nil {
		return nil, "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.StoreTimeout)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("%w: %w", repository.ErrStorageUnavailable, err)
	}

	return db, dialect, nil
}

func newRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// newStore builds the configured key store. The returned func releases its connections.
func newStore(cfg *config.Config) (repository.APIKeyStore, func(), error) {
	var (
		store   repository.APIKeyStore
		closers []func() error
	)

	if cfg.StoreDriver == config.StoreDriverMemory {
		logrus.Warn("Using in-memory key store; records are lost on exit")
		store = repository.NewMemoryAPIKeyRepository()
	} else {
		db, dialect, err := openDatabase(cfg)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, db.Close)
		store = repository.NewAPIKeyRepository(db, dialect, cfg.StoreTimeout)
	}

	if cfg.RedisURL != "" {
		client, err := newRedisClient(cfg.RedisURL)
		if err != nil {
			closeAll(closers)
			return nil, nil, err
		}
		closers = append(closers, client.Close)
		store = repository.NewCachedAPIKeyRepository(store, repository.NewRedisKeyCache(client, cfg.CacheTTL))
		logrus.WithField("ttl", cfg.CacheTTL.String()).Info("Redis key cache enabled")
	}

	return store, func() { closeAll(closers) }, nil
}

func closeAll(closers []func() error) {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			logrus.WithError(err).Warn("Failed to close store resource")
		}
	}
}
