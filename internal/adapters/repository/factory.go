package repository

import (
	"context"
	"fmt"

	"github.com/okian/allocator/internal/config"
)

// Open builds the Store selected by cfg.StoreDriver.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		var (
			s   *MemoryStore
			err error
		)
		if cfg.DatasetPath == "" {
			s, err = NewMemoryStore()
		} else {
			s, err = NewMemoryStoreFromFile(cfg.DatasetPath)
		}
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StorePostgres:
		s, err := OpenPostgres(ctx, cfg.DatabaseURL, postgresOptions(cfg)...)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.StoreDriver)
	}
}

func postgresOptions(cfg *config.Config) []PostgresOption {
	return []PostgresOption{
		WithQueryTimeout(cfg.PostgresQueryTimeout),
		WithMaxOpenConns(cfg.PostgresMaxOpenConns),
	}
}
