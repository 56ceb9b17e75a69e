package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/health"
	"github.com/vladislavdragonenkov/storefront/internal/storage/file"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
	"github.com/vladislavdragonenkov/storefront/internal/storage/postgres"
)

// pingableStorage — хранилище корзины с проверкой доступности.
type pingableStorage interface {
	domain.CartStorage
	health.Pinger
}

type runtimeStorage struct {
	cart  pingableStorage
	close func() error
}

// initStorage открывает хранилище, выбранное в конфигурации.
func initStorage(ctx context.Context, cfg Config, logger *log.Entry) (runtimeStorage, error) {
	noop := func() error { return nil }

	switch cfg.StorageDriver {
	case "", StorageDriverMemory:
		logger.Info("using in-memory cart storage")
		return runtimeStorage{cart: memory.NewCartStorage(), close: noop}, nil

	case StorageDriverFile:
		storage, err := file.New(cfg.StorageDir)
		if err != nil {
			return runtimeStorage{}, fmt.Errorf("init file storage: %w", err)
		}
		logger.WithField("dir", storage.Dir()).Info("using file cart storage")
		return runtimeStorage{cart: storage, close: noop}, nil

	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return runtimeStorage{}, fmt.Errorf("postgres storage requires dsn")
		}
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return runtimeStorage{}, fmt.Errorf("init postgres storage: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return runtimeStorage{}, fmt.Errorf("migrate postgres schema: %w", err)
			}
		}
		logger.Info("using postgres cart storage")
		return runtimeStorage{cart: postgres.NewCartStorage(store), close: store.Close}, nil

	default:
		return runtimeStorage{}, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}
