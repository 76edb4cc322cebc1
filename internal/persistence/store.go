package persistence

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fetullahyldz/qr.menux.com-sub001/internal/config"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/storage"
)

// OpenStore builds the durable store selected by cfg.Storage.Driver. The
// returned close func releases the underlying connections.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Store, func(), error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverRedis:
		r := NewRedis(cfg.Redis, logger)
		return storage.NewRedisStore(r.Client, cfg.Storage.KeyPrefix), r.Close, nil

	case config.StorageDriverPostgres:
		pg, err := NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if pg.PoolHandle() == nil {
			return nil, nil, errors.New("STORAGE_DRIVER=postgres requires POSTGRES_DSN")
		}
		if cfg.Postgres.RunMigrations {
			if err := RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, nil, err
			}
		}
		return storage.NewPostgresStore(pg.PoolHandle(), cfg.Storage.KeyPrefix), pg.Close, nil

	default:
		logger.Info("using in-memory storage; visitor sessions are lost on restart")
		return storage.WithPrefix(storage.NewMemoryStore(), cfg.Storage.KeyPrefix), func() {}, nil
	}
}
