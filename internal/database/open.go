package database

import (
	"context"
	"fmt"

	"monitor-estoque/config"
)

// StoreCloser é um Store com conexão a ser encerrada ao fim da execução
type StoreCloser interface {
	Store
	Close() error
}

// Open abre o backend configurado em STORE_DRIVER
func Open(ctx context.Context, cfg *config.Config) (StoreCloser, error) {
	switch cfg.StoreDriver {
	case "mongo", "":
		return NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case "sqlite":
		return New(cfg.DatabasePath)
	case "postgres":
		return NewPostgres(cfg.PostgresDSN)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.StoreDriver)
	}
}
