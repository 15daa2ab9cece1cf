package kvstore

import (
	"context"
	"fmt"
)

// Options selects and configures a backend.
type Options struct {
	Driver      string // memory, sqlite, mysql, postgres, redis
	DSN         string
	RedisAddr   string
	RedisPrefix string
}

func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		store Store
		err   error
	)
	switch opts.Driver {
	case "memory":
		return NewMemoryStore(), nil
	case "", "sqlite":
		store, err = OpenSQLite(opts.DSN)
	case "mysql":
		store, err = OpenMySQL(opts.DSN)
	case "postgres":
		store, err = OpenPostgres(opts.DSN)
	case "redis":
		store, err = OpenRedis(ctx, opts.RedisAddr, opts.RedisPrefix)
	default:
		return nil, fmt.Errorf("kvstore: unknown driver %q", opts.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("kvstore: open %s: %w", opts.Driver, err)
	}
	return store, nil
}
