package store

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Config selects and configures a snapshot store driver.
type Config struct {
	// Driver is one of "file" (default), "sqlite", "redis", "memory".
	Driver string

	// Path is the state file or database location (file and sqlite drivers).
	Path string

	// Redis connection settings (redis driver).
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open constructs the adapter named by cfg.Driver.
func Open(cfg Config) (Adapter, error) {
	switch cfg.Driver {
	case "memory":
		return NewMemoryStore(), nil
	case "", "file":
		return NewFileStore(cfg.Path), nil
	case "sqlite":
		return OpenSQLite(cfg.Path)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return NewRedisStore(client), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
