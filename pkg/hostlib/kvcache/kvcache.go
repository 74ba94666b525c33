// Package kvcache is a host module exposing a Redis-backed key/value
// cache to compiled programs as module-qualified functions:
// cache/get(key), cache/set(key, value, ttl_seconds), cache/del(key).
// Adapted from the host application's pkg/redis client wiring, narrowed
// to the string operations a script plausibly needs.
package kvcache

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/glint-lang/glint/pkg/registry"
	"github.com/glint-lang/glint/pkg/value"
)

// Config mirrors the host application's redis.Config, narrowed to the
// fields a single-node cache connection needs.
type Config struct {
	Addr     string
	Password string
	DB       int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Cache wraps a go-redis client whose Get/Set/Del are exposed as module
// functions once Register is called.
type Cache struct {
	client *goredis.Client
}

func Connect(cfg Config) (*Cache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to cache: %w", err)
	}

	return &Cache{client: client}, nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}

// Register wires "get"/"set"/"del" as module-qualified functions under
// moduleName (e.g. "cache"), so scripts call cache/get("key") the way
// §4.2 resolves a module-path call: no receiver is prepended, the
// arguments are passed through as written.
func (c *Cache) Register(reg *registry.Registry, moduleName string) {
	reg.AddFunction(registry.FuncDef{
		Name:       "get",
		Module:     moduleName,
		Inlineable: false,
		Callable: func(args registry.ArgIter) (value.Value, error) {
			key, _, err := args.Next()
			if err != nil {
				return value.Value{}, err
			}
			result, err := c.client.Get(context.Background(), key.Text()).Result()
			if err == goredis.Nil {
				return value.Null(), nil
			}
			if err != nil {
				return value.Value{}, &registry.RuntimeError{Kind: "FunctionError", Message: err.Error()}
			}
			return value.Str(result), nil
		},
	})

	reg.AddFunction(registry.FuncDef{
		Name:       "set",
		Module:     moduleName,
		Inlineable: false,
		Callable: func(args registry.ArgIter) (value.Value, error) {
			key, _, err := args.Next()
			if err != nil {
				return value.Value{}, err
			}
			val, _, err := args.Next()
			if err != nil {
				return value.Value{}, err
			}
			ttlSeconds, hasTTL, err := args.Next()
			if err != nil {
				return value.Value{}, err
			}
			var ttl time.Duration
			if hasTTL {
				secs, err := value.ToInt(ttlSeconds)
				if err != nil {
					return value.Value{}, err
				}
				ttl = time.Duration(secs.Int64()) * time.Second
			}
			if err := c.client.Set(context.Background(), key.Text(), val.Text(), ttl).Err(); err != nil {
				return value.Value{}, &registry.RuntimeError{Kind: "FunctionError", Message: err.Error()}
			}
			return value.Bool(true), nil
		},
	})

	reg.AddFunction(registry.FuncDef{
		Name:       "del",
		Module:     moduleName,
		Inlineable: false,
		Callable: func(args registry.ArgIter) (value.Value, error) {
			key, _, err := args.Next()
			if err != nil {
				return value.Value{}, err
			}
			n, err := c.client.Del(context.Background(), key.Text()).Result()
			if err != nil {
				return value.Value{}, &registry.RuntimeError{Kind: "FunctionError", Message: err.Error()}
			}
			return value.IntFromInt64(n), nil
		},
	})
}
