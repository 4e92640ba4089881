// Package cache wraps a Redis client with write-through/read-through cached
// repository decorators for the user, session, and meeting domain entities.
package cache

import (
	"context"
	"time"
)

// Client is the minimal Redis surface the cached repositories depend on,
// letting tests substitute a fake without pulling in go-redis.
type Client interface {
	Set(ctx context.Context, key string, value string) error
	SetEx(ctx context.Context, key string, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ErrMiss is returned by Get when key is absent.
var ErrMiss = errMiss{}

type errMiss struct{}

func (errMiss) Error() string { return "cache: miss" }
