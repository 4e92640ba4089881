package cache

import (
	"context"
	"sync"
	"time"
)

// fakeClient is an in-memory stand-in for Client, letting the cached
// repository wrappers be exercised without a real Redis instance.
type fakeClient struct {
	mu         sync.Mutex
	values     map[string]string
	setExCalls int
	delCalls   int
}

func newFakeClient() *fakeClient {
	return &fakeClient{values: make(map[string]string)}
}

func (c *fakeClient) Set(ctx context.Context, key string, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *fakeClient) SetEx(ctx context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setExCalls++
	c.values[key] = value
	return nil
}

func (c *fakeClient) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	if !ok {
		return "", ErrMiss
	}
	return v, nil
}

func (c *fakeClient) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delCalls++
	delete(c.values, key)
	return nil
}

func (c *fakeClient) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.values[key]
	return ok, nil
}
