package emulator

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const listXMLKey = "listxml"

// Cached memoizes successful documents of another Runner. Failures are never
// cached, so a retry reaches the emulator again.
type Cached struct {
	runner Runner
	store  *gocache.Cache
}

// NewCached wraps r. ttl is how long a document stays valid; cleanupInterval
// is how often expired documents are dropped from memory.
func NewCached(r Runner, ttl, cleanupInterval time.Duration) *Cached {
	return &Cached{
		runner: r,
		store:  gocache.New(ttl, cleanupInterval),
	}
}

// ListXML returns the cached machine list or fetches it.
func (c *Cached) ListXML(ctx context.Context) ([]byte, error) {
	return c.get(listXMLKey, func() ([]byte, error) {
		return c.runner.ListXML(ctx)
	})
}

// ListSoftware returns the cached software catalog of system or fetches it.
func (c *Cached) ListSoftware(ctx context.Context, system string) ([]byte, error) {
	return c.get("listsoftware:"+system, func() ([]byte, error) {
		return c.runner.ListSoftware(ctx, system)
	})
}

func (c *Cached) get(key string, fetch func() ([]byte, error)) ([]byte, error) {
	if v, ok := c.store.Get(key); ok {
		return v.([]byte), nil
	}
	out, err := fetch()
	if err != nil {
		return nil, err
	}
	c.store.Set(key, out, gocache.DefaultExpiration)
	return out, nil
}

// Len returns the number of cached documents.
func (c *Cached) Len() int {
	return c.store.ItemCount()
}

// Flush drops every cached document.
func (c *Cached) Flush() {
	c.store.Flush()
}
