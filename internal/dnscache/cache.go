// Package dnscache caches MX lookups for the duration of a batch so a
// domain appearing many times in one input file resolves only once.
package dnscache

import (
	"context"
	"net"
	"sync"
	"time"
)

// Resolver is the subset of net.Resolver the cache needs.
// Injectable for testing.
type Resolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

// Cache is a TTL-bounded MX lookup cache. Both outcomes are cached:
// a failed lookup stays failed until the entry expires, matching the
// rule that one address's DNS verdict cannot flip mid-batch.
type Cache struct {
	mu            sync.Mutex
	entries       map[string]entry
	cacheTTL      time.Duration
	lookupTimeout time.Duration
	resolver      Resolver
}

type entry struct {
	records []*net.MX
	err     error
	expires time.Time
}

// New creates a cache with the given per-lookup timeout and entry TTL.
func New(lookupTimeout, cacheTTL time.Duration) *Cache {
	return &Cache{
		entries:       make(map[string]entry),
		cacheTTL:      cacheTTL,
		lookupTimeout: lookupTimeout,
		resolver:      &net.Resolver{},
	}
}

// NewWithResolver creates a cache backed by a custom resolver.
func NewWithResolver(lookupTimeout, cacheTTL time.Duration, r Resolver) *Cache {
	c := New(lookupTimeout, cacheTTL)
	c.resolver = r
	return c
}

// LookupMX returns the MX records for domain, resolving at most once
// per TTL window.
func (c *Cache) LookupMX(domain string) ([]*net.MX, error) {
	c.mu.Lock()
	if e, ok := c.entries[domain]; ok && time.Now().Before(e.expires) {
		c.mu.Unlock()
		return copyMX(e.records), e.err
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.lookupTimeout)
	defer cancel()
	records, err := c.resolver.LookupMX(ctx, domain)

	c.mu.Lock()
	c.entries[domain] = entry{records: records, err: err, expires: time.Now().Add(c.cacheTTL)}
	c.mu.Unlock()

	return copyMX(records), err
}

// Len returns the number of cached domains, for diagnostics.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// copyMX deep-copies the records so callers sorting them cannot mutate
// the cached slice.
func copyMX(records []*net.MX) []*net.MX {
	if records == nil {
		return nil
	}
	out := make([]*net.MX, len(records))
	for i, r := range records {
		cp := *r
		out[i] = &cp
	}
	return out
}
