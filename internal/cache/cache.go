// Package cache stores serialized search pages. Entries carry tags so that a
// whole family (every movie search page) can be dropped when the catalog
// changes.
package cache

import (
	"context"
	"crypto/sha1"
	"fmt"
	"strings"
	"time"
)

// Store is implemented by the Redis and in-process caches.
type Store interface {
	// Get returns the cached value and true on a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores val under key for ttl and records key under every tag.
	Set(ctx context.Context, key string, val []byte, ttl time.Duration, tags ...string) error
	// InvalidateTag removes every entry recorded under tag.
	InvalidateTag(ctx context.Context, tag string) error
}

// TagMovies groups every cached movie search page.
const TagMovies = "movies"

// Key builds a stable, bounded cache key: the prefix followed by the sha1 of
// the joined parts.
func Key(prefix string, parts ...string) string {
	sum := sha1.Sum([]byte(strings.Join(parts, ":")))
	return fmt.Sprintf("%s:%x", prefix, sum[:])
}

func tagKey(prefix, tag string) string {
	return prefix + ":tag:" + tag
}

// Nop never stores anything. It is used when caching is disabled.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Nop) Set(context.Context, string, []byte, time.Duration, ...string) error { return nil }

func (Nop) InvalidateTag(context.Context, string) error { return nil }

var (
	_ Store = (*Redis)(nil)
	_ Store = (*Memory)(nil)
	_ Store = Nop{}
)
