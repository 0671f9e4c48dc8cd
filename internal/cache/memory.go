package cache

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	val     []byte
	expires time.Time
}

// sweepInterval bounds how long an expired entry can outlive its TTL when
// nobody reads it again.
const sweepInterval = time.Minute

// Memory is the in-process fallback used when Redis is unavailable. Expired
// entries are dropped on read and by a sweep that runs from Set at most once
// per sweepInterval.
type Memory struct {
	mu        sync.Mutex
	entries   map[string]memEntry
	tags      map[string]map[string]struct{}
	now       func() time.Time
	nextSweep time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: map[string]memEntry{},
		tags:    map[string]map[string]struct{}{},
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, key)
		return nil, false, nil
	}
	out := make([]byte, len(e.val))
	copy(out, e.val)
	return out, true, nil
}

func (m *Memory) Set(_ context.Context, key string, val []byte, ttl time.Duration, tags ...string) error {
	cp := make([]byte, len(val))
	copy(cp, val)
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if !now.Before(m.nextSweep) {
		m.sweep(now)
		m.nextSweep = now.Add(sweepInterval)
	}
	m.entries[key] = memEntry{val: cp, expires: now.Add(ttl)}
	for _, tag := range tags {
		set, ok := m.tags[tag]
		if !ok {
			set = map[string]struct{}{}
			m.tags[tag] = set
		}
		set[key] = struct{}{}
	}
	return nil
}

func (m *Memory) InvalidateTag(_ context.Context, tag string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.tags[tag] {
		delete(m.entries, key)
	}
	delete(m.tags, tag)
	return nil
}

// sweep drops expired entries and their tag memberships. m.mu must be held.
func (m *Memory) sweep(now time.Time) {
	for key, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, key)
		}
	}
	for tag, set := range m.tags {
		for key := range set {
			if _, ok := m.entries[key]; !ok {
				delete(set, key)
			}
		}
		if len(set) == 0 {
			delete(m.tags, tag)
		}
	}
}
