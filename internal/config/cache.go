package config

import "time"

// CacheConfig defines settings for the search result cache. When Enabled is
// false no caching happens at all; when Redis is unreachable the service falls
// back to an in-process store. TTL bounds the lifetime of every page entry
// and Prefix namespaces the keys so several deployments can share one Redis.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
func LoadCacheConfig() CacheConfig {
	cc := CacheConfig{
		Enabled: envBool("CACHE_ENABLED", true),
		TTL:     envDur("CACHE_TTL", time.Hour),
		Prefix:  getenv("CACHE_PREFIX", "catalog"),
	}
	if cc.TTL <= 0 {
		cc.TTL = time.Hour
	}
	return cc
}
