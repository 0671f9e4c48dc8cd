package config

import "time"

// RateLimitConfig configures the Redis token bucket that guards the public
// search endpoints.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
	Debug          bool
}

func LoadRateLimitConfig() RateLimitConfig {
	rc := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    getenv("RATE_LIMIT_KEY_STRATEGY", "ip_route"),
		Prefix:         getenv("RATE_LIMIT_PREFIX", "rl"),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
	}
	return rc.normalized()
}

// normalized clamps values so the Lua script never divides by zero and keys
// outlive at least a few refill intervals.
func (rc RateLimitConfig) normalized() RateLimitConfig {
	if rc.Capacity < 1 {
		rc.Capacity = 1
	}
	if rc.RefillTokens < 1 {
		rc.RefillTokens = 1
	}
	if rc.RefillInterval <= 0 {
		rc.RefillInterval = time.Second
	}
	if minTTL := 5 * rc.RefillInterval; rc.TTL < minTTL {
		rc.TTL = minTTL
	}
	return rc
}
