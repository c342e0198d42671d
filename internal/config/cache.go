package config

import "time"

// CacheConfig controls the Redis cache of successful chat answers. Identical
// questions (after case and whitespace folding) are served from Redis instead
// of calling the oracle again. MaxBodyBytes bounds what is stored.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      parseMethods(envStr("CACHE_METHODS", "POST")),
		TTL:          envDur("CACHE_TTL", time.Hour),
		Prefix:       envStr("CACHE_PREFIX", "pha:answer"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 256<<10),
	}
}
