package config

import (
    "time"
)

// CatalogCacheConfig defines settings for caching catalog pages fetched from
// the external title provider.  Pages are immutable for practical purposes
// (the provider ranks consistently), so they are cached in Redis with a TTL
// and additionally in a bounded in-process cache used when Redis is down.
// Prefix namespaces the Redis keys.  BoundedCapacity is the number of pages
// the in-process cache retains before evicting the oldest-inserted entry.
type CatalogCacheConfig struct {
    Enabled         bool
    PageTTL         time.Duration
    Prefix          string
    BoundedCapacity int
    RequestTimeout  time.Duration
}

// LoadCatalogCacheConfig reads environment variables to build a
// CatalogCacheConfig.  Defaults are used when variables are not set.
func LoadCatalogCacheConfig() CatalogCacheConfig {
    cfg := CatalogCacheConfig{
        Enabled:         envBool("CATALOG_CACHE_ENABLED", true),
        PageTTL:         envDur("CATALOG_CACHE_TTL", 6*time.Hour),
        Prefix:          envStr("CATALOG_CACHE_PREFIX", "catalog"),
        BoundedCapacity: envInt("CATALOG_CACHE_CAPACITY", 256),
        RequestTimeout:  envDur("CATALOG_REQUEST_TIMEOUT", 5*time.Second),
    }
    if cfg.BoundedCapacity < 1 {
        cfg.BoundedCapacity = 1
    }
    if cfg.PageTTL <= 0 {
        cfg.PageTTL = time.Hour
    }
    return cfg
}
