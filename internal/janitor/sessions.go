package janitor

import (
    "context"
    "log"

    "github.com/redis/go-redis/v9"
)

// RedisSessionPurger removes session keys that were written without an
// expiry (TTL == -1), which can happen when an identity provider crashes
// between SET and EXPIRE.  Keys with a live TTL age out on their own.
type RedisSessionPurger struct {
    rdb    *redis.Client
    prefix string
}

// NewRedisSessionPurger builds a purger scanning keys under prefix
// (default "session").
func NewRedisSessionPurger(rdb *redis.Client, prefix string) *RedisSessionPurger {
    if prefix == "" {
        prefix = "session"
    }
    return &RedisSessionPurger{rdb: rdb, prefix: prefix}
}

// PurgeExpired scans for orphaned session keys and deletes them,
// returning the count.  A nil client purges nothing.
func (p *RedisSessionPurger) PurgeExpired(ctx context.Context) (int64, error) {
    if p.rdb == nil {
        return 0, nil
    }
    var purged int64
    iter := p.rdb.Scan(ctx, 0, p.prefix+":*", 100).Iterator()
    for iter.Next(ctx) {
        key := iter.Val()
        ttl, err := p.rdb.TTL(ctx, key).Result()
        if err != nil {
            log.Printf("janitor: ttl %s: %v", key, err)
            continue
        }
        if ttl == -1 {
            if err := p.rdb.Del(ctx, key).Err(); err != nil {
                log.Printf("janitor: del %s: %v", key, err)
                continue
            }
            purged++
        }
    }
    if err := iter.Err(); err != nil {
        return purged, err
    }
    return purged, nil
}
