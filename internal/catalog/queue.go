package catalog

import (
    "context"
    "encoding/json"
    "fmt"
    "log"
    "time"

    "github.com/redis/go-redis/v9"

    "github.com/moviematch/matchroom/internal/model"
)

// maxBlocksPerBuild caps how far a single build walks the pool when
// filters are very restrictive, so a request can never loop unbounded
// against the provider.
const maxBlocksPerBuild = 50

// RoomResolver resolves the room a queue is built for.
type RoomResolver interface {
    GetByCode(ctx context.Context, code string) (*model.Room, error)
}

// SwipeLister returns the titles a slot has already decided in a room.
type SwipeLister interface {
    SwipedTitleIDs(ctx context.Context, roomID uint64, slot model.UserSlot) (map[int64]struct{}, error)
}

// SettingsSource provides per-user personalization inputs.
type SettingsSource interface {
    Get(ctx context.Context, userID string) (model.DeckSettings, error)
    WatchedTitleIDs(ctx context.Context, userID string) (map[int64]struct{}, error)
}

// RoomGoneError is returned by Build when the room's TTL elapsed.
type RoomGoneError struct{ Code string }

func (e *RoomGoneError) Error() string { return fmt.Sprintf("room %s expired", e.Code) }

// QueueBuilder serves each slot's personalized, paginated view over the
// room's shared pool.  The view is fully derived from (poolSeed, deck
// settings, swipe history), so repeated reads at the same offset with no
// intervening swipes from that slot return the same slice.  A Redis
// cursor cache keeps repeated paginated reads from re-walking the pool;
// it is a pure cache and is invalidated whenever the slot swipes.
type QueueBuilder struct {
    provider Provider
    rooms    RoomResolver
    swipes   SwipeLister
    settings SettingsSource
    rdb      *redis.Client // may be nil
}

// NewQueueBuilder wires the queue builder's collaborators.  rdb may be
// nil to disable the cursor cache.
func NewQueueBuilder(provider Provider, rooms RoomResolver, swipes SwipeLister, settings SettingsSource, rdb *redis.Client) *QueueBuilder {
    return &QueueBuilder{provider: provider, rooms: rooms, swipes: swipes, settings: settings, rdb: rdb}
}

// queueCacheEntry is the cached filtered prefix for one (room, slot).
// Fingerprint captures every input that changes the filtered view; a
// mismatch means the entry is stale and must be rebuilt.
type queueCacheEntry struct {
    Fingerprint string        `json:"fingerprint"`
    Titles      []model.Title `json:"titles"`
}

func queueCacheKey(roomID uint64, slot model.UserSlot) string {
    return fmt.Sprintf("queue:%d:%s", roomID, slot)
}

func fingerprint(s model.DeckSettings, swiped, watched int) string {
    minRating := 0
    if s.MinRating != nil {
        minRating = *s.MinRating
    }
    return fmt.Sprintf("v1:%t:%d:%s:%d:%d", s.ShowWatched, minRating, s.MediaType, swiped, watched)
}

// Build returns up to limit titles of the slot's filtered view starting
// at the logical offset.  The offset addresses the filtered sequence,
// not the raw pool, so pages concatenate seamlessly.
func (q *QueueBuilder) Build(ctx context.Context, code string, slot model.UserSlot, userID string, limit, offset int) ([]model.Title, error) {
    room, err := q.rooms.GetByCode(ctx, code)
    if err != nil {
        return nil, err
    }
    if room.Expired(time.Now().UTC()) {
        return nil, &RoomGoneError{Code: room.Code}
    }

    settings, err := q.settings.Get(ctx, userID)
    if err != nil {
        return nil, err
    }
    swiped, err := q.swipes.SwipedTitleIDs(ctx, room.ID, slot)
    if err != nil {
        return nil, err
    }
    watched := map[int64]struct{}{}
    if !settings.ShowWatched {
        watched, err = q.settings.WatchedTitleIDs(ctx, userID)
        if err != nil {
            return nil, err
        }
    }

    fp := fingerprint(settings, len(swiped), len(watched))
    need := offset + limit

    // Serve from the cursor cache when it already covers the request.
    key := queueCacheKey(room.ID, slot)
    if q.rdb != nil {
        if raw, err := q.rdb.Get(ctx, key).Bytes(); err == nil {
            var entry queueCacheEntry
            if json.Unmarshal(raw, &entry) == nil && entry.Fingerprint == fp && len(entry.Titles) >= need {
                return entry.Titles[offset:need], nil
            }
        } else if err != redis.Nil {
            log.Printf("queue: redis get %s: %v", key, err)
        }
    }

    pool := NewPool(q.provider, room.PoolSeed, settings.MediaType)
    filtered := make([]model.Title, 0, need)
    // With media "all" the blocks alternate sources, and one catalog can
    // run out before the other; only a full round of empty blocks means
    // the pool is exhausted.
    emptyRun := 0
    exhaustedAfter := 1
    if settings.MediaType == model.MediaAll {
        exhaustedAfter = 2
    }
    for block := 0; block < maxBlocksPerBuild && len(filtered) < need; block++ {
        titles, err := pool.Block(ctx, block)
        if err != nil {
            return nil, err
        }
        if titles == nil {
            emptyRun++
            if emptyRun >= exhaustedAfter {
                break
            }
            continue
        }
        emptyRun = 0
        for _, t := range titles {
            if _, ok := swiped[t.ID]; ok {
                continue
            }
            if settings.MinRating != nil && t.RatingTier < *settings.MinRating {
                continue
            }
            if !settings.ShowWatched {
                if _, ok := watched[t.ID]; ok {
                    continue
                }
            }
            filtered = append(filtered, t)
            if len(filtered) == need {
                break
            }
        }
    }

    if q.rdb != nil {
        if raw, err := json.Marshal(queueCacheEntry{Fingerprint: fp, Titles: filtered}); err == nil {
            if err := q.rdb.Set(ctx, key, raw, 10*time.Minute).Err(); err != nil {
                log.Printf("queue: redis set %s: %v", key, err)
            }
        }
    }

    if offset >= len(filtered) {
        return []model.Title{}, nil
    }
    end := offset + limit
    if end > len(filtered) {
        end = len(filtered)
    }
    return filtered[offset:end], nil
}

// Invalidate drops the cursor cache for both slots of a room.  Called
// after a swipe, since that slot's filtered view changed, and on match or
// expiry when the room stops serving queues.
func (q *QueueBuilder) Invalidate(ctx context.Context, roomID uint64) {
    if q.rdb == nil {
        return
    }
    keys := []string{queueCacheKey(roomID, model.SlotA), queueCacheKey(roomID, model.SlotB)}
    if err := q.rdb.Del(ctx, keys...).Err(); err != nil {
        log.Printf("queue: redis del room %d: %v", roomID, err)
    }
}

// InvalidateMany drops cursor cache entries for many rooms, used by the
// retention janitor while deleting rooms.
func (q *QueueBuilder) InvalidateMany(ctx context.Context, roomIDs []uint64) {
    if q.rdb == nil || len(roomIDs) == 0 {
        return
    }
    keys := make([]string, 0, len(roomIDs)*2)
    for _, id := range roomIDs {
        keys = append(keys, queueCacheKey(id, model.SlotA), queueCacheKey(id, model.SlotB))
    }
    if err := q.rdb.Del(ctx, keys...).Err(); err != nil {
        log.Printf("queue: redis del %d rooms: %v", len(roomIDs), err)
    }
}
