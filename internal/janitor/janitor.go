// Package janitor implements the periodic retention sweep that reclaims
// terminal-state data: long-expired rooms with their swipes, prompts and
// queue cache entries, answered watch prompts past their window, and
// stale auth sessions held by the external session collaborator.
package janitor

import (
    "context"
    "log"
    "time"

    "github.com/moviematch/matchroom/internal/metrics"
)

// RoomStore is the subset of the room repository the janitor needs.
type RoomStore interface {
    ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
    ExpiredRoomIDsBefore(ctx context.Context, cutoff time.Time) ([]uint64, error)
    DeleteByIDs(ctx context.Context, ids []uint64) (int64, error)
}

// SwipeStore deletes swipes in cascade with their rooms.
type SwipeStore interface {
    DeleteByRoomIDs(ctx context.Context, ids []uint64) (int64, error)
}

// PromptStore deletes watch prompts by retention window and by room.
type PromptStore interface {
    DeleteAnsweredBefore(ctx context.Context, cutoff time.Time) (int64, error)
    DeleteByRoomIDs(ctx context.Context, ids []uint64) (int64, error)
}

// QueueCache drops derived queue state for deleted rooms.  It is a cache,
// so failures are logged by the implementation and never break the sweep.
type QueueCache interface {
    InvalidateMany(ctx context.Context, roomIDs []uint64)
}

// SessionPurger is the external session collaborator; the janitor only
// consumes its returned count.
type SessionPurger interface {
    PurgeExpired(ctx context.Context) (int64, error)
}

// NoopSessionPurger satisfies SessionPurger for deployments without a
// session store to maintain.
type NoopSessionPurger struct{}

func (NoopSessionPurger) PurgeExpired(context.Context) (int64, error) { return 0, nil }

// Report carries per-category counts for observability.
type Report struct {
    RoomsExpired   int64 `json:"rooms_expired"`
    RoomsDeleted   int64 `json:"rooms_deleted"`
    SwipesDeleted  int64 `json:"swipes_deleted"`
    PromptsDeleted int64 `json:"prompts_deleted"`
    SessionsPurged int64 `json:"sessions_purged"`
}

// Janitor runs the retention sweep.  It is stateless and idempotent: each
// category is independent and re-runnable, so overlapping invocations and
// live traffic are tolerated.
type Janitor struct {
    rooms           RoomStore
    swipes          SwipeStore
    prompts         PromptStore
    cache           QueueCache
    sessions        SessionPurger
    roomRetention   time.Duration
    promptRetention time.Duration
}

// New wires a Janitor.  cache and sessions may be nil; nil collaborators
// are skipped.
func New(rooms RoomStore, swipes SwipeStore, prompts PromptStore, cache QueueCache, sessions SessionPurger, roomRetention, promptRetention time.Duration) *Janitor {
    if sessions == nil {
        sessions = NoopSessionPurger{}
    }
    return &Janitor{
        rooms:           rooms,
        swipes:          swipes,
        prompts:         prompts,
        cache:           cache,
        sessions:        sessions,
        roomRetention:   roomRetention,
        promptRetention: promptRetention,
    }
}

// Sweep performs one retention pass as of now.  Transient errors in one
// category are logged and do not abort the remaining categories; the
// report reflects what was actually removed.
func (j *Janitor) Sweep(ctx context.Context, now time.Time) Report {
    var rep Report

    // TTL enforcement first, so rooms that just aged out are reported as
    // expired on subsequent reads even if nobody touches them again.
    if n, err := j.rooms.ExpireOverdue(ctx, now); err != nil {
        log.Printf("janitor: expire overdue rooms: %v", err)
    } else {
        rep.RoomsExpired = n
    }

    // Long-expired rooms cascade: swipes, prompts and cache entries go
    // first, then the rooms themselves, as explicit ordered deletes.
    cutoff := now.Add(-j.roomRetention)
    ids, err := j.rooms.ExpiredRoomIDsBefore(ctx, cutoff)
    if err != nil {
        log.Printf("janitor: list expired rooms: %v", err)
    } else if len(ids) > 0 {
        if n, err := j.swipes.DeleteByRoomIDs(ctx, ids); err != nil {
            log.Printf("janitor: delete swipes: %v", err)
        } else {
            rep.SwipesDeleted = n
        }
        if n, err := j.prompts.DeleteByRoomIDs(ctx, ids); err != nil {
            log.Printf("janitor: delete room prompts: %v", err)
        } else {
            rep.PromptsDeleted += n
        }
        if j.cache != nil {
            j.cache.InvalidateMany(ctx, ids)
        }
        if n, err := j.rooms.DeleteByIDs(ctx, ids); err != nil {
            log.Printf("janitor: delete rooms: %v", err)
        } else {
            rep.RoomsDeleted = n
        }
    }

    if n, err := j.prompts.DeleteAnsweredBefore(ctx, now.Add(-j.promptRetention)); err != nil {
        log.Printf("janitor: delete answered prompts: %v", err)
    } else {
        rep.PromptsDeleted += n
    }

    if n, err := j.sessions.PurgeExpired(ctx); err != nil {
        log.Printf("janitor: purge sessions: %v", err)
    } else {
        rep.SessionsPurged = n
    }

    metrics.JanitorDeleted.WithLabelValues("rooms").Add(float64(rep.RoomsDeleted))
    metrics.JanitorDeleted.WithLabelValues("swipes").Add(float64(rep.SwipesDeleted))
    metrics.JanitorDeleted.WithLabelValues("prompts").Add(float64(rep.PromptsDeleted))
    metrics.JanitorDeleted.WithLabelValues("sessions").Add(float64(rep.SessionsPurged))
    return rep
}

// Run invokes Sweep on a fixed interval until ctx is cancelled.  Intended
// to run in its own goroutine next to the HTTP server.
func (j *Janitor) Run(ctx context.Context, interval time.Duration) {
    ticker := time.NewTicker(interval)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            rep := j.Sweep(ctx, time.Now().UTC())
            log.Printf("janitor: sweep done rooms_expired=%d rooms_deleted=%d swipes_deleted=%d prompts_deleted=%d sessions_purged=%d",
                rep.RoomsExpired, rep.RoomsDeleted, rep.SwipesDeleted, rep.PromptsDeleted, rep.SessionsPurged)
        }
    }
}
