package model

import "time"

// RoomStatus enumerates the lifecycle states of a room.  Status only ever
// advances waiting→active→{matched,expired}; matched and expired are
// terminal and a transition is never undone.
type RoomStatus string

const (
    RoomWaiting RoomStatus = "waiting" // created, fewer than two slots connected
    RoomActive  RoomStatus = "active"  // both slots connected, swiping in progress
    RoomMatched RoomStatus = "matched" // both slots approved the same title
    RoomExpired RoomStatus = "expired" // TTL elapsed or force-closed
)

// Terminal reports whether the status admits no further transitions.
func (s RoomStatus) Terminal() bool {
    return s == RoomMatched || s == RoomExpired
}

// UserSlot identifies one of the two fixed occupant positions in a room.
type UserSlot string

const (
    SlotA UserSlot = "A"
    SlotB UserSlot = "B"
)

// ParseUserSlot validates a slot string received at the API boundary.
func ParseUserSlot(s string) (UserSlot, bool) {
    switch UserSlot(s) {
    case SlotA, SlotB:
        return UserSlot(s), true
    }
    return "", false
}

// Other returns the partner slot.
func (s UserSlot) Other() UserSlot {
    if s == SlotA {
        return SlotB
    }
    return SlotA
}

// Room represents a two-party matching session as stored in the `rooms`
// table.  The PIN itself is never stored, only its bcrypt hash; the plain
// PIN is returned once at creation time.
//
// Fields:
//  ID             – primary key identifier.
//  Code           – short human-shareable code, unique among non-terminal rooms.
//  PINHash        – bcrypt hash of the 4-digit shared secret.
//  Status         – lifecycle state (waiting/active/matched/expired).
//  UserAID        – identity of the slot A occupant (nil for guests or unjoined).
//  UserBID        – identity of the slot B occupant (nil for guests or unjoined).
//  UserAConnected – whether slot A has been claimed.
//  UserBConnected – whether slot B has been claimed.
//  PoolSeed       – seed parameterizing the shared title pool, fixed at creation.
//  MatchedMovieID – the matched title, set at most once, iff status=matched.
//  SwipeCount     – running count of swipes recorded in this room.
//  CreatedAt      – creation timestamp.
//  ExpiresAt      – time after which the room is considered expired.
type Room struct {
    ID             uint64     // rooms.id
    Code           string     // rooms.code
    PINHash        string     // rooms.pin_hash
    Status         RoomStatus // rooms.status
    UserAID        *string    // rooms.user_a_id (nullable)
    UserBID        *string    // rooms.user_b_id (nullable)
    UserAConnected bool       // rooms.user_a_connected
    UserBConnected bool       // rooms.user_b_connected
    PoolSeed       int64      // rooms.pool_seed
    MatchedMovieID *int64     // rooms.matched_movie_id (nullable)
    SwipeCount     uint32     // rooms.swipe_count
    CreatedAt      time.Time  // rooms.created_at
    ExpiresAt      time.Time  // rooms.expires_at
}

// Expired reports whether the room's TTL has elapsed relative to now,
// regardless of whether the janitor has persisted the transition yet.
func (r *Room) Expired(now time.Time) bool {
    return r.Status == RoomExpired || (!r.Status.Terminal() && now.After(r.ExpiresAt))
}
