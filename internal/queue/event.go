// Package queue defines message payloads exchanged over the message broker.
package queue

// MatchFoundEvent is published when both occupants of a room approve the
// same title.  It contains enough information for downstream consumers to
// notify, log or feed analytics without querying the primary database.
type MatchFoundEvent struct {
    RoomID     uint64 `json:"room_id"`
    RoomCode   string `json:"room_code"`
    TitleID    int64  `json:"title_id"`
    MediaType  string `json:"media_type"`
    UserAID    string `json:"user_a_id,omitempty"`
    UserBID    string `json:"user_b_id,omitempty"`
    SwipeCount uint32 `json:"swipe_count"`
    MatchedAt  string `json:"matched_at"`
}
