package model

import "time"

// Decision enumerates the per-title choices a slot can record.
type Decision string

const (
    DecisionApprove Decision = "approve"
    DecisionReject  Decision = "reject"
    DecisionSkip    Decision = "skip"
)

// ParseDecision validates a decision string received at the API boundary.
func ParseDecision(s string) (Decision, bool) {
    switch Decision(s) {
    case DecisionApprove, DecisionReject, DecisionSkip:
        return Decision(s), true
    }
    return "", false
}

// Swipe records one slot's decision on one title within a room.  At most
// one swipe may exist per (room, slot, title); a slot may not re-decide.
//
// Fields:
//  ID        – primary key identifier.
//  RoomID    – room in which the decision was made.
//  UserSlot  – occupant position (A or B).
//  TitleID   – catalog identifier of the title.
//  MediaType – movie or tv.
//  Decision  – approve, reject or skip.
//  CreatedAt – creation timestamp.
type Swipe struct {
    ID        uint64    // swipes.id
    RoomID    uint64    // swipes.room_id
    UserSlot  UserSlot  // swipes.user_slot
    TitleID   int64     // swipes.title_id
    MediaType MediaType // swipes.media_type
    Decision  Decision  // swipes.decision
    CreatedAt time.Time // swipes.created_at
}
