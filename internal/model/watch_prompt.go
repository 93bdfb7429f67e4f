package model

import "time"

// WatchPrompt is the post-match record asking an occupant whether the
// matched title was actually watched.  Answered prompts are retained for
// 30 days; unanswered prompts are kept indefinitely.
//
// Fields:
//  ID          – UUID primary key.
//  RoomID      – room that produced the match.
//  UserID      – occupant being asked.
//  TitleID     – the matched title.
//  Watched     – the answer, nil until responded.
//  RespondedAt – when the prompt was answered, nil while pending.
//  CreatedAt   – creation timestamp.
type WatchPrompt struct {
    ID          string     // watch_prompts.id
    RoomID      uint64     // watch_prompts.room_id
    UserID      string     // watch_prompts.user_id
    TitleID     int64      // watch_prompts.title_id
    Watched     *bool      // watch_prompts.watched (nullable)
    RespondedAt *time.Time // watch_prompts.responded_at (nullable)
    CreatedAt   time.Time  // watch_prompts.created_at
}
