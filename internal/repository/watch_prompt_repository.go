package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/google/uuid"

    "github.com/moviematch/matchroom/internal/model"
)

// WatchPromptRepo provides data access to the watch_prompts table.  A
// prompt is created for each identified occupant when a room matches and
// asks whether the title was actually watched.  The first response wins;
// answered prompts age out after the retention window.
type WatchPromptRepo struct {
    db *sql.DB
}

// NewWatchPromptRepo returns a new WatchPromptRepo bound to the given database.
func NewWatchPromptRepo(db *sql.DB) *WatchPromptRepo { return &WatchPromptRepo{db: db} }

// Create inserts a prompt for one occupant of a matched room and returns
// its generated id.
func (r *WatchPromptRepo) Create(ctx context.Context, roomID uint64, userID string, titleID int64) (string, error) {
    id := uuid.NewString()
    const q = `INSERT INTO watch_prompts (id, room_id, user_id, title_id) VALUES (?, ?, ?, ?)`
    if _, err := r.db.ExecContext(ctx, q, id, roomID, userID, titleID); err != nil {
        return "", err
    }
    return id, nil
}

// ListPending returns the user's unanswered prompts, newest first.
func (r *WatchPromptRepo) ListPending(ctx context.Context, userID string) ([]model.WatchPrompt, error) {
    const q = `SELECT id, room_id, user_id, title_id, watched, responded_at, created_at
               FROM watch_prompts
               WHERE user_id = ? AND responded_at IS NULL
               ORDER BY created_at DESC`
    rows, err := r.db.QueryContext(ctx, q, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    prompts := make([]model.WatchPrompt, 0)
    for rows.Next() {
        var p model.WatchPrompt
        var watched sql.NullBool
        var responded sql.NullTime
        if err := rows.Scan(&p.ID, &p.RoomID, &p.UserID, &p.TitleID, &watched, &responded, &p.CreatedAt); err != nil {
            return nil, err
        }
        if watched.Valid {
            v := watched.Bool
            p.Watched = &v
        }
        if responded.Valid {
            v := responded.Time
            p.RespondedAt = &v
        }
        prompts = append(prompts, p)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return prompts, nil
}

// Respond records the user's answer.  The conditional update keyed on
// responded_at IS NULL guarantees the first response is never overwritten;
// a second attempt returns ErrPromptAnswered.  Answering a prompt that
// does not exist or belongs to a different user returns ErrPromptNotFound.
func (r *WatchPromptRepo) Respond(ctx context.Context, id, userID string, watched bool) (int64, error) {
    const q = `UPDATE watch_prompts
               SET watched = ?, responded_at = UTC_TIMESTAMP()
               WHERE id = ? AND user_id = ? AND responded_at IS NULL`
    res, err := r.db.ExecContext(ctx, q, watched, id, userID)
    if err != nil {
        return 0, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return 0, err
    }
    if n == 1 {
        // Return the title so the caller can update the watched set.
        var titleID int64
        if err := r.db.QueryRowContext(ctx,
            `SELECT title_id FROM watch_prompts WHERE id = ?`, id).Scan(&titleID); err != nil {
            return 0, err
        }
        return titleID, nil
    }
    // The update did not apply: distinguish answered from missing.
    var exists bool
    if err := r.db.QueryRowContext(ctx,
        `SELECT EXISTS(SELECT 1 FROM watch_prompts WHERE id = ? AND user_id = ?)`,
        id, userID).Scan(&exists); err != nil {
        return 0, err
    }
    if exists {
        return 0, ErrPromptAnswered
    }
    return 0, ErrPromptNotFound
}

// DeleteAnsweredBefore removes prompts answered before the cutoff and
// returns the number deleted.  Unanswered prompts are never removed.
func (r *WatchPromptRepo) DeleteAnsweredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
    res, err := r.db.ExecContext(ctx,
        `DELETE FROM watch_prompts WHERE responded_at IS NOT NULL AND responded_at <= ?`,
        cutoff.UTC().Format("2006-01-02 15:04:05"))
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// DeleteByRoomIDs removes all prompts belonging to the given rooms.
func (r *WatchPromptRepo) DeleteByRoomIDs(ctx context.Context, ids []uint64) (int64, error) {
    if len(ids) == 0 {
        return 0, nil
    }
    query := `DELETE FROM watch_prompts WHERE room_id IN (` + placeholders(len(ids)) + `)`
    res, err := r.db.ExecContext(ctx, query, idArgs(ids)...)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}
