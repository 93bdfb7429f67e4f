package repository

import (
    "context"
    "database/sql"

    "github.com/moviematch/matchroom/internal/model"
)

// DeckSettingsRepo provides data access to per-user personalization: the
// deck_settings row and the watched_titles set fed by answered watch
// prompts.  Settings are owned by the user and never auto-deleted.
type DeckSettingsRepo struct {
    db *sql.DB
}

// NewDeckSettingsRepo returns a new DeckSettingsRepo bound to the given database.
func NewDeckSettingsRepo(db *sql.DB) *DeckSettingsRepo { return &DeckSettingsRepo{db: db} }

// Get returns the saved settings for a user, or the defaults when the user
// never saved any.  Guests (empty userID) always get defaults.
func (r *DeckSettingsRepo) Get(ctx context.Context, userID string) (model.DeckSettings, error) {
    if userID == "" {
        return model.DefaultDeckSettings(""), nil
    }
    const q = `SELECT user_id, show_watched, min_rating, media_type, updated_at
               FROM deck_settings WHERE user_id = ?`
    var s model.DeckSettings
    var minRating sql.NullInt64
    err := r.db.QueryRowContext(ctx, q, userID).Scan(
        &s.UserID, &s.ShowWatched, &minRating, &s.MediaType, &s.UpdatedAt)
    if err == sql.ErrNoRows {
        return model.DefaultDeckSettings(userID), nil
    }
    if err != nil {
        return model.DeckSettings{}, err
    }
    if minRating.Valid {
        v := int(minRating.Int64)
        s.MinRating = &v
    }
    return s, nil
}

// Upsert creates or replaces the user's settings in one statement.
func (r *DeckSettingsRepo) Upsert(ctx context.Context, s model.DeckSettings) error {
    const q = `INSERT INTO deck_settings (user_id, show_watched, min_rating, media_type)
               VALUES (?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE
                   show_watched = VALUES(show_watched),
                   min_rating   = VALUES(min_rating),
                   media_type   = VALUES(media_type)`
    var minRating interface{}
    if s.MinRating != nil {
        minRating = *s.MinRating
    }
    _, err := r.db.ExecContext(ctx, q, s.UserID, s.ShowWatched, minRating, s.MediaType)
    return err
}

// WatchedTitleIDs returns the set of titles the user has marked watched.
// An empty userID yields an empty set.
func (r *DeckSettingsRepo) WatchedTitleIDs(ctx context.Context, userID string) (map[int64]struct{}, error) {
    out := make(map[int64]struct{})
    if userID == "" {
        return out, nil
    }
    rows, err := r.db.QueryContext(ctx,
        `SELECT title_id FROM watched_titles WHERE user_id = ?`, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    for rows.Next() {
        var id int64
        if err := rows.Scan(&id); err != nil {
            return nil, err
        }
        out[id] = struct{}{}
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// MarkWatched records that the user watched a title.  Repeated calls for
// the same pair are a no-op.
func (r *DeckSettingsRepo) MarkWatched(ctx context.Context, userID string, titleID int64) error {
    const q = `INSERT INTO watched_titles (user_id, title_id) VALUES (?, ?)
               ON DUPLICATE KEY UPDATE title_id = title_id`
    _, err := r.db.ExecContext(ctx, q, userID, titleID)
    return err
}
