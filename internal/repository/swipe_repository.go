package repository

import (
    "context"
    "database/sql"

    "github.com/moviematch/matchroom/internal/model"
)

// SwipeRepo provides data access to the swipes table.  The unique key on
// (room_id, user_slot, title_id) is the database-level enforcement that a
// slot never re-decides a title; violations surface as ErrDuplicateSwipe.
type SwipeRepo struct {
    db *sql.DB
}

// NewSwipeRepo returns a new SwipeRepo bound to the given database.
func NewSwipeRepo(db *sql.DB) *SwipeRepo { return &SwipeRepo{db: db} }

// InsertTx records a swipe within the scope of an existing transaction.
// The caller must commit or rollback.  A duplicate (room, slot, title)
// returns ErrDuplicateSwipe.
func (r *SwipeRepo) InsertTx(ctx context.Context, tx *sql.Tx, s *model.Swipe) error {
    const q = `INSERT INTO swipes (room_id, user_slot, title_id, media_type, decision)
               VALUES (?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q, s.RoomID, s.UserSlot, s.TitleID, s.MediaType, s.Decision)
    if err != nil {
        if isDuplicateKey(err) {
            return ErrDuplicateSwipe
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    s.ID = uint64(id)
    return nil
}

// HasApprovalTx reports whether the given slot has an approve swipe on the
// title in this room.  Called inside the swipe transaction while the room
// row is locked, so the answer cannot change before the match is set.
func (r *SwipeRepo) HasApprovalTx(ctx context.Context, tx *sql.Tx, roomID uint64, slot model.UserSlot, titleID int64) (bool, error) {
    const q = `SELECT EXISTS(
                   SELECT 1 FROM swipes
                   WHERE room_id = ? AND user_slot = ? AND title_id = ? AND decision = 'approve'
               )`
    var exists bool
    if err := tx.QueryRowContext(ctx, q, roomID, slot, titleID).Scan(&exists); err != nil {
        return false, err
    }
    return exists, nil
}

// SwipedTitleIDs returns the set of titles the slot has already decided in
// this room, used by the queue builder to exclude seen titles.
func (r *SwipeRepo) SwipedTitleIDs(ctx context.Context, roomID uint64, slot model.UserSlot) (map[int64]struct{}, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT title_id FROM swipes WHERE room_id = ? AND user_slot = ?`, roomID, slot)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make(map[int64]struct{})
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

// DeleteByRoomIDs removes all swipes belonging to the given rooms and
// returns how many rows were deleted.
func (r *SwipeRepo) DeleteByRoomIDs(ctx context.Context, ids []uint64) (int64, error) {
    if len(ids) == 0 {
        return 0, nil
    }
    query := `DELETE FROM swipes WHERE room_id IN (` + placeholders(len(ids)) + `)`
    res, err := r.db.ExecContext(ctx, query, idArgs(ids)...)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}
