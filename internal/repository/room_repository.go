package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/moviematch/matchroom/internal/model"
    "github.com/moviematch/matchroom/internal/utils"
)

// RoomRepo provides data access to the rooms table.  Mutations that must
// be race-free (slot assignment, the match check-and-set, force expiry)
// are expressed as conditional UPDATEs guarded by the current status, so
// that stateless workers in multiple processes never need in-memory locks.
// All timestamps are UTC.
type RoomRepo struct {
    db *sql.DB
}

// NewRoomRepo returns a new RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions that
// span rooms and swipes.
func (r *RoomRepo) DB() *sql.DB { return r.db }

const roomColumns = `id, code, pin_hash, status, user_a_id, user_b_id,
    user_a_connected, user_b_connected, pool_seed, matched_movie_id,
    swipe_count, created_at, expires_at`

func scanRoom(row *sql.Row) (*model.Room, error) {
    var rm model.Room
    var userA, userB sql.NullString
    var matched sql.NullInt64
    err := row.Scan(&rm.ID, &rm.Code, &rm.PINHash, &rm.Status, &userA, &userB,
        &rm.UserAConnected, &rm.UserBConnected, &rm.PoolSeed, &matched,
        &rm.SwipeCount, &rm.CreatedAt, &rm.ExpiresAt)
    if err != nil {
        return nil, err
    }
    if userA.Valid {
        v := userA.String
        rm.UserAID = &v
    }
    if userB.Valid {
        v := userB.String
        rm.UserBID = &v
    }
    if matched.Valid {
        v := matched.Int64
        rm.MatchedMovieID = &v
    }
    return &rm, nil
}

// Create inserts a new room with a freshly generated code, PIN and pool
// seed.  The code must be unique among rooms that are still waiting or
// active; terminal rooms may keep their old codes.  The guard is a
// conditional INSERT ... WHERE NOT EXISTS so two concurrent creations can
// never both claim the same code; a lost race simply retries with a new
// code.  The plain PIN is returned once and only its hash is stored.
func (r *RoomRepo) Create(ctx context.Context, ttl time.Duration, bcryptCost int) (*model.Room, string, error) {
    const attempts = 5
    for i := 0; i < attempts; i++ {
        code, err := utils.GenerateRoomCode()
        if err != nil {
            return nil, "", err
        }
        pin, err := utils.GeneratePIN()
        if err != nil {
            return nil, "", err
        }
        pinHash, err := utils.HashPIN(pin, bcryptCost)
        if err != nil {
            return nil, "", err
        }
        seed, err := utils.NewPoolSeed()
        if err != nil {
            return nil, "", err
        }
        expiresAt := time.Now().UTC().Add(ttl)
        const q = `INSERT INTO rooms (code, pin_hash, status, pool_seed, expires_at)
                   SELECT ?, ?, 'waiting', ?, ?
                   WHERE NOT EXISTS (
                       SELECT 1 FROM rooms WHERE code = ? AND status IN ('waiting','active')
                   )`
        res, err := r.db.ExecContext(ctx, q, code, pinHash, seed,
            expiresAt.Format("2006-01-02 15:04:05"), code)
        if err != nil {
            return nil, "", err
        }
        n, err := res.RowsAffected()
        if err != nil {
            return nil, "", err
        }
        if n == 0 {
            continue // code collision with a live room, try another
        }
        id, err := res.LastInsertId()
        if err != nil {
            return nil, "", err
        }
        room, err := r.GetByID(ctx, uint64(id))
        if err != nil {
            return nil, "", err
        }
        return room, pin, nil
    }
    return nil, "", ErrConflict
}

// GetByID returns a room by primary key.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id)
    room, err := scanRoom(row)
    if err == sql.ErrNoRows {
        return nil, ErrRoomNotFound
    }
    return room, err
}

// GetByCode resolves a room by its shareable code.  Because terminal
// rooms retain their codes, the live room is preferred and ties fall to
// the most recently created one.
func (r *RoomRepo) GetByCode(ctx context.Context, code string) (*model.Room, error) {
    code = strings.ToUpper(strings.TrimSpace(code))
    const q = `SELECT ` + roomColumns + ` FROM rooms
               WHERE code = ?
               ORDER BY status IN ('waiting','active') DESC, id DESC
               LIMIT 1`
    row := r.db.QueryRowContext(ctx, q, code)
    room, err := scanRoom(row)
    if err == sql.ErrNoRows {
        return nil, ErrRoomNotFound
    }
    return room, err
}

// GetByCodeForUpdateTx is GetByCode with an exclusive row lock, used by
// the swipe path so that the insert and the match check-and-set form a
// single serializable unit per room.
func (r *RoomRepo) GetByCodeForUpdateTx(ctx context.Context, tx *sql.Tx, code string) (*model.Room, error) {
    code = strings.ToUpper(strings.TrimSpace(code))
    const q = `SELECT ` + roomColumns + ` FROM rooms
               WHERE code = ?
               ORDER BY status IN ('waiting','active') DESC, id DESC
               LIMIT 1
               FOR UPDATE`
    row := tx.QueryRowContext(ctx, q, code)
    room, err := scanRoom(row)
    if err == sql.ErrNoRows {
        return nil, ErrRoomNotFound
    }
    return room, err
}

// TryJoin assigns the caller a slot using conditional updates: slot A if
// unconnected, otherwise slot B, otherwise the room is full.  Promoting a
// waiting room to active when the second slot connects happens inside the
// same UPDATE, so a join is one atomic step and two simultaneous joiners
// can never both win the same slot.  The room must already be known to be
// joinable; the status guard here re-checks under concurrency.
func (r *RoomRepo) TryJoin(ctx context.Context, roomID uint64, userID *string) (model.UserSlot, error) {
    const joinA = `UPDATE rooms
                   SET user_a_connected = 1, user_a_id = ?,
                       status = IF(user_b_connected = 1, 'active', status)
                   WHERE id = ? AND status IN ('waiting','active') AND user_a_connected = 0`
    res, err := r.db.ExecContext(ctx, joinA, userID, roomID)
    if err != nil {
        return "", err
    }
    if n, err := res.RowsAffected(); err != nil {
        return "", err
    } else if n == 1 {
        return model.SlotA, nil
    }

    const joinB = `UPDATE rooms
                   SET user_b_connected = 1, user_b_id = ?,
                       status = IF(user_a_connected = 1, 'active', status)
                   WHERE id = ? AND status IN ('waiting','active') AND user_b_connected = 0`
    res, err = r.db.ExecContext(ctx, joinB, userID, roomID)
    if err != nil {
        return "", err
    }
    if n, err := res.RowsAffected(); err != nil {
        return "", err
    } else if n == 1 {
        return model.SlotB, nil
    }

    // Neither update applied: the room is full or reached a terminal state
    // between the caller's read and now.  Re-read to report precisely.
    room, err := r.GetByID(ctx, roomID)
    if err != nil {
        return "", err
    }
    switch room.Status {
    case model.RoomExpired:
        return "", ErrRoomExpired
    case model.RoomMatched:
        return "", ErrRoomMatched
    default:
        return "", ErrRoomFull
    }
}

// SetMatchedTx transitions the room to matched with the winning title in
// a single guarded UPDATE.  It returns false when the guard did not apply
// because the room already reached a terminal state; the caller decides
// whether the pre-existing state is a match to report or an error.
func (r *RoomRepo) SetMatchedTx(ctx context.Context, tx *sql.Tx, roomID uint64, titleID int64) (bool, error) {
    const q = `UPDATE rooms
               SET status = 'matched', matched_movie_id = ?
               WHERE id = ? AND status IN ('waiting','active')`
    res, err := tx.ExecContext(ctx, q, titleID, roomID)
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return n == 1, nil
}

// IncrementSwipeCountTx bumps the room's swipe counter inside the swipe
// transaction.
func (r *RoomRepo) IncrementSwipeCountTx(ctx context.Context, tx *sql.Tx, roomID uint64) error {
    _, err := tx.ExecContext(ctx, `UPDATE rooms SET swipe_count = swipe_count + 1 WHERE id = ?`, roomID)
    return err
}

// ForceExpire moves a non-terminal room to expired.  Calling it on a room
// that is already expired or matched is a no-op: expiry is idempotent and
// a matched room is never regressed.
func (r *RoomRepo) ForceExpire(ctx context.Context, roomID uint64) error {
    _, err := r.db.ExecContext(ctx,
        `UPDATE rooms SET status = 'expired' WHERE id = ? AND status IN ('waiting','active')`,
        roomID)
    return err
}

// ExpireOverdue marks every waiting or active room whose TTL elapsed as
// expired and returns how many rows transitioned.  Safe to run repeatedly
// and concurrently with live traffic.
func (r *RoomRepo) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
    res, err := r.db.ExecContext(ctx,
        `UPDATE rooms SET status = 'expired'
         WHERE status IN ('waiting','active') AND expires_at <= ?`,
        now.UTC().Format("2006-01-02 15:04:05"))
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// ExpiredRoomIDsBefore lists rooms that have been expired longer than the
// retention window, i.e. candidates for deletion.
func (r *RoomRepo) ExpiredRoomIDsBefore(ctx context.Context, cutoff time.Time) ([]uint64, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT id FROM rooms WHERE status = 'expired' AND expires_at <= ?`,
        cutoff.UTC().Format("2006-01-02 15:04:05"))
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var ids []uint64
    for rows.Next() {
        var id uint64
        if err := rows.Scan(&id); err != nil {
            return nil, err
        }
        ids = append(ids, id)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return ids, nil
}

// DeleteByIDs removes the given rooms.  Swipes and prompts are deleted
// explicitly by the janitor beforehand even though the swipe FK cascades,
// so the per-category counts stay auditable.
func (r *RoomRepo) DeleteByIDs(ctx context.Context, ids []uint64) (int64, error) {
    if len(ids) == 0 {
        return 0, nil
    }
    query := `DELETE FROM rooms WHERE id IN (` + placeholders(len(ids)) + `)`
    res, err := r.db.ExecContext(ctx, query, idArgs(ids)...)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// placeholders returns a comma-joined list of n "?" markers.
func placeholders(n int) string {
    return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func idArgs(ids []uint64) []interface{} {
    args := make([]interface{}, 0, len(ids))
    for _, id := range ids {
        args = append(args, id)
    }
    return args
}
