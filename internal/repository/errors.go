// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios and map
// them onto the HTTP taxonomy: not-found, gone, conflict, unauthorized.
package repository

import (
    "errors"

    "github.com/go-sql-driver/mysql"
)

// ErrRoomNotFound is returned when no room exists for the given code.
// Handlers should translate this into an HTTP 404 response.
var ErrRoomNotFound = errors.New("room not found")

// ErrRoomExpired is returned when an operation targets a room whose TTL
// has elapsed or which was force-closed. Handlers should translate this
// into an HTTP 410 response.
var ErrRoomExpired = errors.New("room expired")

// ErrRoomMatched is returned when an operation targets a room that has
// already reached the matched terminal state. Handlers should translate
// this into an HTTP 409 response.
var ErrRoomMatched = errors.New("room already matched")

// ErrRoomFull is returned when a join attempt finds both slots connected.
// Handlers should translate this into an HTTP 409 response.
var ErrRoomFull = errors.New("room full")

// ErrDuplicateSwipe is returned when a slot attempts to re-decide a title
// it has already swiped in the same room. Handlers should translate this
// into an HTTP 409 response.
var ErrDuplicateSwipe = errors.New("duplicate swipe")

// ErrPromptNotFound is returned when a watch prompt does not exist or
// belongs to a different user.
var ErrPromptNotFound = errors.New("watch prompt not found")

// ErrPromptAnswered is returned when a watch prompt has already been
// responded to; the first response is never overwritten.
var ErrPromptAnswered = errors.New("watch prompt already answered")

// ErrConflict is returned when a conditional update lost its race even
// after the single internal retry, or when state changed underneath an
// operation in a way that cannot be attributed to a more specific error.
var ErrConflict = errors.New("conflict")

// isDuplicateKey reports whether err is a MySQL duplicate-key violation
// (error 1062), used to detect swipe uniqueness conflicts.
func isDuplicateKey(err error) bool {
    var me *mysql.MySQLError
    return errors.As(err, &me) && me.Number == 1062
}

// IsRetryable reports whether err is a transient serialization failure
// (deadlock or lock wait timeout) worth a single immediate retry.
func IsRetryable(err error) bool {
    var me *mysql.MySQLError
    if !errors.As(err, &me) {
        return false
    }
    return me.Number == 1213 || me.Number == 1205
}
