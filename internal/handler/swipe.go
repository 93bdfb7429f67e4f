package handler

import (
    "context"
    "errors"
    "log"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/moviematch/matchroom/internal/catalog"
    "github.com/moviematch/matchroom/internal/metrics"
    "github.com/moviematch/matchroom/internal/model"
    "github.com/moviematch/matchroom/internal/queue"
    "github.com/moviematch/matchroom/internal/repository"
    queue_publisher "github.com/moviematch/matchroom/internal/service"
)

// SwipeHandler records swipe decisions and performs the atomic match
// check-and-set.  The whole operation runs in one transaction that locks
// the room row, so the swipe insert and the match transition form a
// single serializable unit: two simultaneous approvals serialize, exactly
// one wins the transition and the room ends matched with one title.
type SwipeHandler struct {
    RoomRepo   *repository.RoomRepo
    SwipeRepo  *repository.SwipeRepo
    PromptRepo *repository.WatchPromptRepo
    Queues     *catalog.QueueBuilder
}

// NewSwipeHandler constructs a SwipeHandler.  All repositories must be
// non-nil; Queues may be nil when the cursor cache is disabled.
func NewSwipeHandler(roomRepo *repository.RoomRepo, swipeRepo *repository.SwipeRepo, promptRepo *repository.WatchPromptRepo, queues *catalog.QueueBuilder) *SwipeHandler {
    if roomRepo == nil || swipeRepo == nil || promptRepo == nil {
        panic("nil repository passed to NewSwipeHandler")
    }
    return &SwipeHandler{RoomRepo: roomRepo, SwipeRepo: swipeRepo, PromptRepo: promptRepo, Queues: queues}
}

// swipeOutcome is what a committed swipe transaction reports back.
type swipeOutcome struct {
    room    *model.Room
    matched bool
}

// RecordSwipe handles POST /v1/rooms/:code/swipes.  Decisions are final:
// a slot cannot re-decide a title, and a room that expired rejects the
// swipe decisively rather than racing a late match against expiry.
func (h *SwipeHandler) RecordSwipe(c echo.Context) error {
    code := c.Param("code")
    var body struct {
        UserSlot  string `json:"user_slot"`
        TitleID   int64  `json:"title_id"`
        MediaType string `json:"media_type"`
        Decision  string `json:"decision"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    slot, ok := model.ParseUserSlot(body.UserSlot)
    if !ok {
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "user_slot must be A or B"})
    }
    media, ok := model.ParseMediaType(body.MediaType)
    if !ok {
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "media_type must be movie or tv"})
    }
    decision, ok := model.ParseDecision(body.Decision)
    if !ok {
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "decision must be approve, reject or skip"})
    }
    if body.TitleID <= 0 {
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "title_id is required"})
    }

    ctx := c.Request().Context()
    s := &model.Swipe{UserSlot: slot, TitleID: body.TitleID, MediaType: media, Decision: decision}

    outcome, err := h.record(ctx, code, s)
    if err != nil && repository.IsRetryable(err) {
        // One internal retry for serialization conflicts; this is a
        // narrow, fast operation.  Still failing is surfaced as transient.
        outcome, err = h.record(ctx, code, s)
    }
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrRoomNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
        case errors.Is(err, repository.ErrRoomExpired):
            return c.JSON(http.StatusGone, echo.Map{"error": "room expired"})
        case errors.Is(err, repository.ErrRoomMatched):
            return c.JSON(http.StatusConflict, echo.Map{"error": "room already matched"})
        case errors.Is(err, repository.ErrDuplicateSwipe):
            return c.JSON(http.StatusConflict, echo.Map{"error": "title already swiped by this slot"})
        case repository.IsRetryable(err), errors.Is(err, repository.ErrConflict):
            return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "transient conflict, retry"})
        default:
            log.Printf("swipe: record failed: %v", err)
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
        }
    }

    metrics.SwipesTotal.WithLabelValues(string(decision)).Inc()
    if h.Queues != nil {
        h.Queues.Invalidate(ctx, outcome.room.ID)
    }
    if outcome.matched {
        metrics.MatchesTotal.Inc()
        h.afterMatch(outcome.room, s)
        return c.JSON(http.StatusOK, echo.Map{
            "matched":          true,
            "matched_movie_id": s.TitleID,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"matched": false})
}

// record runs one attempt of the swipe transaction.
func (h *SwipeHandler) record(ctx context.Context, code string, s *model.Swipe) (*swipeOutcome, error) {
    tx, err := h.RoomRepo.DB().BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    room, err := h.RoomRepo.GetByCodeForUpdateTx(ctx, tx, code)
    if err != nil {
        return nil, err
    }
    // Status gate while holding the row lock: expiry wins over a late
    // approve, and a matched room accepts no further decisions.
    if room.Status == model.RoomExpired || room.Expired(time.Now().UTC()) {
        return nil, repository.ErrRoomExpired
    }
    if room.Status == model.RoomMatched {
        return nil, repository.ErrRoomMatched
    }

    s.RoomID = room.ID
    if err := h.SwipeRepo.InsertTx(ctx, tx, s); err != nil {
        return nil, err
    }
    if err := h.RoomRepo.IncrementSwipeCountTx(ctx, tx, room.ID); err != nil {
        return nil, err
    }

    matched := false
    if s.Decision == model.DecisionApprove {
        other, err := h.SwipeRepo.HasApprovalTx(ctx, tx, room.ID, s.UserSlot.Other(), s.TitleID)
        if err != nil {
            return nil, err
        }
        if other {
            ok, err := h.RoomRepo.SetMatchedTx(ctx, tx, room.ID, s.TitleID)
            if err != nil {
                return nil, err
            }
            if !ok {
                // The guard cannot fail while we hold the lock and the
                // status gate passed; treat it as a lost race anyway.
                return nil, repository.ErrConflict
            }
            matched = true
        }
    }

    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    room.SwipeCount++
    return &swipeOutcome{room: room, matched: matched}, nil
}

// afterMatch performs the best-effort follow-ups of a match: publishing
// the match.found event and creating a watch prompt for each identified
// occupant.  Failures are logged, never propagated; the match itself is
// already durable.
func (h *SwipeHandler) afterMatch(room *model.Room, s *model.Swipe) {
    ev := queue.MatchFoundEvent{
        RoomID:     room.ID,
        RoomCode:   room.Code,
        TitleID:    s.TitleID,
        MediaType:  string(s.MediaType),
        SwipeCount: room.SwipeCount,
        MatchedAt:  time.Now().UTC().Format(time.RFC3339),
    }
    if room.UserAID != nil {
        ev.UserAID = *room.UserAID
    }
    if room.UserBID != nil {
        ev.UserBID = *room.UserBID
    }
    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
        defer cancel()
        _ = queue_publisher.PublishMatchFound(ctx, ev) // already logged inside
        for _, uid := range []*string{room.UserAID, room.UserBID} {
            if uid == nil || *uid == "" {
                continue
            }
            if _, err := h.PromptRepo.Create(ctx, room.ID, *uid, s.TitleID); err != nil {
                log.Printf("swipe: create watch prompt for %s: %v", *uid, err)
            }
        }
    }()
}
