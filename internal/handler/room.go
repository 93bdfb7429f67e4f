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
    "github.com/moviematch/matchroom/internal/middleware"
    "github.com/moviematch/matchroom/internal/model"
    "github.com/moviematch/matchroom/internal/repository"
    "github.com/moviematch/matchroom/internal/utils"
)

// RoomHandler implements the room lifecycle: creation, joining, state
// reads and force closing.  Slot assignment and status promotion are
// conditional updates inside the repository, so the handler never needs
// to serialize joins itself.
type RoomHandler struct {
    RoomRepo   *repository.RoomRepo
    Queues     *catalog.QueueBuilder
    RoomTTL    time.Duration
    BcryptCost int
}

// NewRoomHandler constructs a RoomHandler.  RoomRepo must be non-nil.
func NewRoomHandler(roomRepo *repository.RoomRepo, queues *catalog.QueueBuilder, roomTTL time.Duration, bcryptCost int) *RoomHandler {
    if roomRepo == nil {
        panic("nil repository passed to NewRoomHandler")
    }
    return &RoomHandler{RoomRepo: roomRepo, Queues: queues, RoomTTL: roomTTL, BcryptCost: bcryptCost}
}

// CreateRoom handles POST /v1/rooms.  It creates a waiting room with a
// fresh code, PIN and pool seed and returns all three to the creator; the
// PIN is shown exactly once and stored only as a hash.
func (h *RoomHandler) CreateRoom(c echo.Context) error {
    room, pin, err := h.RoomRepo.Create(c.Request().Context(), h.RoomTTL, h.BcryptCost)
    if err != nil {
        log.Printf("room: create failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create room"})
    }
    metrics.RoomsCreated.Inc()
    return c.JSON(http.StatusCreated, echo.Map{
        "code":       room.Code,
        "pin":        pin,
        "pool_seed":  room.PoolSeed,
        "expires_at": room.ExpiresAt.Format(time.RFC3339),
    })
}

// JoinRoom handles POST /v1/rooms/:code/join.  The first joiner receives
// slot A, the second slot B; the room becomes active when the second slot
// connects.  Joining via a direct link bypasses the PIN check.
func (h *RoomHandler) JoinRoom(c echo.Context) error {
    code := c.Param("code")
    var body struct {
        PIN     string `json:"pin"`
        ViaLink bool   `json:"via_link"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }

    ctx := c.Request().Context()
    room, err := h.resolveRoom(ctx, code)
    if err != nil {
        return h.joinError(c, err)
    }
    switch room.Status {
    case model.RoomExpired:
        return h.joinError(c, repository.ErrRoomExpired)
    case model.RoomMatched:
        return h.joinError(c, repository.ErrRoomMatched)
    }
    if !body.ViaLink && !utils.VerifyPIN(room.PINHash, body.PIN) {
        metrics.JoinsTotal.WithLabelValues("bad_pin").Inc()
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid pin"})
    }

    var userID *string
    if uid := middleware.UserID(c); uid != "" {
        userID = &uid
    }
    slot, err := h.RoomRepo.TryJoin(ctx, room.ID, userID)
    if err != nil {
        return h.joinError(c, err)
    }
    metrics.JoinsTotal.WithLabelValues("ok").Inc()
    return c.JSON(http.StatusOK, echo.Map{
        "code":      room.Code,
        "user_slot": slot,
        "pool_seed": room.PoolSeed,
    })
}

// joinError maps repository sentinels onto the join endpoint's status
// codes and records the outcome metric.
func (h *RoomHandler) joinError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, repository.ErrRoomNotFound):
        metrics.JoinsTotal.WithLabelValues("not_found").Inc()
        return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
    case errors.Is(err, repository.ErrRoomExpired):
        metrics.JoinsTotal.WithLabelValues("expired").Inc()
        return c.JSON(http.StatusGone, echo.Map{"error": "room expired"})
    case errors.Is(err, repository.ErrRoomMatched):
        metrics.JoinsTotal.WithLabelValues("matched").Inc()
        return c.JSON(http.StatusConflict, echo.Map{"error": "room already matched"})
    case errors.Is(err, repository.ErrRoomFull):
        metrics.JoinsTotal.WithLabelValues("full").Inc()
        return c.JSON(http.StatusConflict, echo.Map{"error": "room full"})
    default:
        log.Printf("room: join failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
}

// GetRoomState handles GET /v1/rooms/:code.  It is a read-only snapshot;
// a room whose TTL elapsed is reported (and persisted) as expired even
// before the janitor sweeps it.
func (h *RoomHandler) GetRoomState(c echo.Context) error {
    ctx := c.Request().Context()
    room, err := h.resolveRoom(ctx, c.Param("code"))
    if err != nil {
        if errors.Is(err, repository.ErrRoomNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    resp := echo.Map{
        "status":           room.Status,
        "user_a_connected": room.UserAConnected,
        "user_b_connected": room.UserBConnected,
        "expires_at":       room.ExpiresAt.Format(time.RFC3339),
    }
    if room.MatchedMovieID != nil {
        resp["matched_movie_id"] = *room.MatchedMovieID
    }
    return c.JSON(http.StatusOK, resp)
}

// CloseRoom handles DELETE /v1/rooms/:code.  Expiry is forced for any
// non-terminal room and is idempotent; a matched room stays matched.
func (h *RoomHandler) CloseRoom(c echo.Context) error {
    ctx := c.Request().Context()
    room, err := h.RoomRepo.GetByCode(ctx, c.Param("code"))
    if err != nil {
        if errors.Is(err, repository.ErrRoomNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if err := h.RoomRepo.ForceExpire(ctx, room.ID); err != nil {
        log.Printf("room: force expire %s: %v", room.Code, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if h.Queues != nil {
        h.Queues.Invalidate(ctx, room.ID)
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// resolveRoom looks a room up by code and persists the expired transition
// when its TTL has lapsed, so later reads agree without waiting for the
// janitor.
func (h *RoomHandler) resolveRoom(ctx context.Context, code string) (*model.Room, error) {
    room, err := h.RoomRepo.GetByCode(ctx, code)
    if err != nil {
        return nil, err
    }
    if !room.Status.Terminal() && room.Expired(time.Now().UTC()) {
        if err := h.RoomRepo.ForceExpire(ctx, room.ID); err != nil {
            log.Printf("room: lazy expire %s: %v", room.Code, err)
        }
        room.Status = model.RoomExpired
    }
    return room, nil
}
