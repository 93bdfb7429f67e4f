package handler

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/moviematch/matchroom/internal/catalog"
    "github.com/moviematch/matchroom/internal/middleware"
    "github.com/moviematch/matchroom/internal/model"
    "github.com/moviematch/matchroom/internal/repository"
)

const (
    defaultQueueLimit = 20
    maxQueueLimit     = 50
)

// QueueHandler serves each slot's paginated personalized queue.
type QueueHandler struct {
    Queues *catalog.QueueBuilder
}

// NewQueueHandler constructs a QueueHandler.
func NewQueueHandler(queues *catalog.QueueBuilder) *QueueHandler {
    if queues == nil {
        panic("nil queue builder passed to NewQueueHandler")
    }
    return &QueueHandler{Queues: queues}
}

// GetQueue handles GET /v1/rooms/:code/queue?user_slot=&limit=&offset=.
// Pagination is stable: the same offset with no intervening swipes from
// that slot returns the same slice.
func (h *QueueHandler) GetQueue(c echo.Context) error {
    slot, ok := model.ParseUserSlot(c.QueryParam("user_slot"))
    if !ok {
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "user_slot must be A or B"})
    }
    limit, offset, ok := parsePagination(c.QueryParam("limit"), c.QueryParam("offset"))
    if !ok {
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid pagination params"})
    }

    titles, err := h.Queues.Build(c.Request().Context(), c.Param("code"), slot, middleware.UserID(c), limit, offset)
    if err != nil {
        var gone *catalog.RoomGoneError
        switch {
        case errors.Is(err, repository.ErrRoomNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
        case errors.As(err, &gone):
            return c.JSON(http.StatusGone, echo.Map{"error": "room expired"})
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to build queue"})
        }
    }
    return c.JSON(http.StatusOK, echo.Map{
        "titles": titles,
        "limit":  limit,
        "offset": offset,
    })
}

// parsePagination validates limit/offset query params, applying defaults
// and the maximum page size.  Malformed or out-of-range values are
// rejected rather than clamped.
func parsePagination(limitStr, offsetStr string) (limit, offset int, ok bool) {
    limit = defaultQueueLimit
    if limitStr != "" {
        n, err := strconv.Atoi(limitStr)
        if err != nil || n < 1 || n > maxQueueLimit {
            return 0, 0, false
        }
        limit = n
    }
    if offsetStr != "" {
        n, err := strconv.Atoi(offsetStr)
        if err != nil || n < 0 {
            return 0, 0, false
        }
        offset = n
    }
    return limit, offset, true
}
