package handler

import (
    "errors"
    "log"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/moviematch/matchroom/internal/middleware"
    "github.com/moviematch/matchroom/internal/repository"
)

// PromptHandler exposes post-match watch prompts.  Routes are mounted
// behind RequireIdentity; guests never receive prompts because prompts
// are only created for identified occupants.
type PromptHandler struct {
    PromptRepo   *repository.WatchPromptRepo
    SettingsRepo *repository.DeckSettingsRepo
}

// NewPromptHandler constructs a PromptHandler.
func NewPromptHandler(promptRepo *repository.WatchPromptRepo, settingsRepo *repository.DeckSettingsRepo) *PromptHandler {
    if promptRepo == nil || settingsRepo == nil {
        panic("nil repository passed to NewPromptHandler")
    }
    return &PromptHandler{PromptRepo: promptRepo, SettingsRepo: settingsRepo}
}

// ListPrompts handles GET /v1/prompts, returning the caller's unanswered
// prompts, newest first.
func (h *PromptHandler) ListPrompts(c echo.Context) error {
    prompts, err := h.PromptRepo.ListPending(c.Request().Context(), middleware.UserID(c))
    if err != nil {
        log.Printf("prompt: list failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    out := make([]echo.Map, 0, len(prompts))
    for _, p := range prompts {
        out = append(out, echo.Map{
            "id":         p.ID,
            "title_id":   p.TitleID,
            "created_at": p.CreatedAt.UTC().Format(time.RFC3339),
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"prompts": out})
}

// RespondPrompt handles POST /v1/prompts/:id/response.  The first answer
// is final; answering "watched" feeds the user's watched-title set used
// by queue filtering.
func (h *PromptHandler) RespondPrompt(c echo.Context) error {
    var body struct {
        Watched *bool `json:"watched"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.Watched == nil {
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "watched is required"})
    }

    ctx := c.Request().Context()
    userID := middleware.UserID(c)
    titleID, err := h.PromptRepo.Respond(ctx, c.Param("id"), userID, *body.Watched)
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrPromptNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "prompt not found"})
        case errors.Is(err, repository.ErrPromptAnswered):
            return c.JSON(http.StatusConflict, echo.Map{"error": "prompt already answered"})
        default:
            log.Printf("prompt: respond failed: %v", err)
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
        }
    }
    if *body.Watched {
        if err := h.SettingsRepo.MarkWatched(ctx, userID, titleID); err != nil {
            log.Printf("prompt: mark watched %s/%d: %v", userID, titleID, err)
        }
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true})
}
