package handler

import (
    "log"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/moviematch/matchroom/internal/middleware"
    "github.com/moviematch/matchroom/internal/model"
    "github.com/moviematch/matchroom/internal/repository"
)

// SettingsHandler exposes per-user deck settings.  Routes are mounted
// behind RequireIdentity, so a user id is always present.
type SettingsHandler struct {
    SettingsRepo *repository.DeckSettingsRepo
}

// NewSettingsHandler constructs a SettingsHandler.
func NewSettingsHandler(repo *repository.DeckSettingsRepo) *SettingsHandler {
    if repo == nil {
        panic("nil repository passed to NewSettingsHandler")
    }
    return &SettingsHandler{SettingsRepo: repo}
}

type settingsResponse struct {
    ShowWatched bool            `json:"show_watched"`
    MinRating   *int            `json:"min_rating"`
    MediaType   model.MediaType `json:"media_type"`
    UpdatedAt   string          `json:"updated_at,omitempty"`
}

// GetSettings handles GET /v1/settings, returning saved settings or the
// defaults when the user never saved any.
func (h *SettingsHandler) GetSettings(c echo.Context) error {
    s, err := h.SettingsRepo.Get(c.Request().Context(), middleware.UserID(c))
    if err != nil {
        log.Printf("settings: get failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    resp := settingsResponse{
        ShowWatched: s.ShowWatched,
        MinRating:   s.MinRating,
        MediaType:   s.MediaType,
    }
    if !s.UpdatedAt.IsZero() {
        resp.UpdatedAt = s.UpdatedAt.UTC().Format(time.RFC3339)
    }
    return c.JSON(http.StatusOK, resp)
}

// PutSettings handles PUT /v1/settings.  Enum fields are validated at the
// boundary; unknown values are rejected rather than stored opaquely.
func (h *SettingsHandler) PutSettings(c echo.Context) error {
    var body struct {
        ShowWatched bool   `json:"show_watched"`
        MinRating   *int   `json:"min_rating"`
        MediaType   string `json:"media_type"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    media, ok := model.ParseMediaFilter(body.MediaType)
    if !ok {
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "media_type must be all, movie or tv"})
    }
    if body.MinRating != nil && !model.ValidMinRating(*body.MinRating) {
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "min_rating must be 1, 2 or 3"})
    }

    s := model.DeckSettings{
        UserID:      middleware.UserID(c),
        ShowWatched: body.ShowWatched,
        MinRating:   body.MinRating,
        MediaType:   media,
    }
    if err := h.SettingsRepo.Upsert(c.Request().Context(), s); err != nil {
        log.Printf("settings: upsert failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, settingsResponse{
        ShowWatched: s.ShowWatched,
        MinRating:   s.MinRating,
        MediaType:   s.MediaType,
    })
}
