package handler

import (
    "crypto/subtle"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/moviematch/matchroom/internal/janitor"
)

// MaintenanceHandler exposes the retention janitor as an authenticated
// endpoint for external schedulers (cron, cloud schedulers).  The sweep
// is idempotent, so overlapping or repeated triggers are harmless.
type MaintenanceHandler struct {
    Janitor *janitor.Janitor
    Secret  string
}

// NewMaintenanceHandler constructs a MaintenanceHandler.
func NewMaintenanceHandler(j *janitor.Janitor, secret string) *MaintenanceHandler {
    if j == nil {
        panic("nil janitor passed to NewMaintenanceHandler")
    }
    return &MaintenanceHandler{Janitor: j, Secret: secret}
}

// RunJanitor handles POST /v1/internal/janitor.  It requires the shared
// bearer secret and returns the per-category deletion counts.
func (h *MaintenanceHandler) RunJanitor(c echo.Context) error {
    auth := c.Request().Header.Get("Authorization")
    token := strings.TrimPrefix(auth, "Bearer ")
    if !strings.HasPrefix(auth, "Bearer ") ||
        subtle.ConstantTimeCompare([]byte(token), []byte(h.Secret)) != 1 {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid maintenance token"})
    }
    report := h.Janitor.Sweep(c.Request().Context(), time.Now().UTC())
    return c.JSON(http.StatusOK, report)
}
