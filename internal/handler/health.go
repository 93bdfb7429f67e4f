package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health answers liveness probes with a plain "ok".  It deliberately
// checks nothing downstream: the service keeps serving rooms when Redis
// or the broker is degraded, so the probe only proves the process is up.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
