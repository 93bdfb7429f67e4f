package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/moviematch/matchroom/internal/handler"    // import the handlers that implement business logic
	"github.com/moviematch/matchroom/internal/metrics"    // prometheus handler for the /metrics endpoint
	"github.com/moviematch/matchroom/internal/middleware" // import middleware for identity resolution
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance: the health check used by load balancers and the
// Prometheus metrics endpoint.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}

// RegisterRooms registers the room lifecycle, queue and swipe endpoints
// under /v1.  All of them are usable anonymously; OptionalIdentity
// resolves a bearer token to a user id when one is presented so that
// personalization applies, and continues as guest otherwise.
func RegisterRooms(e *echo.Echo, r *handler.RoomHandler, q *handler.QueueHandler, s *handler.SwipeHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.OptionalIdentity(jwtSecret))

	// Room lifecycle: create, join, snapshot, force close.
	g.POST("/rooms", r.CreateRoom)
	g.POST("/rooms/:code/join", r.JoinRoom)
	g.GET("/rooms/:code", r.GetRoomState)
	g.DELETE("/rooms/:code", r.CloseRoom)

	// The per-slot personalized queue over the shared pool.
	g.GET("/rooms/:code/queue", q.GetQueue)

	// Swipe recording and match detection.
	g.POST("/rooms/:code/swipes", s.RecordSwipe)
}

// RegisterPersonal registers endpoints that require an identified caller:
// deck settings and post-match watch prompts.  RequireIdentity runs after
// OptionalIdentity and rejects guests with 401.
func RegisterPersonal(e *echo.Echo, st *handler.SettingsHandler, p *handler.PromptHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.OptionalIdentity(jwtSecret))
	g.Use(middleware.RequireIdentity())

	g.GET("/settings", st.GetSettings)
	g.PUT("/settings", st.PutSettings)

	g.GET("/prompts", p.ListPrompts)
	g.POST("/prompts/:id/response", p.RespondPrompt)
}

// RegisterMaintenance registers the janitor trigger.  It authenticates
// with its own shared bearer secret rather than user identity.
func RegisterMaintenance(e *echo.Echo, m *handler.MaintenanceHandler) {
	e.POST("/v1/internal/janitor", m.RunJanitor)
}
