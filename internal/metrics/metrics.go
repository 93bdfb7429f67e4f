// Package metrics provides Prometheus instrumentation for the match room
// service: counters for room traffic and match outcomes plus janitor
// deletion totals for retention observability.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RoomsCreated counts rooms created over the process lifetime.
	RoomsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "matchroom_rooms_created_total",
		Help: "Total number of rooms created",
	})

	// JoinsTotal counts join attempts, labeled by outcome:
	// "ok", "not_found", "expired", "full", "matched", "bad_pin".
	JoinsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matchroom_joins_total",
		Help: "Total number of room join attempts",
	}, []string{"outcome"})

	// SwipesTotal counts recorded swipes, labeled by decision.
	SwipesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matchroom_swipes_total",
		Help: "Total number of swipes recorded",
	}, []string{"decision"})

	// MatchesTotal counts rooms that reached the matched state.
	MatchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "matchroom_matches_total",
		Help: "Total number of matches declared",
	})

	// JanitorDeleted counts rows removed by the retention janitor,
	// labeled by category: "rooms", "swipes", "prompts", "sessions".
	JanitorDeleted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matchroom_janitor_deleted_total",
		Help: "Total rows removed by the retention janitor",
	}, []string{"category"})
)

func init() {
	prometheus.MustRegister(
		RoomsCreated,
		JoinsTotal,
		SwipesTotal,
		MatchesTotal,
		JanitorDeleted,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
