package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts API requests by endpoint and outcome ("ok",
	// "error", "unauthorized").
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatclient_api_requests_total",
		Help: "API requests issued by the client, by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	// PollCyclesTotal counts completed refresh cycles per page.
	PollCyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatclient_poll_cycles_total",
		Help: "Completed polling cycles, by page.",
	}, []string{"page"})

	// StaleResponsesDiscarded counts message-load responses dropped because
	// the user switched chats while the request was in flight.
	StaleResponsesDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatclient_stale_responses_discarded_total",
		Help: "Message-load responses discarded as stale.",
	})
)

// Serve exposes /metrics on the given address. It blocks, so callers run it
// in a goroutine; an empty address disables the listener.
func Serve(addr string) error {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
