// Package metrics collects Prometheus metrics for the mock backend.
//
// Each Metrics value owns its own registry, so several servers can run in
// one process (tests do this) without colliding on metric names.
//
// Exposed series:
//
//   - regdesk_http_requests_total: requests by method, route and status
//   - regdesk_http_request_duration_seconds: latency by method and route
//   - regdesk_http_inflight_requests: requests being served
//   - regdesk_record_changes_total: notifications published, by resource and type
//   - regdesk_event_subscribers: open change-event streams
//   - regdesk_rate_limited_total: requests refused by a rate limiter, by route
//
// Go runtime and process collectors are registered as well.
//
// Usage:
//
//	m := metrics.New()
//	mux.Handle("GET /metrics", m.Handler())
//	m.ObserveRequest("GET", "GET /api/v1/licenses", 200, time.Since(start))
package metrics
