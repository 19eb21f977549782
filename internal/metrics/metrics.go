// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Login results.
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, or keep them in memory for tests.
type Recorder interface {
	// Article metrics
	IncArticleCreated()
	IncArticleUpdated()
	IncArticleDeleted()

	// Account metrics
	IncUserRegistered()
	IncLogin(result string)
	IncLogout()
	IncPasswordChanged()

	// Access control metrics
	IncAuthorizationDenied(action string)
	IncRateLimited(group string)

	// HTTP metrics
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
