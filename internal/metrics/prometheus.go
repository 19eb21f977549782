package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "blog"

// PrometheusRecorder exposes metrics through a dedicated Prometheus registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	articles        *prometheus.CounterVec
	usersRegistered prometheus.Counter
	logins          *prometheus.CounterVec
	logouts         prometheus.Counter
	passwords       prometheus.Counter
	denied          *prometheus.CounterVec
	rateLimited     *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// NewPrometheus creates a recorder registered on a fresh registry,
// including the Go runtime and process collectors.
func NewPrometheus() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	r := &PrometheusRecorder{
		registry: reg,
		articles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "article_operations_total",
			Help:      "Article mutations by operation.",
		}, []string{"operation"}), // operation: created | updated | deleted
		usersRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "users_registered_total",
			Help:      "Registered user accounts.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logouts_total",
			Help:      "Logouts, each revoking every token of the user.",
		}),
		passwords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "password_changes_total",
			Help:      "Successful password changes.",
		}),
		denied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authorization_denied_total",
			Help:      "Requests refused by the ownership gate or ability checks.",
		}, []string{"action"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}, []string{"group"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.articles,
		r.usersRegistered,
		r.logins,
		r.logouts,
		r.passwords,
		r.denied,
		r.rateLimited,
		r.httpRequests,
		r.httpDuration,
	)
	return r
}

// Registry returns the registry the recorder writes to.
func (r *PrometheusRecorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// IncArticleCreated increments the created articles counter.
func (r *PrometheusRecorder) IncArticleCreated() {
	r.articles.WithLabelValues("created").Inc()
}

// IncArticleUpdated increments the updated articles counter.
func (r *PrometheusRecorder) IncArticleUpdated() {
	r.articles.WithLabelValues("updated").Inc()
}

// IncArticleDeleted increments the deleted articles counter.
func (r *PrometheusRecorder) IncArticleDeleted() {
	r.articles.WithLabelValues("deleted").Inc()
}

// IncUserRegistered increments the registrations counter.
func (r *PrometheusRecorder) IncUserRegistered() {
	r.usersRegistered.Inc()
}

// IncLogin increments the login counter for result.
func (r *PrometheusRecorder) IncLogin(result string) {
	r.logins.WithLabelValues(result).Inc()
}

// IncLogout increments the logout counter.
func (r *PrometheusRecorder) IncLogout() {
	r.logouts.Inc()
}

// IncPasswordChanged increments the password change counter.
func (r *PrometheusRecorder) IncPasswordChanged() {
	r.passwords.Inc()
}

// IncAuthorizationDenied increments the denial counter for action.
func (r *PrometheusRecorder) IncAuthorizationDenied(action string) {
	r.denied.WithLabelValues(action).Inc()
}

// IncRateLimited increments the rate limit counter for group.
func (r *PrometheusRecorder) IncRateLimited(group string) {
	r.rateLimited.WithLabelValues(group).Inc()
}

// ObserveHTTPRequest records a served request.
// route must be the matched pattern, not the raw path, to bound cardinality.
func (r *PrometheusRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
