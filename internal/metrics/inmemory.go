package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	ArticlesCreated     uint64
	ArticlesUpdated     uint64
	ArticlesDeleted     uint64
	UsersRegistered     uint64
	LoginSuccesses      uint64
	LoginFailures       uint64
	Logouts             uint64
	PasswordsChanged    uint64
	AuthorizationDenied map[string]uint64
	RateLimited         map[string]uint64
	HTTPRequestCount    uint64
	HTTPDurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	articlesCreated     uint64
	articlesUpdated     uint64
	articlesDeleted     uint64
	usersRegistered     uint64
	loginSuccesses      uint64
	loginFailures       uint64
	logouts             uint64
	passwordsChanged    uint64
	httpRequestCount    uint64
	httpDurationTotalNs int64

	mu                  sync.Mutex
	authorizationDenied map[string]uint64
	rateLimited         map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		authorizationDenied: make(map[string]uint64),
		rateLimited:         make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	denied := make(map[string]uint64, len(m.authorizationDenied))
	for k, v := range m.authorizationDenied {
		denied[k] = v
	}
	limited := make(map[string]uint64, len(m.rateLimited))
	for k, v := range m.rateLimited {
		limited[k] = v
	}
	m.mu.Unlock()

	return Snapshot{
		ArticlesCreated:     atomic.LoadUint64(&m.articlesCreated),
		ArticlesUpdated:     atomic.LoadUint64(&m.articlesUpdated),
		ArticlesDeleted:     atomic.LoadUint64(&m.articlesDeleted),
		UsersRegistered:     atomic.LoadUint64(&m.usersRegistered),
		LoginSuccesses:      atomic.LoadUint64(&m.loginSuccesses),
		LoginFailures:       atomic.LoadUint64(&m.loginFailures),
		Logouts:             atomic.LoadUint64(&m.logouts),
		PasswordsChanged:    atomic.LoadUint64(&m.passwordsChanged),
		AuthorizationDenied: denied,
		RateLimited:         limited,
		HTTPRequestCount:    atomic.LoadUint64(&m.httpRequestCount),
		HTTPDurationTotalNs: atomic.LoadInt64(&m.httpDurationTotalNs),
	}
}

// IncArticleCreated increments the created articles counter.
func (m *InMemoryRecorder) IncArticleCreated() {
	atomic.AddUint64(&m.articlesCreated, 1)
}

// IncArticleUpdated increments the updated articles counter.
func (m *InMemoryRecorder) IncArticleUpdated() {
	atomic.AddUint64(&m.articlesUpdated, 1)
}

// IncArticleDeleted increments the deleted articles counter.
func (m *InMemoryRecorder) IncArticleDeleted() {
	atomic.AddUint64(&m.articlesDeleted, 1)
}

// IncUserRegistered increments the registrations counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncLogin increments the login counter for result.
func (m *InMemoryRecorder) IncLogin(result string) {
	if result == LoginSuccess {
		atomic.AddUint64(&m.loginSuccesses, 1)
		return
	}
	atomic.AddUint64(&m.loginFailures, 1)
}

// IncLogout increments the logout counter.
func (m *InMemoryRecorder) IncLogout() {
	atomic.AddUint64(&m.logouts, 1)
}

// IncPasswordChanged increments the password change counter.
func (m *InMemoryRecorder) IncPasswordChanged() {
	atomic.AddUint64(&m.passwordsChanged, 1)
}

// IncAuthorizationDenied increments the denial counter for action.
func (m *InMemoryRecorder) IncAuthorizationDenied(action string) {
	m.mu.Lock()
	m.authorizationDenied[action]++
	m.mu.Unlock()
}

// IncRateLimited increments the rate limit counter for group.
func (m *InMemoryRecorder) IncRateLimited(group string) {
	m.mu.Lock()
	m.rateLimited[group]++
	m.mu.Unlock()
}

// ObserveHTTPRequest records a served request.
func (m *InMemoryRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	atomic.AddUint64(&m.httpRequestCount, 1)
	atomic.AddInt64(&m.httpDurationTotalNs, duration.Nanoseconds())
}
