package services

import (
	"sync"
	"time"

	"referral-miniapp-backend/internal/metrics"
	"referral-miniapp-backend/internal/models"
)

// ConnectionRegistry keeps a bounded, time-windowed list of recent frontend
// check-ins. Expired entries are purged at the start of every operation;
// there is no background sweep.
type ConnectionRegistry struct {
	mu          sync.Mutex
	connections []*models.Connection
	byID        map[string]*models.Connection
	capacity    int
	window      time.Duration
	now         func() time.Time
}

type RegistryOption func(*ConnectionRegistry)

func WithCapacity(capacity int) RegistryOption {
	return func(r *ConnectionRegistry) {
		if capacity > 0 {
			r.capacity = capacity
		}
	}
}

func WithWindow(window time.Duration) RegistryOption {
	return func(r *ConnectionRegistry) {
		if window > 0 {
			r.window = window
		}
	}
}

func WithClock(now func() time.Time) RegistryOption {
	return func(r *ConnectionRegistry) {
		r.now = now
	}
}

func NewConnectionRegistry(opts ...RegistryOption) *ConnectionRegistry {
	r := &ConnectionRegistry{
		byID:     make(map[string]*models.Connection),
		capacity: DefaultConnectionCapacity,
		window:   DefaultConnectionWindow,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *ConnectionRegistry) Window() time.Duration {
	return r.window
}

// Register records a check-in and returns its id. When the registry is over
// capacity the oldest registrations are dropped first.
func (r *ConnectionRegistry) Register(meta models.ConnectionMeta) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.purgeLocked(now)

	id := models.GenerateConnectionID(now)
	for r.byID[id] != nil {
		id = models.GenerateConnectionID(now)
	}

	conn := &models.Connection{
		ID:              id,
		Timestamp:       now,
		LastSeen:        now,
		UserAgent:       orUnknown(meta.UserAgent),
		FrontendVersion: orUnknown(meta.FrontendVersion),
		UserData:        meta.UserData,
		IP:              orUnknown(meta.IP),
		Origin:          orUnknown(meta.Origin),
	}
	r.connections = append(r.connections, conn)
	r.byID[id] = conn

	if over := len(r.connections) - r.capacity; over > 0 {
		for _, dropped := range r.connections[:over] {
			delete(r.byID, dropped.ID)
		}
		r.connections = append([]*models.Connection(nil), r.connections[over:]...)
	}

	metrics.ConnectionsRegistered.Inc()
	return id
}

// Touch refreshes the last-seen time of a live connection. Unknown or
// expired ids are ignored.
func (r *ConnectionRegistry) Touch(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.purgeLocked(now)

	conn, ok := r.byID[id]
	if !ok {
		return false
	}
	conn.LastSeen = now
	return true
}

func (r *ConnectionRegistry) Stats() models.ConnectionStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.purgeLocked(now)

	cutoff := now.Add(-r.window)
	users := make(map[string]struct{})
	stats := models.ConnectionStats{Total: len(r.connections)}

	for _, conn := range r.connections {
		if conn.LastSeen.After(cutoff) {
			stats.Active++
		}
		if identity := conn.UserData.Identity(); identity != "" {
			users[identity] = struct{}{}
		}
	}
	stats.UniqueUsers = len(users)

	return stats
}

// Recent returns copies of the n most recently registered connections,
// newest first.
func (r *ConnectionRegistry) Recent(n int) []models.Connection {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.purgeLocked(r.now())

	if n <= 0 || n > len(r.connections) {
		n = len(r.connections)
	}

	recent := make([]models.Connection, 0, n)
	for i := len(r.connections) - 1; i >= len(r.connections)-n; i-- {
		recent = append(recent, *r.connections[i])
	}
	return recent
}

func (r *ConnectionRegistry) purgeLocked(now time.Time) {
	cutoff := now.Add(-r.window)

	kept := r.connections[:0]
	for _, conn := range r.connections {
		if conn.LastSeen.Before(cutoff) {
			delete(r.byID, conn.ID)
			continue
		}
		kept = append(kept, conn)
	}
	for i := len(kept); i < len(r.connections); i++ {
		r.connections[i] = nil
	}
	r.connections = kept
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
