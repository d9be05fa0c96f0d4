package loading

import (
	"sort"
	"sync"
	"time"

	loadingDomain "github.com/andrescamacho/supplyload-go/internal/domain/loading"
)

// Session is one vehicle's active loading activity
type Session struct {
	ID         string
	Vehicle    string
	Controller *loadingDomain.Controller
	StartedAt  time.Time

	ticks    int
	loadedKg float64
}

func (s *Session) Ticks() int        { return s.ticks }
func (s *Session) LoadedKg() float64 { return s.loadedKg }

func (s *Session) recordTick(kg float64) {
	s.ticks++
	s.loadedKg += kg
}

func (s *Session) recordBackground(kg float64) {
	s.loadedKg += kg
}

// Registry holds at most one active session per vehicle.
//
// Thread-Safety: the session map is guarded by a RWMutex. A single session's
// controller is still advanced by one caller at a time.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Put installs a session and returns the one it replaced, if any
func (r *Registry) Put(session *Session) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous := r.sessions[session.Vehicle]
	r.sessions[session.Vehicle] = session
	return previous
}

// Get returns the active session of a vehicle
func (r *Registry) Get(vehicle string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[vehicle]
	return session, ok
}

// Remove drops and returns the active session of a vehicle
func (r *Registry) Remove(vehicle string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	session := r.sessions[vehicle]
	delete(r.sessions, vehicle)
	return session
}

// removeSession drops session only if it is still the vehicle's active one
func (r *Registry) removeSession(session *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sessions[session.Vehicle] == session {
		delete(r.sessions, session.Vehicle)
	}
}

// Vehicles lists vehicles with an active session in name order
func (r *Registry) Vehicles() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sessions))
	for name := range r.sessions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
