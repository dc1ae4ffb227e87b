package feed

import (
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lysyi3m/scroll-feed/app/catalog"
	"github.com/lysyi3m/scroll-feed/app/tasks"
)

var ErrSessionNotFound = errors.New("feed session not found")

type session struct {
	controller *Controller
	createdAt  time.Time
	lastSeen   time.Time
}

type SessionInfo struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	LastSeen  time.Time `json:"last_seen"`
	State     Snapshot  `json:"state"`
}

// Registry tracks the mounted feeds, one controller per client session.
type Registry struct {
	source    catalog.PageSource
	enqueuer  tasks.TaskEnqueuer
	threshold float64
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session
}

func NewRegistry(source catalog.PageSource, enqueuer tasks.TaskEnqueuer, threshold float64) *Registry {
	return &Registry{
		source:    source,
		enqueuer:  enqueuer,
		threshold: threshold,
		now:       time.Now,
		sessions:  make(map[string]*session),
	}
}

// Create mounts a new feed and triggers its first page load.
func (r *Registry) Create() (string, *Controller) {
	id := uuid.NewString()
	controller := NewController(id, r.source, r.enqueuer, r.threshold)

	now := r.now()
	r.mu.Lock()
	r.sessions[id] = &session{controller: controller, createdAt: now, lastSeen: now}
	r.mu.Unlock()

	controller.Activate()

	return id, controller
}

func (r *Registry) Get(id string) (*Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.lastSeen = r.now()
	return s.controller, nil
}

// Remove unmounts the feed.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.controller.Deactivate()
	return nil
}

// ExpireIdle unmounts every feed not seen within ttl and returns how many were removed.
func (r *Registry) ExpireIdle(ttl time.Duration) int {
	cutoff := r.now().Add(-ttl)

	r.mu.Lock()
	var expired []*session
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.controller.Deactivate()
	}
	return len(expired)
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) List() []SessionInfo {
	r.mu.RLock()
	infos := make([]SessionInfo, 0, len(r.sessions))
	controllers := make([]*Controller, 0, len(r.sessions))
	for id, s := range r.sessions {
		infos = append(infos, SessionInfo{ID: id, CreatedAt: s.createdAt, LastSeen: s.lastSeen})
		controllers = append(controllers, s.controller)
	}
	r.mu.RUnlock()

	for i, controller := range controllers {
		infos[i].State = controller.Snapshot()
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.Before(infos[j].CreatedAt)
	})
	return infos
}

// Close unmounts every feed.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.controller.Deactivate()
	}

	slog.Debug("Feed registry closed", "sessions", len(sessions))
}
