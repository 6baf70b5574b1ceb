package session

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// DefaultIdle is how long a visitor may be inactive before eviction.
const DefaultIdle = 30 * time.Minute

// Store holds every live App in memory. Nothing survives a restart.
type Store struct {
	cfg   Config
	idle  time.Duration
	newID func() string

	mu     sync.Mutex
	apps   map[string]*App
	closed bool

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// StoreOption customises a Store.
type StoreOption func(*Store)

// WithIdle sets the eviction threshold.
func WithIdle(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.idle = d
		}
	}
}

// WithIDGenerator replaces the ULID generator.
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewStore returns an empty store. Call Run to start the janitor.
func NewStore(cfg Config, opts ...StoreOption) *Store {
	s := &Store{
		cfg:   cfg.withDefaults(),
		idle:  DefaultIdle,
		newID: func() string { return ulid.Make().String() },
		apps:  map[string]*App{},
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Idle returns the eviction threshold.
func (s *Store) Idle() time.Duration { return s.idle }

// Get returns the App for id and marks it active.
func (s *Store) Get(id string) (*App, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[id]
	if ok {
		a.Touch(s.cfg.Now())
	}
	return a, ok
}

// Create registers a new App under a fresh id.
func (s *Store) Create() *App {
	id := s.newID()
	a := NewApp(id, s.cfg)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		a.Close()
		return a
	}
	s.apps[id] = a
	n := len(s.apps)
	s.mu.Unlock()

	s.cfg.Recorder.Sessions(n)
	s.cfg.Logger.Debug("session created", zap.String("session", id))
	return a
}

// GetOrCreate returns the App for id, or a new one when id is unknown.
func (s *Store) GetOrCreate(id string) (a *App, created bool) {
	if id != "" {
		if a, ok := s.Get(id); ok {
			return a, false
		}
	}
	return s.Create(), true
}

// Reload closes the App for id, if any, and registers a fresh one. A full
// page load starts the visitor from the initial state.
func (s *Store) Reload(id string) *App {
	if id != "" {
		s.mu.Lock()
		old, ok := s.apps[id]
		delete(s.apps, id)
		s.mu.Unlock()
		if ok {
			old.Close()
			s.cfg.Logger.Debug("session reloaded", zap.String("session", id))
		}
	}
	return s.Create()
}

// Len reports the number of live apps.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.apps)
}

// Sweep closes and removes apps idle for longer than the threshold. It
// returns the number evicted.
func (s *Store) Sweep() int {
	cutoff := s.cfg.Now().Add(-s.idle)

	s.mu.Lock()
	var evicted []*App
	for id, a := range s.apps {
		if a.LastSeen().Before(cutoff) {
			evicted = append(evicted, a)
			delete(s.apps, id)
		}
	}
	n := len(s.apps)
	s.mu.Unlock()

	for _, a := range evicted {
		a.Close()
	}
	if len(evicted) > 0 {
		s.cfg.Recorder.Sessions(n)
		s.cfg.Logger.Info("sessions evicted", zap.Int("evicted", len(evicted)), zap.Int("live", n))
	}
	return len(evicted)
}

// Run sweeps every interval until ctx is done or Close is called.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	defer close(s.done)
	if interval <= 0 {
		interval = s.idle / 2
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-t.C:
			s.Sweep()
		}
	}
}

// Close stops the janitor if running and closes every app.
func (s *Store) Close() {
	s.stopOnce.Do(func() { close(s.stop) })

	s.mu.Lock()
	s.closed = true
	apps := s.apps
	s.apps = map[string]*App{}
	s.mu.Unlock()

	for _, a := range apps {
		a.Close()
	}
	s.cfg.Recorder.Sessions(0)
}

// Done is closed when Run returns.
func (s *Store) Done() <-chan struct{} { return s.done }
