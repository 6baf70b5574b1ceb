package navigation

import (
	"maps"
	"slices"
	"strings"
	"sync"
	"time"
)

// DefaultTick is the window in which an in-app action takes precedence over a
// hash change.
const DefaultTick = 100 * time.Millisecond

// Source identifies what caused a transition.
type Source string

const (
	SourceAction Source = "action"
	SourceHash   Source = "hash"
)

// Event is delivered to subscribers after every state change.
type Event struct {
	From   State
	To     State
	Source Source
	Hash   string
}

// Transition is the outcome of a navigation call. Hash is the value the caller
// must publish to the browser; for hash-driven transitions it echoes the input.
type Transition struct {
	State   State
	Hash    string
	Changed bool
}

// Option configures a Router.
type Option func(*Router)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Router) {
		if now != nil {
			r.now = now
		}
	}
}

// WithTick sets the precedence window. Zero disables it.
func WithTick(d time.Duration) Option {
	return func(r *Router) {
		if d >= 0 {
			r.tick = d
		}
	}
}

// Router owns one visitor's navigation state. Subscribers run synchronously
// while the router is locked and must not call back into it.
type Router struct {
	mu         sync.Mutex
	state      State
	published  string
	lastAction time.Time
	now        func() time.Time
	tick       time.Duration

	subs   map[int]func(Event)
	nextID int
}

// NewRouter returns a router in the initial state.
func NewRouter(opts ...Option) *Router {
	r := &Router{
		state:     Initial(),
		published: HashFor(Initial()),
		now:       time.Now,
		tick:      DefaultTick,
		subs:      map[int]func(Event){},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current state.
func (r *Router) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Subscribe registers fn for every subsequent change. The returned func removes
// it and is safe to call more than once.
func (r *Router) Subscribe(fn func(Event)) (cancel func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = fn
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subs, id)
			r.mu.Unlock()
		})
	}
}

// Subscribers reports the number of live subscriptions.
func (r *Router) Subscribers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// Navigate moves to page, keeping the stored category.
func (r *Router) Navigate(page Page) Transition {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := r.state
	next.Page = page
	return r.act(next)
}

// SelectCategory shows the category page for id. The id is not checked against
// the catalog; rendering handles unknown ids.
func (r *Router) SelectCategory(id string) Transition {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.act(State{Page: PageCategory, Category: id})
}

// GoHome returns to home and clears the category.
func (r *Router) GoHome() Transition {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.act(State{Page: PageHome})
}

// HashChanged applies an external hash change. It reports false when the
// change was dropped: either it echoes the hash the router last published, or it
// arrived within the tick of an in-app action, which wins.
func (r *Router) HashChanged(hash string) (Transition, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hash = normalizeHash(hash)
	current := Transition{State: r.state, Hash: r.published}
	if hash == r.published {
		return current, false
	}
	if r.tick > 0 && !r.lastAction.IsZero() && r.now().Sub(r.lastAction) < r.tick {
		return current, false
	}

	next := r.state
	next.Page = PageForHash(hash)
	r.published = hash
	return r.apply(next, hash, SourceHash), true
}

func (r *Router) act(next State) Transition {
	r.lastAction = r.now()
	hash := HashFor(next)
	r.published = hash
	return r.apply(next, hash, SourceAction)
}

func (r *Router) apply(next State, hash string, src Source) Transition {
	prev := r.state
	r.state = next
	t := Transition{State: next, Hash: hash, Changed: prev != next}
	if !t.Changed {
		return t
	}
	ev := Event{From: prev, To: next, Source: src, Hash: hash}
	for _, id := range slices.Sorted(maps.Keys(r.subs)) {
		r.subs[id](ev)
	}
	return t
}

func normalizeHash(hash string) string {
	hash = strings.TrimSpace(hash)
	if i := strings.IndexByte(hash, '#'); i >= 0 {
		hash = hash[i:]
	} else {
		hash = "#" + hash
	}
	return hash
}
