package carousel

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Group owns the carousels of one visitor. Close stops all of them.
type Group struct {
	newTicker NewTicker

	mu        sync.Mutex
	carousels map[string]*Carousel
	closed    bool
}

// NewGroup returns an empty group. A nil newTicker uses time.NewTicker.
func NewGroup(newTicker NewTicker) *Group {
	if newTicker == nil {
		newTicker = realTicker
	}
	return &Group{newTicker: newTicker, carousels: map[string]*Carousel{}}
}

// Start runs a carousel under name at index 0, replacing any running one.
// A closed group returns a stopped carousel.
func (g *Group) Start(name string, length int, interval time.Duration) *Carousel {
	g.mu.Lock()
	defer g.mu.Unlock()
	if old, ok := g.carousels[name]; ok {
		old.close()
		delete(g.carousels, name)
	}
	if g.closed {
		return newCarousel(name, length, 0, g.newTicker)
	}
	c := newCarousel(name, length, interval, g.newTicker)
	g.carousels[name] = c
	return c
}

// Get returns the running carousel called name.
func (g *Group) Get(name string) (*Carousel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.carousels[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return c, nil
}

// Stop ends the named carousels. Unknown names are ignored.
func (g *Group) Stop(names ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, name := range names {
		if c, ok := g.carousels[name]; ok {
			c.close()
			delete(g.carousels, name)
		}
	}
}

// StopAll ends every carousel but leaves the group usable.
func (g *Group) StopAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for name, c := range g.carousels {
		c.close()
		delete(g.carousels, name)
	}
}

// Names lists running carousels in sorted order.
func (g *Group) Names() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	names := make([]string, 0, len(g.carousels))
	for name := range g.carousels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close stops every carousel. Later Starts return stopped carousels.
func (g *Group) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	for name, c := range g.carousels {
		c.close()
		delete(g.carousels, name)
	}
}
