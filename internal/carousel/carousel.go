// Package carousel runs auto-advancing slide positions. Each carousel ticks on
// its own goroutine and pauses while the pointer is over it.
package carousel

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Intervals used by the site.
const (
	DefaultOffersInterval   = 5 * time.Second
	DefaultSwiperInterval   = 4 * time.Second
	DefaultGalleryInterval  = 4 * time.Second
	DefaultFeaturesInterval = 3 * time.Second
)

// ErrUnknown is returned for a carousel name the group does not run.
var ErrUnknown = errors.New("carousel: unknown carousel")

// ErrUnknownAction is returned by Apply for actions other than pause, resume,
// next and prev.
var ErrUnknownAction = errors.New("carousel: unknown action")

// ErrOutOfRange is returned by Go for an index outside [0, Len).
var ErrOutOfRange = errors.New("carousel: index out of range")

// Ticker is the subset of *time.Ticker a carousel needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// NewTicker creates tickers. Tests substitute a manual one.
type NewTicker func(d time.Duration) Ticker

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

func realTicker(d time.Duration) Ticker { return timeTicker{time.NewTicker(d)} }

// Carousel is a position in [0, Len) that advances every interval unless paused.
type Carousel struct {
	name     string
	length   int
	interval time.Duration

	mu     sync.Mutex
	index  int
	paused bool

	stop chan struct{}
	done chan struct{}
}

func newCarousel(name string, length int, interval time.Duration, newTicker NewTicker) *Carousel {
	c := &Carousel{
		name:     name,
		length:   length,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	if length < 2 || interval <= 0 {
		close(c.done)
		return c
	}
	t := newTicker(interval)
	go c.run(t)
	return c
}

func (c *Carousel) run(t Ticker) {
	defer close(c.done)
	defer t.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-t.C():
			c.advance()
		}
	}
}

// advance is one autoplay step.
func (c *Carousel) advance() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.paused && c.length > 0 {
		c.index = (c.index + 1) % c.length
	}
}

// Name returns the carousel's name.
func (c *Carousel) Name() string { return c.name }

// Len returns the number of positions.
func (c *Carousel) Len() int { return c.length }

// Interval returns the autoplay period.
func (c *Carousel) Interval() time.Duration { return c.interval }

// Index returns the current position.
func (c *Carousel) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Next advances one position, wrapping around.
func (c *Carousel) Next() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.length > 0 {
		c.index = (c.index + 1) % c.length
	}
	return c.index
}

// Prev moves back one position, wrapping around.
func (c *Carousel) Prev() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.length > 0 {
		c.index = (c.index - 1 + c.length) % c.length
	}
	return c.index
}

// Go jumps to position i, which must be in range.
func (c *Carousel) Go(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= c.length {
		return fmt.Errorf("%w: %s index %d of %d", ErrOutOfRange, c.name, i, c.length)
	}
	c.index = i
	return nil
}

// Pause stops autoplay, as on pointer enter.
func (c *Carousel) Pause() {
	c.mu.Lock()
	c.paused = true
	c.mu.Unlock()
}

// Resume restarts autoplay, as on pointer leave.
func (c *Carousel) Resume() {
	c.mu.Lock()
	c.paused = false
	c.mu.Unlock()
}

// Paused reports whether autoplay is suspended.
func (c *Carousel) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// Apply runs a named action: pause, resume, next or prev.
func (c *Carousel) Apply(action string) error {
	switch action {
	case "pause":
		c.Pause()
	case "resume":
		c.Resume()
	case "next":
		c.Next()
	case "prev":
		c.Prev()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	return nil
}

// close stops the goroutine and waits for it to exit.
func (c *Carousel) close() {
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
	<-c.done
}
