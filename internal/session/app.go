// Package session keeps the in-memory state of each visitor: navigation,
// favorites, listing filters, the contact form and carousels.
package session

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"twinelephant.com/fireworks-web/internal/carousel"
	"twinelephant.com/fireworks-web/internal/catalog"
	"twinelephant.com/fireworks-web/internal/contact"
	"twinelephant.com/fireworks-web/internal/favorites"
	"twinelephant.com/fireworks-web/internal/navigation"
	"twinelephant.com/fireworks-web/internal/search"
)

// Carousel names.
const (
	CarouselOffers   = "offers"
	CarouselSwiper   = "swiper"
	CarouselFeatures = "features"
	// CarouselImages is the product page thumbnail selector. It never autoplays.
	CarouselImages = "images"
	galleryPrefix    = "gallery-"
)

// GalleryCarousel names the carousel of a gallery category.
func GalleryCarousel(categoryID string) string { return galleryPrefix + categoryID }

// GalleryCategory reports the category of a gallery carousel name.
func GalleryCategory(name string) (categoryID string, ok bool) {
	return strings.CutPrefix(name, galleryPrefix)
}

// Intervals are the autoplay periods per carousel kind.
type Intervals struct {
	Offers   time.Duration
	Swiper   time.Duration
	Gallery  time.Duration
	Features time.Duration
}

// DefaultIntervals returns the site's carousel timings.
func DefaultIntervals() Intervals {
	return Intervals{
		Offers:   carousel.DefaultOffersInterval,
		Swiper:   carousel.DefaultSwiperInterval,
		Gallery:  carousel.DefaultGalleryInterval,
		Features: carousel.DefaultFeaturesInterval,
	}
}

// Recorder receives domain events for metrics.
type Recorder interface {
	Navigation(source, page string)
	ContactStatus(status string)
	FavoriteToggled(added bool)
	Sessions(n int)
}

type nopRecorder struct{}

func (nopRecorder) Navigation(string, string) {}
func (nopRecorder) ContactStatus(string)      {}
func (nopRecorder) FavoriteToggled(bool)      {}
func (nopRecorder) Sessions(int)              {}

// Config is shared by every App of a Store.
type Config struct {
	Catalog *catalog.Catalog
	// NavTick is the in-app precedence window. Zero means the default,
	// negative disables it.
	NavTick   time.Duration
	Now       func() time.Time
	Contact   contact.Config
	Intervals Intervals
	NewTicker carousel.NewTicker
	Logger    *zap.Logger
	Recorder  Recorder
}

func (c Config) withDefaults() Config {
	if c.Now == nil {
		c.Now = time.Now
	}
	switch {
	case c.NavTick == 0:
		c.NavTick = navigation.DefaultTick
	case c.NavTick < 0:
		c.NavTick = 0
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Recorder == nil {
		c.Recorder = nopRecorder{}
	}
	def := DefaultIntervals()
	if c.Intervals.Offers <= 0 {
		c.Intervals.Offers = def.Offers
	}
	if c.Intervals.Swiper <= 0 {
		c.Intervals.Swiper = def.Swiper
	}
	if c.Intervals.Gallery <= 0 {
		c.Intervals.Gallery = def.Gallery
	}
	if c.Intervals.Features <= 0 {
		c.Intervals.Features = def.Features
	}
	return c
}

// App is one visitor. The router has exactly one subscriber, registered by
// NewApp and removed by Close; it applies page mount and unmount effects.
type App struct {
	ID        string
	Router    *navigation.Router
	Favorites *favorites.Set
	Carousels *carousel.Group

	cfg    Config
	logger *zap.Logger
	cancel func()

	mu       sync.Mutex
	category search.State
	gallery  search.State
	form     *contact.Form
	video    bool
	lastSeen time.Time
	closed   bool
}

// NewApp builds a visitor in the initial navigation state with the home page
// mounted.
func NewApp(id string, cfg Config) *App {
	cfg = cfg.withDefaults()
	a := &App{
		ID:        id,
		Router:    navigation.NewRouter(navigation.WithClock(cfg.Now), navigation.WithTick(cfg.NavTick)),
		Favorites: &favorites.Set{},
		Carousels: carousel.NewGroup(cfg.NewTicker),
		cfg:       cfg,
		logger:    cfg.Logger.With(zap.String("session", id)),
		category:  search.DefaultState(),
		gallery:   search.DefaultState(),
		lastSeen:  cfg.Now(),
	}
	a.mount(a.Router.State())
	a.cancel = a.Router.Subscribe(a.onNavigate)
	return a
}

func (a *App) onNavigate(ev navigation.Event) {
	a.cfg.Recorder.Navigation(string(ev.Source), string(ev.To.Page))
	a.logger.Debug("navigation",
		zap.String("source", string(ev.Source)),
		zap.String("from", string(ev.From.Page)),
		zap.String("to", string(ev.To.Page)),
		zap.String("category", ev.To.ActiveCategory()),
	)
	if ev.From.Page == ev.To.Page && ev.From.ActiveCategory() == ev.To.ActiveCategory() {
		return
	}
	a.unmount(ev.From)
	a.mount(ev.To)
}

func (a *App) mount(st navigation.State) {
	c := a.cfg.Catalog
	switch st.Page {
	case navigation.PageHome:
		if c == nil {
			return
		}
		a.Carousels.Start(CarouselOffers, len(c.Offers()), a.cfg.Intervals.Offers)
		// The slider shows three cards at a time, leaving len-2 start positions.
		a.Carousels.Start(CarouselSwiper, max(len(c.Swiper())-2, 1), a.cfg.Intervals.Swiper)
	case navigation.PageCategory:
		a.mu.Lock()
		a.category = search.DefaultState()
		a.mu.Unlock()
	case navigation.PageGallery:
		a.mu.Lock()
		a.gallery = search.DefaultState()
		a.mu.Unlock()
		if c == nil {
			return
		}
		for _, cat := range c.Categories() {
			a.Carousels.Start(GalleryCarousel(cat.ID), cat.ProductCount(), a.cfg.Intervals.Gallery)
		}
	case navigation.PageProduct:
		a.mu.Lock()
		a.video = false
		a.mu.Unlock()
		if c == nil {
			return
		}
		if p, ok := c.Spotlight(); ok {
			a.Carousels.Start(CarouselFeatures, len(p.Features), a.cfg.Intervals.Features)
			a.Carousels.Start(CarouselImages, len(p.Gallery()), 0)
		}
	case navigation.PageContact:
		a.mu.Lock()
		a.form = a.newForm()
		a.mu.Unlock()
	}
}

func (a *App) unmount(st navigation.State) {
	switch st.Page {
	case navigation.PageHome:
		a.Carousels.Stop(CarouselOffers, CarouselSwiper)
	case navigation.PageGallery:
		for _, name := range a.Carousels.Names() {
			if _, ok := GalleryCategory(name); ok {
				a.Carousels.Stop(name)
			}
		}
	case navigation.PageProduct:
		a.Carousels.Stop(CarouselFeatures, CarouselImages)
	case navigation.PageContact:
		a.mu.Lock()
		form := a.form
		a.form = nil
		a.mu.Unlock()
		if form != nil {
			form.Close()
		}
	}
}

func (a *App) newForm() *contact.Form {
	cfg := a.cfg.Contact
	user := cfg.OnChange
	cfg.OnChange = func(snap contact.Snapshot) {
		a.cfg.Recorder.ContactStatus(string(snap.Status))
		if snap.Status == contact.StatusSubmitting {
			a.logger.Info("contact submission",
				zap.String("reference", snap.Reference),
				zap.String("inquiry_type", snap.Values.InquiryType),
			)
		}
		if user != nil {
			user(snap)
		}
	}
	return contact.New(cfg)
}

// Contact returns the form of the mounted contact page. Outside the contact
// page it returns a fresh form that is not retained.
func (a *App) Contact() *contact.Form {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.form == nil {
		return a.newForm()
	}
	return a.form
}

// CategorySearch returns the category page's listing state.
func (a *App) CategorySearch() search.State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.category
}

// SetCategorySearch stores the category page's listing state.
func (a *App) SetCategorySearch(st search.State) {
	a.mu.Lock()
	a.category = st
	a.mu.Unlock()
}

// GallerySearch returns the gallery's listing state.
func (a *App) GallerySearch() search.State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gallery
}

// SetGallerySearch stores the gallery's listing state.
func (a *App) SetGallerySearch(st search.State) {
	a.mu.Lock()
	a.gallery = st
	a.mu.Unlock()
}

// ShowVideo switches the product page media between the image gallery and
// the product video.
func (a *App) ShowVideo(on bool) {
	a.mu.Lock()
	a.video = on
	a.mu.Unlock()
}

// VideoShown reports whether the product page shows the video.
func (a *App) VideoShown() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.video
}

// ToggleFavorite flips id in the favorites and reports the new membership.
func (a *App) ToggleFavorite(id string) bool {
	added := a.Favorites.Toggle(id)
	a.cfg.Recorder.FavoriteToggled(added)
	return added
}

// Touch records activity at now.
func (a *App) Touch(now time.Time) {
	a.mu.Lock()
	a.lastSeen = now
	a.mu.Unlock()
}

// LastSeen returns the time of the last recorded activity.
func (a *App) LastSeen() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastSeen
}

// Close removes the router subscription and cancels every timer the visitor
// owns. It is safe to call more than once.
func (a *App) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	form := a.form
	a.form = nil
	a.mu.Unlock()

	a.cancel()
	a.Carousels.Close()
	if form != nil {
		form.Close()
	}
}
