package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"twinelephant.com/fireworks-web/internal/carousel"
	"twinelephant.com/fireworks-web/internal/catalog"
	"twinelephant.com/fireworks-web/internal/cms"
	"twinelephant.com/fireworks-web/internal/config"
	"twinelephant.com/fireworks-web/internal/contact"
	"twinelephant.com/fireworks-web/internal/handlers"
	mw "twinelephant.com/fireworks-web/internal/middleware"
	"twinelephant.com/fireworks-web/internal/observability"
	"twinelephant.com/fireworks-web/internal/session"
)

var errNotOnPage = errors.New("not available on the current page")

const (
	requestTimeout = 30 * time.Second
	contentTTL     = 5 * time.Minute
)

// deps are the collaborators of a server. Clock and timer hooks stay nil in
// production.
type deps struct {
	Catalog   *catalog.Catalog
	Logger    *zap.Logger
	Registry  *prometheus.Registry
	Now       func() time.Time
	NewTicker carousel.NewTicker
	AfterFunc contact.AfterFunc
}

type server struct {
	cfg      config.Config
	logger   *zap.Logger
	store    *session.Store
	views    *handlers.Builder
	tmpl     *templateSet
	sessions *mw.SessionManager
	metrics  *observability.Metrics
}

func newServer(cfg config.Config, d deps) (*server, error) {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Registry == nil {
		d.Registry = prometheus.NewRegistry()
	}
	if d.Now == nil {
		d.Now = time.Now
	}

	tmpl, err := newTemplateSet(cfg.Site.TemplatesDir, cfg.Site.DevMode)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	sessions, err := mw.NewSessionManager(mw.SessionConfig{
		HashKey:  cfg.Session.HashKey,
		BlockKey: cfg.Session.BlockKey,
		Secure:   cfg.Site.Production(),
		Now:      d.Now,
	})
	if err != nil {
		return nil, err
	}
	metrics := observability.InitMetrics(d.Registry)

	ttl := contentTTL
	if cfg.Site.DevMode {
		ttl = 0
	}

	store := session.NewStore(session.Config{
		Catalog: d.Catalog,
		NavTick: navTick(cfg.Nav.Tick),
		Now:     d.Now,
		Contact: contact.Config{
			SubmitDelay: cfg.Contact.SubmitDelay,
			ResetDelay:  cfg.Contact.ResetDelay,
			AfterFunc:   d.AfterFunc,
			Now:         d.Now,
		},
		Intervals: session.Intervals{
			Offers:   cfg.Carousel.Offers,
			Swiper:   cfg.Carousel.Swiper,
			Gallery:  cfg.Carousel.Gallery,
			Features: cfg.Carousel.Features,
		},
		NewTicker: d.NewTicker,
		Logger:    d.Logger,
		Recorder:  metrics,
	}, session.WithIdle(cfg.Session.Idle))

	return &server{
		cfg:    cfg,
		logger: d.Logger,
		store:  store,
		views: &handlers.Builder{
			Catalog:   d.Catalog,
			Content:   cms.NewClient(cfg.Site.ContentDir, ttl),
			Analytics: handlers.AnalyticsFromConfig(cfg.Site),
			BaseURL:   cfg.Site.BaseURL,
		},
		tmpl:     tmpl,
		sessions: sessions,
		metrics:  metrics,
	}, nil
}

// navTick maps the configured window onto session.Config, where zero means the
// default and a negative value disables the window.
func navTick(d time.Duration) time.Duration {
	if d == 0 {
		return -1
	}
	return d
}

// Close releases every visitor.
func (s *server) Close() {
	s.store.Close()
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	// RealIP trusts X-Forwarded-For; deploy behind a proxy that sets it.
	r.Use(middleware.RealIP)
	r.Use(observability.InjectLoggerMiddleware(s.logger))
	r.Use(observability.RequestLoggerMiddleware)
	r.Use(observability.RecoveryMiddleware(s.logger))
	r.Use(s.metrics.MetricsMiddleware)
	r.Use(middleware.Compress(s.cfg.Server.CompressLevel))
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", s.metrics.Handler())

	assets := os.DirFS(filepath.Join(s.cfg.Site.PublicDir, "assets"))
	r.Handle("/assets/*", http.StripPrefix("/assets", mw.AssetsWithCache(assets, s.cfg.Site.DevMode)))

	r.Group(func(r chi.Router) {
		r.Use(mw.HTMX)
		r.Use(mw.Session(s.sessions))
		r.Use(mw.CSRF(s.cfg.Site.Production()))
		r.Use(mw.NoStore)
		r.Use(s.visitor)

		r.Get("/", s.handleIndex)
		r.Get("/view", s.handleView)

		r.Route("/nav", func(r chi.Router) {
			r.Post("/page/{page}", s.handleNavPage)
			r.Post("/category/{id}", s.handleNavCategory)
			r.Post("/home", s.handleNavHome)
			r.Post("/hash", s.handleNavHash)
		})

		r.Get(handlers.CategoryListingPath, s.handleCategoryListing)
		r.Get(handlers.GalleryListingPath, s.handleGalleryListing)
		r.Get(handlers.GalleryListingPath+"/{id}", s.handleProductDetail)
		r.Post("/favorites/{id}", s.handleFavorite)

		r.Post("/contact", s.handleContactSubmit)
		r.Get("/contact/status", s.handleContactStatus)

		r.Get("/carousel/{name}", s.handleCarousel)
		r.Post("/carousel/{name}/{action}", s.handleCarouselAction)
		r.Post("/carousel/{name}/go/{index}", s.handleCarouselGo)
		r.Post("/product/media/{mode}", s.handleProductMedia)
	})
	return r
}

type ctxKey struct{}

// visitor binds the in-memory App named by the session cookie, creating one
// for new or expired visitors. A full document load of / replaces the App so
// navigation and favorites start over.
func (s *server) visitor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sd := mw.GetSession(r)
		var app *session.App
		if isPageLoad(r) {
			app = s.store.Reload(sd.ID)
			sd.SetID(app.ID)
		} else {
			var created bool
			app, created = s.store.GetOrCreate(sd.ID)
			if created {
				sd.SetID(app.ID)
			}
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, app)
		ctx = observability.WithLogger(ctx, observability.FromContext(ctx).With(zap.String("session", app.ID)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func isPageLoad(r *http.Request) bool {
	return r.Method == http.MethodGet && r.URL.Path == "/" && !mw.IsHTMX(r.Context())
}

func appFrom(r *http.Request) *session.App {
	app, _ := r.Context().Value(ctxKey{}).(*session.App)
	return app
}

// templateSet parses every .tmpl under dir. In dev mode templates are reparsed
// on each render.
type templateSet struct {
	dir   string
	dev   bool
	cache *template.Template
}

func newTemplateSet(dir string, dev bool) (*templateSet, error) {
	ts := &templateSet{dir: dir, dev: dev}
	t, err := ts.parse()
	if err != nil {
		return nil, err
	}
	ts.cache = t
	return ts, nil
}

func (ts *templateSet) get() (*template.Template, error) {
	if ts.dev {
		return ts.parse()
	}
	return ts.cache, nil
}

func (ts *templateSet) parse() (*template.Template, error) {
	funcMap := template.FuncMap{
		"now": time.Now,
		"add": func(a, b int) int { return a + b },
		// Payloads come from seo.JSON, never from visitor input.
		"jsonld": func(s string) template.JS {
			return template.JS(s)
		},
		"contactPanel": func(cv *handlers.ContactView, token string) contactPanel {
			return contactPanel{ContactView: *cv, CSRFToken: token}
		},
	}
	// ParseGlob doesn't support **, so walk the tree.
	var files []string
	if err := filepath.WalkDir(ts.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", ts.dir)
	}
	return template.New("_root").Funcs(funcMap).ParseFiles(files...)
}

// render executes name into a buffer so template errors never leave a
// half-written response.
func (s *server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	t, err := s.tmpl.get()
	if err != nil {
		s.fail(w, r, "template parse error", err)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		s.fail(w, r, "template exec error", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *server) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	observability.FromContext(r.Context()).Error(msg, zap.Error(err))
	mw.WriteError(w, r, http.StatusInternalServerError, msg)
}
