package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	mw "twinelephant.com/fireworks-web/internal/middleware"
	"twinelephant.com/fireworks-web/internal/navigation"
	"twinelephant.com/fireworks-web/internal/observability"
)

// handleIndex renders the full page for the visitor's current state.
func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderShell(w, r, "base")
}

// handleView renders the swappable app shell: header, main view and footer.
func (s *server) handleView(w http.ResponseWriter, r *http.Request) {
	s.renderShell(w, r, "app")
}

func (s *server) renderShell(w http.ResponseWriter, r *http.Request, name string) {
	app := appFrom(r)
	vm, err := s.views.Page(app, mw.GetSession(r).CSRFToken)
	if err != nil {
		s.fail(w, r, "build page", err)
		return
	}
	s.render(w, r, name, vm)
}

// handleNavPage moves to an explicit page from the menu.
func (s *server) handleNavPage(w http.ResponseWriter, r *http.Request) {
	page, err := navigation.ParsePage(chi.URLParam(r, "page"))
	if err != nil {
		mw.WriteError(w, r, http.StatusNotFound, "unknown page")
		return
	}
	s.publish(w, r, appFrom(r).Router.Navigate(page))
}

// handleNavCategory opens the category page. Unknown ids render the
// not-found view.
func (s *server) handleNavCategory(w http.ResponseWriter, r *http.Request) {
	s.publish(w, r, appFrom(r).Router.SelectCategory(chi.URLParam(r, "id")))
}

// handleNavHome is the logo and the not-found view's Go Back.
func (s *server) handleNavHome(w http.ResponseWriter, r *http.Request) {
	s.publish(w, r, appFrom(r).Router.GoHome())
}

// handleNavHash applies a hashchange reported by the browser. Dropped changes
// answer 204 so the client keeps what it shows.
func (s *server) handleNavHash(w http.ResponseWriter, r *http.Request) {
	hash := r.PostFormValue("hash")
	if hash == "" {
		mw.WriteError(w, r, http.StatusBadRequest, "missing hash")
		return
	}
	t, ok := appFrom(r).Router.HashChanged(hash)
	if !ok {
		observability.FromContext(r.Context()).Debug("hash change dropped",
			zap.String("hash", hash),
			zap.String("published", t.Hash),
		)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.renderShell(w, r, "app")
}

// publish renders an in-app transition and asks htmx to put its hash in the
// address bar. Unchanged states replace the entry instead of stacking history.
func (s *server) publish(w http.ResponseWriter, r *http.Request, t navigation.Transition) {
	if t.Changed {
		mw.PushURL(w, "/"+t.Hash)
	} else {
		w.Header().Set("HX-Replace-Url", "/"+t.Hash)
	}
	s.renderShell(w, r, "app")
}
