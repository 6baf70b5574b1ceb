package main

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"twinelephant.com/fireworks-web/internal/handlers"
	mw "twinelephant.com/fireworks-web/internal/middleware"
	"twinelephant.com/fireworks-web/internal/navigation"
	"twinelephant.com/fireworks-web/internal/search"
)

// searchFromQuery overlays the listing query on st. Absent keys keep their
// current value.
func searchFromQuery(st search.State, q url.Values, filterParam string) search.State {
	if q.Has("q") {
		st.Term = q.Get("q")
	}
	if q.Has(filterParam) {
		st.Filter = q.Get(filterParam)
	}
	if q.Has("view") {
		st.View = search.ParseView(q.Get("view"))
	}
	return st
}

// handleCategoryListing updates the category page's search and renders the
// listing fragment.
func (s *server) handleCategoryListing(w http.ResponseWriter, r *http.Request) {
	app := appFrom(r)
	view := navigation.Resolve(app.Router.State(), s.views.Catalog)
	if view.Kind != navigation.ViewCategory {
		mw.WriteError(w, r, http.StatusConflict, errNotOnPage.Error())
		return
	}
	groups := search.GroupsForCategory(view.Category)
	st := searchFromQuery(app.CategorySearch(), r.URL.Query(), "sub").Normalize(groups)
	app.SetCategorySearch(st)
	s.render(w, r, "listing", s.views.CategoryListing(app, view.Category))
}

// handleGalleryListing updates the gallery's search and renders the listing
// fragment.
func (s *server) handleGalleryListing(w http.ResponseWriter, r *http.Request) {
	app := appFrom(r)
	if app.Router.State().Page != navigation.PageGallery {
		mw.WriteError(w, r, http.StatusConflict, errNotOnPage.Error())
		return
	}
	groups := search.GroupsForCatalog(s.views.Catalog)
	st := searchFromQuery(app.GallerySearch(), r.URL.Query(), "category").Normalize(groups)
	app.SetGallerySearch(st)
	s.render(w, r, "listing", s.views.GalleryListing(app))
}

// handleProductDetail renders the product popup.
func (s *server) handleProductDetail(w http.ResponseWriter, r *http.Request) {
	app := appFrom(r)
	p, ok := s.views.Catalog.Product(chi.URLParam(r, "id"))
	if !ok {
		mw.WriteError(w, r, http.StatusNotFound, "product not found")
		return
	}
	s.render(w, r, "product_modal", map[string]any{
		"Card":      handlers.Card(p, app.Favorites),
		"CSRFToken": mw.GetSession(r).CSRFToken,
	})
}

// handleFavorite toggles a product and renders its heart button. The header
// count listens for favorites:changed.
func (s *server) handleFavorite(w http.ResponseWriter, r *http.Request) {
	app := appFrom(r)
	p, ok := s.views.Catalog.Product(chi.URLParam(r, "id"))
	if !ok {
		mw.WriteError(w, r, http.StatusNotFound, "product not found")
		return
	}
	added := app.ToggleFavorite(p.ID)
	payload := map[string]any{
		"favorites:changed": map[string]any{"id": p.ID, "added": added, "count": app.Favorites.Len()},
	}
	if raw, err := json.Marshal(payload); err == nil {
		w.Header().Set("HX-Trigger", string(raw))
	}
	s.render(w, r, "favorite_button", handlers.Card(p, app.Favorites))
}
