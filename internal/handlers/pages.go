package handlers

import (
	"twinelephant.com/fireworks-web/internal/nav"
	"twinelephant.com/fireworks-web/internal/navigation"
	"twinelephant.com/fireworks-web/internal/seo"
)

// PageData is the view model for the shared layout.
type PageData struct {
	Title     string
	Brand     string
	SEO       seo.Meta
	Analytics Analytics
	CSRFToken string

	Hash        string
	View        navigation.View
	ViewName    string
	Footer      bool
	Nav         []nav.RenderedItem
	Categories  []nav.CategoryItem
	Breadcrumbs []nav.Crumb
	Favorites   int

	// Exactly one of the per-view payloads is set, matching View.Kind.
	Home     *HomeView
	Category *CategoryView
	NotFound *NotFoundView
	Gallery  *GalleryView
	Contact  *ContactView
	About    *AboutView
	Product  *ProductView
}
