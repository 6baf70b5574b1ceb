package navigation

import "twinelephant.com/fireworks-web/internal/catalog"

// ViewKind is the single top-level view rendered for a state.
type ViewKind int

const (
	ViewHome ViewKind = iota
	ViewCategory
	ViewCategoryNotFound
	ViewGallery
	ViewContact
	ViewAbout
	ViewProductPage
)

var viewNames = [...]string{
	ViewHome:             "home",
	ViewCategory:         "category",
	ViewCategoryNotFound: "category-not-found",
	ViewGallery:          "gallery",
	ViewContact:          "contact",
	ViewAbout:            "about",
	ViewProductPage:      "product-page",
}

func (k ViewKind) String() string {
	if int(k) < 0 || int(k) >= len(viewNames) {
		return "unknown"
	}
	return viewNames[k]
}

// View is what the page shell renders.
type View struct {
	Kind       ViewKind
	State      State
	Category   catalog.Category
	CategoryID string
}

// FooterVisible reports whether the site footer is shown.
func (v View) FooterVisible() bool {
	return v.Kind == ViewHome || v.Kind == ViewContact
}

// Resolve picks the view for s. A category id the catalog does not know yields
// ViewCategoryNotFound, whose only recovery is GoHome.
func Resolve(s State, c *catalog.Catalog) View {
	v := View{State: s}
	switch s.Page {
	case PageCategory:
		v.CategoryID = s.Category
		cat, ok := c.Category(s.Category)
		if !ok {
			v.Kind = ViewCategoryNotFound
			return v
		}
		v.Kind = ViewCategory
		v.Category = cat
	case PageGallery:
		v.Kind = ViewGallery
	case PageContact:
		v.Kind = ViewContact
	case PageAbout:
		v.Kind = ViewAbout
	case PageProduct:
		v.Kind = ViewProductPage
	default:
		v.Kind = ViewHome
	}
	return v
}
