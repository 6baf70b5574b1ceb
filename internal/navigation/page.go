// Package navigation holds the visitor's current page and keeps it in step with
// the browser's URL hash.
package navigation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPage is returned by ParsePage for names outside the page set.
var ErrUnknownPage = errors.New("navigation: unknown page")

// Page is one top-level page of the site.
type Page string

const (
	PageHome     Page = "home"
	PageCategory Page = "category"
	PageGallery  Page = "gallery"
	PageContact  Page = "contact"
	PageAbout    Page = "about"
	PageProduct  Page = "product-page"
)

// Pages lists every page in menu order.
var Pages = []Page{PageHome, PageGallery, PageProduct, PageCategory, PageAbout, PageContact}

// ParsePage validates an explicit page name from a menu action.
func ParsePage(s string) (Page, error) {
	p := Page(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Pages {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPage, s)
}

// PageForHash maps a location hash to a page. Only product-page (alias
// products), gallery, contact and about are recognised; everything else,
// including category hashes, lands on home.
func PageForHash(hash string) Page {
	switch strings.TrimPrefix(hash, "#") {
	case "product-page", "products":
		return PageProduct
	case "gallery":
		return PageGallery
	case "contact":
		return PageContact
	case "about":
		return PageAbout
	default:
		return PageHome
	}
}

// State is the authoritative navigation state.
type State struct {
	Page     Page
	Category string
}

// Initial is the state of a fresh visitor.
func Initial() State {
	return State{Page: PageHome}
}

// ActiveCategory returns the selected category while the category page is
// showing, and "" otherwise. Hash navigation leaves Category stored.
func (s State) ActiveCategory() string {
	if s.Page != PageCategory {
		return ""
	}
	return s.Category
}

// HashFor renders the hash published for s. Category states use a
// "category/<id>" token the hash parser does not recognise, so reloading such a
// URL lands on home.
func HashFor(s State) string {
	if s.Page == PageCategory {
		return "#category/" + s.Category
	}
	if s.Page == "" {
		return "#" + string(PageHome)
	}
	return "#" + string(s.Page)
}
