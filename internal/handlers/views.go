package handlers

import (
	"twinelephant.com/fireworks-web/internal/carousel"
	"twinelephant.com/fireworks-web/internal/catalog"
	"twinelephant.com/fireworks-web/internal/cms"
	"twinelephant.com/fireworks-web/internal/contact"
	"twinelephant.com/fireworks-web/internal/format"
	"twinelephant.com/fireworks-web/internal/search"
)

// swiperWindow is how many swiper cards are visible at once.
const swiperWindow = 3

// FavoriteChecker reports favorite membership.
type FavoriteChecker interface {
	Has(id string) bool
}

// ProductCard is a product with its derived display fields.
type ProductCard struct {
	catalog.Product
	Stars      []bool
	RatingText string
	Favorite   bool
}

// Card derives the display fields of p.
func Card(p catalog.Product, favs FavoriteChecker) ProductCard {
	return ProductCard{
		Product:    p,
		Stars:      format.Stars(p.Rating),
		RatingText: format.FmtRating(p.Rating),
		Favorite:   favs != nil && favs.Has(p.ID),
	}
}

func cards(products []catalog.Product, favs FavoriteChecker) []ProductCard {
	out := make([]ProductCard, 0, len(products))
	for _, p := range products {
		out = append(out, Card(p, favs))
	}
	return out
}

// CarouselView is the state of one autoplaying carousel.
type CarouselView struct {
	Name       string
	Index      int
	Len        int
	Paused     bool
	IntervalMS int64
}

// Dots lists one flag per slide, set for the current one.
func (c CarouselView) Dots() []bool {
	out := make([]bool, c.Len)
	if c.Index >= 0 && c.Index < c.Len {
		out[c.Index] = true
	}
	return out
}

// CarouselOf snapshots c. A nil carousel renders as an empty one.
func CarouselOf(c *carousel.Carousel) CarouselView {
	if c == nil {
		return CarouselView{}
	}
	return CarouselView{
		Name:       c.Name(),
		Index:      c.Index(),
		Len:        c.Len(),
		Paused:     c.Paused(),
		IntervalMS: c.Interval().Milliseconds(),
	}
}

// OfferSlide is one home page promotion.
type OfferSlide struct {
	catalog.Offer
	Active bool
	Action string
}

// CategoryTile links a category from the home page.
type CategoryTile struct {
	ID     string
	Name   string
	Icon   string
	Color  string
	Image  string
	Count  int
	Action string
}

// HomeView is the landing page.
type HomeView struct {
	Offers         []OfferSlide
	OffersCarousel CarouselView
	Swiper         []ProductCard
	SwiperCarousel CarouselView
	Featured       []ProductCard
	Categories     []CategoryTile
}

// FilterOption is one chip of a listing filter.
type FilterOption struct {
	ID     string
	Label  string
	Count  int
	Active bool
}

// GroupView is one section of a grouped listing.
type GroupView struct {
	ID          string
	Name        string
	Description string
	Products    []ProductCard
	Carousel    *CarouselView
}

// Current returns the product the section's carousel points at, or nil.
func (g GroupView) Current() *ProductCard {
	if g.Carousel == nil || g.Carousel.Index < 0 || g.Carousel.Index >= len(g.Products) {
		return nil
	}
	return &g.Products[g.Carousel.Index]
}

// ListingView renders a searchable, filterable product list.
type ListingView struct {
	Endpoint    string
	FilterParam string
	Term        string
	Filter      string
	View        search.View
	Filters     []FilterOption
	Searching   bool
	Count       int
	Empty       bool
	Products    []ProductCard
	Groups      []GroupView
}

// ListView reports whether products render as rows.
func (l ListingView) ListView() bool { return l.View == search.ViewList }

// CategoryView is the category page.
type CategoryView struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Color       string
	Listing     ListingView
}

// NotFoundView is shown for a category id the catalog lacks.
type NotFoundView struct {
	CategoryID string
	Action     string
}

// GalleryView is the all-products gallery.
type GalleryView struct {
	Listing ListingView
}

// ContactView is the contact form panel.
type ContactView struct {
	Status       contact.Status
	Values       contact.Values
	Errors       contact.FieldErrors
	InquiryTypes []contact.InquiryType
	Reference    string
	SubmittedAt  string
	Polling      bool
}

// Submitting reports whether the submit button shows its busy state.
func (c ContactView) Submitting() bool { return c.Status == contact.StatusSubmitting }

// Submitted reports whether the thank-you panel shows.
func (c ContactView) Submitted() bool { return c.Status == contact.StatusSubmitted }

// Error returns the message for a field name.
func (c ContactView) Error(field string) string {
	return c.Errors[contact.Field(field)]
}

// AboutView is the about page.
type AboutView struct {
	Page cms.Page
}

// FeatureSlide is one rotating highlight of the product page.
type FeatureSlide struct {
	Text   string
	Active bool
}

// Thumbnail is one selectable image of the product media panel.
type Thumbnail struct {
	Index    int
	URL      string
	Selected bool
}

// MediaView is the product image gallery with its optional video.
type MediaView struct {
	Name       string
	Current    string
	Thumbnails []Thumbnail
	VideoURL   string
	Video      bool
}

// ProductView is the spotlight product page.
type ProductView struct {
	Card             ProductCard
	Media            MediaView
	Features         []FeatureSlide
	FeaturesCarousel CarouselView
	Specifications   []catalog.Spec
}
