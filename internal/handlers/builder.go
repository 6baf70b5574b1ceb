package handlers

import (
	"fmt"
	"strings"

	"twinelephant.com/fireworks-web/internal/catalog"
	"twinelephant.com/fireworks-web/internal/cms"
	"twinelephant.com/fireworks-web/internal/contact"
	"twinelephant.com/fireworks-web/internal/format"
	"twinelephant.com/fireworks-web/internal/nav"
	"twinelephant.com/fireworks-web/internal/navigation"
	"twinelephant.com/fireworks-web/internal/search"
	"twinelephant.com/fireworks-web/internal/seo"
	"twinelephant.com/fireworks-web/internal/session"
)

const aboutSlug = "about"

// Endpoints of the listing fragments.
const (
	CategoryListingPath = "/category/products"
	GalleryListingPath  = "/gallery/products"
)

// Builder turns a visitor's state into view models.
type Builder struct {
	Catalog   *catalog.Catalog
	Content   *cms.Client
	Analytics Analytics
	BaseURL   string
}

// Page builds the full layout for the visitor's current view.
func (b *Builder) Page(app *session.App, csrf string) (PageData, error) {
	st := app.Router.State()
	view := navigation.Resolve(st, b.Catalog)
	brand := b.Catalog.Brand()
	vm := PageData{
		Brand:       brand,
		Analytics:   b.Analytics,
		CSRFToken:   csrf,
		Hash:        navigation.HashFor(st),
		View:        view,
		ViewName:    view.Kind.String(),
		Footer:      view.FooterVisible(),
		Nav:         nav.Build(st),
		Categories:  nav.Categories(b.Catalog, st),
		Breadcrumbs: nav.Breadcrumbs(view),
		Favorites:   app.Favorites.Len(),
	}
	vm.SEO.Canonical = b.BaseURL + "/"
	vm.SEO.OG.SiteName = brand
	vm.SEO.OG.Type = "website"
	vm.SEO.OG.URL = vm.SEO.Canonical

	switch view.Kind {
	case navigation.ViewHome:
		vm.Home = b.Home(app)
		vm.Title = brand
		vm.SEO.Description = "Premium sparklers, fountains, rockets and festival crackers from Sivakasi."
		vm.SEO.JSONLD = append(vm.SEO.JSONLD,
			seo.JSON(seo.Store(brand, b.BaseURL, "")),
			seo.JSON(seo.ItemList("Featured products", b.Catalog.Featured())),
		)
	case navigation.ViewCategory:
		vm.Category = b.Category(app, view.Category)
		vm.Title = view.Category.Name + " | " + brand
		vm.SEO.Description = view.Category.Description
		vm.SEO.JSONLD = append(vm.SEO.JSONLD, seo.JSON(seo.BreadcrumbList([]seo.BreadcrumbItem{
			{Name: "Home", Item: b.BaseURL + "/"},
			{Name: view.Category.Name, Item: b.BaseURL + "/" + vm.Hash},
		})))
	case navigation.ViewCategoryNotFound:
		vm.NotFound = &NotFoundView{CategoryID: view.CategoryID, Action: nav.ActionFor(navigation.PageHome)}
		vm.Title = "Category not found | " + brand
		vm.SEO.Robots = "noindex"
	case navigation.ViewGallery:
		vm.Gallery = &GalleryView{Listing: b.GalleryListing(app)}
		vm.Title = "Gallery | " + brand
		vm.SEO.Description = "Browse every product in the " + brand + " range."
	case navigation.ViewContact:
		cv := b.Contact(app, nil)
		vm.Contact = &cv
		vm.Title = "Contact | " + brand
		vm.SEO.Description = "Ask about bulk orders, weddings, corporate events and festival packs."
	case navigation.ViewAbout:
		page, err := b.Content.Page(aboutSlug)
		if err != nil {
			return PageData{}, fmt.Errorf("about page: %w", err)
		}
		vm.About = &AboutView{Page: page}
		vm.Title = firstNonEmpty(page.SEO.Title, page.Title+" | "+brand)
		vm.SEO.Description = firstNonEmpty(page.SEO.Description, page.Summary)
	case navigation.ViewProductPage:
		vm.Product = b.Product(app)
		vm.Title = "Products | " + brand
		if vm.Product != nil {
			p := vm.Product.Card.Product
			vm.Title = p.Name + " | " + brand
			vm.SEO.Description = p.Description
			vm.SEO.OG.Image = p.Image
			vm.SEO.OG.Type = "product"
			vm.SEO.JSONLD = append(vm.SEO.JSONLD, seo.JSON(seo.Product(p, b.BaseURL+"/#product-page")))
		}
	}
	vm.SEO.Title = vm.Title
	vm.SEO.OG.Title = vm.Title
	vm.SEO.OG.Description = vm.SEO.Description
	return vm, nil
}

// Home builds the landing page.
func (b *Builder) Home(app *session.App) *HomeView {
	hv := &HomeView{
		OffersCarousel: b.carousel(app, session.CarouselOffers),
		SwiperCarousel: b.carousel(app, session.CarouselSwiper),
		Featured:       cards(b.Catalog.Featured(), app.Favorites),
	}
	for i, o := range b.Catalog.Offers() {
		hv.Offers = append(hv.Offers, OfferSlide{
			Offer:  o,
			Active: i == hv.OffersCarousel.Index,
			Action: nav.CategoryAction(o.CategoryID),
		})
	}
	swiper := cards(b.Catalog.Swiper(), app.Favorites)
	start := min(hv.SwiperCarousel.Index, max(len(swiper)-swiperWindow, 0))
	hv.Swiper = swiper[start:min(start+swiperWindow, len(swiper))]
	for _, cat := range b.Catalog.Categories() {
		hv.Categories = append(hv.Categories, CategoryTile{
			ID:     cat.ID,
			Name:   cat.Name,
			Icon:   cat.Icon.String(),
			Color:  cat.Color,
			Image:  cat.Image,
			Count:  cat.ProductCount(),
			Action: nav.CategoryAction(cat.ID),
		})
	}
	return hv
}

// Category builds the category page for cat.
func (b *Builder) Category(app *session.App, cat catalog.Category) *CategoryView {
	return &CategoryView{
		ID:          cat.ID,
		Name:        cat.Name,
		Description: cat.Description,
		Icon:        cat.Icon.String(),
		Color:       cat.Color,
		Listing:     b.CategoryListing(app, cat),
	}
}

// CategoryListing runs the visitor's category search over cat.
func (b *Builder) CategoryListing(app *session.App, cat catalog.Category) ListingView {
	groups := search.GroupsForCategory(cat)
	lv := listing(groups, app.CategorySearch().Normalize(groups), app.Favorites)
	lv.Endpoint = CategoryListingPath
	lv.FilterParam = "sub"
	return lv
}

// GalleryListing runs the visitor's gallery search over the whole catalog.
func (b *Builder) GalleryListing(app *session.App) ListingView {
	groups := search.GroupsForCatalog(b.Catalog)
	lv := listing(groups, app.GallerySearch().Normalize(groups), app.Favorites)
	lv.Endpoint = GalleryListingPath
	lv.FilterParam = "category"
	for i := range lv.Groups {
		cv := b.carousel(app, session.GalleryCarousel(lv.Groups[i].ID))
		lv.Groups[i].Carousel = &cv
	}
	return lv
}

func listing(groups []search.Group, st search.State, favs FavoriteChecker) ListingView {
	res := search.Run(groups, st)
	lv := ListingView{
		Term:      st.Term,
		Filter:    st.Filter,
		View:      res.View,
		Searching: res.Searching,
		Count:     res.Count,
		Empty:     res.Empty(),
		Products:  cards(res.Products, favs),
	}
	lv.Filters = append(lv.Filters, FilterOption{ID: search.All, Label: "All", Active: st.Filter == search.All})
	for _, g := range groups {
		lv.Filters[0].Count += len(g.Products)
		lv.Filters = append(lv.Filters, FilterOption{
			ID:     g.ID,
			Label:  g.Name,
			Count:  len(g.Products),
			Active: st.Filter == g.ID,
		})
	}
	for _, g := range res.Groups {
		lv.Groups = append(lv.Groups, GroupView{
			ID:          g.ID,
			Name:        g.Name,
			Description: g.Description,
			Products:    cards(g.Products, favs),
		})
	}
	return lv
}

// Contact builds the contact panel. errs carries input errors from a
// rejected post.
func (b *Builder) Contact(app *session.App, errs contact.FieldErrors) ContactView {
	return ContactFromSnapshot(app.Contact().Snapshot(), errs)
}

// ContactFromSnapshot builds the contact panel from a form snapshot.
func ContactFromSnapshot(snap contact.Snapshot, errs contact.FieldErrors) ContactView {
	cv := ContactView{
		Status:       snap.Status,
		Values:       snap.Values,
		Errors:       errs,
		InquiryTypes: contact.InquiryTypes,
		Reference:    snap.Reference,
		Polling:      snap.Status != contact.StatusIdle,
	}
	if !snap.SubmittedAt.IsZero() {
		cv.SubmittedAt = format.FmtDate(snap.SubmittedAt)
	}
	return cv
}

// Product builds the spotlight product page, or nil when the catalog has no
// spotlight product.
func (b *Builder) Product(app *session.App) *ProductView {
	p, ok := b.Catalog.Spotlight()
	if !ok {
		return nil
	}
	pv := &ProductView{
		Card:             Card(p, app.Favorites),
		FeaturesCarousel: b.carousel(app, session.CarouselFeatures),
		Specifications:   p.Specifications,
	}
	for i, f := range p.Features {
		pv.Features = append(pv.Features, FeatureSlide{Text: f, Active: i == pv.FeaturesCarousel.Index})
	}
	pv.Media = media(p, b.carousel(app, session.CarouselImages).Index, app.VideoShown())
	return pv
}

func media(p catalog.Product, selected int, video bool) MediaView {
	images := p.Gallery()
	if selected < 0 || selected >= len(images) {
		selected = 0
	}
	mv := MediaView{Name: p.Name, VideoURL: p.VideoURL, Video: video && p.VideoURL != ""}
	for i, img := range images {
		mv.Thumbnails = append(mv.Thumbnails, Thumbnail{Index: i, URL: img, Selected: i == selected})
	}
	if len(images) > 0 {
		mv.Current = images[selected]
	}
	return mv
}

// GalleryGroup builds one gallery section with its carousel, unfiltered.
func (b *Builder) GalleryGroup(app *session.App, categoryID string) (GroupView, error) {
	cat, ok := b.Catalog.Category(categoryID)
	if !ok {
		return GroupView{}, fmt.Errorf("gallery %q: %w", categoryID, catalog.ErrNotFound)
	}
	cv, err := b.Carousel(app, session.GalleryCarousel(cat.ID))
	if err != nil {
		return GroupView{}, err
	}
	var products []catalog.Product
	for _, sub := range cat.SubCategories {
		products = append(products, sub.Products...)
	}
	return GroupView{
		ID:          cat.ID,
		Name:        cat.Name,
		Description: cat.Description,
		Products:    cards(products, app.Favorites),
		Carousel:    &cv,
	}, nil
}

// Carousel snapshots the visitor's carousel called name.
func (b *Builder) Carousel(app *session.App, name string) (CarouselView, error) {
	c, err := app.Carousels.Get(name)
	if err != nil {
		return CarouselView{}, err
	}
	return CarouselOf(c), nil
}

func (b *Builder) carousel(app *session.App, name string) CarouselView {
	cv, _ := b.Carousel(app, name)
	return cv
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
