package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"twinelephant.com/fireworks-web/internal/carousel"
	mw "twinelephant.com/fireworks-web/internal/middleware"
	"twinelephant.com/fireworks-web/internal/navigation"
	"twinelephant.com/fireworks-web/internal/session"
)

// handleCarousel renders a carousel's current slide. Autoplay is driven by the
// server; the fragment polls at the carousel's interval.
func (s *server) handleCarousel(w http.ResponseWriter, r *http.Request) {
	s.renderCarousel(w, r, chi.URLParam(r, "name"))
}

// handleCarouselAction applies pause, resume, next or prev.
func (s *server) handleCarouselAction(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	c, err := appFrom(r).Carousels.Get(name)
	if err != nil {
		mw.WriteError(w, r, http.StatusNotFound, "carousel not running")
		return
	}
	if err := c.Apply(chi.URLParam(r, "action")); err != nil {
		if errors.Is(err, carousel.ErrUnknownAction) {
			mw.WriteError(w, r, http.StatusBadRequest, "unknown carousel action")
			return
		}
		s.fail(w, r, "carousel action", err)
		return
	}
	s.renderCarousel(w, r, name)
}

// handleCarouselGo jumps to a slide, as the product thumbnails do.
func (s *server) handleCarouselGo(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		mw.WriteError(w, r, http.StatusBadRequest, "invalid index")
		return
	}
	c, err := appFrom(r).Carousels.Get(name)
	if err != nil {
		mw.WriteError(w, r, http.StatusNotFound, "carousel not running")
		return
	}
	if err := c.Go(i); err != nil {
		if errors.Is(err, carousel.ErrOutOfRange) {
			mw.WriteError(w, r, http.StatusBadRequest, "index out of range")
			return
		}
		s.fail(w, r, "carousel go", err)
		return
	}
	s.renderCarousel(w, r, name)
}

// handleProductMedia switches the product page between images and video.
func (s *server) handleProductMedia(w http.ResponseWriter, r *http.Request) {
	app := appFrom(r)
	if app.Router.State().Page != navigation.PageProduct {
		mw.WriteError(w, r, http.StatusConflict, errNotOnPage.Error())
		return
	}
	switch chi.URLParam(r, "mode") {
	case "image":
		app.ShowVideo(false)
	case "video":
		app.ShowVideo(true)
	default:
		mw.WriteError(w, r, http.StatusNotFound, "unknown media mode")
		return
	}
	pv := s.views.Product(app)
	if pv == nil {
		mw.WriteError(w, r, http.StatusNotFound, "no product")
		return
	}
	s.render(w, r, "product_media", pv)
}

func (s *server) renderCarousel(w http.ResponseWriter, r *http.Request, name string) {
	app := appFrom(r)
	categoryID, gallery := session.GalleryCategory(name)
	var (
		tmpl string
		data any
		err  error
	)
	switch {
	case name == session.CarouselOffers || name == session.CarouselSwiper:
		if _, err = s.views.Carousel(app, name); err == nil {
			tmpl, data = name+"_carousel", s.views.Home(app)
		}
	case name == session.CarouselFeatures:
		if _, err = s.views.Carousel(app, name); err == nil {
			tmpl, data = "features_carousel", s.views.Product(app)
		}
	case name == session.CarouselImages:
		if _, err = s.views.Carousel(app, name); err == nil {
			tmpl, data = "product_media", s.views.Product(app)
		}
	case gallery:
		tmpl = "gallery_carousel"
		data, err = s.views.GalleryGroup(app, categoryID)
	default:
		err = carousel.ErrUnknown
	}
	if err != nil {
		mw.WriteError(w, r, http.StatusNotFound, "carousel not running")
		return
	}
	s.render(w, r, tmpl, data)
}
