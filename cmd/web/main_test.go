package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"twinelephant.com/fireworks-web/internal/carousel"
	"twinelephant.com/fireworks-web/internal/catalog"
	"twinelephant.com/fireworks-web/internal/config"
	"twinelephant.com/fireworks-web/internal/contact"
	mw "twinelephant.com/fireworks-web/internal/middleware"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type idleTicker struct{}

func (idleTicker) C() <-chan time.Time { return nil }
func (idleTicker) Stop()               {}

type queuedTimer struct{}

func (queuedTimer) Stop() bool { return true }

// timerQueue collects contact timers so tests decide when they fire.
type timerQueue struct {
	mu  sync.Mutex
	fns []func()
}

func (q *timerQueue) AfterFunc(_ time.Duration, f func()) contact.Timer {
	q.mu.Lock()
	q.fns = append(q.fns, f)
	q.mu.Unlock()
	return queuedTimer{}
}

func (q *timerQueue) Fire(t *testing.T, i int) {
	t.Helper()
	q.mu.Lock()
	require.Greater(t, len(q.fns), i, "timer %d not scheduled", i)
	f := q.fns[i]
	q.mu.Unlock()
	f()
}

type testEnv struct {
	handler http.Handler
	clock   *testClock
	timers  *timerQueue
}

// newTestEnv builds the router the way main does, with fake time.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg, err := config.Load(
		config.WithEnvFile(""),
		config.WithoutSystemEnv(),
		config.WithEnvMap(map[string]string{
			"FIREWORKS_WEB_TEMPLATES": "../../templates",
			"FIREWORKS_WEB_PUBLIC":    "../../public",
			"FIREWORKS_WEB_SITE_URL":  "https://twinelephant.test",
		}),
	)
	require.NoError(t, err)
	cat, err := catalog.Default()
	require.NoError(t, err)

	env := &testEnv{
		clock:  &testClock{now: time.Date(2025, 10, 20, 18, 0, 0, 0, time.UTC)},
		timers: &timerQueue{},
	}
	srv, err := newServer(cfg, deps{
		Catalog:   cat,
		Now:       env.clock.Now,
		NewTicker: func(time.Duration) carousel.Ticker { return idleTicker{} },
		AfterFunc: env.timers.AfterFunc,
	})
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	env.handler = srv.routes()
	return env
}

// visitor is one browser: it keeps cookies and echoes the CSRF token.
type visitor struct {
	t       *testing.T
	env     *testEnv
	cookies map[string]*http.Cookie
}

func (e *testEnv) newVisitor(t *testing.T) *visitor {
	v := &visitor{t: t, env: e, cookies: map[string]*http.Cookie{}}
	rec := v.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	return v
}

func (v *visitor) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	v.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("HX-Request", "true")
	if method != http.MethodGet {
		if c, ok := v.cookies["csrf_token"]; ok {
			req.Header.Set(mw.CSRFHeader, c.Value)
		}
	}
	return v.send(req)
}

// load is a full document request of /, as a browser reload makes it.
func (v *visitor) load() *goquery.Document {
	v.t.Helper()
	rec := v.send(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(v.t, http.StatusOK, rec.Code, rec.Body.String())
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(v.t, err)
	return doc
}

func (v *visitor) send(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range v.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	v.env.handler.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		v.cookies[c.Name] = c
	}
	return rec
}

func (v *visitor) doc(method, target string, form url.Values) *goquery.Document {
	v.t.Helper()
	rec := v.do(method, target, form)
	require.Equal(v.t, http.StatusOK, rec.Code, rec.Body.String())
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(v.t, err)
	return doc
}

func viewOf(doc *goquery.Document) string {
	return doc.Find(".shell").AttrOr("data-view", "")
}

func TestHealthzOK(t *testing.T) {
	env := newTestEnv(t)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", strings.TrimSpace(rec.Body.String()))
}

func TestHomePageRenders(t *testing.T) {
	env := newTestEnv(t)
	v := &visitor{t: t, env: env, cookies: map[string]*http.Cookie{}}
	doc := v.doc(http.MethodGet, "/", nil)

	require.Equal(t, "home", viewOf(doc))
	require.Equal(t, "#home", doc.Find(".shell").AttrOr("data-hash", ""))
	require.Equal(t, 1, doc.Find("footer.site-footer").Length())
	require.Equal(t, "Home", strings.TrimSpace(doc.Find(".menu-item.active").Text()))
	require.Equal(t, 5, doc.Find("#carousel-offers .slide").Length())
	require.Equal(t, 1, doc.Find("#carousel-offers .slide.active").Length())
	require.Equal(t, 3, doc.Find("#carousel-swiper .product-card").Length())
	require.Equal(t, 6, doc.Find(".featured .product-card").Length())
	require.Equal(t, 2, doc.Find(`script[type="application/ld+json"]`).Length())
	require.Contains(t, doc.Find("title").Text(), "Twin Elephant Fireworks")

	require.Contains(t, v.cookies, "csrf_token")
	require.Contains(t, v.cookies, "FIREWORKS_WEB_SESSION")
}

func TestProductDetailShowsFloorStars(t *testing.T) {
	env := newTestEnv(t)
	v := env.newVisitor(t)

	doc := v.doc(http.MethodGet, "/gallery/products/1", nil)
	require.Equal(t, 5, doc.Find(".modal .stars .star").Length())
	require.Equal(t, 4, doc.Find(".modal .stars .star.filled").Length())

	rec := v.do(http.MethodGet, "/gallery/products/999", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSelectCategory(t *testing.T) {
	env := newTestEnv(t)
	v := env.newVisitor(t)

	rec := v.do(http.MethodPost, "/nav/category/sparklers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "/#category/sparklers", rec.Header().Get("HX-Push-Url"))
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	require.Equal(t, "category", viewOf(doc))
	require.Equal(t, 0, doc.Find("footer.site-footer").Length())
	require.Equal(t, "Sparklers", strings.TrimSpace(doc.Find(".category.active").Text()))
	require.Equal(t, 14, doc.Find("#listing .product-card").Length())
	require.Equal(t, "14", doc.Find("#listing .count").AttrOr("data-count", ""))

	// Selecting it again keeps the state and replaces the history entry.
	rec = v.do(http.MethodPost, "/nav/category/sparklers", nil)
	require.Empty(t, rec.Header().Get("HX-Push-Url"))
	require.Equal(t, "/#category/sparklers", rec.Header().Get("HX-Replace-Url"))
}

func TestUnknownCategoryAndGoBack(t *testing.T) {
	env := newTestEnv(t)
	v := env.newVisitor(t)

	doc := v.doc(http.MethodPost, "/nav/category/nope", nil)
	require.Equal(t, "category-not-found", viewOf(doc))
	back := doc.Find("button.go-back")
	require.Equal(t, "Go Back", strings.TrimSpace(back.Text()))
	require.Equal(t, "/nav/home", back.AttrOr("hx-post", ""))

	doc = v.doc(http.MethodPost, "/nav/home", nil)
	require.Equal(t, "home", viewOf(doc))
	require.Equal(t, 0, doc.Find(".category.active").Length())
}

func TestCategorySearchAndFilter(t *testing.T) {
	env := newTestEnv(t)
	v := env.newVisitor(t)
	v.doc(http.MethodPost, "/nav/category/sparklers", nil)

	doc := v.doc(http.MethodGet, "/category/products?q=zzz", nil)
	require.Equal(t, "0", doc.Find(".count").AttrOr("data-count", ""))
	require.Contains(t, doc.Find(".count").Text(), "0 results")
	require.Equal(t, 1, doc.Find(".empty").Length())

	doc = v.doc(http.MethodGet, "/category/products?q=&sub=15-inch&view=list", nil)
	require.Equal(t, 3, doc.Find(".product-card").Length())
	require.Equal(t, 1, doc.Find("#listing.list").Length())

	// Re-entering the page starts from the default filter.
	v.doc(http.MethodPost, "/nav/home", nil)
	v.doc(http.MethodPost, "/nav/category/sparklers", nil)
	doc = v.doc(http.MethodGet, "/category/products", nil)
	require.Equal(t, 14, doc.Find(".product-card").Length())
}

func TestListingOutsideItsPageConflicts(t *testing.T) {
	env := newTestEnv(t)
	v := env.newVisitor(t)

	require.Equal(t, http.StatusConflict, v.do(http.MethodGet, "/category/products?q=a", nil).Code)
	require.Equal(t, http.StatusConflict, v.do(http.MethodGet, "/gallery/products?q=a", nil).Code)
}

func TestGalleryListing(t *testing.T) {
	env := newTestEnv(t)
	v := env.newVisitor(t)

	doc := v.doc(http.MethodPost, "/nav/page/gallery", nil)
	require.Equal(t, "gallery", viewOf(doc))
	require.Equal(t, 26, doc.Find("#listing .product-card").Length())
	require.Equal(t, 6, doc.Find("#listing .carousel.gallery").Length())

	doc = v.doc(http.MethodGet, "/gallery/products?category=rockets", nil)
	require.Equal(t, 2, doc.Find(".product-card").Length())

	doc = v.doc(http.MethodGet, "/gallery/products?category=all&q=SKY", nil)
	require.Equal(t, 1, doc.Find(".product-card").Length())
	require.Equal(t, "22", doc.Find(".product-card").AttrOr("data-product", ""))
}

func TestHashNavigation(t *testing.T) {
	env := newTestEnv(t)
	v := env.newVisitor(t)
	v.doc(http.MethodPost, "/nav/category/sparklers", nil)
	env.clock.Advance(200 * time.Millisecond)

	doc := v.doc(http.MethodPost, "/nav/hash", url.Values{"hash": {"#about"}})
	require.Equal(t, "about", viewOf(doc))
	require.Equal(t, 0, doc.Find(".page.category").Length())
	require.Equal(t, 0, doc.Find("footer.site-footer").Length())
	require.Equal(t, 6, doc.Find(".timeline li").Length())

	// The echo of the hash just applied is ignored.
	rec := v.do(http.MethodPost, "/nav/hash", url.Values{"hash": {"#about"}})
	require.Equal(t, http.StatusNoContent, rec.Code)

	doc = v.doc(http.MethodPost, "/nav/hash", url.Values{"hash": {"#products"}})
	require.Equal(t, "product-page", viewOf(doc))

	doc = v.doc(http.MethodPost, "/nav/hash", url.Values{"hash": {"#whatever"}})
	require.Equal(t, "home", viewOf(doc))
}

func TestActionWinsOverHashWithinTick(t *testing.T) {
	env := newTestEnv(t)
	v := env.newVisitor(t)

	v.doc(http.MethodPost, "/nav/page/gallery", nil)
	rec := v.do(http.MethodPost, "/nav/hash", url.Values{"hash": {"#contact"}})
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "gallery", viewOf(v.doc(http.MethodGet, "/view", nil)))
}

func TestNavValidation(t *testing.T) {
	env := newTestEnv(t)
	v := env.newVisitor(t)

	require.Equal(t, http.StatusNotFound, v.do(http.MethodPost, "/nav/page/cart", nil).Code)
	require.Equal(t, http.StatusBadRequest, v.do(http.MethodPost, "/nav/hash", url.Values{}).Code)
}

func TestFavoritesToggle(t *testing.T) {
	env := newTestEnv(t)
	v := env.newVisitor(t)

	rec := v.do(http.MethodPost, "/favorites/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("HX-Trigger"), `"count":1`)
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	require.Equal(t, "true", doc.Find("#fav-1").AttrOr("aria-pressed", ""))

	doc = v.doc(http.MethodPost, "/favorites/1", nil)
	require.Equal(t, "false", doc.Find("#fav-1").AttrOr("aria-pressed", ""))

	require.Equal(t, http.StatusNotFound, v.do(http.MethodPost, "/favorites/999", nil).Code)
}

func TestReloadStartsOver(t *testing.T) {
	env := newTestEnv(t)
	v := env.newVisitor(t)
	sessionCookie := v.cookies["FIREWORKS_WEB_SESSION"].Value

	doc := v.doc(http.MethodPost, "/nav/page/gallery", nil)
	require.Equal(t, "gallery", viewOf(doc))
	rec := v.do(http.MethodPost, "/favorites/1", nil)
	require.Contains(t, rec.Header().Get("HX-Trigger"), `"count":1`)

	doc = v.doc(http.MethodGet, "/view", nil)
	require.Equal(t, "gallery", viewOf(doc))
	require.Equal(t, "1", doc.Find(".favorites-count").AttrOr("data-count", ""))

	doc = v.load()
	require.Equal(t, "home", viewOf(doc))
	require.Equal(t, "#home", doc.Find(".shell").AttrOr("data-hash", ""))
	require.Equal(t, "0", doc.Find(".favorites-count").AttrOr("data-count", ""))
	require.NotEqual(t, sessionCookie, v.cookies["FIREWORKS_WEB_SESSION"].Value)

	doc = v.doc(http.MethodGet, "/gallery/products/1", nil)
	require.Equal(t, "false", doc.Find("#fav-1").AttrOr("aria-pressed", ""))
}

func TestContactLifecycle(t *testing.T) {
	env := newTestEnv(t)
	v := env.newVisitor(t)

	doc := v.doc(http.MethodPost, "/nav/page/contact", nil)
	require.Equal(t, "contact", viewOf(doc))
	require.Equal(t, 1, doc.Find("footer.site-footer").Length())
	require.Equal(t, "idle", doc.Find("#contact-panel").AttrOr("data-status", ""))
	require.Equal(t, 10, doc.Find(`select[name="inquiryType"] option`).Length())

	doc = v.doc(http.MethodPost, "/contact", url.Values{"name": {"Asha"}, "email": {"asha"}})
	require.Equal(t, "idle", doc.Find("#contact-panel").AttrOr("data-status", ""))
	require.Equal(t, 5, doc.Find(".field-error").Length())
	require.Equal(t, "Asha", doc.Find(`input[name="name"]`).AttrOr("value", ""))

	doc = v.doc(http.MethodPost, "/contact", url.Values{
		"name":        {"Asha"},
		"email":       {"asha@example.in"},
		"phone":       {"+91 98765 43210"},
		"inquiryType": {"wedding"},
		"eventDate":   {"2025-11-20"},
		"subject":     {"Wedding fireworks"},
		"message":     {"Need a display for 300 guests."},
	})
	require.Equal(t, "submitting", doc.Find("#contact-panel").AttrOr("data-status", ""))
	require.Equal(t, "/contact/status", doc.Find("#contact-panel").AttrOr("hx-get", ""))
	_, disabled := doc.Find(`button[type="submit"]`).Attr("disabled")
	require.True(t, disabled)

	env.timers.Fire(t, 0)
	doc = v.doc(http.MethodGet, "/contact/status", nil)
	require.Equal(t, "submitted", doc.Find("#contact-panel").AttrOr("data-status", ""))
	require.NotEmpty(t, strings.TrimSpace(doc.Find(".reference code").Text()))

	env.timers.Fire(t, 1)
	doc = v.doc(http.MethodGet, "/contact/status", nil)
	require.Equal(t, "idle", doc.Find("#contact-panel").AttrOr("data-status", ""))
	require.Equal(t, "", doc.Find(`input[name="name"]`).AttrOr("value", "missing"))
	_, polling := doc.Find("#contact-panel").Attr("hx-get")
	require.False(t, polling)
}

func TestLeavingContactCancelsSubmission(t *testing.T) {
	env := newTestEnv(t)
	v := env.newVisitor(t)

	v.doc(http.MethodPost, "/nav/page/contact", nil)
	v.doc(http.MethodPost, "/contact", url.Values{
		"name": {"A"}, "email": {"a@b"}, "phone": {"1"}, "inquiryType": {"bulk"}, "subject": {"s"}, "message": {"m"},
	})
	v.doc(http.MethodPost, "/nav/home", nil)
	env.timers.Fire(t, 0)

	doc := v.doc(http.MethodPost, "/nav/page/contact", nil)
	require.Equal(t, "idle", doc.Find("#contact-panel").AttrOr("data-status", ""))

	require.Equal(t, http.StatusOK, v.do(http.MethodPost, "/nav/home", nil).Code)
	require.Equal(t, http.StatusConflict, v.do(http.MethodPost, "/contact", url.Values{"name": {"A"}}).Code)
}

func TestCSRFRequired(t *testing.T) {
	env := newTestEnv(t)
	v := env.newVisitor(t)

	req := httptest.NewRequest(http.MethodPost, "/nav/home", nil)
	for _, c := range v.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCarouselActions(t *testing.T) {
	env := newTestEnv(t)
	v := env.newVisitor(t)

	doc := v.doc(http.MethodPost, "/carousel/offers/next", nil)
	require.Equal(t, "1", doc.Find("#carousel-offers").AttrOr("data-index", ""))
	require.Equal(t, "/carousel/offers", doc.Find("#carousel-offers").AttrOr("hx-get", ""))

	doc = v.doc(http.MethodPost, "/carousel/offers/pause", nil)
	require.Equal(t, "true", doc.Find("#carousel-offers").AttrOr("data-paused", ""))
	_, polling := doc.Find("#carousel-offers").Attr("hx-get")
	require.False(t, polling)

	doc = v.doc(http.MethodPost, "/carousel/offers/prev", nil)
	require.Equal(t, "0", doc.Find("#carousel-offers").AttrOr("data-index", ""))

	doc = v.doc(http.MethodGet, "/carousel/swiper", nil)
	require.Equal(t, 3, doc.Find(".product-card").Length())

	require.Equal(t, http.StatusBadRequest, v.do(http.MethodPost, "/carousel/offers/spin", nil).Code)
	require.Equal(t, http.StatusNotFound, v.do(http.MethodGet, "/carousel/features", nil).Code)
	require.Equal(t, http.StatusNotFound, v.do(http.MethodGet, "/carousel/nope", nil).Code)

	v.doc(http.MethodPost, "/nav/page/gallery", nil)
	require.Equal(t, http.StatusNotFound, v.do(http.MethodGet, "/carousel/offers", nil).Code)
	doc = v.doc(http.MethodPost, "/carousel/gallery-rockets/next", nil)
	require.Equal(t, "1", doc.Find("#carousel-gallery-rockets").AttrOr("data-index", ""))
	require.Contains(t, doc.Find(".caption").Text(), "Thunder Rocket")
}

func TestProductPage(t *testing.T) {
	env := newTestEnv(t)
	v := env.newVisitor(t)

	doc := v.doc(http.MethodPost, "/nav/page/product-page", nil)
	require.Equal(t, "product-page", viewOf(doc))
	require.Equal(t, "Twin Elephant Sky Rockets", strings.TrimSpace(doc.Find(".page.product h1").Text()))
	require.Equal(t, 1, doc.Find("#carousel-features .feature.active").Length())

	doc = v.doc(http.MethodPost, "/carousel/features/next", nil)
	require.Equal(t, "1", doc.Find("#carousel-features").AttrOr("data-index", ""))

	doc = v.doc(http.MethodGet, "/view", nil)
	require.Equal(t, 3, doc.Find("#product-media .thumb").Length())
	require.True(t, doc.Find("#product-media .thumb").First().HasClass("selected"))

	doc = v.doc(http.MethodPost, "/carousel/images/go/2", nil)
	thumbs := doc.Find("#product-media .thumb")
	require.True(t, thumbs.Eq(2).HasClass("selected"))
	require.Equal(t, thumbs.Eq(2).Find("img").AttrOr("src", ""), doc.Find("#product-media img.main").AttrOr("src", ""))
	require.Equal(t, http.StatusBadRequest, v.do(http.MethodPost, "/carousel/images/go/3", nil).Code)

	doc = v.doc(http.MethodPost, "/product/media/video", nil)
	require.Equal(t, "true", doc.Find("#product-media").AttrOr("data-video", ""))
	require.Equal(t, 1, doc.Find("#product-media video").Length())
	require.Equal(t, 0, doc.Find("#product-media .thumb").Length())

	doc = v.doc(http.MethodPost, "/product/media/image", nil)
	require.Equal(t, 1, doc.Find("#product-media img.main").Length())
	require.True(t, doc.Find("#product-media .thumb").Eq(2).HasClass("selected"))

	v.doc(http.MethodPost, "/nav/home", nil)
	require.Equal(t, http.StatusConflict, v.do(http.MethodPost, "/product/media/video", nil).Code)
	require.Equal(t, http.StatusNotFound, v.do(http.MethodPost, "/carousel/images/go/0", nil).Code)
}

func TestSessionsAreIndependent(t *testing.T) {
	env := newTestEnv(t)
	a := env.newVisitor(t)
	b := env.newVisitor(t)

	a.doc(http.MethodPost, "/nav/page/about", nil)
	require.Equal(t, "about", viewOf(a.doc(http.MethodGet, "/view", nil)))
	require.Equal(t, "home", viewOf(b.doc(http.MethodGet, "/view", nil)))
}

func TestMetricsAndAssets(t *testing.T) {
	env := newTestEnv(t)
	v := env.newVisitor(t)
	v.doc(http.MethodPost, "/nav/page/gallery", nil)

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "fireworks_http_requests_total")
	require.Contains(t, body, `fireworks_navigations_total{page="gallery",source="action"} 1`)
	require.Contains(t, body, "fireworks_sessions_live 1")

	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/app.js", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("ETag"))
}
