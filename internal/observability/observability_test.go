package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return InitMetrics(reg), reg
}

func TestInitMetricsRegistersInstruments(t *testing.T) {
	t.Parallel()

	m, reg := newTestMetrics(t)
	m.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
	m.Navigation("action", "gallery")
	m.ContactStatus("submitting")
	m.FavoriteToggled(true)
	m.Sessions(3)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"fireworks_http_requests_total",
		"fireworks_http_request_duration_seconds",
		"fireworks_navigations_total",
		"fireworks_contact_transitions_total",
		"fireworks_favorite_toggles_total",
		"fireworks_sessions_live",
	} {
		require.Truef(t, names[want], "missing %s", want)
	}
	require.Equal(t, 3.0, testutil.ToFloat64(m.SessionsLive))
	require.Equal(t, 1.0, testutil.ToFloat64(m.FavoriteToggles.WithLabelValues("added")))
}

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	t.Parallel()

	m, _ := newTestMetrics(t)
	r := chi.NewRouter()
	r.Use(m.MetricsMiddleware)
	r.Get("/gallery/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/gallery/products/"+id, nil))
	}
	require.Equal(t, 3.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/gallery/products/{id}", "404")))
}

func TestMetricsHandlerServesRegistry(t *testing.T) {
	t.Parallel()

	m, _ := newTestMetrics(t)
	m.Navigation("hash", "about")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `fireworks_navigations_total{page="about",source="hash"} 1`)
}

func TestRequestLoggerMiddleware(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	r := chi.NewRouter()
	r.Use(InjectLoggerMiddleware(zap.New(core)))
	r.Use(RequestLoggerMiddleware)
	r.Post("/nav/page/{page}", func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Debug("inside")
		w.WriteHeader(http.StatusBadRequest)
	})

	req := httptest.NewRequest(http.MethodPost, "/nav/page/checkout", nil)
	req.Header.Set("HX-Request", "true")
	r.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	require.Equal(t, "inside", entries[0].Message)
	done := entries[1]
	require.Equal(t, "request completed", done.Message)
	require.Equal(t, zap.WarnLevel, done.Level)
	fields := done.ContextMap()
	require.Equal(t, "/nav/page/{page}", fields["route"])
	require.Equal(t, int64(http.StatusBadRequest), fields["status"])
	require.Equal(t, true, fields["htmx"])
	require.Equal(t, "POST", fields["method"])
}

func TestRecoveryMiddleware(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.ErrorLevel)
	h := RecoveryMiddleware(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestFromContextDefaultsToNoop(t *testing.T) {
	t.Parallel()

	require.NotNil(t, FromContext(context.Background()))
	logger := zap.NewExample()
	require.Same(t, logger, FromContext(WithLogger(context.Background(), logger)))
}

func TestNewLoggerLevels(t *testing.T) {
	t.Parallel()

	logger, err := NewLogger("debug")
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zap.DebugLevel))

	logger, err = NewLogger("nonsense")
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zap.DebugLevel))
	require.True(t, logger.Core().Enabled(zap.InfoLevel))
}
