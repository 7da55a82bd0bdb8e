package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareRecordsRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/authors/{slug}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, slug := range []string{"billy-collins", "mary-oliver"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/authors/"+slug, nil))
	}

	got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/api/authors/{slug}", http.MethodGet, "404"))
	if got != 2 {
		t.Errorf("requests = %v, want 2", got)
	}
}

func TestSlugCacheRefreshed(t *testing.T) {
	m := New()
	m.SlugCacheRefreshed(3)
	m.SlugCacheRefreshed(5)
	if got := testutil.ToFloat64(m.SlugCacheRefreshes); got != 2 {
		t.Errorf("refreshes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.SlugCacheSize); got != 5 {
		t.Errorf("size = %v, want 5", got)
	}
}

func TestIndexChanged(t *testing.T) {
	m := New()
	m.IndexChanged("created", "poems/20030115.json")
	m.IndexChanged("deleted", "poems/20030115.json")
	m.IndexChanged("created", "authors/mary-oliver.json")
	if got := testutil.ToFloat64(m.IndexEvents.WithLabelValues("created")); got != 2 {
		t.Errorf("created = %v, want 2", got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveSearch("authors", 3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{"almanac_search_results_bucket", "go_goroutines"} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}
