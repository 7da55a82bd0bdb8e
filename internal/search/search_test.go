package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestScoreTiers(t *testing.T) {
	slugs := []string{"billy-collins"}
	cases := []struct {
		query string
		want  int
	}{
		{"Billy Collins", ScoreExact},
		{"billy-collins", ScoreExact},
		{"BILLY COLLINS", ScoreExact},
		{"Billy", ScorePrefix},
		{"b", ScorePrefix},
		{"Collins", ScoreWordBoundary},
		{"illy", ScoreSubstring},
		{"xyz", 0},
	}
	for _, c := range cases {
		got := SearchAuthors(c.query, slugs, 10)
		if c.want == 0 {
			if len(got) != 0 {
				t.Errorf("query %q: expected no match, got %+v", c.query, got)
			}
			continue
		}
		if len(got) != 1 || got[0].Score != c.want {
			t.Errorf("query %q: got %+v, want score %d", c.query, got, c.want)
		}
	}
}

func TestSearchAuthors_Candidate(t *testing.T) {
	got := SearchAuthors("coll", []string{"billy-collins"}, 10)
	want := []Candidate{{Type: TypeAuthor, Name: "Billy Collins", Slug: "billy-collins", Score: ScoreWordBoundary}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SearchAuthors mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchAuthors_StableOrder(t *testing.T) {
	slugs := []string{"ann-marie", "mary-oliver", "amy-lowell", "mary-karr", "marianne-moore", "jane-kenyon"}
	got := SearchAuthors("mar", slugs, 0)
	var names []string
	for _, c := range got {
		names = append(names, c.Slug)
	}
	// Prefix matches first in input order, then the word-boundary match.
	want := []string{"mary-oliver", "mary-karr", "marianne-moore", "ann-marie"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	got = SearchAuthors("o", []string{"amy-lowell", "jane-kenyon", "mary-oliver"}, 0)
	names = names[:0]
	for _, c := range got {
		names = append(names, c.Slug)
	}
	want = []string{"mary-oliver", "amy-lowell", "jane-kenyon"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("tie order mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchAuthors_Limit(t *testing.T) {
	slugs := []string{"ann-able", "anna-baker", "joanne-cole", "anne-dee", "hanna-eve"}
	got := SearchAuthors("ann", slugs, 2)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Slug != "ann-able" || got[1].Slug != "anna-baker" {
		t.Errorf("top two = %s, %s", got[0].Slug, got[1].Slug)
	}
	if all := SearchAuthors("ann", slugs, 0); len(all) != 5 {
		t.Errorf("unlimited = %d, want 5", len(all))
	}
}

func TestSearchAuthors_EmptyQueryMatchesByPrefix(t *testing.T) {
	got := SearchAuthors("", []string{"a-b", "c-d"}, 10)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for _, c := range got {
		if c.Score != ScorePrefix {
			t.Errorf("%s score = %d, want %d", c.Slug, c.Score, ScorePrefix)
		}
	}
}

func TestSearchNames(t *testing.T) {
	got := SearchNames("lan", []string{"Philip Larkin"}, []string{"The Lanyard", "Landscape"}, 10)
	want := []Candidate{
		{Type: TypePoem, Name: "Landscape", Slug: "landscape", Score: ScorePrefix},
		{Type: TypePoem, Name: "The Lanyard", Slug: "the-lanyard", Score: ScoreWordBoundary},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SearchNames mismatch (-want +got):\n%s", diff)
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestSlugCache_TTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)}
	calls := 0
	cache := NewSlugCache(func(context.Context) ([]string, error) {
		calls++
		return []string{"billy-collins"}, nil
	}, time.Minute, WithClock(clock.Now))

	ctx := context.Background()
	if _, err := cache.Get(ctx); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := cache.Get(ctx); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if calls != 1 {
		t.Errorf("loader calls = %d, want 1", calls)
	}
	if want := clock.Now().Add(time.Minute); !cache.ExpiresAt().Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", cache.ExpiresAt(), want)
	}

	clock.Advance(2 * time.Minute)
	if _, err := cache.Get(ctx); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if calls != 2 {
		t.Errorf("loader calls after expiry = %d, want 2", calls)
	}
}

func TestSlugCache_InvalidateAndRefresh(t *testing.T) {
	calls := 0
	var refreshed int
	cache := NewSlugCache(func(context.Context) ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	}, time.Hour, WithRefreshHook(func(n int) { refreshed = n }))

	ctx := context.Background()
	_, _ = cache.Get(ctx)
	cache.Invalidate()
	if !cache.ExpiresAt().IsZero() {
		t.Error("Invalidate should clear expiry")
	}
	_, _ = cache.Get(ctx)
	if _, err := cache.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if calls != 3 {
		t.Errorf("loader calls = %d, want 3", calls)
	}
	if refreshed != 2 {
		t.Errorf("refresh hook count = %d, want 2", refreshed)
	}
}

func TestSlugCache_LoaderErrorKeepsPrevious(t *testing.T) {
	fail := false
	cache := NewSlugCache(func(context.Context) ([]string, error) {
		if fail {
			return nil, errors.New("store down")
		}
		return []string{"a"}, nil
	}, time.Hour)

	ctx := context.Background()
	if _, err := cache.Get(ctx); err != nil {
		t.Fatal(err)
	}
	fail = true
	if _, err := cache.Refresh(ctx); err == nil {
		t.Fatal("expected loader error")
	}
	got, err := cache.Get(ctx)
	if err != nil {
		t.Fatalf("Get after failed refresh: %v", err)
	}
	if diff := cmp.Diff([]string{"a"}, got); diff != "" {
		t.Errorf("slugs mismatch (-want +got):\n%s", diff)
	}
}

func TestSlugCache_ExpiredLoaderErrorServesStale(t *testing.T) {
	clock := &fakeClock{now: time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)}
	fail := false
	var reported []error
	cache := NewSlugCache(func(context.Context) ([]string, error) {
		if fail {
			return nil, errors.New("store down")
		}
		return []string{"billy-collins", "mary-oliver"}, nil
	}, time.Minute, WithClock(clock.Now), WithLoadErrorHook(func(err error) {
		reported = append(reported, err)
	}))

	ctx := context.Background()
	if _, err := cache.Get(ctx); err != nil {
		t.Fatal(err)
	}
	fail = true
	clock.Advance(2 * time.Minute)

	got, err := cache.Get(ctx)
	if err != nil {
		t.Fatalf("Get after expiry with failing loader: %v", err)
	}
	if diff := cmp.Diff([]string{"billy-collins", "mary-oliver"}, got); diff != "" {
		t.Errorf("slugs mismatch (-want +got):\n%s", diff)
	}
	if len(reported) != 1 {
		t.Errorf("load error hook calls = %d, want 1", len(reported))
	}

	cache.Invalidate()
	if _, err := cache.Get(ctx); err != nil {
		t.Errorf("Get after Invalidate with failing loader: %v", err)
	}
}

func TestSlugCache_FirstLoadErrorFails(t *testing.T) {
	cache := NewSlugCache(func(context.Context) ([]string, error) {
		return nil, errors.New("store down")
	}, time.Minute)
	if _, err := cache.Get(context.Background()); err == nil {
		t.Fatal("expected error when nothing has ever loaded")
	}
}
