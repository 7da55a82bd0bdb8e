package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/almanac/internal/archive"
	"github.com/starford/almanac/internal/index"
	"github.com/starford/almanac/internal/search"
	"github.com/starford/almanac/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	_, store := testutil.TestStore(t)
	testutil.SeedArchive(t, store)
	db := testutil.TestDB(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	if err := index.Sync(context.Background(), db, store, logger); err != nil {
		t.Fatal(err)
	}
	svc := archive.NewService(store, db, search.NewSlugCache(db.AuthorSlugs, time.Minute),
		archive.WithClock(func() time.Time { return time.Date(2030, time.June, 1, 0, 0, 0, 0, time.UTC) }),
		archive.WithLogger(logger),
	)
	return New(svc, "test")
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"poem_for_date":     srv.poemForDate,
		"poem_today":        srv.poemToday,
		"get_author":        srv.getAuthor,
		"authors_by_letter": srv.authorsByLetter,
		"search_authors":    srv.searchAuthors,
		"search_poems":      srv.searchPoems,
		"step_date":         srv.stepDate,
		"step_name":         srv.stepName,
	}
	h, ok := handlers[name]
	if !ok {
		t.Fatalf("unknown tool: %s", name)
	}
	result, err := h(ctx, req)
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func resultJSON[T any](t *testing.T, r *mcp.CallToolResult) T {
	t.Helper()
	if r.IsError {
		t.Fatalf("tool error: %s", resultText(r))
	}
	var v T
	if err := json.Unmarshal([]byte(resultText(r)), &v); err != nil {
		t.Fatalf("decode %q: %v", resultText(r), err)
	}
	return v
}

func TestPoemForDate(t *testing.T) {
	srv := testServer(t)
	view := resultJSON[archive.PoemView](t, callTool(t, srv, "poem_for_date", map[string]any{"date": "20030115"}))
	if view.Poem.Title != "The Lanyard" {
		t.Errorf("poem = %+v", view.Poem)
	}

	r := callTool(t, srv, "poem_for_date", map[string]any{"date": "20030117"})
	if !r.IsError {
		t.Error("expected error for a day without a poem")
	}
	r = callTool(t, srv, "poem_for_date", map[string]any{})
	if !r.IsError {
		t.Error("expected error for missing date")
	}
}

func TestPoemTodayClamps(t *testing.T) {
	srv := testServer(t)
	view := resultJSON[archive.PoemView](t, callTool(t, srv, "poem_today", nil))
	if view.Date != "20171129" {
		t.Errorf("date = %s, want 20171129", view.Date)
	}
}

func TestGetAuthor(t *testing.T) {
	srv := testServer(t)
	detail := resultJSON[archive.AuthorDetail](t, callTool(t, srv, "get_author", map[string]any{"slug": "jane-kenyon"}))
	if detail.Name != "Jane Kenyon" || len(detail.Poems) != 1 || detail.Poems[0].DateKey != "20030116" {
		t.Errorf("detail = %+v", detail)
	}
	if r := callTool(t, srv, "get_author", map[string]any{"slug": "nobody"}); !r.IsError {
		t.Error("expected error for missing author")
	}
}

func TestAuthorsByLetter(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "authors_by_letter", map[string]any{"letter": "M"})
	if !strings.Contains(resultText(r), "Mary Oliver") {
		t.Errorf("result = %q", resultText(r))
	}
	if r := callTool(t, srv, "authors_by_letter", map[string]any{"letter": "m"}); !r.IsError {
		t.Error("expected error for lowercase letter")
	}
}

func TestSearchAuthors(t *testing.T) {
	srv := testServer(t)
	res := resultJSON[archive.SearchResult](t, callTool(t, srv, "search_authors", map[string]any{"query": "mary", "limit": 5}))
	if res.Count != 1 || res.Results[0].Slug != "mary-oliver" {
		t.Errorf("result = %+v", res)
	}

	all := resultJSON[archive.SearchResult](t, callTool(t, srv, "search_authors", map[string]any{"query": "other", "scope": "all"}))
	if all.Count != 1 || all.Results[0].Name != "Otherwise" {
		t.Errorf("scope=all = %+v", all)
	}
}

func TestSearchPoems(t *testing.T) {
	srv := testServer(t)
	hits := resultJSON[[]index.PoemHit](t, callTool(t, srv, "search_poems", map[string]any{"query": "geese"}))
	if len(hits) != 1 || hits[0].Date != "19930101" {
		t.Errorf("hits = %+v", hits)
	}
}

func TestStepDate(t *testing.T) {
	srv := testServer(t)
	res := resultJSON[archive.NavigateResult](t, callTool(t, srv, "step_date", map[string]any{"date": "19930101", "direction": "backward"}))
	if res.Next != "19930101" {
		t.Errorf("next = %s, want saturation at 19930101", res.Next)
	}
	if r := callTool(t, srv, "step_date", map[string]any{"date": "19930101", "direction": "sideways"}); !r.IsError {
		t.Error("expected error for bad direction")
	}
}

func TestStepName(t *testing.T) {
	srv := testServer(t)
	res := resultJSON[archive.NavigateResult](t, callTool(t, srv, "step_name", map[string]any{"name": "Wild Geese", "direction": "forward"}))
	if res.Next != "Litany" || res.Date != "20171129" {
		t.Errorf("res = %+v", res)
	}
}

func TestDateRangeResource(t *testing.T) {
	srv := testServer(t)
	contents, err := srv.readDateRange(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("contents = %T", contents[0])
	}
	want := `{"first":"19930101","last":"20171129","today":"20171129"}`
	if tc.Text != want {
		t.Errorf("text = %s, want %s", tc.Text, want)
	}
}
