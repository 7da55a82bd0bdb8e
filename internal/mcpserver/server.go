// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the almanac archive for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/almanac/internal/archive"
	"github.com/starford/almanac/internal/navigation"
)

const dateRangeURI = "almanac://date-range"

// Server wraps the MCP server with archive tools.
type Server struct {
	mcp *server.MCPServer
	svc *archive.Service
}

// New creates a new MCP server with all archive tools registered.
func New(svc *archive.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Almanac",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("poem_for_date",
		mcp.WithDescription("Get the poem broadcast on a day. Days outside 1993-01-01..2017-11-29 are clamped to the nearest bound."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Day as YYYYMMDD")),
	), s.poemForDate)

	s.mcp.AddTool(mcp.NewTool("poem_today",
		mcp.WithDescription("Get the poem for today's date, clamped to the archive range."),
	), s.poemToday)

	s.mcp.AddTool(mcp.NewTool("get_author",
		mcp.WithDescription("Get an author's biography and dated bibliography."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Author slug (e.g. billy-collins) or full name")),
	), s.getAuthor)

	s.mcp.AddTool(mcp.NewTool("authors_by_letter",
		mcp.WithDescription("List the authors filed under one uppercase letter."),
		mcp.WithString("letter", mcp.Required(), mcp.Description("A single letter A-Z")),
	), s.authorsByLetter)

	s.mcp.AddTool(mcp.NewTool("search_authors",
		mcp.WithDescription("Autocomplete author names; scope=all also ranks poem titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum results (default 10, max 50)")),
		mcp.WithString("scope", mcp.Description("authors (default) or all"), mcp.Enum(archive.ScopeAuthors, archive.ScopeAll)),
	), s.searchAuthors)

	s.mcp.AddTool(mcp.NewTool("search_poems",
		mcp.WithDescription("Full-text search through poem titles, authors and text."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum results (default 10, max 50)")),
	), s.searchPoems)

	s.mcp.AddTool(mcp.NewTool("step_date",
		mcp.WithDescription("Step one day forward or backward. Stops at the archive bounds instead of wrapping."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Current day as YYYYMMDD")),
		mcp.WithString("direction", mcp.Required(), mcp.Enum("forward", "backward")),
	), s.stepDate)

	s.mcp.AddTool(mcp.NewTool("step_name",
		mcp.WithDescription("Step to the neighbouring author name, or poem title, in sorted order. Wraps around at either end."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Current author name or poem title")),
		mcp.WithString("direction", mcp.Required(), mcp.Enum("forward", "backward")),
	), s.stepName)

	s.mcp.AddResource(
		mcp.NewResource(dateRangeURI, "Archive Date Range",
			mcp.WithResourceDescription("First and last broadcast days, and today's clamped day."),
			mcp.WithMIMEType("application/json"),
		),
		s.readDateRange,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) poemForDate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.svc.Poem(ctx, archive.PoemRequest{Date: date}))
}

func (s *Server) poemToday(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Today(ctx))
}

func (s *Server) getAuthor(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.svc.Author(ctx, name))
}

func (s *Server) authorsByLetter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	letter, err := req.RequireString("letter")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.svc.AuthorsByLetter(ctx, archive.LetterRequest{Letter: letter}))
}

func (s *Server) searchAuthors(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.svc.Search(ctx, archive.SearchRequest{
		Query: query,
		Limit: req.GetInt("limit", 0),
		Scope: req.GetString("scope", archive.ScopeAuthors),
	}))
}

func (s *Server) searchPoems(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.svc.SearchPoems(ctx, archive.SearchRequest{Query: query, Limit: req.GetInt("limit", 0)}))
}

func (s *Server) stepDate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dir, err := req.RequireString("direction")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.svc.Navigate(ctx, archive.NavigateRequest{Mode: "date", Current: date, Direction: dir}))
}

func (s *Server) stepName(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dir, err := req.RequireString("direction")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.svc.Navigate(ctx, archive.NavigateRequest{Mode: "name", Current: name, Direction: dir}))
}

type dateRange struct {
	First navigation.DateKey `json:"first"`
	Last  navigation.DateKey `json:"last"`
	Today navigation.DateKey `json:"today"`
}

func (s *Server) readDateRange(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	out, err := json.Marshal(dateRange{
		First: navigation.MinDateKey,
		Last:  navigation.MaxDateKey,
		Today: s.svc.TodayKey(),
	})
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      dateRangeURI,
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}
