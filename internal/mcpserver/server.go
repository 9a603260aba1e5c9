// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes histmap tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/histmap/internal/apperr"
	"github.com/starford/histmap/internal/journeyservice"
	"github.com/starford/histmap/internal/models"
)

const taxonomyURI = "histmap://taxonomy"

// Server wraps the MCP server with histmap tools.
type Server struct {
	mcp *server.MCPServer
	svc *journeyservice.Service
}

// New creates a new MCP server with all histmap tools registered.
func New(svc *journeyservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"histmap",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("categorize_url",
		mcp.WithDescription("Classify a URL into one of social, work, news, dev, shopping or other. "+
			"See the histmap://taxonomy resource for the rules."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Absolute URL, e.g. https://github.com/golang/go")),
	), s.categorizeURL)

	s.mcp.AddTool(mcp.NewTool("history_graph",
		mcp.WithDescription("Return the recent browsing history as a radial graph: "+
			"nodes with category and position, and edges between related visits."),
	), s.historyGraph)

	s.mcp.AddTool(mcp.NewTool("list_journeys",
		mcp.WithDescription("List saved journeys, most recent first."),
		mcp.WithString("category", mcp.Description("Only journeys that contain a visit of this category")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of journeys (default 50)")),
	), s.listJourneys)

	s.mcp.AddTool(mcp.NewTool("read_journey",
		mcp.WithDescription("Read a saved journey with its visits and layout."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Journey name")),
	), s.readJourney)

	s.mcp.AddTool(mcp.NewTool("save_journey",
		mcp.WithDescription("Save a named journey. Without urls the current history window is saved."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Journey name (trimmed, must not be blank)")),
		mcp.WithArray("urls", mcp.Description("Optional list of absolute URLs in visit order"), mcp.WithStringItems()),
	), s.saveJourney)

	s.mcp.AddTool(mcp.NewTool("journeys_for_host",
		mcp.WithDescription("Find all journeys that visited the given hostname."),
		mcp.WithString("host", mcp.Required(), mcp.Description("Hostname, e.g. github.com")),
	), s.journeysForHost)

	s.mcp.AddResource(
		mcp.NewResource(taxonomyURI, "URL Taxonomy",
			mcp.WithResourceDescription("Ordered categorisation rules and relationship semantics."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readTaxonomyResource,
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

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) categorizeURL(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := s.svc.Categorize(ctx, raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(c)), nil
}

func (s *Server) historyGraph(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g, err := s.svc.CurrentGraph(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(g)
}

func (s *Server) listJourneys(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category := req.GetString("category", "")
	limit := req.GetInt("limit", 0)

	items, _, err := s.svc.ListJourneys(ctx, limit, 0, category)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("no journeys found"), nil
	}
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = fmt.Sprintf("%s (%d visits)", it.Name, it.NodeCount)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) readJourney(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.GetJourney(ctx, name)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", name)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(d)
}

func (s *Server) saveJourney(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var nodes []models.HistoryNode
	if urls := req.GetStringSlice("urls", nil); urls != nil {
		nodes = make([]models.HistoryNode, len(urls))
		for i, u := range urls {
			nodes[i] = models.HistoryNode{ID: strconv.Itoa(i + 1), URL: u}
		}
	}

	d, err := s.svc.SaveJourney(ctx, name, nodes)
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			return mcp.NewToolResultError(fmt.Sprintf("journey already exists: %s", name)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved: %s (%d visits)", d.Name, len(d.Nodes))), nil
}

func (s *Server) journeysForHost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	host, err := req.RequireString("host")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	names, err := s.svc.JourneysForHost(ctx, host)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(names) == 0 {
		return mcp.NewToolResultText("no journeys found"), nil
	}
	return mcp.NewToolResultText(strings.Join(names, "\n")), nil
}

func (s *Server) readTaxonomyResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      taxonomyURI,
			MIMEType: "text/markdown",
			Text:     TaxonomyContract(),
		},
	}, nil
}
