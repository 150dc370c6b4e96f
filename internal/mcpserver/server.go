// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes Granola meetings to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/muninn/internal/meetingservice"
)

// Server wraps the MCP server with Muninn tools.
type Server struct {
	mcp *server.MCPServer
	svc *meetingservice.Service
}

// New creates a new MCP server with all Muninn tools registered.
func New(svc *meetingservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Muninn",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_meetings",
		mcp.WithDescription("List Granola meetings with pagination and optional title search."),
		mcp.WithNumber("limit", mcp.Description("Maximum meetings to return (default 20, max 100)")),
		mcp.WithNumber("offset", mcp.Description("Pagination offset (default 0)")),
		mcp.WithString("search", mcp.Description("Optional case-insensitive title filter")),
	), s.listMeetings)

	s.mcp.AddTool(mcp.NewTool("search_meetings",
		mcp.WithDescription("Search meetings by keyword in title (case-insensitive)."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search keyword")),
		mcp.WithNumber("limit", mcp.Description("Maximum results (default 20)")),
	), s.searchMeetings)

	s.mcp.AddTool(mcp.NewTool("get_notes",
		mcp.WithDescription("Get AI-generated notes for a meeting in Markdown format."),
		mcp.WithString("document_id", mcp.Required(), mcp.Description("Granola document ID")),
	), s.getNotes)

	s.mcp.AddTool(mcp.NewTool("get_transcript",
		mcp.WithDescription("Get the speaker-labeled transcript of a meeting with segment statistics."),
		mcp.WithString("document_id", mcp.Required(), mcp.Description("Granola document ID")),
	), s.getTranscript)

	s.mcp.AddTool(mcp.NewTool("analyze_note",
		mcp.WithDescription("Compute structural metrics (headings, bullets, word count) over a meeting's notes."),
		mcp.WithString("document_id", mcp.Required(), mcp.Description("Granola document ID")),
	), s.analyzeNote)

	s.mcp.AddTool(mcp.NewTool("export_note",
		mcp.WithDescription("Export meeting notes to a Markdown file in the export directory."),
		mcp.WithString("document_id", mcp.Required(), mcp.Description("Granola document ID")),
	), s.exportNote)

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

func (s *Server) listMeetings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 20)
	offset := req.GetInt("offset", 0)
	search := req.GetString("search", "")

	meetings, err := s.svc.ListMeetings(ctx, limit, offset, search)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(meetings, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchMeetings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := req.GetInt("limit", 20)

	meetings, err := s.svc.ListMeetings(ctx, limit, 0, query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(meetings, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes, err := s.svc.GetNotes(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(notes), nil
}

func (s *Server) getTranscript(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tr, err := s.svc.GetTranscript(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(tr, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) analyzeNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	m, err := s.svc.NoteMetrics(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(m, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) exportNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.ExportNote(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
