package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/muninn/internal/granola"
	"github.com/starford/muninn/internal/meetingservice"
	"github.com/starford/muninn/internal/models"
	"github.com/starford/muninn/internal/testutil"
)

type fakeAPI struct {
	docs     []models.Document
	segments []models.TranscriptSegment
}

func (f *fakeAPI) GetDocuments(_ context.Context, limit, offset int, includePanel bool) (*granola.DocumentsResponse, error) {
	return &granola.DocumentsResponse{Docs: f.docs}, nil
}

func (f *fakeAPI) GetTranscript(_ context.Context, documentID string) ([]models.TranscriptSegment, error) {
	return f.segments, nil
}

func testServer(t *testing.T, fake *fakeAPI) *Server {
	t.Helper()
	svc := meetingservice.NewService(fake, testutil.TestCache(t), testutil.TestExportDir(t))
	return New(svc)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so we invoke the
	// handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_meetings":
		result, err = srv.listMeetings(ctx, req)
	case "search_meetings":
		result, err = srv.searchMeetings(ctx, req)
	case "get_notes":
		result, err = srv.getNotes(ctx, req)
	case "get_transcript":
		result, err = srv.getTranscript(ctx, req)
	case "analyze_note":
		result, err = srv.analyzeNote(ctx, req)
	case "export_note":
		result, err = srv.exportNote(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

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

func meetingDoc() models.Document {
	return models.Document{
		ID:            "d1",
		Title:         "Planning",
		CreatedAt:     "2025-01-20T10:00:00Z",
		NotesMarkdown: "# Planning\n\n### Goals\n- ship it",
	}
}

func TestListMeetings(t *testing.T) {
	srv := testServer(t, &fakeAPI{docs: []models.Document{meetingDoc()}})
	r := callTool(t, srv, "list_meetings", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, `"id": "d1"`) || !strings.Contains(text, `"Planning"`) {
		t.Errorf("result = %q", text)
	}
}

func TestSearchMeetings_Filters(t *testing.T) {
	srv := testServer(t, &fakeAPI{docs: []models.Document{
		meetingDoc(),
		{ID: "d2", Title: "Standup", CreatedAt: "2025-01-21T10:00:00Z"},
	}})
	r := callTool(t, srv, "search_meetings", map[string]interface{}{"query": "standup"})
	text := resultText(r)
	if strings.Contains(text, "d1") || !strings.Contains(text, "d2") {
		t.Errorf("result = %q", text)
	}
}

func TestSearchMeetings_MissingQuery(t *testing.T) {
	srv := testServer(t, &fakeAPI{})
	r := callTool(t, srv, "search_meetings", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error for missing query")
	}
}

func TestGetNotes(t *testing.T) {
	srv := testServer(t, &fakeAPI{docs: []models.Document{meetingDoc()}})
	r := callTool(t, srv, "get_notes", map[string]interface{}{"document_id": "d1"})
	if resultText(r) != "# Planning\n\n### Goals\n- ship it" {
		t.Errorf("notes = %q", resultText(r))
	}
}

func TestGetNotes_UnknownDocument(t *testing.T) {
	srv := testServer(t, &fakeAPI{})
	r := callTool(t, srv, "get_notes", map[string]interface{}{"document_id": "nope"})
	if !r.IsError {
		t.Error("expected error for unknown document")
	}
}

func TestGetTranscript(t *testing.T) {
	srv := testServer(t, &fakeAPI{
		docs: []models.Document{meetingDoc()},
		segments: []models.TranscriptSegment{
			{Source: "microphone", Text: "hello", StartTimestamp: "2025-01-20T10:00:00Z", EndTimestamp: "2025-01-20T10:00:05Z"},
		},
	})
	r := callTool(t, srv, "get_transcript", map[string]interface{}{"document_id": "d1"})
	text := resultText(r)
	if !strings.Contains(text, "Meeting Title: Planning") || !strings.Contains(text, `"segment_count": 1`) {
		t.Errorf("result = %q", text)
	}
}

func TestAnalyzeNote(t *testing.T) {
	srv := testServer(t, &fakeAPI{docs: []models.Document{meetingDoc()}})
	r := callTool(t, srv, "analyze_note", map[string]interface{}{"document_id": "d1"})
	text := resultText(r)
	if !strings.Contains(text, `"section_count": 1`) || !strings.Contains(text, `"bullet_count": 1`) {
		t.Errorf("result = %q", text)
	}
}

func TestExportNote(t *testing.T) {
	srv := testServer(t, &fakeAPI{docs: []models.Document{meetingDoc()}})
	r := callTool(t, srv, "export_note", map[string]interface{}{"document_id": "d1"})
	text := resultText(r)
	if !strings.Contains(text, "Planning.md") {
		t.Errorf("result = %q", text)
	}
}
