package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

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

func testRouter(t *testing.T, fake *fakeAPI, authEnabled bool, token string) http.Handler {
	t.Helper()
	svc := meetingservice.NewService(fake, testutil.TestCache(t), testutil.TestExportDir(t))
	return NewRouter(svc, authEnabled, token)
}

func doRequest(t *testing.T, h http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuth_RejectsMissingToken(t *testing.T) {
	h := testRouter(t, &fakeAPI{}, true, "secret")
	rec := doRequest(t, h, http.MethodGet, "/meetings", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuth_AcceptsBearerToken(t *testing.T) {
	h := testRouter(t, &fakeAPI{}, true, "secret")
	rec := doRequest(t, h, http.MethodGet, "/meetings", map[string]string{
		"Authorization": "Bearer secret",
	})
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestListMeetings(t *testing.T) {
	fake := &fakeAPI{docs: []models.Document{
		{ID: "d1", Title: "Sync", CreatedAt: "2025-01-20T10:00:00Z"},
	}}
	h := testRouter(t, fake, false, "")
	rec := doRequest(t, h, http.MethodGet, "/meetings", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		Meetings []models.MeetingListItem `json:"meetings"`
		Total    int                      `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Total != 1 || len(body.Meetings) != 1 || body.Meetings[0].ID != "d1" {
		t.Errorf("body = %+v", body)
	}
}

func TestGetNotes_JSON(t *testing.T) {
	fake := &fakeAPI{docs: []models.Document{
		{ID: "d1", CreatedAt: "2025-01-20T10:00:00Z", NotesMarkdown: "# Hello"},
	}}
	h := testRouter(t, fake, false, "")
	rec := doRequest(t, h, http.MethodGet, "/meetings/d1/notes", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		Markdown string `json:"markdown"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Markdown != "# Hello" {
		t.Errorf("markdown = %q", body.Markdown)
	}
}

func TestGetNotes_HTMLFormat(t *testing.T) {
	fake := &fakeAPI{docs: []models.Document{
		{ID: "d1", CreatedAt: "2025-01-20T10:00:00Z", NotesMarkdown: "# Hello"},
	}}
	h := testRouter(t, fake, false, "")
	rec := doRequest(t, h, http.MethodGet, "/meetings/d1/notes?format=html", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "<h1") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestGetNotes_NotFound(t *testing.T) {
	h := testRouter(t, &fakeAPI{}, false, "")
	rec := doRequest(t, h, http.MethodGet, "/meetings/nope/notes", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGetTranscript_EmptyIs404(t *testing.T) {
	fake := &fakeAPI{docs: []models.Document{
		{ID: "d1", CreatedAt: "2025-01-20T10:00:00Z"},
	}}
	h := testRouter(t, fake, false, "")
	rec := doRequest(t, h, http.MethodGet, "/meetings/d1/transcript", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGetMetrics(t *testing.T) {
	fake := &fakeAPI{docs: []models.Document{
		{ID: "d1", CreatedAt: "2025-01-20T10:00:00Z", NotesMarkdown: "### Sec\n- a"},
	}}
	h := testRouter(t, fake, false, "")
	rec := doRequest(t, h, http.MethodGet, "/meetings/d1/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		SectionCount int `json:"section_count"`
		BulletCount  int `json:"bullet_count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.SectionCount != 1 || body.BulletCount != 1 {
		t.Errorf("body = %+v", body)
	}
}

func TestExportNote(t *testing.T) {
	fake := &fakeAPI{docs: []models.Document{
		{ID: "d1", Title: "Sync", CreatedAt: "2025-01-20T10:00:00Z", NotesMarkdown: "# Sync"},
	}}
	h := testRouter(t, fake, false, "")
	rec := doRequest(t, h, http.MethodPost, "/meetings/d1/export", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}

	var res models.ExportResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(res.Path, "Sync.md") || res.SizeBytes != len("# Sync") {
		t.Errorf("result = %+v", res)
	}
}
