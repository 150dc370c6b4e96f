// Package meetingservice coordinates the Granola API client, the local
// meeting cache, rendering, and export for the REST and MCP surfaces.
package meetingservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/muninn/internal/apperr"
	"github.com/starford/muninn/internal/cache"
	"github.com/starford/muninn/internal/export"
	"github.com/starford/muninn/internal/granola"
	"github.com/starford/muninn/internal/mdmeta"
	"github.com/starford/muninn/internal/models"
	"github.com/starford/muninn/internal/richtext"
	"github.com/starford/muninn/internal/transcript"
)

// noNotesPlaceholder is returned when a meeting has no notes in any form.
const noNotesPlaceholder = "(No notes available for this meeting)"

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// API is the subset of the Granola client the service depends on.
type API interface {
	GetDocuments(ctx context.Context, limit, offset int, includePanel bool) (*granola.DocumentsResponse, error)
	GetTranscript(ctx context.Context, documentID string) ([]models.TranscriptSegment, error)
}

// Transcript bundles the formatted text with its caller-side stats.
type Transcript struct {
	Text  string                 `json:"text"`
	Stats models.TranscriptStats `json:"stats"`
}

// Service exposes meeting operations to the REST and MCP layers.
type Service struct {
	api     API
	db      *cache.DB
	exports *export.Dir
}

// NewService creates a meeting service.
func NewService(api API, db *cache.DB, exports *export.Dir) *Service {
	return &Service{api: api, db: db, exports: exports}
}

// ListMeetings fetches a page of meetings with optional case-insensitive
// title search. Fetched metadata is refreshed into the local cache.
func (s *Service) ListMeetings(ctx context.Context, limit, offset int, search string) ([]models.MeetingListItem, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	resp, err := s.api.GetDocuments(ctx, limit, offset, false)
	if err != nil {
		return nil, err
	}

	meetings := make([]models.MeetingListItem, 0, len(resp.Docs))
	for _, doc := range resp.Docs {
		title := doc.Title
		if title == "" {
			title = "(Untitled)"
		}
		if search != "" && !strings.Contains(strings.ToLower(title), strings.ToLower(search)) {
			continue
		}
		meetings = append(meetings, models.MeetingListItem{
			ID:               doc.ID,
			Title:            title,
			CreatedAt:        doc.CreatedAt,
			Type:             doc.Type,
			HasNotes:         doc.HasNotes(),
			ParticipantCount: doc.ParticipantCount(),
		})
	}

	if err := s.db.UpsertAll(meetings); err != nil {
		// Cache refresh failure is not worth failing the listing over.
		slog.Warn("meeting cache refresh failed", slog.String("error", err.Error()))
	}
	return meetings, nil
}

// CachedMeetings lists meetings from the local cache only, for offline use.
func (s *Service) CachedMeetings(ctx context.Context, limit, offset int, search string) ([]models.MeetingListItem, int, error) {
	return s.db.List(limit, offset, search)
}

// GetNotes returns the meeting's notes as Markdown, preferring the
// API-provided Markdown and falling back to rendering the rich-text tree.
func (s *Service) GetNotes(ctx context.Context, documentID string) (string, error) {
	doc, err := s.getDocument(ctx, documentID)
	if err != nil {
		return "", err
	}

	if doc.NotesMarkdown != "" {
		return doc.NotesMarkdown, nil
	}
	if doc.Notes != nil {
		md, err := richtext.Render(*doc.Notes)
		if err != nil {
			return "", fmt.Errorf("render notes for %s: %w", documentID, err)
		}
		if md != "" {
			return md, nil
		}
	}
	return noNotesPlaceholder, nil
}

// GetTranscript fetches and formats the meeting transcript.
func (s *Service) GetTranscript(ctx context.Context, documentID string) (*Transcript, error) {
	doc, err := s.getDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	segments, err := s.api.GetTranscript(ctx, documentID)
	if err != nil {
		return nil, err
	}

	title := doc.Title
	if title == "" {
		title = "(Untitled)"
	}
	text, err := transcript.Format(segments, title, dateLabel(doc.CreatedAt))
	if err != nil {
		return nil, err
	}
	return &Transcript{Text: text, Stats: transcript.Stats(segments)}, nil
}

// NoteMetrics renders the meeting's notes and analyzes their structure.
func (s *Service) NoteMetrics(ctx context.Context, documentID string) (*mdmeta.Metrics, error) {
	notes, err := s.GetNotes(ctx, documentID)
	if err != nil {
		return nil, err
	}
	m := mdmeta.Analyze(notes)
	return &m, nil
}

// ExportNote writes the meeting's notes to the export directory.
func (s *Service) ExportNote(ctx context.Context, documentID string) (*models.ExportResult, error) {
	doc, err := s.getDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	notes, err := s.GetNotes(ctx, documentID)
	if err != nil {
		return nil, err
	}

	title := doc.Title
	if title == "" {
		title = "untitled"
	}
	return s.exports.Write(title, notes)
}

// getDocument scans the documents listing for the requested id. The API
// has no per-document endpoint, so this mirrors its list-then-find usage.
func (s *Service) getDocument(ctx context.Context, documentID string) (*models.Document, error) {
	resp, err := s.api.GetDocuments(ctx, maxListLimit, 0, true)
	if err != nil {
		return nil, err
	}
	for i := range resp.Docs {
		if resp.Docs[i].ID == documentID {
			return &resp.Docs[i], nil
		}
	}
	return nil, fmt.Errorf("document %s: %w", documentID, apperr.ErrNotFound)
}

// dateLabel reduces an ISO 8601 timestamp to its date part for the
// transcript header.
func dateLabel(createdAt string) string {
	if i := strings.IndexByte(createdAt, 'T'); i > 0 {
		return createdAt[:i]
	}
	return createdAt
}
