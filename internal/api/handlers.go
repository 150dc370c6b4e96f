package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"

	"github.com/starford/muninn/internal/apperr"
	"github.com/starford/muninn/internal/meetingservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *meetingservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *meetingservice.Service) *Handler {
	return &Handler{svc: svc}
}

// ListMeetings handles GET /api/meetings. With ?cached=true the listing is
// served from the local cache instead of the Granola API.
func (h *Handler) ListMeetings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	search := q.Get("search")

	if q.Get("cached") == "true" {
		items, total, err := h.svc.CachedMeetings(r.Context(), limit, offset, search)
		if err != nil {
			slog.Error("cached list failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"meetings": items, "total": total})
		return
	}

	items, err := h.svc.ListMeetings(r.Context(), limit, offset, search)
	if err != nil {
		slog.Error("list meetings failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("upstream error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"meetings": items, "total": len(items)})
}

// GetNotes handles GET /api/meetings/{id}/notes. The default response is
// Markdown wrapped in JSON; ?format=html converts it with goldmark.
func (h *Handler) GetNotes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	notes, err := h.svc.GetNotes(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "get notes", id, err)
		return
	}

	if r.URL.Query().Get("format") == "html" {
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(notes), &buf); err != nil {
			slog.Error("html conversion failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"id": id, "markdown": notes})
}

// GetTranscript handles GET /api/meetings/{id}/transcript.
func (h *Handler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tr, err := h.svc.GetTranscript(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrEmptyTranscript) {
			writeJSON(w, http.StatusNotFound, errorBody("transcript is empty"))
			return
		}
		h.writeServiceError(w, "get transcript", id, err)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

// GetMetrics handles GET /api/meetings/{id}/metrics.
func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, err := h.svc.NoteMetrics(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "note metrics", id, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// ExportNote handles POST /api/meetings/{id}/export.
func (h *Handler) ExportNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := h.svc.ExportNote(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "export note", id, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, op, id string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrMalformedDocument):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("malformed document"))
	default:
		slog.Error(op+" failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("upstream error"))
	}
}
