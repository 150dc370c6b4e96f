package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/muninn/internal/meetingservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(svc *meetingservice.Service, authEnabled bool, token string) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/meetings", h.ListMeetings)
	r.Get("/meetings/{id}/notes", h.GetNotes)
	r.Get("/meetings/{id}/transcript", h.GetTranscript)
	r.Get("/meetings/{id}/metrics", h.GetMetrics)
	r.Post("/meetings/{id}/export", h.ExportNote)

	return r
}
