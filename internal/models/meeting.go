// Package models defines the domain types for Muninn.
package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/muninn/internal/richtext"
)

// Document is a Granola meeting document as returned by the API. Only the
// fields Muninn consumes are declared; the API sends many more.
type Document struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	CreatedAt     string         `json:"created_at"`
	UpdatedAt     string         `json:"updated_at"`
	Type          string         `json:"type"`
	Notes         *richtext.Node `json:"notes"`
	NotesMarkdown string         `json:"notes_markdown"`
	People        *People        `json:"people"`
	Transcribe    bool           `json:"transcribe"`
}

// Validate checks the fields every real document carries.
func (d Document) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.ID, validation.Required),
		validation.Field(&d.CreatedAt, validation.Required),
	)
}

// HasNotes reports whether the document carries any notes content.
func (d Document) HasNotes() bool {
	return d.NotesMarkdown != "" || (d.Notes != nil && len(d.Notes.Content) > 0)
}

// ParticipantCount returns the number of meeting attendees.
func (d Document) ParticipantCount() int {
	if d.People == nil {
		return 0
	}
	return len(d.People.Attendees)
}

// People holds meeting participant information.
type People struct {
	Creator   *Attendee  `json:"creator"`
	Attendees []Attendee `json:"attendees"`
}

// Attendee is one meeting participant.
type Attendee struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// MeetingListItem is the lightweight meeting representation returned by
// list and search operations.
type MeetingListItem struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	CreatedAt        string `json:"created_at"`
	Type             string `json:"type,omitempty"`
	HasNotes         bool   `json:"has_notes"`
	ParticipantCount int    `json:"participant_count"`
}

// TranscriptSegment is one timestamped piece of meeting speech.
type TranscriptSegment struct {
	DocumentID     string `json:"document_id"`
	ID             string `json:"id"`
	StartTimestamp string `json:"start_timestamp"` // ISO 8601
	EndTimestamp   string `json:"end_timestamp"`   // ISO 8601
	Text           string `json:"text"`
	Source         string `json:"source"` // "microphone" or "system"
	IsFinal        bool   `json:"is_final"`
}

// TranscriptStats aggregates segment-level metadata for a transcript.
type TranscriptStats struct {
	SegmentCount       int `json:"segment_count"`
	DurationSeconds    int `json:"duration_seconds"`
	MicrophoneSegments int `json:"microphone_segments"`
	SystemSegments     int `json:"system_segments"`
}

// ExportResult describes a note written to the export directory.
type ExportResult struct {
	Path      string `json:"path"`
	Title     string `json:"title"`
	SizeBytes int    `json:"size_bytes"`
	Checksum  string `json:"checksum"`
}
