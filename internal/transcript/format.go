// Package transcript renders timestamped speech segments into a
// speaker-labeled Markdown transcript.
package transcript

import (
	"strings"
	"time"

	"github.com/starford/muninn/internal/apperr"
	"github.com/starford/muninn/internal/models"
)

// SourceMicrophone is the local-microphone channel identifier. Segments
// from it are labeled "Me"; every other source is labeled "Them".
const SourceMicrophone = "microphone"

// Format renders segments as a transcript with a title/date header.
// Consecutive segments with the same speaker label are coalesced into one
// line. All content lines except the last get two trailing spaces (the
// Markdown hard-break convention); the last line keeps a single trailing
// space for format parity.
//
// Segments must be in recording order; Format does not re-sort them.
// An empty segment list is a caller bug and returns ErrEmptyTranscript.
func Format(segments []models.TranscriptSegment, title, dateLabel string) (string, error) {
	if len(segments) == 0 {
		return "", apperr.ErrEmptyTranscript
	}

	lines := []string{
		"Meeting Title: " + title,
		"Date: " + dateLabel,
		"",
		"Transcript:",
		" ",
	}

	type run struct {
		label string
		texts []string
	}
	var runs []run
	for _, seg := range segments {
		label := "Them"
		if seg.Source == SourceMicrophone {
			label = "Me"
		}
		if len(runs) > 0 && runs[len(runs)-1].label == label {
			last := &runs[len(runs)-1]
			last.texts = append(last.texts, seg.Text)
			continue
		}
		runs = append(runs, run{label: label, texts: []string{seg.Text}})
	}

	for i, r := range runs {
		line := r.label + ": " + strings.Join(r.texts, " ")
		if i < len(runs)-1 {
			line += "  "
		} else {
			line += " "
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n"), nil
}

// Stats computes segment-level metadata over the raw segment sequence.
// Duration is the naive difference between the first segment's start and
// the last segment's end; unparseable timestamps yield a zero duration.
func Stats(segments []models.TranscriptSegment) models.TranscriptStats {
	st := models.TranscriptStats{SegmentCount: len(segments)}
	for _, seg := range segments {
		if seg.Source == SourceMicrophone {
			st.MicrophoneSegments++
		} else {
			st.SystemSegments++
		}
	}
	if len(segments) == 0 {
		return st
	}

	start, errStart := parseTimestamp(segments[0].StartTimestamp)
	end, errEnd := parseTimestamp(segments[len(segments)-1].EndTimestamp)
	if errStart == nil && errEnd == nil {
		st.DurationSeconds = int(end.Sub(start).Seconds())
	}
	return st
}

func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
