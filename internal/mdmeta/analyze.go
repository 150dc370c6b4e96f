// Package mdmeta derives structural metrics from rendered Markdown.
package mdmeta

import (
	"regexp"
	"strings"
)

var bulletRe = regexp.MustCompile(`^\s*[-*]\s`)

// HeadingBreakdown counts headings by level.
type HeadingBreakdown struct {
	H1 int `json:"h1"`
	H2 int `json:"h2"`
	H3 int `json:"h3"`
}

// Metrics holds structural and content counts for a Markdown string.
type Metrics struct {
	SectionCount     int              `json:"section_count"` // H3 headings
	BulletCount      int              `json:"bullet_count"`
	HeadingBreakdown HeadingBreakdown `json:"heading_breakdown"`
	WordCount        int              `json:"word_count"`
}

// Analyze computes Metrics over the given Markdown. It is a total
// function: any input, including the empty string, yields a valid value.
// Each line is counted against at most one heading level, deepest prefix
// first; the bullet test is independent of the heading test.
func Analyze(markdown string) Metrics {
	var m Metrics
	for _, line := range strings.Split(markdown, "\n") {
		switch {
		case strings.HasPrefix(line, "### "):
			m.HeadingBreakdown.H3++
			m.SectionCount++
		case strings.HasPrefix(line, "## "):
			m.HeadingBreakdown.H2++
		case strings.HasPrefix(line, "# "):
			m.HeadingBreakdown.H1++
		}
		if bulletRe.MatchString(line) {
			m.BulletCount++
		}
	}
	m.WordCount = len(strings.Fields(markdown))
	return m
}
