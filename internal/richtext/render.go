package richtext

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/starford/muninn/internal/apperr"
)

// maxDepth caps tree recursion. Documents come from an external, evolving
// API; a tree nested deeper than this is not a real document.
const maxDepth = 64

// Collapses runs of spaces produced by joining adjacent inline runs.
var spaceRun = regexp.MustCompile(" {2,}")

// Render converts a document tree to Markdown. Unknown node kinds degrade
// to plain text extraction and never cause an error; the only failure mode
// is a tree nested beyond maxDepth, reported as ErrMalformedDocument.
func Render(root Node) (string, error) {
	return renderNode(root, 0, 0)
}

// renderNode renders one node. listDepth drives list indentation (two
// spaces per level); treeDepth guards recursion.
func renderNode(n Node, listDepth, treeDepth int) (string, error) {
	if treeDepth > maxDepth {
		return "", fmt.Errorf("richtext: nesting exceeds %d levels: %w", maxDepth, apperr.ErrMalformedDocument)
	}

	switch n.Kind {
	case KindDoc:
		parts := make([]string, 0, len(n.Content))
		for _, child := range n.Content {
			s, err := renderNode(child, listDepth, treeDepth+1)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, "\n\n"), nil

	case KindHeading:
		level := n.Level
		if level < 1 {
			level = 1
		}
		if level > 6 {
			level = 6
		}
		return strings.Repeat("#", level) + " " + extractText(n), nil

	case KindParagraph:
		return extractText(n), nil

	case KindHorizontalRule:
		return "---", nil

	case KindBulletList:
		return renderList(n, listDepth, treeDepth, false)

	case KindOrderedList:
		return renderList(n, listDepth, treeDepth, true)

	case KindCodeBlock:
		return "```\n" + extractText(n) + "\n```", nil

	default:
		return extractText(n), nil
	}
}

// renderList renders a bulletList or orderedList. Children that are not
// list items are skipped, but still consume a position: ordered items are
// numbered 1-based by position among all children of this list.
func renderList(list Node, depth, treeDepth int, ordered bool) (string, error) {
	var lines []string
	for i, item := range list.Content {
		if item.Kind != KindListItem {
			continue
		}
		number := 0
		if ordered {
			number = i + 1
		}
		itemLines, err := renderListItem(item, depth, treeDepth+1, number)
		if err != nil {
			return "", err
		}
		lines = append(lines, itemLines...)
	}
	return strings.Join(lines, "\n"), nil
}

// renderListItem produces the bullet line for an item plus any nested list
// lines below it. Paragraph children supply the bullet line content; nested
// lists are rendered one level deeper and appended as-is (their lines
// already carry the deeper indentation).
func renderListItem(item Node, depth, treeDepth int, number int) ([]string, error) {
	if treeDepth > maxDepth {
		return nil, fmt.Errorf("richtext: nesting exceeds %d levels: %w", maxDepth, apperr.ErrMalformedDocument)
	}

	indent := strings.Repeat("  ", depth)
	marker := "-"
	if number > 0 {
		marker = strconv.Itoa(number) + "."
	}

	var bulletParts []string
	var nested []string
	for _, child := range item.Content {
		switch child.Kind {
		case KindParagraph:
			if text := extractText(child); text != "" {
				bulletParts = append(bulletParts, text)
			}
		case KindBulletList, KindOrderedList:
			md, err := renderNode(child, depth+1, treeDepth+1)
			if err != nil {
				return nil, err
			}
			if md != "" {
				nested = append(nested, md)
			}
		}
	}

	lines := []string{indent + marker + " " + strings.Join(bulletParts, " ")}
	lines = append(lines, nested...)
	return lines, nil
}

// extractText recursively extracts all text from a node with Markdown
// inline markup applied. Text nodes get their marks wrapped in mark-list
// order (innermost first). Paragraph and listItem containers join non-empty
// child results with a space and collapse runs of spaces; every other
// container concatenates children verbatim.
func extractText(n Node) string {
	if n.Kind == KindText {
		return applyMarks(n.Text, n.Marks)
	}

	parts := make([]string, 0, len(n.Content))
	for _, child := range n.Content {
		parts = append(parts, extractText(child))
	}

	if n.Kind == KindParagraph || n.Kind == KindListItem {
		nonEmpty := parts[:0]
		for _, p := range parts {
			if p != "" {
				nonEmpty = append(nonEmpty, p)
			}
		}
		// Adjacent inline runs can each contribute boundary whitespace;
		// collapse the doubled-up spaces the join leaves behind.
		return spaceRun.ReplaceAllString(strings.Join(nonEmpty, " "), " ")
	}
	return strings.Join(parts, "")
}

// applyMarks wraps text in Markdown markup, one mark at a time in list
// order, so later marks end up outermost. A link mark with an empty href
// contributes nothing.
func applyMarks(text string, marks []Mark) string {
	for _, m := range marks {
		switch m.Kind {
		case MarkBold:
			text = "**" + text + "**"
		case MarkItalic:
			text = "*" + text + "*"
		case MarkCode:
			text = "`" + text + "`"
		case MarkLink:
			if m.Href != "" {
				text = "[" + text + "](" + m.Href + ")"
			}
		}
	}
	return text
}
