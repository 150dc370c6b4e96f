// Package richtext converts Granola's ProseMirror-style document trees
// into Markdown.
package richtext

import "encoding/json"

// Kind identifies a node variant in the rich-text tree.
type Kind string

// Node kinds observed in Granola documents. Anything else decodes to
// KindUnknown and is handled by plain text extraction.
const (
	KindDoc            Kind = "doc"
	KindHeading        Kind = "heading"
	KindParagraph      Kind = "paragraph"
	KindBulletList     Kind = "bulletList"
	KindOrderedList    Kind = "orderedList"
	KindListItem       Kind = "listItem"
	KindCodeBlock      Kind = "codeBlock"
	KindHorizontalRule Kind = "horizontalRule"
	KindText           Kind = "text"
	KindUnknown        Kind = ""
)

// MarkKind identifies an inline mark variant.
type MarkKind string

const (
	MarkBold    MarkKind = "bold"
	MarkItalic  MarkKind = "italic"
	MarkCode    MarkKind = "code"
	MarkLink    MarkKind = "link"
	MarkUnknown MarkKind = ""
)

// Node is one element of a rich-text document tree. The tree is decoded
// from the API's JSON representation; node kinds the decoder does not
// recognize become KindUnknown but keep their children and original type
// tag so the text-extraction fallback can still walk them.
type Node struct {
	Kind    Kind
	RawKind string // original "type" tag, kept for unknown kinds
	Level   int    // heading level, 1-6
	Text    string // literal text, KindText only
	Marks   []Mark // inline marks, KindText only
	Content []Node
}

// Mark is an inline styling annotation attached to a text run.
type Mark struct {
	Kind MarkKind
	Href string // MarkLink destination
}

var knownKinds = map[string]Kind{
	"doc":            KindDoc,
	"heading":        KindHeading,
	"paragraph":      KindParagraph,
	"bulletList":     KindBulletList,
	"orderedList":    KindOrderedList,
	"listItem":       KindListItem,
	"codeBlock":      KindCodeBlock,
	"horizontalRule": KindHorizontalRule,
	"text":           KindText,
}

var knownMarks = map[string]MarkKind{
	"bold":   MarkBold,
	"italic": MarkItalic,
	"code":   MarkCode,
	"link":   MarkLink,
}

type nodeJSON struct {
	Type  string `json:"type"`
	Attrs struct {
		Level int `json:"level"`
	} `json:"attrs"`
	Text    string `json:"text"`
	Marks   []Mark `json:"marks"`
	Content []Node `json:"content"`
}

// UnmarshalJSON decodes a ProseMirror node. A bare JSON string is accepted
// and treated as a text node; the upstream schema should not produce one,
// but the renderer must never fail on unexpected shapes.
func (n *Node) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Node{Kind: KindText, RawKind: "text", Text: s}
		return nil
	}

	var raw nodeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	kind, ok := knownKinds[raw.Type]
	if !ok {
		kind = KindUnknown
	}
	*n = Node{
		Kind:    kind,
		RawKind: raw.Type,
		Level:   raw.Attrs.Level,
		Text:    raw.Text,
		Marks:   raw.Marks,
		Content: raw.Content,
	}
	return nil
}

type markJSON struct {
	Type  string `json:"type"`
	Attrs struct {
		Href string `json:"href"`
	} `json:"attrs"`
}

// UnmarshalJSON decodes a mark; unrecognized mark types become MarkUnknown
// and contribute no wrapping.
func (m *Mark) UnmarshalJSON(data []byte) error {
	var raw markJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	kind, ok := knownMarks[raw.Type]
	if !ok {
		kind = MarkUnknown
	}
	*m = Mark{Kind: kind, Href: raw.Attrs.Href}
	return nil
}
