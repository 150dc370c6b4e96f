// Package export writes rendered meeting notes to Markdown files in a
// caller-owned directory.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/starford/muninn/internal/checksum"
	"github.com/starford/muninn/internal/models"
)

const maxFilenameRunes = 100

// Dir is a handle to an export directory. Its lifetime is owned by the
// caller: create it at startup, Close it at shutdown. Temporary
// directories are removed on Close; explicit directories are left alone.
type Dir struct {
	root string
	temp bool
}

// NewDir creates a Dir rooted at path, creating the directory if needed.
func NewDir(path string) (*Dir, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("export: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("export: create dir: %w", err)
	}
	return &Dir{root: abs}, nil
}

// NewTempDir creates a Dir in a fresh temporary directory that Close
// removes.
func NewTempDir() (*Dir, error) {
	root, err := os.MkdirTemp("", "muninn-export-*")
	if err != nil {
		return nil, fmt.Errorf("export: create temp dir: %w", err)
	}
	return &Dir{root: root, temp: true}, nil
}

// Root returns the absolute export directory path.
func (d *Dir) Root() string {
	return d.root
}

// Close releases the directory. Only temporary directories are deleted.
func (d *Dir) Close() error {
	if !d.temp {
		return nil
	}
	return os.RemoveAll(d.root)
}

// Write stores content as "<safe title>.md", atomically (tmp file →
// fsync → rename), and returns where it landed.
func (d *Dir) Write(title, content string) (*models.ExportResult, error) {
	filename := safeFilename(title) + ".md"
	abs := filepath.Join(d.root, filename)

	tmp, err := os.CreateTemp(d.root, ".muninn-tmp-*")
	if err != nil {
		return nil, fmt.Errorf("export: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	data := []byte(content)
	if _, err := tmp.Write(data); err != nil {
		return nil, fmt.Errorf("export: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return nil, fmt.Errorf("export: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("export: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return nil, fmt.Errorf("export: rename: %w", err)
	}
	success = true

	return &models.ExportResult{
		Path:      abs,
		Title:     title,
		SizeBytes: len(data),
		Checksum:  checksum.Sum(data),
	}, nil
}

// safeFilename keeps letters, digits, spaces, dashes, and underscores;
// everything else becomes an underscore. The result is trimmed and capped
// at maxFilenameRunes. An empty title maps to "untitled".
func safeFilename(title string) string {
	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	name := strings.TrimSpace(b.String())
	if runes := []rune(name); len(runes) > maxFilenameRunes {
		name = strings.TrimSpace(string(runes[:maxFilenameRunes]))
	}
	if name == "" {
		return "untitled"
	}
	return name
}
