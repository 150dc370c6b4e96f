package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWrite_CreatesFileWithResult(t *testing.T) {
	d, err := NewDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	res, err := d.Write("Weekly Sync", "# Notes\nbody")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(res.Path) != "Weekly Sync.md" {
		t.Errorf("path = %q", res.Path)
	}
	if res.SizeBytes != len("# Notes\nbody") {
		t.Errorf("size = %d", res.SizeBytes)
	}
	if res.Checksum == "" {
		t.Error("checksum empty")
	}

	data, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# Notes\nbody" {
		t.Errorf("content = %q", data)
	}
}

func TestWrite_Overwrite(t *testing.T) {
	d, err := NewDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Write("Same", "old"); err != nil {
		t.Fatal(err)
	}
	res, err := d.Write("Same", "new")
	if err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(res.Path)
	if string(data) != "new" {
		t.Errorf("content = %q, want new", data)
	}
}

func TestTempDir_CloseRemoves(t *testing.T) {
	d, err := NewTempDir()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Write("note", "x"); err != nil {
		t.Fatal(err)
	}
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(d.Root()); !os.IsNotExist(err) {
		t.Errorf("temp dir still exists after Close")
	}
}

func TestClose_KeepsExplicitDir(t *testing.T) {
	root := t.TempDir()
	d, err := NewDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(root); err != nil {
		t.Errorf("explicit dir removed by Close: %v", err)
	}
}

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Weekly Sync", "Weekly Sync"},
		{"a/b\\c:d", "a_b_c_d"},
		{"  spaced  ", "spaced"},
		{"", "untitled"},
		{"///", "___"},
	}
	for _, tt := range tests {
		if got := safeFilename(tt.in); got != tt.want {
			t.Errorf("safeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	long := strings.Repeat("x", 150)
	if got := safeFilename(long); len([]rune(got)) != 100 {
		t.Errorf("long title not capped: %d runes", len([]rune(got)))
	}
}
