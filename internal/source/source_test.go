package source

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// pngHeader is enough for content sniffing to recognize a PNG
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestTypeByName(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		expected string
	}{
		{"png", "cat.png", "image/png"},
		{"uppercase extension", "CAT.PNG", "image/png"},
		{"pdf", "report.pdf", "application/pdf"},
		{"text drops charset", "notes.txt", "text/plain"},
		{"no extension", "README", ""},
		{"unknown extension", "data.zzzunknown", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := TypeByName(tt.fileName)
			if result != tt.expected {
				t.Errorf("TypeByName(%q) = %q; want %q", tt.fileName, result, tt.expected)
			}
		})
	}
}

func TestFromPathsSkipsDirectoriesUnlessRecursive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), []byte("hello"))
	writeFile(t, filepath.Join(dir, "nested", "b.png"), pngHeader)

	files, err := FromPaths([]string{dir}, Options{})
	if err != nil {
		t.Fatalf("FromPaths: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected directory to be skipped, got %d files", len(files))
	}

	files, err = FromPaths([]string{dir}, Options{Recursive: true})
	if err != nil {
		t.Fatalf("FromPaths recursive: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if files[0].Name() != "a.txt" || files[1].Name() != "b.png" {
		t.Errorf("unexpected order: %s, %s", files[0].Name(), files[1].Name())
	}
	if files[1].Type() != "image/png" {
		t.Errorf("type = %q", files[1].Type())
	}
	if files[0].Size() != 5 {
		t.Errorf("size = %d", files[0].Size())
	}
}

func TestFromPathsMissingFile(t *testing.T) {
	_, err := FromPaths([]string{filepath.Join(t.TempDir(), "missing")}, Options{})
	if err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestFromPathsSniffsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo")
	writeFile(t, path, pngHeader)

	files, err := FromPaths([]string{path}, Options{})
	if err != nil {
		t.Fatalf("FromPaths: %v", err)
	}
	if files[0].Type() != "" {
		t.Errorf("without sniffing type should be empty, got %q", files[0].Type())
	}

	files, err = FromPaths([]string{path}, Options{Sniff: true})
	if err != nil {
		t.Fatalf("FromPaths: %v", err)
	}
	if files[0].Type() != "image/png" {
		t.Errorf("sniffed type = %q", files[0].Type())
	}
}

func TestFromReader(t *testing.T) {
	f, err := FromReader("", "", strings.NewReader(string(pngHeader)))
	if err != nil {
		t.Fatalf("FromReader: %v", err)
	}
	if f.Type() != "image/png" {
		t.Errorf("type = %q", f.Type())
	}
	if !strings.HasPrefix(f.Name(), "pasted") {
		t.Errorf("name = %q", f.Name())
	}

	rc, err := f.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if len(data) != len(pngHeader) || f.Size() != int64(len(pngHeader)) {
		t.Errorf("read %d bytes, size %d", len(data), f.Size())
	}
}

func TestSniffUnknownContent(t *testing.T) {
	if got := Sniff([]byte{0x00, 0x01, 0x02, 0x03}); got != "" {
		t.Errorf("Sniff(binary) = %q; want empty", got)
	}
	if got := Sniff(nil); got != "" {
		t.Errorf("Sniff(nil) = %q", got)
	}
}
