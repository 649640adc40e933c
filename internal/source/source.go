// Package source turns paths, directories and raw input into file handles
// that the store can add.
package source

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
)

// File is the minimal contract of an input file: metadata plus a way to
// obtain its bytes
type File interface {
	Name() string
	Type() string
	Size() int64
	Open() (io.ReadCloser, error)
}

// Options controls how paths are expanded into files
type Options struct {
	Recursive bool // walk directories
	Sniff     bool // detect the type from content when the extension is unknown
}

type localFile struct {
	path     string
	name     string
	mimeType string
	size     int64
}

func (f *localFile) Name() string { return f.name }
func (f *localFile) Type() string { return f.mimeType }
func (f *localFile) Size() int64  { return f.size }

func (f *localFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}

// FromPaths builds handles for regular files and, when recursive, for every
// regular file below the given directories. Directories are skipped with a
// warning otherwise.
func FromPaths(paths []string, opts Options) ([]File, error) {
	var files []File
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, newLocalFile(p, info, opts.Sniff))
			continue
		}
		if !opts.Recursive {
			slog.Warn("skipping directory, use --recursive to add its files", "path", p)
			continue
		}
		found, err := walkDir(p, opts.Sniff)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

// walkDir collects regular files below root. fastwalk invokes the callback
// from several goroutines, so results are sorted afterwards to keep the batch
// order stable.
func walkDir(root string, sniff bool) ([]File, error) {
	var (
		mu    sync.Mutex
		found []*localFile
	)

	conf := &fastwalk.Config{Follow: true}
	err := fastwalk.Walk(conf, root, func(fullPath string, d fs.DirEntry, err error) error {
		if err != nil {
			slog.Debug("walk error", "path", fullPath, "error", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := fastwalk.StatDirEntry(fullPath, d)
		if err != nil {
			slog.Debug("stat error", "path", fullPath, "error", err)
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		f := newLocalFile(fullPath, info, sniff)
		mu.Lock()
		found = append(found, f)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	sort.Slice(found, func(i, j int) bool { return found[i].path < found[j].path })
	files := make([]File, len(found))
	for i, f := range found {
		files[i] = f
	}
	return files, nil
}

func newLocalFile(path string, info fs.FileInfo, sniff bool) *localFile {
	mimeType := TypeByName(info.Name())
	if mimeType == "" && sniff {
		mimeType = sniffFile(path)
	}
	return &localFile{
		path:     path,
		name:     info.Name(),
		mimeType: mimeType,
		size:     info.Size(),
	}
}

// TypeByName returns the MIME type registered for the file extension without
// parameters, or an empty string
func TypeByName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return ""
	}
	t := mime.TypeByExtension(ext)
	if t == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(t)
	if err != nil {
		return ""
	}
	return mediaType
}

func sniffFile(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	buffer := make([]byte, 512)
	n, err := f.Read(buffer)
	if err != nil && err != io.EOF {
		return ""
	}
	return Sniff(buffer[:n])
}

// Sniff detects a MIME type from content. Undetectable content yields an
// empty type rather than application/octet-stream.
func Sniff(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	detected := http.DetectContentType(data)
	mediaType, _, err := mime.ParseMediaType(detected)
	if err != nil || mediaType == "application/octet-stream" {
		return ""
	}
	return mediaType
}

type memoryFile struct {
	name     string
	mimeType string
	data     []byte
}

func (f *memoryFile) Name() string { return f.name }
func (f *memoryFile) Type() string { return f.mimeType }
func (f *memoryFile) Size() int64  { return int64(len(f.data)) }

func (f *memoryFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

// FromBytes wraps in-memory content as a file handle
func FromBytes(name, mimeType string, data []byte) File {
	return &memoryFile{name: name, mimeType: mimeType, data: data}
}

// FromReader buffers r as a pasted file. An empty type is derived from the
// name, then from the content.
func FromReader(name, mimeType string, r io.Reader) (File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if mimeType == "" {
		mimeType = TypeByName(name)
	}
	if mimeType == "" {
		mimeType = Sniff(data)
	}
	if name == "" {
		name = pastedName(mimeType)
	}
	return FromBytes(name, mimeType, data), nil
}

func pastedName(mimeType string) string {
	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		return "pasted" + exts[0]
	}
	return "pasted"
}
