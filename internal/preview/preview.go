// Package preview shows a record: the thumbnail enlarged in the system image
// viewer, or a plain textual summary.
package preview

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"os"
	"strings"
	"time"

	"github.com/cli/browser"
	"github.com/dustin/go-humanize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/chmdznr/oss-file-organizer/internal/thumb"
	"github.com/chmdznr/oss-file-organizer/pkg/models"
	"github.com/chmdznr/oss-file-organizer/pkg/utils"
)

// Previewer displays one record
type Previewer struct {
	w       io.Writer
	open    func(path string) error
	tempDir string
	now     func() time.Time
}

// New creates a previewer. When openViewer is false the image is written to
// a temp file and its path printed instead of being opened.
func New(w io.Writer, openViewer bool) *Previewer {
	p := &Previewer{
		w:   w,
		now: time.Now,
	}
	if openViewer {
		p.open = browser.OpenFile
	}
	return p
}

// Show previews rec and returns the path of the extracted image, if any
func (p *Previewer) Show(rec models.FileRecord) (string, error) {
	if !rec.HasThumbnail() {
		fmt.Fprint(p.w, Summary(rec, p.now()))
		return "", nil
	}

	mimeType, data, err := thumb.Decode(rec.Thumbnail)
	if err != nil {
		fmt.Fprint(p.w, Summary(rec, p.now()))
		return "", fmt.Errorf("failed to decode thumbnail of %s: %w", rec.Name, err)
	}

	path, err := p.writeTemp(rec, mimeType, data)
	if err != nil {
		return "", err
	}

	fmt.Fprintf(p.w, "%s\n", rec.Name)
	if dims, err := Dimensions(data); err == nil {
		fmt.Fprintf(p.w, "%s, %s\n", dims, utils.FormatSize(int64(len(data))))
	}
	fmt.Fprintf(p.w, "%s\n", path)

	if p.open != nil {
		if err := p.open(path); err != nil {
			return path, fmt.Errorf("failed to open viewer: %w", err)
		}
	}
	return path, nil
}

func (p *Previewer) writeTemp(rec models.FileRecord, mimeType string, data []byte) (string, error) {
	ext := ""
	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		ext = exts[0]
	}
	pattern := "forg-" + sanitize(rec.ID) + "-*" + ext
	f, err := os.CreateTemp(p.tempDir, pattern)
	if err != nil {
		return "", fmt.Errorf("failed to create preview file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write preview file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write preview file: %w", err)
	}
	return f.Name(), nil
}

// Summary is the textual preview for records without image data
func Summary(rec models.FileRecord, now time.Time) string {
	fileType := rec.Type
	if fileType == "" {
		fileType = "unknown"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", rec.Name)
	fmt.Fprintf(&b, "Type: %s\n", fileType)
	fmt.Fprintf(&b, "Size: %s\n", utils.FormatSize(rec.Size))
	fmt.Fprintf(&b, "Added: %s\n", humanize.RelTime(rec.AddedAt, now, "ago", "from now"))
	return b.String()
}

// Dimensions reports the pixel size of encoded image data
func Dimensions(data []byte) (string, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%dx%d", cfg.Width, cfg.Height), nil
}

func sanitize(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, id)
}
