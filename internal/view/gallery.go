package view

import (
	"html/template"
	"io"
	"strings"

	"github.com/chmdznr/oss-file-organizer/internal/category"
	"github.com/chmdznr/oss-file-organizer/pkg/models"
)

var galleryTemplate = template.Must(template.New("gallery").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>File organizer</title>
<style>
body{font-family:system-ui,sans-serif;background:#021024;color:#e6eef8;margin:24px}
.chips{display:flex;gap:8px;flex-wrap:wrap;margin-bottom:16px}
.chip{padding:4px 10px;border-radius:999px;background:#0b2545;opacity:.8}
.chip.active{background:#1d4e89;opacity:1}
.files-grid{display:grid;grid-template-columns:repeat(auto-fill,minmax(180px,1fr));gap:12px}
.file-card{background:#0b2545;border-radius:10px;padding:10px}
.thumb{height:120px;display:flex;align-items:center;justify-content:center;font-size:32px;overflow:hidden;border-radius:8px;background:#021024}
.thumb img{max-width:100%;max-height:100%}
.meta h4{margin:8px 0 4px;word-break:break-all}
.meta p,.muted{color:#8aa0b8;font-size:12px;margin:0}
.empty{padding:40px;text-align:center}
</style>
</head>
<body>
<div class="chips">
{{- range .Chips}}
<span class="chip{{if .Active}} active{{end}}">{{.Glyph}} {{.Label}} ({{.Count}})</span>
{{- end}}
<span class="chip{{if .ShowAll}} active{{end}}">Show All</span>
</div>
{{- if .Cards}}
<div class="files-grid">
{{- range .Cards}}
<div class="file-card">
<div class="thumb">{{if .Thumb}}<img src="{{.Thumb}}" alt="{{.Name}}">{{else}}{{.Glyph}}{{end}}</div>
<div class="meta"><h4>{{.Name}}</h4><p>{{.Info}}</p><p>{{.ID}}</p></div>
</div>
{{- end}}
</div>
{{- else}}
<div class="empty"><strong>No files to show</strong><div class="muted">Try adding files or change filters</div></div>
{{- end}}
<p class="muted">{{.Footer}}</p>
</body>
</html>
`))

type galleryCard struct {
	ID    string
	Name  string
	Info  string
	Glyph string
	Thumb template.URL
}

type galleryPage struct {
	Chips   []Chip
	ShowAll bool
	Cards   []galleryCard
	Footer  string
}

// Gallery writes the derived list as a standalone HTML page with embedded
// thumbnails
func Gallery(w io.Writer, records []models.FileRecord, opts Options) error {
	list := Derive(records, opts)
	r := NewRenderer(io.Discard, nil)

	page := galleryPage{
		Chips:   Chips(records, opts),
		ShowAll: opts.Category == "" || opts.Category == FilterAll,
		Footer:  Footer(len(records), len(list), opts),
	}
	for _, rec := range list {
		card := galleryCard{
			ID:    rec.ID,
			Name:  rec.Name,
			Info:  r.Info(rec),
			Glyph: category.Glyph(rec.Category),
		}
		// only embedded images are trusted as URLs
		if strings.HasPrefix(rec.Thumbnail, "data:image/") {
			card.Thumb = template.URL(rec.Thumbnail)
		}
		page.Cards = append(page.Cards, card)
	}
	return galleryTemplate.Execute(w, page)
}
