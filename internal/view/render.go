package view

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/chmdznr/oss-file-organizer/internal/category"
	"github.com/chmdznr/oss-file-organizer/pkg/models"
	"github.com/chmdznr/oss-file-organizer/pkg/utils"
)

// ShortIDLen is how many id characters cards display
const ShortIDLen = 8

// Renderer draws the category strip, the cards and the footer as text
type Renderer struct {
	w        io.Writer
	location *time.Location
	active   *color.Color
	muted    *color.Color
}

// NewRenderer creates a renderer writing to w. Dates are shown in loc, or
// local time when loc is nil.
func NewRenderer(w io.Writer, loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.Local
	}
	return &Renderer{
		w:        w,
		location: loc,
		active:   color.New(color.FgCyan, color.Bold),
		muted:    color.New(color.Faint),
	}
}

// Render redraws the whole view for records under opts
func (r *Renderer) Render(records []models.FileRecord, opts Options) {
	r.renderChips(records, opts)

	list := Derive(records, opts)
	if len(list) == 0 {
		fmt.Fprintln(r.w)
		fmt.Fprintln(r.w, "  No files to show")
		r.muted.Fprintln(r.w, "  Try adding files or change filters")
	} else {
		fmt.Fprintln(r.w)
		for _, rec := range list {
			r.renderCard(rec)
		}
	}

	fmt.Fprintln(r.w)
	r.muted.Fprintln(r.w, Footer(len(records), len(list), opts))
}

func (r *Renderer) renderChips(records []models.FileRecord, opts Options) {
	var parts []string
	for _, chip := range Chips(records, opts) {
		text := fmt.Sprintf("%s %s (%d)", chip.Glyph, chip.Label, chip.Count)
		if chip.Active {
			text = r.active.Sprint("[" + text + "]")
		}
		parts = append(parts, text)
	}
	showAll := "Show All"
	if opts.Category == "" || opts.Category == FilterAll {
		showAll = r.active.Sprint("[" + showAll + "]")
	}
	parts = append(parts, showAll)
	fmt.Fprintln(r.w, strings.Join(parts, "  "))
}

func (r *Renderer) renderCard(rec models.FileRecord) {
	icon := category.Glyph(rec.Category)
	if rec.HasThumbnail() {
		icon = "[img]"
	}
	fmt.Fprintf(r.w, "%-6s %s  %s\n", icon, rec.Name, r.muted.Sprint(ShortID(rec.ID)))
	fmt.Fprintf(r.w, "       %s\n", r.Info(rec))
}

// Info returns the "CATEGORY • size • date" line of a card
func (r *Renderer) Info(rec models.FileRecord) string {
	return fmt.Sprintf("%s • %s • %s",
		strings.ToUpper(string(rec.Category)),
		utils.FormatSize(rec.Size),
		rec.AddedAt.In(r.location).Format("2006-01-02 15:04:05"),
	)
}

// ShortID truncates an id for display
func ShortID(id string) string {
	if len(id) <= ShortIDLen {
		return id
	}
	return id[:ShortIDLen]
}
