// Package view derives the displayed list from the store's records and the
// active filter, search and sort settings, and renders it.
package view

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/chmdznr/oss-file-organizer/internal/category"
	"github.com/chmdznr/oss-file-organizer/pkg/models"
)

// FilterAll keeps records of every category
const FilterAll = "all"

// Sort is a display order
type Sort string

const (
	SortNewest   Sort = "newest"
	SortOldest   Sort = "oldest"
	SortNameAsc  Sort = "nameAsc"
	SortNameDesc Sort = "nameDesc"
)

var sorts = []Sort{SortNewest, SortOldest, SortNameAsc, SortNameDesc}

// Options are the view settings; they are never persisted
type Options struct {
	Category string // FilterAll or a category key
	Query    string
	Sort     Sort
	Locale   language.Tag
}

// DefaultOptions shows everything, newest first
func DefaultOptions() Options {
	return Options{
		Category: FilterAll,
		Sort:     SortNewest,
		Locale:   language.Und,
	}
}

// ParseSort validates a sort key, ignoring case
func ParseSort(s string) (Sort, error) {
	for _, candidate := range sorts {
		if strings.EqualFold(strings.TrimSpace(s), string(candidate)) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("unknown sort %q (want newest, oldest, nameAsc or nameDesc)", s)
}

// ParseFilter validates a category filter: "all" or a category key
func ParseFilter(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == FilterAll {
		return FilterAll, nil
	}
	c, ok := category.Parse(s)
	if !ok {
		return "", fmt.Errorf("unknown category %q (want all, %s)", s, category.Names())
	}
	return string(c), nil
}

// ParseLocale turns a BCP 47 tag into a collation locale, falling back to
// the root locale
func ParseLocale(s string) language.Tag {
	if s == "" {
		return language.Und
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und
	}
	return tag
}

// Active reports whether a category filter or a search narrows the list
func (o Options) Active() bool {
	return (o.Category != "" && o.Category != FilterAll) || strings.TrimSpace(o.Query) != ""
}

// Derive applies category filter, name search and sort to records. The input
// slice is not modified.
func Derive(records []models.FileRecord, opts Options) []models.FileRecord {
	list := make([]models.FileRecord, 0, len(records))
	query := strings.ToLower(strings.TrimSpace(opts.Query))
	for _, r := range records {
		if opts.Category != "" && opts.Category != FilterAll && string(r.Category) != opts.Category {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(r.Name), query) {
			continue
		}
		list = append(list, r)
	}

	switch opts.Sort {
	case SortOldest:
		slices.SortStableFunc(list, func(a, b models.FileRecord) int {
			return a.AddedAt.Compare(b.AddedAt)
		})
	case SortNameAsc, SortNameDesc:
		col := collate.New(opts.Locale)
		desc := opts.Sort == SortNameDesc
		slices.SortStableFunc(list, func(a, b models.FileRecord) int {
			if desc {
				return col.CompareString(b.Name, a.Name)
			}
			return col.CompareString(a.Name, b.Name)
		})
	default:
		slices.SortStableFunc(list, func(a, b models.FileRecord) int {
			return b.AddedAt.Compare(a.AddedAt)
		})
	}
	return list
}

// Chip is one entry of the category strip
type Chip struct {
	Category models.Category
	Label    string
	Glyph    string
	Count    int64
	Active   bool
}

// Chips counts records per category over the unfiltered list
func Chips(records []models.FileRecord, opts Options) []Chip {
	stats := models.NewStats(records)
	var chips []Chip
	for _, c := range category.All() {
		chips = append(chips, Chip{
			Category: c,
			Label:    category.Label(c),
			Glyph:    category.Glyph(c),
			Count:    stats.Files[c],
			Active:   opts.Category == string(c),
		})
	}
	return chips
}

// Footer returns the status line under the list
func Footer(total, shown int, opts Options) string {
	switch {
	case total == 0:
		return `No files yet - try adding images with "forg add" or "forg paste"`
	case opts.Active() && shown > 0:
		return fmt.Sprintf("Showing %d of %d saved file(s)", shown, total)
	default:
		return fmt.Sprintf("Total saved files: %d", total)
	}
}
