// Package category maps a file's declared MIME type and name to one of the
// fixed organizer categories.
package category

import (
	"path/filepath"
	"strings"

	"github.com/chmdznr/oss-file-organizer/pkg/models"
)

type rule struct {
	category models.Category
	label    string
	glyph    string
	match    func(mimeType, ext string) bool
}

var docTypeMarkers = []string{"pdf", "msword", "officedocument", "text/"}

var docExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
	".xls":  true,
	".xlsx": true,
}

// rules are evaluated in order, first match wins
var rules = []rule{
	{
		category: models.CategoryImages,
		label:    "Images",
		glyph:    "🖼️",
		match: func(mimeType, _ string) bool {
			return strings.HasPrefix(mimeType, "image/")
		},
	},
	{
		category: models.CategoryVideos,
		label:    "Videos",
		glyph:    "🎞️",
		match: func(mimeType, _ string) bool {
			return strings.HasPrefix(mimeType, "video/")
		},
	},
	{
		category: models.CategoryDocs,
		label:    "Docs",
		glyph:    "📄",
		match: func(mimeType, ext string) bool {
			return containsAny(mimeType, docTypeMarkers) || docExtensions[ext]
		},
	},
	{
		category: models.CategoryOthers,
		label:    "Others",
		glyph:    "📦",
		match: func(string, string) bool {
			return true
		},
	},
}

// Categorize returns the category of a file with the given declared MIME type and name
func Categorize(mimeType, name string) models.Category {
	ext := strings.ToLower(filepath.Ext(name))
	for _, r := range rules {
		if r.match(mimeType, ext) {
			return r.category
		}
	}
	return models.CategoryOthers
}

// IsImage reports whether a declared MIME type qualifies for a thumbnail
func IsImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}

// All returns the categories in display order
func All() []models.Category {
	out := make([]models.Category, len(rules))
	for i, r := range rules {
		out[i] = r.category
	}
	return out
}

// Valid reports whether c is a member of the fixed category set
func Valid(c models.Category) bool {
	for _, r := range rules {
		if r.category == c {
			return true
		}
	}
	return false
}

// Parse validates user input against the category set, ignoring case and
// surrounding whitespace
func Parse(s string) (models.Category, bool) {
	c := models.Category(strings.ToLower(strings.TrimSpace(s)))
	if !Valid(c) {
		return "", false
	}
	return c, true
}

// Label returns the display label of a category
func Label(c models.Category) string {
	for _, r := range rules {
		if r.category == c {
			return r.label
		}
	}
	return string(c)
}

// Glyph returns the icon shown for records without a thumbnail
func Glyph(c models.Category) string {
	for _, r := range rules {
		if r.category == c {
			return r.glyph
		}
	}
	return "📦"
}

// Names returns the comma separated category keys, used in prompts
func Names() string {
	keys := make([]string, len(rules))
	for i, r := range rules {
		keys[i] = string(r.category)
	}
	return strings.Join(keys, ", ")
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
