package models

import "time"

// Category is one of the fixed organizer categories
type Category string

const (
	CategoryImages Category = "images"
	CategoryVideos Category = "videos"
	CategoryDocs   Category = "docs"
	CategoryOthers Category = "others"
)

// FileRecord represents the persisted metadata of one added file
type FileRecord struct {
	ID        string
	Name      string
	Type      string // declared MIME type, may be empty
	Size      int64
	AddedAt   time.Time
	Category  Category
	Thumbnail string // data URL, only for readable images
}

// HasThumbnail reports whether image data was captured for the record
func (r FileRecord) HasThumbnail() bool {
	return r.Thumbnail != ""
}
