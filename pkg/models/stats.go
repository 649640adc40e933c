package models

// Stats represents counts over the full, unfiltered record list
type Stats struct {
	TotalFiles int64
	TotalSize  int64
	Files      map[Category]int64
	Sizes      map[Category]int64
	Thumbnails int64
}

// NewStats computes statistics for the given records
func NewStats(records []FileRecord) Stats {
	stats := Stats{
		Files: make(map[Category]int64),
		Sizes: make(map[Category]int64),
	}
	for _, r := range records {
		stats.TotalFiles++
		stats.TotalSize += r.Size
		stats.Files[r.Category]++
		stats.Sizes[r.Category] += r.Size
		if r.HasThumbnail() {
			stats.Thumbnails++
		}
	}
	return stats
}
