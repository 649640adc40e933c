package models

import (
	"encoding/json"
	"time"
)

// wireRecord is the persisted shape of a FileRecord inside the storage blob
type wireRecord struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Size     int64    `json:"size"`
	Date     int64    `json:"date"` // milliseconds since epoch
	Category Category `json:"category"`
	Thumb    string   `json:"thumb,omitempty"`
}

// MarshalJSON encodes the record in the blob format
func (r FileRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireRecord{
		ID:       r.ID,
		Name:     r.Name,
		Type:     r.Type,
		Size:     r.Size,
		Date:     r.AddedAt.UnixMilli(),
		Category: r.Category,
		Thumb:    r.Thumbnail,
	})
}

// UnmarshalJSON decodes the record from the blob format
func (r *FileRecord) UnmarshalJSON(data []byte) error {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = FileRecord{
		ID:        w.ID,
		Name:      w.Name,
		Type:      w.Type,
		Size:      w.Size,
		AddedAt:   time.UnixMilli(w.Date),
		Category:  w.Category,
		Thumbnail: w.Thumb,
	}
	return nil
}
