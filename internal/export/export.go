// Package export writes the record list to spreadsheet formats. Thumbnail
// bytes are never exported.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/chmdznr/oss-file-organizer/pkg/models"
)

// SheetName is the worksheet the XLSX export writes to
const SheetName = "Files"

var header = []string{"ID", "Name", "Type", "Size", "Category", "Added", "Thumbnail"}

func row(r models.FileRecord) []string {
	thumbnail := "no"
	if r.HasThumbnail() {
		thumbnail = "yes"
	}
	return []string{
		r.ID,
		r.Name,
		r.Type,
		strconv.FormatInt(r.Size, 10),
		string(r.Category),
		r.AddedAt.UTC().Format(time.RFC3339),
		thumbnail,
	}
}

// CSV writes records as comma separated values with a header row
func CSV(w io.Writer, records []models.FileRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(row(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// XLSX writes records as an Excel workbook with a single sheet
func XLSX(w io.Writer, records []models.FileRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &headerRow); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row(r)
		out := []interface{}{
			values[0],
			values[1],
			values[2],
			r.Size,
			values[4],
			r.AddedAt.UTC(),
			values[6],
		}
		if err := f.SetSheetRow(SheetName, cell, &out); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	_, err := f.WriteTo(w)
	return err
}

// Format picks the export format from a file name, defaulting to CSV
func Format(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return "xlsx"
	}
	return "csv"
}
