package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/checkout"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Check-outs"

// Columns is the header row of every export.
var Columns = []string{"ID", "Name", "Latitude", "Longitude", "Location", "Photo", "Description", "Date", "Time"}

var columnWidths = []float64{38, 24, 14, 14, 48, 48, 40, 14, 10}

// Row is one exported record, already formatted for display.
type Row struct {
	ID          string
	Name        string
	Latitude    string
	Longitude   string
	LocationURL string
	PhotoURL    string
	Description string
	Date        string
	Time        string
}

func (r Row) values() []string {
	return []string{r.ID, r.Name, r.Latitude, r.Longitude, r.LocationURL, r.PhotoURL, r.Description, r.Date, r.Time}
}

// File is a rendered export ready to be stored.
type File struct {
	Content     []byte
	ContentType string
	Extension   string
}

// Render encodes rows in the requested format.
func Render(format checkout.ExportFormat, rows []Row) (File, error) {
	switch format {
	case checkout.ExportCSV:
		content, err := renderCSV(rows)
		if err != nil {
			return File{}, err
		}
		return File{Content: content, ContentType: "text/csv", Extension: ".csv"}, nil
	case checkout.ExportXLSX:
		content, err := renderXLSX(rows)
		if err != nil {
			return File{}, err
		}
		return File{
			Content:     content,
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Extension:   ".xlsx",
		}, nil
	}
	return File{}, fmt.Errorf("unsupported export format %q", format)
}

func renderCSV(rows []Row) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)

	if err := w.Write(Columns); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range rows {
		values := row.values()
		for i, v := range values {
			values[i] = csvCell(v)
		}
		if err := w.Write(values); err != nil {
			return nil, fmt.Errorf("failed to write csv row %s: %w", row.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// csvCell quotes values a spreadsheet would otherwise evaluate as a formula.
// Plain numbers such as negative coordinates are left as they are.
func csvCell(v string) string {
	if v == "" || !strings.ContainsAny(v[:1], "=+-@\t\r") {
		return v
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return v
	}
	return "'" + v
}

// renderXLSX writes every value as a string cell, so nothing is evaluated as a formula.
func renderXLSX(rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	lastHeader, _ := excelize.CoordinatesToCellName(len(Columns), 1)
	if err := f.SetCellStyle(sheetName, "A1", lastHeader, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := row.values()
		line := make([]interface{}, len(values))
		for j, v := range values {
			line[j] = v
		}
		if err := f.SetSheetRow(sheetName, cell, &line); err != nil {
			return nil, fmt.Errorf("failed to write row %s: %w", row.ID, err)
		}
	}

	for i, width := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("failed to size column %s: %w", col, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
