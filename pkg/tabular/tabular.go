// Package tabular reads tabular data files (CSV, JSON, XLSX) into uniform
// row maps for bulk loading.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JhonatanRC03/chat-rag/pkg/utils/json"
)

// Row is one record keyed by column name. Values are nil, string, int64, or
// float64 after normalization.
type Row map[string]any

// supportedExtensions are the file types the loader understands. Only the
// OOXML spreadsheet format is readable; legacy .xls is not.
var supportedExtensions = []string{".csv", ".json", ".xlsx"}

// Supported reports whether path has a recognized data file extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range supportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// Discover returns the supported data files directly inside dir, sorted by
// name. A missing directory is not an error; it returns an empty list.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("tabular: read dir %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if Supported(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// ReadFile parses a data file into rows, dispatching on its extension.
func ReadFile(path string) ([]Row, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("tabular: open %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()
		return ReadCSV(f)
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("tabular: open %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()
		return ReadJSON(f)
	case ".xlsx":
		return ReadExcel(path)
	default:
		return nil, fmt.Errorf("tabular: unsupported file format %q", ext)
	}
}

// ReadCSV parses comma-separated data. The first record is the header.
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tabular: read csv header: %w", err)
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("tabular: read csv record: %w", err)
		}

		row := make(Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = normalize(record[i])
			} else {
				row[col] = nil
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadJSON parses a JSON array of objects.
func ReadJSON(r io.Reader) ([]Row, error) {
	var rows []Row
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("tabular: decode json: %w", err)
	}
	return rows, nil
}

// ReadExcel parses the first sheet of an Excel file. The first row is the
// header.
func ReadExcel(path string) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("tabular: open excel %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("tabular: excel file %s has no sheets", path)
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("tabular: read sheet %s: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	var rows []Row
	for _, record := range records[1:] {
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = normalize(record[i])
			} else {
				row[col] = nil
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// normalize maps a raw cell to nil for empty values and to int64 or float64
// for numeric ones, leaving everything else a trimmed string.
func normalize(raw string) any {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}
