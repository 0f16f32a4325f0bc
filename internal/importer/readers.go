package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// ReadCSV reads a comma separated file whose first record is the header.
// Rows may differ in width from the header; Validate reports that.
func ReadCSV(r io.Reader) (Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return Dataset{}, fmt.Errorf("read csv: %w", err)
	}
	return fromRecords(records, false)
}

// ReadXLSX reads the first sheet of a workbook whose first row is the header.
func ReadXLSX(r io.Reader) (Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Dataset{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Dataset{}, errors.New("read xlsx: workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Dataset{}, fmt.Errorf("read xlsx sheet %q: %w", sheets[0], err)
	}
	return fromRecords(rows, true)
}

// Read picks a reader from the extension of name.
func Read(name string, r io.Reader) (Dataset, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return ReadCSV(r)
	case ".xlsx":
		return ReadXLSX(r)
	default:
		return Dataset{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(name))
	}
}

func ReadFile(path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dataset{}, err
	}
	defer f.Close()

	return Read(path, f)
}

// fromRecords splits off the header. Spreadsheet rows drop trailing empty
// cells, so with pad set short rows are filled back out to the header width
// and blank rows are skipped.
func fromRecords(records [][]string, pad bool) (Dataset, error) {
	if len(records) == 0 {
		return Dataset{}, errors.New("dataset has no header row")
	}

	header := make([]string, len(records[0]))
	for i, c := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(c, "\ufeff"))
	}

	ds := Dataset{Columns: header, Rows: make([][]any, 0, len(records)-1)}
	for _, rec := range records[1:] {
		if pad && len(rec) == 0 {
			continue
		}
		width := len(rec)
		if pad && width < len(header) {
			width = len(header)
		}
		row := make([]any, width)
		for i := range row {
			if i < len(rec) {
				row[i] = rec[i]
			} else {
				row[i] = ""
			}
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}
