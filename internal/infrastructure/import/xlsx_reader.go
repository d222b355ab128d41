package csvimport

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/xuri/excelize/v2"

	"github.com/pension/backend/internal/domain/product"
)

// DefaultSheet is the worksheet the product workbook ships its table on
const DefaultSheet = "养老保险"

// headerScanDepth bounds how far down a sheet the header row is searched for
const headerScanDepth = 10

// XLSXReader reads product rows out of an xlsx workbook
type XLSXReader struct {
	sheet string
}

// NewXLSXReader creates a reader preferring the given sheet; an empty name means DefaultSheet
func NewXLSXReader(sheet string) *XLSXReader {
	if sheet == "" {
		sheet = DefaultSheet
	}
	return &XLSXReader{sheet: sheet}
}

// Read opens the workbook from memory and returns its data rows.
// The preferred sheet is used when present, otherwise the first sheet whose
// header row names the product id or product name column.
func (x *XLSXReader) Read(data []byte) (sheet string, headers []string, rows []*Row, err error) {
	if len(data) == 0 {
		return "", nil, nil, ErrEmptyFile
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if i := slices.Index(sheets, x.sheet); i > 0 {
		sheets = append([]string{x.sheet}, slices.Delete(slices.Clone(sheets), i, i+1)...)
	}

	for _, name := range sheets {
		cells, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil || len(cells) == 0 {
			continue
		}
		headerIdx := findHeaderRow(cells)
		if headerIdx < 0 {
			continue
		}
		headers, rows := buildRows(cells, headerIdx)
		return name, headers, rows, nil
	}

	return "", nil, nil, ErrNoProductSheet
}

func findHeaderRow(cells [][]string) int {
	for i := 0; i < len(cells) && i < headerScanDepth; i++ {
		for _, c := range cells[i] {
			h := trimSpaces(c)
			if h == product.ColumnProductID || h == product.ColumnProductName {
				return i
			}
		}
	}
	return -1
}

func buildRows(cells [][]string, headerIdx int) ([]string, []*Row) {
	headers := make([]string, len(cells[headerIdx]))
	for i, h := range cells[headerIdx] {
		headers[i] = trimSpaces(h)
	}

	rows := make([]*Row, 0, len(cells)-headerIdx-1)
	for i := headerIdx + 1; i < len(cells); i++ {
		// 1-based sheet line
		row := newRow(i+1, headers, cells[i])
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}
	return headers, rows
}
