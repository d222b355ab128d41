// Package export writes processed products as CSV, XLSX or JSON tables.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pension/backend/internal/application/catalog"
	"github.com/pension/backend/internal/domain/product"
)

// Supported formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatJSON = "json"
)

// SheetName is the worksheet written by XLSX exports
const SheetName = "产品列表"

// ErrUnsupportedFormat is returned for formats other than csv, xlsx and json
var ErrUnsupportedFormat = errors.New("unsupported export format")

type column struct {
	header string
	value  func(*product.NormalizedProduct) string
}

var columns = []column{
	{"产品代码", func(p *product.NormalizedProduct) string { return p.ProductID }},
	{"产品名称", func(p *product.NormalizedProduct) string { return p.ProductName }},
	{"保险公司", func(p *product.NormalizedProduct) string { return p.InsuranceCompany }},
	{"适合年龄", func(p *product.NormalizedProduct) string { return p.AgeRangeStr }},
	{"保险类型", func(p *product.NormalizedProduct) string { return string(p.InsuranceType) }},
	{"缴费方式", func(p *product.NormalizedProduct) string { return string(p.PaymentType) }},
	{"缴费年限", func(p *product.NormalizedProduct) string { return p.PaymentPeriodsStr }},
	{"最低保费", func(p *product.NormalizedProduct) string { return p.MinPremiumStr }},
	{"最低保费(元)", func(p *product.NormalizedProduct) string { return strconv.FormatInt(p.MinPremium, 10) }},
	{"风险等级", func(p *product.NormalizedProduct) string { return string(p.RiskLevel) }},
	{"保障期限", func(p *product.NormalizedProduct) string { return p.CoverageStr }},
	{"销售渠道", func(p *product.NormalizedProduct) string { return p.SalesChannel }},
	{"销售范围", func(p *product.NormalizedProduct) string { return p.SalesScope }},
	{"特色关键词", func(p *product.NormalizedProduct) string { return strings.Join(p.FeatureKeywords, "、") }},
}

// Headers returns the column headers of CSV and XLSX exports
func Headers() []string {
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = c.header
	}
	return headers
}

func record(p *product.NormalizedProduct) []string {
	rec := make([]string, len(columns))
	for i, c := range columns {
		rec[i] = c.value(p)
	}
	return rec
}

// FormatFromPath infers the format from a file extension, defaulting to csv
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return FormatXLSX
	case ".json":
		return FormatJSON
	default:
		return FormatCSV
	}
}

// Write renders products in the given format
func Write(w io.Writer, format string, products []*product.NormalizedProduct) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, products)
	case FormatXLSX:
		return WriteXLSX(w, products)
	case FormatJSON:
		return WriteJSON(w, products)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// WriteCSV writes a UTF-8 CSV with a BOM so spreadsheet tools detect the encoding
func WriteCSV(w io.Writer, products []*product.NormalizedProduct) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers()); err != nil {
		return err
	}
	for _, p := range products {
		if err := cw.Write(record(p)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a single-sheet workbook
func WriteXLSX(w io.Writer, products []*product.NormalizedProduct) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return err
	}
	if err := writeRow(f, 1, Headers()); err != nil {
		return err
	}
	for i, p := range products {
		if err := writeRow(f, i+2, record(p)); err != nil {
			return err
		}
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}
	_, err := f.WriteTo(w)
	return err
}

func writeRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(SheetName, cell, &cells)
}

// WriteJSON writes the products in the catalog snapshot encoding
func WriteJSON(w io.Writer, products []*product.NormalizedProduct) error {
	data, err := catalog.EncodeProducts(products)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
