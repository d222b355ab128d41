package csvimport

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pension/backend/internal/domain/product"
)

// Format identifies the container of a product table
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Default limits
const (
	DefaultMaxFileSize = 20 << 20
	DefaultMaxRows     = 50000
)

var zipMagic = []byte("PK\x03\x04")

// DetectFormat picks the format from the file extension, falling back to content sniffing
func DetectFormat(filename string, data []byte) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case "":
		if bytes.HasPrefix(data, zipMagic) {
			return FormatXLSX, nil
		}
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
}

// Result is a parsed product table
type Result struct {
	Source  string
	Format  Format
	Sheet   string
	Headers []string
	Rows    []*Row
	// Missing lists the recognized product columns the table lacks
	Missing []string
}

// RawRows returns the data rows as product rows, in file order
func (r *Result) RawRows() []product.RawRow {
	out := make([]product.RawRow, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.Raw()
	}
	return out
}

// Loader reads product tables from disk or uploads
type Loader struct {
	maxFileSize int64
	maxRows     int
	sheet       string
	delimiter   rune
}

// LoaderOption is a functional option for Loader
type LoaderOption func(*Loader)

// WithMaxFileSize sets the maximum accepted file size in bytes
func WithMaxFileSize(size int64) LoaderOption {
	return func(l *Loader) {
		if size > 0 {
			l.maxFileSize = size
		}
	}
}

// WithMaxRows sets the maximum number of data rows
func WithMaxRows(rows int) LoaderOption {
	return func(l *Loader) {
		if rows > 0 {
			l.maxRows = rows
		}
	}
}

// WithSheet sets the preferred xlsx worksheet
func WithSheet(sheet string) LoaderOption {
	return func(l *Loader) {
		l.sheet = sheet
	}
}

// WithCSVDelimiter sets the CSV field delimiter
func WithCSVDelimiter(d rune) LoaderOption {
	return func(l *Loader) {
		l.delimiter = d
	}
}

// NewLoader creates a Loader
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		maxFileSize: DefaultMaxFileSize,
		maxRows:     DefaultMaxRows,
		sheet:       DefaultSheet,
		delimiter:   ',',
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadFile reads and parses the table at path
func (l *Loader) LoadFile(path string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > l.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	res, err := l.Parse(filepath.Base(path), data)
	if err != nil {
		return nil, err
	}
	res.Source = path
	return res, nil
}

// Parse parses an in-memory table; filename only selects the format
func (l *Loader) Parse(filename string, data []byte) (*Result, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if int64(len(data)) > l.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, len(data))
	}

	format, err := DetectFormat(filename, data)
	if err != nil {
		return nil, err
	}

	res := &Result{Source: filename, Format: format}
	switch format {
	case FormatXLSX:
		res.Sheet, res.Headers, res.Rows, err = NewXLSXReader(l.sheet).Read(data)
		if err != nil {
			return nil, err
		}
	default:
		if err := l.parseCSV(data, res); err != nil {
			return nil, err
		}
	}

	present := make(map[string]bool, len(res.Headers))
	for _, h := range res.Headers {
		present[h] = true
	}
	if !present[product.ColumnProductID] && !present[product.ColumnProductName] {
		return nil, fmt.Errorf("%w: need %s or %s", ErrMissingHeader, product.ColumnProductID, product.ColumnProductName)
	}
	for _, c := range product.Columns {
		if !present[c] {
			res.Missing = append(res.Missing, c)
		}
	}

	if len(res.Rows) == 0 {
		return nil, ErrNoDataRows
	}
	if len(res.Rows) > l.maxRows {
		return nil, fmt.Errorf("%w: %d rows, limit %d", ErrTooManyRows, len(res.Rows), l.maxRows)
	}
	return res, nil
}

func (l *Loader) parseCSV(data []byte, res *Result) error {
	parser, err := ParseFromBytes(data, WithDelimiter(l.delimiter))
	if err != nil {
		return err
	}
	if err := parser.ParseHeader(); err != nil {
		return err
	}
	rows, err := parser.ReadAllRows()
	if err != nil {
		return fmt.Errorf("%s: %w", ErrCodeImportMalformedRow, err)
	}
	res.Headers = parser.Headers()
	res.Rows = rows
	return nil
}
