package csvimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/pension/backend/internal/domain/product"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// encodingCheckSize bounds how much of the file is checked for UTF-8
const encodingCheckSize = 4096

// CSVParser reads a product table exported as CSV. Cells and headers are
// trimmed of ASCII and ideographic whitespace. Quotes are read leniently.
type CSVParser struct {
	delimiter rune
	reader    *csv.Reader
	columns   map[string]int
	headers   []string
	line      int
	rowsRead  int
}

// ParserOption configures a CSVParser
type ParserOption func(*CSVParser)

// WithDelimiter overrides the comma separator. A zero rune is ignored.
func WithDelimiter(d rune) ParserOption {
	return func(p *CSVParser) {
		if d != 0 {
			p.delimiter = d
		}
	}
}

// NewCSVParser strips a UTF-8 BOM and rejects input that is empty or not UTF-8.
func NewCSVParser(r io.Reader, opts ...ParserOption) (*CSVParser, error) {
	p := &CSVParser{delimiter: ',', columns: make(map[string]int)}
	for _, opt := range opts {
		opt(p)
	}

	br := bufio.NewReaderSize(r, encodingCheckSize)
	if err := skipBOM(br); err != nil {
		return nil, err
	}
	if err := checkEncoding(br); err != nil {
		return nil, err
	}

	p.reader = csv.NewReader(br)
	p.reader.Comma = p.delimiter
	p.reader.LazyQuotes = true
	p.reader.TrimLeadingSpace = true
	p.reader.FieldsPerRecord = -1
	return p, nil
}

// ParseFromBytes is NewCSVParser over an in-memory upload
func ParseFromBytes(data []byte, opts ...ParserOption) (*CSVParser, error) {
	return NewCSVParser(bytes.NewReader(data), opts...)
}

func skipBOM(br *bufio.Reader) error {
	head, err := br.Peek(len(utf8BOM))
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return nil
}

// checkEncoding validates the first encodingCheckSize bytes. A multi-byte
// rune cut at the window edge is trimmed off before validation.
func checkEncoding(br *bufio.Reader) error {
	head, err := br.Peek(encodingCheckSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return fmt.Errorf("failed to read file for encoding validation: %w", err)
	}
	if len(head) == 0 {
		return ErrEmptyFile
	}
	if len(head) == encodingCheckSize {
		head = trimPartialRune(head)
	}
	if !utf8.Valid(head) {
		return ErrInvalidEncoding
	}
	return nil
}

func trimPartialRune(b []byte) []byte {
	for i := 0; i < utf8.UTFMax-1 && len(b) > 0; i++ {
		r, size := utf8.DecodeLastRune(b)
		if r != utf8.RuneError || size != 1 {
			return b
		}
		b = b[:len(b)-1]
	}
	return b
}

// ParseHeader consumes the header line. It must be called before ReadRow.
func (p *CSVParser) ParseHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	if len(record) == 0 {
		return ErrMissingHeader
	}

	p.headers = make([]string, len(record))
	for i, h := range record {
		p.headers[i] = trimSpaces(h)
		p.columns[p.headers[i]] = i
	}
	p.line = 1
	return nil
}

// Headers returns the trimmed header names in file order
func (p *CSVParser) Headers() []string {
	return p.headers
}

// HasHeader reports whether the file has the named column
func (p *CSVParser) HasHeader(name string) bool {
	_, ok := p.columns[name]
	return ok
}

// ValidateHeaders lists the names in required that the file does not have
func (p *CSVParser) ValidateHeaders(required []string) []string {
	var missing []string
	for _, h := range required {
		if !p.HasHeader(h) {
			missing = append(missing, h)
		}
	}
	return missing
}

// Row is one data line of a product table keyed by header name
type Row struct {
	LineNumber int
	Data       map[string]string
}

// newRow maps cells onto headers. Columns with a blank header are dropped;
// cells missing at the end of a short line become empty strings.
func newRow(line int, headers, cells []string) *Row {
	row := &Row{LineNumber: line, Data: make(map[string]string, len(headers))}
	for i, h := range headers {
		if h == "" {
			continue
		}
		var v string
		if i < len(cells) {
			v = trimSpaces(cells[i])
		}
		row.Data[h] = v
	}
	return row
}

// Get returns the cell under header, or "" when the column is absent
func (r *Row) Get(header string) string {
	return r.Data[header]
}

// IsEmpty reports a line with no content, such as a trailing ",,,"
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// Raw copies the row into the domain's raw product form
func (r *Row) Raw() product.RawRow {
	raw := make(product.RawRow, len(r.Data))
	for k, v := range r.Data {
		raw[k] = v
	}
	return raw
}

// ReadRow returns the next line, or io.EOF after the last one. LineNumber
// counts the header as line 1.
func (p *CSVParser) ReadRow() (*Row, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	p.line++
	if err != nil {
		return nil, fmt.Errorf("error reading row %d: %w", p.line, err)
	}
	p.rowsRead++
	return newRow(p.line, p.headers, record), nil
}

// ReadAllRows drains the file, dropping blank lines. Rows read before a
// malformed line are returned with the error.
func (p *CSVParser) ReadAllRows() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := p.ReadRow()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		if !row.IsEmpty() {
			rows = append(rows, row)
		}
	}
}

// TotalRows counts data lines read so far, blank ones included
func (p *CSVParser) TotalRows() int {
	return p.rowsRead
}

// trimSpaces trims ASCII, ideographic and no-break spaces, which spreadsheet
// exports leave around Chinese headers and cells
func trimSpaces(s string) string {
	start, end := 0, len(s)
	for start < end {
		r, size := utf8.DecodeRuneInString(s[start:])
		if !isSpace(r) {
			break
		}
		start += size
	}
	for end > start {
		r, size := utf8.DecodeLastRuneInString(s[:end])
		if !isSpace(r) {
			break
		}
		end -= size
	}
	return s[start:end]
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f', '\u3000', '\u00a0':
		return true
	}
	return false
}
