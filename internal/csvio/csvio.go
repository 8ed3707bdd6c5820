package csvio

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/leapstack-labs/csvtranspose/internal/table"
)

const quote = '"'

var (
	// ErrUnterminatedQuote is returned when a quoted field is still open at the end of input.
	ErrUnterminatedQuote = errors.New("unterminated quoted field")
	// ErrQuote is returned when a closing quote is followed by something other
	// than a delimiter or a line break.
	ErrQuote = errors.New(`extraneous " after quoted field`)
)

// ParseError reports malformed delimited text.
type ParseError struct {
	StartLine int // line where the record starts
	Line      int // line where the error occurred
	Column    int // 1-based byte column where the error occurred
	Err       error
}

func (e *ParseError) Error() string {
	if e.StartLine != e.Line {
		return fmt.Sprintf("record on line %d: line %d, column %d: %v", e.StartLine, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("line %d, column %d: %v", e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ReadTable parses all rows from r into memory.
//
// Rows may have different field counts, and Transpose keeps only as many
// columns as the shortest row has. Empty lines are skipped rather than read as
// empty rows, so a blank line in the middle of a file does not collapse the
// transpose to nothing. A quote inside an unquoted field is kept literally.
// Quoted fields are returned byte for byte, including any CR or CRLF they
// hold. A UTF-8 or UTF-16 byte order mark at the start of the input is
// honored and removed.
func ReadTable(r io.Reader, d Dialect) (table.Table, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	enc, _ := d.encoding()

	var decoder transform.Transformer = transform.Nop
	if enc != nil {
		decoder = enc.NewDecoder()
	}

	data, err := io.ReadAll(transform.NewReader(r, unicode.BOMOverride(decoder)))
	if err != nil {
		return nil, err
	}

	p := &parser{data: data, comma: []byte(string(d.comma())), line: 1}
	rows := table.Table{}
	for p.pos < len(p.data) {
		if n := p.lineBreak(); n > 0 {
			p.newLine(n)
			continue
		}
		record, err := p.record()
		if err != nil {
			return nil, err
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// parser walks a fully loaded input. Offsets are in bytes.
type parser struct {
	data      []byte
	pos       int
	comma     []byte
	line      int
	lineStart int
}

// lineBreak returns the length of the line break at the current position:
// 2 for CRLF, 1 for a lone LF or CR, 0 otherwise.
func (p *parser) lineBreak() int {
	if p.pos >= len(p.data) {
		return 0
	}
	switch p.data[p.pos] {
	case '\n':
		return 1
	case '\r':
		if p.pos+1 < len(p.data) && p.data[p.pos+1] == '\n' {
			return 2
		}
		return 1
	}
	return 0
}

func (p *parser) newLine(n int) {
	p.pos += n
	p.line++
	p.lineStart = p.pos
}

func (p *parser) atComma() bool {
	return bytes.HasPrefix(p.data[p.pos:], p.comma)
}

func (p *parser) errorf(startLine int, err error) error {
	return &ParseError{StartLine: startLine, Line: p.line, Column: p.pos - p.lineStart + 1, Err: err}
}

// record reads fields up to and including the line break that ends the record.
func (p *parser) record() ([]string, error) {
	startLine := p.line
	var fields []string
	for {
		var (
			field string
			err   error
		)
		if p.data[p.pos] == quote {
			field, err = p.quotedField(startLine)
		} else {
			field = p.plainField()
		}
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)

		switch {
		case p.pos >= len(p.data):
			return fields, nil
		case p.atComma():
			p.pos += len(p.comma)
			if p.pos >= len(p.data) {
				// A trailing delimiter at end of input still ends an empty field.
				return append(fields, ""), nil
			}
		default:
			if n := p.lineBreak(); n > 0 {
				p.newLine(n)
				return fields, nil
			}
			return nil, p.errorf(startLine, ErrQuote)
		}
	}
}

// plainField reads an unquoted field. Quotes inside it are ordinary bytes.
func (p *parser) plainField() string {
	start := p.pos
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if c == '\n' || c == '\r' || p.atComma() {
			break
		}
		p.pos++
	}
	return string(p.data[start:p.pos])
}

// quotedField reads a field starting at an opening quote and stops just after
// the closing quote. A doubled quote stands for one literal quote.
func (p *parser) quotedField(startLine int) (string, error) {
	p.pos++
	var buf []byte
	for {
		if p.pos >= len(p.data) {
			return "", p.errorf(startLine, ErrUnterminatedQuote)
		}
		i := bytes.IndexAny(p.data[p.pos:], "\"\r\n")
		if i < 0 {
			p.pos = len(p.data)
			return "", p.errorf(startLine, ErrUnterminatedQuote)
		}
		buf = append(buf, p.data[p.pos:p.pos+i]...)
		p.pos += i

		if p.data[p.pos] != quote {
			n := p.lineBreak()
			buf = append(buf, p.data[p.pos:p.pos+n]...)
			p.newLine(n)
			continue
		}
		if p.pos+1 < len(p.data) && p.data[p.pos+1] == quote {
			buf = append(buf, quote)
			p.pos += 2
			continue
		}
		p.pos++
		return string(buf), nil
	}
}

// WriteTable serializes t to w, one row per line.
//
// Fields holding the delimiter, a quote, a CR or LF, or a leading space are
// quoted, with embedded quotes doubled. Line breaks inside fields are written
// unchanged; the dialect's terminator only ends rows. A row made of a single
// empty field is written as "" so it is not read back as a blank line.
func WriteTable(w io.Writer, t table.Table, d Dialect) error {
	if err := d.Validate(); err != nil {
		return err
	}
	enc, _ := d.encoding()

	dst := w
	var tw *transform.Writer
	if enc != nil {
		tw = transform.NewWriter(w, enc.NewEncoder())
		dst = tw
	}

	bw := bufio.NewWriter(dst)
	comma := string(d.comma())
	eol := "\n"
	if d.UseCRLF {
		eol = "\r\n"
	}

	for _, row := range t {
		for i, field := range row {
			if i > 0 {
				_, _ = bw.WriteString(comma)
			}
			writeField(bw, field, comma, len(row) == 1)
		}
		if _, err := bw.WriteString(eol); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if tw != nil {
		return tw.Close()
	}
	return nil
}

// writeField writes one field. bufio.Writer keeps the first error, which
// WriteTable picks up from the next write or Flush.
func writeField(bw *bufio.Writer, field, comma string, alone bool) {
	if !fieldNeedsQuote(field, comma) && (field != "" || !alone) {
		_, _ = bw.WriteString(field)
		return
	}

	_ = bw.WriteByte(quote)
	start := 0
	for i := 0; i < len(field); i++ {
		if field[i] == quote {
			_, _ = bw.WriteString(field[start : i+1])
			_ = bw.WriteByte(quote)
			start = i + 1
		}
	}
	_, _ = bw.WriteString(field[start:])
	_ = bw.WriteByte(quote)
}

func fieldNeedsQuote(field, comma string) bool {
	if field == "" {
		return false
	}
	if field[0] == ' ' || field[0] == '\t' {
		return true
	}
	for i := 0; i < len(field); i++ {
		switch field[i] {
		case quote, '\n', '\r':
			return true
		}
	}
	return strings.Contains(field, comma)
}
