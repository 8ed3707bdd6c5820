// Package csvio reads and writes tables in delimited text format.
//
// Fields are separated by a single delimiter rune and rows by line
// boundaries. A field may be quoted with '"' to hold the delimiter, a quote or
// a line break; a doubled quote inside a quoted field stands for one literal
// quote. Bytes on disk may use any WHATWG encoding label; the table in memory
// is always UTF-8.
package csvio

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultEncoding is the byte encoding used when none is configured.
const DefaultEncoding = "utf-8"

var (
	// ErrInvalidDelimiter is returned for delimiters the format cannot represent.
	ErrInvalidDelimiter = errors.New("csvio: invalid delimiter")
	// ErrUnknownEncoding is returned for encoding labels that are not recognized.
	ErrUnknownEncoding = errors.New("csvio: unknown encoding")
)

// Dialect configures the text format.
type Dialect struct {
	// Comma is the field delimiter. Default is ','.
	Comma rune
	// UseCRLF terminates written rows with \r\n instead of \n.
	UseCRLF bool
	// Encoding is a WHATWG encoding label such as "utf-8" or "windows-1252".
	Encoding string
}

// DefaultDialect returns the comma separated, CRLF terminated, UTF-8 dialect.
func DefaultDialect() Dialect {
	return Dialect{
		Comma:    ',',
		UseCRLF:  true,
		Encoding: DefaultEncoding,
	}
}

// Validate checks that the dialect can be used for reading and writing.
func (d Dialect) Validate() error {
	if !validDelimiter(d.comma()) {
		return fmt.Errorf("%w: %q", ErrInvalidDelimiter, d.comma())
	}
	if _, err := d.encoding(); err != nil {
		return err
	}
	return nil
}

func (d Dialect) comma() rune {
	if d.Comma == 0 {
		return ','
	}
	return d.Comma
}

// encoding resolves the configured label. A nil result means UTF-8, which is
// passed through without transcoding.
func (d Dialect) encoding() (encoding.Encoding, error) {
	label := strings.TrimSpace(d.Encoding)
	if label == "" {
		return nil, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, d.Encoding)
	}
	if name, _ := htmlindex.Name(enc); name == DefaultEncoding {
		return nil, nil
	}
	return enc, nil
}

func validDelimiter(r rune) bool {
	return r != 0 && r != '"' && r != '\r' && r != '\n' && utf8.ValidRune(r) && r != utf8.RuneError
}

// ParseDelimiter converts a configured delimiter into a rune. Besides a single
// character it accepts the escapes `\t` and the names "tab", "comma",
// "semicolon" and "pipe".
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return ',', nil
	case `\t`, "tab":
		return '\t', nil
	case "comma":
		return ',', nil
	case "semicolon":
		return ';', nil
	case "pipe":
		return '|', nil
	}

	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || !validDelimiter(r) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDelimiter, s)
	}
	return r, nil
}
