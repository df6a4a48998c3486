package document

import (
	"bytes"
	"errors"

	"tariff-cloud/internal/tariff/extraction"
)

const defaultColumnGap = 6.0

var (
	// ErrUnsupportedFormat is returned for content that is neither PDF nor XLSX.
	ErrUnsupportedFormat = errors.New("document: unsupported format")
	// ErrEmptyContent is returned for empty input.
	ErrEmptyContent = errors.New("document: empty content")
)

// Format identifies a document encoding.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// Sniff detects the format from the leading bytes.
func Sniff(data []byte) (Format, error) {
	switch {
	case len(data) == 0:
		return "", ErrEmptyContent
	case bytes.HasPrefix(data, []byte("%PDF")):
		return FormatPDF, nil
	case bytes.HasPrefix(data, []byte("PK")):
		return FormatXLSX, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Reader turns raw document bytes into header text and tables.
type Reader struct {
	columnGap float64
}

// ReaderOption configures the reader.
type ReaderOption func(*Reader)

// WithColumnGap sets the horizontal distance in points that separates two
// PDF table columns.
func WithColumnGap(gap float64) ReaderOption {
	return func(r *Reader) {
		if gap > 0 {
			r.columnGap = gap
		}
	}
}

// NewReader constructs a reader.
func NewReader(opts ...ReaderOption) *Reader {
	r := &Reader{columnGap: defaultColumnGap}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read sniffs data and dispatches to the matching reader.
func (r *Reader) Read(data []byte) (extraction.Document, error) {
	format, err := Sniff(data)
	if err != nil {
		return extraction.Document{}, err
	}
	if format == FormatPDF {
		return r.ReadPDF(data)
	}
	return ReadXLSX(data)
}
