package core

// streaming.go prepares uploaded dataset files for parsing.
//
// Uploaded files come from spreadsheets and text editors on every platform,
// so the reader chain handles:
//
//   - UTF-8 byte-order marks (dropped)
//   - UTF-16 files announced by a BOM (decoded to UTF-8)
//   - invalid UTF-8 sequences (replaced with U+FFFD)
//   - byte counting, for progress and size limits
//
// Use NewDatasetReader to apply all transforms in the correct order.

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrFileTooLarge is returned when a dataset exceeds the configured size.
var ErrFileTooLarge = errors.New("file too large")

// CountingReader wraps an io.Reader to track bytes read.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
}

// NewCountingReader creates a counting reader.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// NewDatasetReader wraps r so that it yields clean UTF-8 text.
//
// The order matters: bytes are counted as they arrive from the client, then
// the BOM decides the source encoding, then the decoder repairs invalid
// sequences.
func NewDatasetReader(r io.Reader) (io.Reader, *CountingReader) {
	counter := NewCountingReader(r)
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	return transform.NewReader(counter, decoder), counter
}

// ReadDataset reads a whole dataset through NewDatasetReader. Files larger
// than limit bytes (when limit > 0) fail with ErrFileTooLarge.
func ReadDataset(r io.Reader, limit int64) (string, error) {
	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}

	text, counter := NewDatasetReader(src)
	data, err := io.ReadAll(text)
	if err != nil {
		return "", fmt.Errorf("read dataset: %w", err)
	}
	if limit > 0 && counter.BytesRead > limit {
		return "", fmt.Errorf("%w: exceeds %d bytes", ErrFileTooLarge, limit)
	}

	return string(data), nil
}
