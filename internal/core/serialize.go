package core

import (
	"bufio"
	"io"
	"strings"
)

// Serialize renders rows as a dataset file: the canonical header, one line
// per row, and a trailing newline.
func Serialize(rows []Row) string {
	var b strings.Builder
	_ = WriteDataset(&b, rows)
	return b.String()
}

// WriteDataset writes rows to w in the same format as Serialize.
func WriteDataset(w io.Writer, rows []Row) error {
	dw := NewDatasetWriter(w)
	for _, row := range rows {
		if err := dw.Write(row); err != nil {
			return err
		}
	}
	return dw.Flush()
}

// DatasetWriter streams rows in dataset format. The header is written
// before the first row, or on Flush if no row was written.
type DatasetWriter struct {
	w           *bufio.Writer
	wroteHeader bool
	err         error
}

// NewDatasetWriter returns a writer that buffers output to w.
func NewDatasetWriter(w io.Writer) *DatasetWriter {
	return &DatasetWriter{w: bufio.NewWriter(w)}
}

// Write appends one row.
func (d *DatasetWriter) Write(row Row) error {
	if d.err != nil {
		return d.err
	}
	if !d.wroteHeader {
		d.writeLine(Columns())
	}
	d.writeLine(row.Fields())
	return d.err
}

// Flush writes any buffered data to the underlying writer.
func (d *DatasetWriter) Flush() error {
	if d.err != nil {
		return d.err
	}
	if !d.wroteHeader {
		d.writeLine(Columns())
	}
	if d.err == nil {
		d.err = d.w.Flush()
	}
	return d.err
}

func (d *DatasetWriter) writeLine(fields []string) {
	d.wroteHeader = true
	for i, f := range fields {
		if i > 0 {
			d.writeString(",")
		}
		d.writeString(escapeField(f))
	}
	d.writeString("\n")
}

func (d *DatasetWriter) writeString(s string) {
	if d.err != nil {
		return
	}
	_, d.err = d.w.WriteString(s)
}

// escapeField quotes a field only when it holds a comma, quote or newline.
func escapeField(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
