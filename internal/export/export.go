// Package export writes scan results to plain text or Arrow IPC streams.
package export

import (
	"bufio"
	"io"
	"path/filepath"
	"strings"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/pkg/errors"

	"github.com/askiada/go-ssscraper/pkg/scraper"
)

// DefaultBatchSize is the number of rows per Arrow record batch.
const DefaultBatchSize = 1024

// Arrow column names.
const (
	ColumnPath       = "path"
	ColumnLine       = "line"
	ColumnAminoAcids = "amino_acids"
	ColumnStructure  = "structure"
)

// Format selects the output encoding.
type Format string

const (
	FormatText  Format = "text"
	FormatArrow Format = "arrow"
)

// FormatFor picks the encoding from an output path: ".arrow" files get Arrow IPC.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".arrow") {
		return FormatArrow
	}

	return FormatText
}

// Schema returns the Arrow schema of exported lines.
func Schema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: ColumnPath, Type: arrow.BinaryTypes.String},
		{Name: ColumnLine, Type: arrow.PrimitiveTypes.Int64},
		{Name: ColumnAminoAcids, Type: arrow.BinaryTypes.String},
		{Name: ColumnStructure, Type: arrow.BinaryTypes.String},
	}, nil)
}

// WriteText writes one retained line per output line.
func WriteText(w io.Writer, lines []scraper.Line) error {
	bw := bufio.NewWriter(w)

	for _, line := range lines {
		if _, err := bw.WriteString(line.Text); err != nil {
			return errors.Wrap(err, "unable to write line")
		}

		if err := bw.WriteByte('\n'); err != nil {
			return errors.Wrap(err, "unable to write line")
		}
	}

	return errors.Wrap(bw.Flush(), "unable to flush lines")
}

// ArrowWriter streams lines as Arrow IPC record batches.
type ArrowWriter struct {
	pool      memory.Allocator
	builder   *array.RecordBuilder
	writer    *ipc.Writer
	batchSize int
	pending   int
}

// NewArrowWriter starts an IPC stream on w.
func NewArrowWriter(w io.Writer, batchSize int) *ArrowWriter {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}

	pool := memory.NewGoAllocator()
	schema := Schema()

	return &ArrowWriter{
		pool:      pool,
		builder:   array.NewRecordBuilder(pool, schema),
		writer:    ipc.NewWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(pool)),
		batchSize: batchSize,
	}
}

// Write appends one line, flushing a record batch when it is full.
func (aw *ArrowWriter) Write(line scraper.Line) error {
	record, err := scraper.ParseLine(line.Text)
	if err != nil {
		return errors.Wrapf(err, "unable to export %s:%d", line.Path, line.Number)
	}

	aw.builder.Field(0).(*array.StringBuilder).Append(line.Path)
	aw.builder.Field(1).(*array.Int64Builder).Append(int64(line.Number))
	aw.builder.Field(2).(*array.StringBuilder).Append(record.AminoAcids)
	aw.builder.Field(3).(*array.StringBuilder).Append(record.Structure)
	aw.pending++

	if aw.pending >= aw.batchSize {
		return aw.flush()
	}

	return nil
}

func (aw *ArrowWriter) flush() error {
	if aw.pending == 0 {
		return nil
	}

	rec := aw.builder.NewRecord()
	defer rec.Release()

	aw.pending = 0

	return errors.Wrap(aw.writer.Write(rec), "unable to write record batch")
}

// Close flushes the last batch and ends the stream. It does not close the
// underlying writer.
func (aw *ArrowWriter) Close() error {
	defer aw.builder.Release()

	if err := aw.flush(); err != nil {
		return err
	}

	return errors.Wrap(aw.writer.Close(), "unable to close arrow stream")
}

// WriteArrow writes every line as an Arrow IPC stream.
func WriteArrow(w io.Writer, lines []scraper.Line, batchSize int) error {
	aw := NewArrowWriter(w, batchSize)

	for _, line := range lines {
		if err := aw.Write(line); err != nil {
			_ = aw.Close()

			return err
		}
	}

	return aw.Close()
}

// Write encodes lines to w in the given format.
func Write(w io.Writer, format Format, lines []scraper.Line) error {
	switch format {
	case FormatArrow:
		return WriteArrow(w, lines, DefaultBatchSize)
	case FormatText:
		return WriteText(w, lines)
	default:
		return errors.Errorf("unknown export format %q", format)
	}
}
