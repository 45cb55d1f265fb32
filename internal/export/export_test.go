package export_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-ssscraper/internal/export"
	"github.com/askiada/go-ssscraper/pkg/scraper"
)

func sampleLines(n int) []scraper.Line {
	lines := make([]scraper.Line, 0, n)
	for i := range n {
		lines = append(lines, scraper.Line{
			Path:   fmt.Sprintf("data/f%d.dat", i%2),
			Number: i + 1,
			Text:   fmt.Sprintf("p%d A %d 4 ACD%c HHE%c", i, i, "EK"[i%2], "CH"[i%2]),
		})
	}

	return lines
}

func TestFormatFor(t *testing.T) {
	t.Parallel()

	tcs := map[string]export.Format{
		"-":              export.FormatText,
		"out.txt":        export.FormatText,
		"out.arrow":      export.FormatArrow,
		"dir/OUT.ARROW":  export.FormatArrow,
		"out.arrow.back": export.FormatText,
	}

	for path, want := range tcs {
		t.Run(path, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, want, export.FormatFor(path))
		})
	}
}

func TestWriteText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, export.WriteText(&buf, sampleLines(2)))
	assert.Equal(t, "p0 A 0 4 ACDE HHEC\np1 A 1 4 ACDK HHEH\n", buf.String())
}

func TestWriteArrowRoundTrip(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		rows      int
		batchSize int
		batches   int
	}{
		"empty":        {rows: 0, batchSize: 4, batches: 0},
		"single batch": {rows: 3, batchSize: 4, batches: 1},
		"exact":        {rows: 8, batchSize: 4, batches: 2},
		"remainder":    {rows: 9, batchSize: 4, batches: 3},
		"default size": {rows: 5, batchSize: 0, batches: 1},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			lines := sampleLines(tc.rows)

			var buf bytes.Buffer
			require.NoError(t, export.WriteArrow(&buf, lines, tc.batchSize))

			rdr, err := ipc.NewReader(&buf, ipc.WithAllocator(memory.NewGoAllocator()))
			require.NoError(t, err)
			defer rdr.Release()

			assert.True(t, rdr.Schema().Equal(export.Schema()))

			batches, row := 0, 0

			for rdr.Next() {
				rec := rdr.Record()
				batches++

				paths := rec.Column(0).(*array.String)
				numbers := rec.Column(1).(*array.Int64)
				aminoAcids := rec.Column(2).(*array.String)
				structures := rec.Column(3).(*array.String)

				for i := range int(rec.NumRows()) {
					want := lines[row]
					record, err := scraper.ParseLine(want.Text)
					require.NoError(t, err)

					assert.Equal(t, want.Path, paths.Value(i))
					assert.Equal(t, int64(want.Number), numbers.Value(i))
					assert.Equal(t, record.AminoAcids, aminoAcids.Value(i))
					assert.Equal(t, record.Structure, structures.Value(i))

					row++
				}
			}

			require.NoError(t, rdr.Err())
			assert.Equal(t, tc.rows, row)
			assert.Equal(t, tc.batches, batches)
		})
	}
}

func TestWriteArrowRejectsInvalidLine(t *testing.T) {
	t.Parallel()

	lines := []scraper.Line{{Path: "a.dat", Number: 7, Text: "too short"}}

	var buf bytes.Buffer
	err := export.WriteArrow(&buf, lines, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, scraper.ErrMalformedLine))
	assert.Contains(t, err.Error(), "a.dat:7")
}

func TestWriteUnknownFormat(t *testing.T) {
	t.Parallel()

	err := export.Write(&bytes.Buffer{}, export.Format("csv"), nil)
	require.Error(t, err)
}
