package scraper_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-ssscraper/pkg/scraper"
)

const sampleDataset = "1 2 3 4 ARNDCQEGHI HHHEEECCCC\n1 2 3 4 ARNDX HHHEE\n"

func TestReadLines(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "a.dat", sampleDataset)

	got, err := scraper.ReadLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"1 2 3 4 ARNDCQEGHI HHHEEECCCC"}, got)
}

func TestReadLinesKeepsOrderAndText(t *testing.T) {
	t.Parallel()

	content := strings.Join([]string{
		"p1 A 1 10 ACDE HHEE",
		"short line",
		"p2 A 1 10 ACDZ HHEE",
		"",
		"p3\tB 2 20   WYV   CCC",
		"p4 A 1 10 ACDE HHEX",
		"p5 A 1 10 MKL EHC\r",
	}, "\n")
	path := writeFile(t, t.TempDir(), "a.dat", content)

	got, err := scraper.ReadLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"p1 A 1 10 ACDE HHEE",
		"p3\tB 2 20   WYV   CCC",
		"p5 A 1 10 MKL EHC",
	}, got)

	for _, line := range got {
		assert.True(t, scraper.CheckIfCorrect(line))
	}
}

func TestReadLinesEmptyFile(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "a.dat", "")

	got, err := scraper.ReadLines(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadLinesMissingFile(t *testing.T) {
	t.Parallel()

	got, err := scraper.ReadLines(filepath.Join(t.TempDir(), "missing.dat"))
	require.ErrorIs(t, err, scraper.ErrOpen)
	assert.Nil(t, got)
}

func TestReadLinesInvalidUTF8(t *testing.T) {
	t.Parallel()

	content := "1 2 3 4 ACDE HHEE\n1 2 3 4 AC\xffDE HHEE\n1 2 3 4 ACDE HHEE\n"
	path := writeFile(t, t.TempDir(), "a.dat", content)

	got, err := scraper.ReadLines(path)
	require.ErrorIs(t, err, scraper.ErrRead)
	assert.Nil(t, got)

	var dsErr *scraper.DatasetError
	require.ErrorAs(t, err, &dsErr)
	assert.Equal(t, 2, dsErr.Line)
	assert.Equal(t, path, dsErr.Path)
}

func TestReadLinesTooLong(t *testing.T) {
	t.Parallel()

	content := "1 2 3 4 ACDE HHEE\n1 2 3 4 " + strings.Repeat("A", 200) + " " + strings.Repeat("H", 200) + "\n"
	path := writeFile(t, t.TempDir(), "a.dat", content)

	_, err := scraper.ReadLines(path, scraper.WithMaxLineSize(100))
	require.ErrorIs(t, err, scraper.ErrRead)

	got, err := scraper.ReadLines(path)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestReadLinesStrictFields(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "a.dat", "1 2 3 4 ACDE HHEE\n1 2 3\n1 2 3 4 ACDE HHEE\n")

	got, err := scraper.ReadLines(path)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = scraper.ReadLines(path, scraper.WithStrictFields())
	require.ErrorIs(t, err, scraper.ErrMalformedLine)
	assert.Nil(t, got)
	assert.Contains(t, err.Error(), path+":2")
}

func TestReadLinesStrictFieldsAllowsAlphabetViolations(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "a.dat", sampleDataset)

	got, err := scraper.ReadLines(path, scraper.WithStrictFields())
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestStreamLines(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "a.dat", "x\n1 2 3 4 ACDE HHEE\nbad\n1 2 3 4 WY CC\n")

	got := []scraper.Line{}
	err := scraper.StreamLines(t.Context(), path, func(line scraper.Line) error {
		got = append(got, line)

		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []scraper.Line{
		{Path: path, Number: 2, Text: "1 2 3 4 ACDE HHEE"},
		{Path: path, Number: 4, Text: "1 2 3 4 WY CC"},
	}, got)
}

func TestStreamLinesCallbackError(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "a.dat", "1 2 3 4 ACDE HHEE\n1 2 3 4 ACDE HHEE\n")

	calls := 0
	err := scraper.StreamLines(t.Context(), path, func(line scraper.Line) error {
		calls++

		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, calls)
}

func TestStreamLinesCancelled(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "a.dat", sampleDataset)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := scraper.StreamLines(ctx, path, func(line scraper.Line) error {
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
