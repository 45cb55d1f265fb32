package scraper_test

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/askiada/go-ssscraper/pkg/pipeline/measure"
	"github.com/askiada/go-ssscraper/pkg/scraper"
)

func buildDataset(t *testing.T, files, linesPerFile int) string {
	t.Helper()

	dir := t.TempDir()

	for f := range files {
		var content strings.Builder

		for l := range linesPerFile {
			switch l % 3 {
			case 0:
				fmt.Fprintf(&content, "p%d_%d A %d 10 ACDEFGHIKL HHHHEEEECC\n", f, l, l)
			case 1:
				fmt.Fprintf(&content, "p%d_%d A %d 10 ACDEFGHIKX HHHHEEEECC\n", f, l, l)
			default:
				fmt.Fprintf(&content, "p%d_%d short\n", f, l)
			}
		}

		writeFile(t, dir, fmt.Sprintf("file%02d.dat", f), content.String())
	}

	writeFile(t, dir, "ignored.txt", "p A 1 10 ACDE HHEE\n")

	return dir
}

func readAll(t *testing.T, dir string) []string {
	t.Helper()

	files, err := scraper.CollectFiles(dir)
	require.NoError(t, err)

	all := []string{}

	for _, file := range files {
		lines, err := scraper.ReadLines(file)
		require.NoError(t, err)

		all = append(all, lines...)
	}

	return all
}

func TestScanMatchesReadLines(t *testing.T) {
	t.Parallel()

	dir := buildDataset(t, 6, 30)
	want := readAll(t, dir)

	for _, conc := range []int{0, 1, 2, 8} {
		t.Run(fmt.Sprintf("concurrency %d", conc), func(t *testing.T) {
			t.Parallel()

			res, err := scraper.Scan(t.Context(), dir, scraper.ScanConcurrency(conc), scraper.ScanBufferSize(4))
			require.NoError(t, err)

			got := make([]string, len(res.Lines))
			for i, line := range res.Lines {
				got[i] = line.Text
			}

			assert.Equal(t, want, got)
			assert.Len(t, res.Files, 6)
			assert.Equal(t, 6*20, res.Rejected)
			assert.NotEmpty(t, res.RunID)
		})
	}
}

func TestScanEndToEnd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "a.dat", sampleDataset)
	writeFile(t, dir, "b.txt", sampleDataset)
	writeFile(t, dir, "c.DAT", sampleDataset)

	res, err := scraper.Scan(t.Context(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, res.Files)
	assert.Equal(t, []scraper.Line{{Path: path, Number: 1, Text: "1 2 3 4 ARNDCQEGHI HHHEEECCCC"}}, res.Lines)
	assert.Equal(t, 1, res.Rejected)
}

func TestScanEmptyDirectory(t *testing.T) {
	t.Parallel()

	res, err := scraper.Scan(t.Context(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, res.Files)
	assert.Empty(t, res.Lines)
}

func TestScanMissingDirectory(t *testing.T) {
	t.Parallel()

	_, err := scraper.Scan(t.Context(), filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, scraper.ErrCollect)
}

func TestScanReadError(t *testing.T) {
	t.Parallel()

	dir := buildDataset(t, 4, 10)
	writeFile(t, dir, "broken.dat", "1 2 3 4 ACDE HHEE\n\xff\xfe\n")

	_, err := scraper.Scan(t.Context(), dir, scraper.ScanConcurrency(2))
	require.ErrorIs(t, err, scraper.ErrRead)
	assert.Contains(t, err.Error(), scraper.ReadStepName)
}

func TestScanStrictFields(t *testing.T) {
	t.Parallel()

	dir := buildDataset(t, 2, 5)

	_, err := scraper.Scan(t.Context(), dir, scraper.ScanReadOptions(scraper.WithStrictFields()))
	assert.ErrorIs(t, err, scraper.ErrMalformedLine)
}

func TestScanCancelled(t *testing.T) {
	t.Parallel()

	dir := buildDataset(t, 3, 10)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := scraper.Scan(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanLogsAndMeasures(t *testing.T) {
	t.Parallel()

	dir := buildDataset(t, 2, 6)
	core, logs := observer.New(zap.DebugLevel)
	msr := measure.NewDefaultMeasure()

	res, err := scraper.Scan(t.Context(), dir,
		scraper.ScanLogger(zap.New(core)),
		scraper.ScanPipelineOptions(measure.PipelineMeasure(msr)),
	)
	require.NoError(t, err)

	assert.Equal(t, 2, logs.FilterMessage("dataset file read").Len())
	assert.Equal(t, res.Rejected, logs.FilterMessage("line rejected").Len())
	assert.Equal(t, 1, logs.FilterMessage("scan done").FilterField(zap.String("run_id", res.RunID)).Len())

	assert.EqualValues(t, len(res.Lines), msr.GetMetric(scraper.KeptStepName).Total())
	assert.EqualValues(t, res.Rejected, msr.GetMetric(scraper.RejectedStepName).Total())
	assert.EqualValues(t, 12, msr.GetMetric(scraper.ReadStepName).Total())
}

// Not parallel: it compares the process goroutine count.
func TestScanBuildFailureStopsSteps(t *testing.T) {
	dir := buildDataset(t, 4, 30)
	before := runtime.NumGoroutine()

	for range 10 {
		opt := &failingSinkOption{measure.PipelineMeasure(measure.NewDefaultMeasure())}

		res, err := scraper.Scan(t.Context(), dir, scraper.ScanConcurrency(2), scraper.ScanPipelineOptions(opt))
		require.ErrorIs(t, err, errPrepareSink)
		assert.Nil(t, res)
	}

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, 2*time.Second, 10*time.Millisecond)
}

func TestScanNegativeBufferSize(t *testing.T) {
	t.Parallel()

	dir := buildDataset(t, 2, 6)

	res, err := scraper.Scan(t.Context(), dir, scraper.ScanBufferSize(-1))
	require.NoError(t, err)
	assert.Len(t, res.Lines, 4)
}
