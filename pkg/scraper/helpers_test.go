package scraper_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-ssscraper/pkg/pipeline/model"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

var errPrepareSink = errors.New("prepare sink failed")

// failingSinkOption measures every step but refuses to prepare sinks.
type failingSinkOption struct {
	model.PipelineOption
}

func (*failingSinkOption) PrepareSink(_, _ *model.StepInfo) error {
	return errPrepareSink
}
