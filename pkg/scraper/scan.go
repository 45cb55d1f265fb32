package scraper

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/askiada/go-ssscraper/pkg/pipeline"
	"github.com/askiada/go-ssscraper/pkg/pipeline/model"
)

// Step names of the scan pipeline.
const (
	CollectStepName  = "collect"
	ReadStepName     = "read"
	ValidateStepName = "validate"
	KeptStepName     = "kept"
	RejectedStepName = "rejected"
)

// Result is the outcome of a Scan.
type Result struct {
	RunID string
	// Files lists the dataset files in collection order.
	Files []string
	// Lines holds the valid lines ordered by file, then by line number.
	Lines []Line
	// Rejected counts the lines that failed validation.
	Rejected int
}

type scanOptions struct {
	concurrency  int
	bufferSize   int
	logger       *zap.Logger
	pipelineOpts []model.PipelineOption
	readOpts     []ReadOption
}

// ScanOption configures Scan.
type ScanOption func(o *scanOptions)

// ScanConcurrency sets how many files are read at the same time.
func ScanConcurrency(concurrency int) ScanOption {
	return func(o *scanOptions) {
		o.concurrency = concurrency
	}
}

// ScanBufferSize sets how many lines may wait between the read and validate steps.
func ScanBufferSize(size int) ScanOption {
	return func(o *scanOptions) {
		o.bufferSize = max(size, 0)
	}
}

// ScanLogger sets the logger. Scan does not log by default.
func ScanLogger(logger *zap.Logger) ScanOption {
	return func(o *scanOptions) {
		o.logger = logger
	}
}

// ScanPipelineOptions attaches options observing the scan pipeline.
func ScanPipelineOptions(opts ...model.PipelineOption) ScanOption {
	return func(o *scanOptions) {
		o.pipelineOpts = append(o.pipelineOpts, opts...)
	}
}

// ScanReadOptions sets the options used to read every file.
func ScanReadOptions(opts ...ReadOption) ScanOption {
	return func(o *scanOptions) {
		o.readOpts = append(o.readOpts, opts...)
	}
}

type checkedLine struct {
	Line
	valid bool
}

// Scan collects the dataset files of directory and keeps their valid lines.
//
// Files are read concurrently by a pipeline of steps: collect, read, validate
// and the kept/rejected sinks. The result does not depend on the concurrency.
// Any error aborts the whole scan.
func Scan(ctx context.Context, directory string, opts ...ScanOption) (*Result, error) {
	o := scanOptions{concurrency: 1, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	res := &Result{RunID: uuid.NewString()}
	logger := o.logger.With(zap.String("run_id", res.RunID), zap.String("directory", directory))

	files, err := CollectFiles(directory)
	if err != nil {
		return nil, err
	}

	res.Files = files
	logger.Info("dataset files collected", zap.Int("files", len(files)))

	pipe, err := buildScanPipeline(ctx, files, res, logger, o)
	if err != nil {
		return nil, errors.Wrap(err, "unable to build scan pipeline")
	}

	err = pipe.Run()
	if err != nil {
		logger.Error("scan failed", zap.Error(err))

		return nil, err
	}

	sortLines(res.Lines, files)
	logger.Info("scan done", zap.Int("kept", len(res.Lines)), zap.Int("rejected", res.Rejected))

	return res, nil
}

// buildScanPipeline starts the scan steps. On error the steps already
// started are cancelled.
func buildScanPipeline(ctx context.Context, files []string, res *Result, logger *zap.Logger, o scanOptions) (_ *pipeline.Pipeline, err error) {
	readOpts := newReadOptions(o.readOpts...)

	pipe, err := pipeline.New(ctx, o.pipelineOpts...)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			pipe.Close()
		}
	}()

	collected, err := pipeline.AddRootStep(pipe, CollectStepName, func(ctx context.Context, rootChan chan<- string) error {
		for _, file := range files {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case rootChan <- file:
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	read, err := pipeline.AddStepOneToMany(pipe, ReadStepName, collected, func(ctx context.Context, path string) ([]checkedLine, error) {
		lines := []checkedLine{}

		err := scanLines(ctx, path, readOpts, func(line Line) error {
			lines = append(lines, checkedLine{Line: line, valid: CheckIfCorrect(line.Text)})

			return nil
		})
		if err != nil {
			return nil, err
		}

		logger.Debug("dataset file read", zap.String("path", path), zap.Int("lines", len(lines)))

		return lines, nil
	}, pipeline.StepConcurrency[checkedLine](o.concurrency), pipeline.StepBufferSize[checkedLine](o.bufferSize))
	if err != nil {
		return nil, err
	}

	splitter, err := pipeline.AddSplitterFn(pipe, ValidateStepName, read, []pipeline.SplitterFn[checkedLine]{
		func(line checkedLine) (bool, error) { return line.valid, nil },
		func(line checkedLine) (bool, error) { return !line.valid, nil },
	})
	if err != nil {
		return nil, err
	}

	kept, _ := splitter.Get()
	rejected, _ := splitter.Get()

	err = pipeline.AddSink(pipe, KeptStepName, kept, func(_ context.Context, line checkedLine) error {
		res.Lines = append(res.Lines, line.Line)

		return nil
	})
	if err != nil {
		return nil, err
	}

	err = pipeline.AddSink(pipe, RejectedStepName, rejected, func(_ context.Context, line checkedLine) error {
		res.Rejected++

		logger.Debug("line rejected", zap.String("path", line.Path), zap.Int("line", line.Number))

		return nil
	})
	if err != nil {
		return nil, err
	}

	return pipe, nil
}

func sortLines(lines []Line, files []string) {
	order := make(map[string]int, len(files))
	for i, file := range files {
		order[file] = i
	}

	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].Path != lines[j].Path {
			return order[lines[i].Path] < order[lines[j].Path]
		}

		return lines[i].Number < lines[j].Number
	})
}
