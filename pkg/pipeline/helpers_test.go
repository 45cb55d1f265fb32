package pipeline_test

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/askiada/go-ssscraper/pkg/pipeline/measure"
	"github.com/askiada/go-ssscraper/pkg/pipeline/model"
)

func createInputChan(t *testing.T, total int) chan int {
	t.Helper()

	inputChan := make(chan int)

	go func() {
		defer close(inputChan)

		for i := range total {
			inputChan <- i
		}
	}()

	return inputChan
}

func processOutputChan(t *testing.T, output <-chan int) []int {
	t.Helper()

	res := []int{}

	for out := range output {
		res = append(res, out)
	}

	return res
}

var errPrepareSink = errors.New("prepare sink failed")

// failingSinkOption measures every step but refuses to prepare sinks.
type failingSinkOption struct {
	model.PipelineOption
}

func newFailingSinkOption() *failingSinkOption {
	return &failingSinkOption{measure.PipelineMeasure(measure.NewDefaultMeasure())}
}

func (*failingSinkOption) PrepareSink(_, _ *model.StepInfo) error {
	return errPrepareSink
}
