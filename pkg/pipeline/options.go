package pipeline

import "github.com/askiada/go-ssscraper/pkg/pipeline/model"

// StepOption configures a step before it starts.
type StepOption[O any] func(s *model.Step[O])

// StepConcurrency sets the number of goroutines consuming the step input.
func StepConcurrency[O any](concurrent int) StepOption[O] {
	return func(s *model.Step[O]) {
		s.Details.Concurrent = concurrent
	}
}

// StepBufferSize sets the capacity of the step output channel. Negative
// sizes are treated as 0.
func StepBufferSize[O any](bufferSize int) StepOption[O] {
	return func(s *model.Step[O]) {
		s.Details.BufferSize = max(bufferSize, 0)
	}
}

// SplitterOption configures a splitter before it starts.
type SplitterOption[I any] func(s *Splitter[I])

// SplitterBufferSize sets how many inputs may wait in front of each branch.
// Sizes below 1 keep the default of 1.
func SplitterBufferSize[I any](bufferSize int) SplitterOption[I] {
	return func(s *Splitter[I]) {
		s.bufferSize = max(bufferSize, 0)
	}
}
