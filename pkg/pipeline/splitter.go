package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-ssscraper/pkg/pipeline/model"
)

// Splitter copies every input to each of its branches.
type Splitter[I any] struct {
	mu            sync.Mutex
	currIdx       int
	mainStep      *model.Step[I]
	splittedSteps []*model.Step[I]
	bufferSize    int
	Total         int
}

// Get returns the next unclaimed branch, or false once all of them are taken.
func (s *Splitter[I]) Get() (*model.Step[I], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currIdx >= len(s.splittedSteps) {
		return nil, false
	}

	step := s.splittedSteps[s.currIdx]
	s.currIdx++

	return step, true
}

// SplitterFn decides whether an input is forwarded to its branch.
type SplitterFn[I any] func(input I) (bool, error)

func keepAll[I any](I) (bool, error) { return true, nil }

// AddSplitter adds a splitter broadcasting every input to total branches.
func AddSplitter[I any](pipe *Pipeline, name string, input *model.Step[I], total int, opts ...SplitterOption[I]) (*Splitter[I], error) {
	if total <= 0 {
		return nil, ErrSplitterTotal
	}

	fns := make([]SplitterFn[I], total)
	for i := range fns {
		fns[i] = keepAll[I]
	}

	return addSplitter(pipe, name, input, fns, opts...)
}

// AddSplitterFn adds a splitter with one branch per function. A branch only
// receives the inputs its function accepts.
func AddSplitterFn[I any](pipe *Pipeline, name string, input *model.Step[I], fns []SplitterFn[I], opts ...SplitterOption[I]) (*Splitter[I], error) {
	if len(fns) == 0 {
		return nil, ErrSplitterTotal
	}

	return addSplitter(pipe, name, input, fns, opts...)
}

func prepareSplitter[I any](pipe *Pipeline, name string, input *model.Step[I], total int, opts ...SplitterOption[I]) (*Splitter[I], error) {
	splitter := &Splitter[I]{
		Total: total,
		mainStep: &model.Step[I]{
			Details: &model.StepInfo{
				Type:       model.SplitterStepType,
				Name:       name,
				Concurrent: 1,
			},
		},
	}

	for _, opt := range opts {
		opt(splitter)
	}

	if splitter.bufferSize == 0 {
		splitter.bufferSize = 1
	}

	splitter.mainStep.Details.BufferSize = splitter.bufferSize
	splitter.splittedSteps = make([]*model.Step[I], total)

	for i := range total {
		splitter.splittedSteps[i] = &model.Step[I]{
			Details: splitter.mainStep.Details,
			Output:  make(chan I),
		}
	}

	for _, opt := range pipe.opts {
		err := opt.PrepareSplitter(input.Info(), splitter.mainStep.Details)
		if err != nil {
			return nil, errors.Wrap(err, "unable to run before splitter function")
		}
	}

	return splitter, nil
}

func runSplitterBranch[I any](ctx context.Context, errC chan<- error, buf <-chan I, fn SplitterFn[I], output chan<- I) {
	defer close(output)

	for {
		select {
		case <-ctx.Done():
			pushError(errC, ctx.Err())

			return
		case elem, ok := <-buf:
			if !ok {
				return
			}

			keep, err := fn(elem)
			if err != nil {
				pushError(errC, errors.Wrap(err, "unable to run splitter function"))

				return
			}

			if !keep {
				continue
			}

			select {
			case <-ctx.Done():
				pushError(errC, ctx.Err())

				return
			case output <- elem:
			}
		}
	}
}

func addSplitter[I any](pipe *Pipeline, name string, input *model.Step[I], fns []SplitterFn[I], opts ...SplitterOption[I]) (*Splitter[I], error) {
	if pipe == nil {
		return nil, ErrPipelineMustBeSet
	}

	if input == nil {
		return nil, ErrInputMustBeSet
	}

	splitter, err := prepareSplitter(pipe, name, input, len(fns), opts...)
	if err != nil {
		return nil, err
	}

	errC := make(chan error, 1)
	decoratedError := newErrorChan(name, errC)

	splitterBuffer := make([]chan I, len(fns))
	for i := range splitterBuffer {
		splitterBuffer[i] = make(chan I, splitter.bufferSize)
	}

	wgrp := &sync.WaitGroup{}
	wgrp.Add(len(splitterBuffer))

	for i, buf := range splitterBuffer {
		go func() {
			defer wgrp.Done()
			runSplitterBranch(pipe.ctx, errC, buf, fns[i], splitter.splittedSteps[i].Output)
		}()
	}

	go func() {
		defer func() {
			for _, buf := range splitterBuffer {
				close(buf)
			}

			wgrp.Wait()
			close(errC)
		}()

		for {
			startIter := time.Now()
			select {
			case <-pipe.ctx.Done():
				pushError(errC, pipe.ctx.Err())

				return
			case entry, ok := <-input.Output:
				if !ok {
					return
				}

				startFn := time.Now()

				for _, buf := range splitterBuffer {
					select {
					case <-pipe.ctx.Done():
						pushError(errC, pipe.ctx.Err())

						return
					case buf <- entry:
					}
				}

				endFn := time.Since(startFn)
				endIter := time.Since(startIter) - endFn

				for _, opt := range pipe.opts {
					err := opt.OnSplitterOutput(input.Info(), splitter.mainStep.Details, endIter, endFn)
					if err != nil {
						pushError(errC, errors.Wrap(err, "unable to run splitter output function"))

						return
					}
				}
			}
		}
	}()

	pipe.errcList.add(decoratedError)

	return splitter, nil
}
