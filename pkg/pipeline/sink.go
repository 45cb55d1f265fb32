package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-ssscraper/pkg/pipeline/model"
)

func prepareSink[I any](pipe *Pipeline, name string, input *model.Step[I]) (*model.StepInfo, error) {
	if pipe == nil {
		return nil, ErrPipelineMustBeSet
	}

	if input == nil {
		return nil, ErrInputMustBeSet
	}

	details := &model.StepInfo{
		Type:       model.SinkStepType,
		Name:       name,
		Concurrent: 1,
	}

	for _, opt := range pipe.opts {
		err := opt.PrepareSink(input.Info(), details)
		if err != nil {
			return nil, errors.Wrap(err, "unable to run before sink function")
		}
	}

	return details, nil
}

func (p *Pipeline) afterSink(details *model.StepInfo) error {
	for _, opt := range p.opts {
		err := opt.AfterSink(details, time.Since(p.startTime))
		if err != nil {
			return errors.Wrap(err, "unable to run after sink function")
		}
	}

	return nil
}

func runSink[I any](ctx context.Context, pipe *Pipeline, input *model.Step[I], details *model.StepInfo, sinkFn func(ctx context.Context, input I) error) error {
	for {
		startIter := time.Now()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in, ok := <-input.Output:
			if !ok {
				return pipe.afterSink(details)
			}

			startFn := time.Now()

			err := sinkFn(ctx, in)
			if err != nil {
				return err
			}

			endFn := time.Since(startFn)

			for _, opt := range pipe.opts {
				err := opt.OnSinkOutput(input.Info(), details, time.Since(startIter)-endFn, endFn)
				if err != nil {
					return errors.Wrap(err, "unable to run sink output function")
				}
			}
		}
	}
}

// AddSink adds a final step calling sinkFn for every input.
func AddSink[I any](pipe *Pipeline, name string, input *model.Step[I], sinkFn func(ctx context.Context, input I) error) error {
	details, err := prepareSink(pipe, name, input)
	if err != nil {
		return err
	}

	errC := make(chan error, 1)
	decoratedError := newErrorChan(name, errC)

	go func() {
		defer close(errC)

		err := runSink(pipe.ctx, pipe, input, details, sinkFn)
		if err != nil {
			pushError(errC, err)
		}
	}()

	pipe.errcList.add(decoratedError)

	return nil
}

// AddSinkFromChan adds a final step handing the whole input channel to stepFn.
func AddSinkFromChan[I any](pipe *Pipeline, name string, input *model.Step[I], stepFn func(ctx context.Context, input <-chan I) error) error {
	details, err := prepareSink(pipe, name, input)
	if err != nil {
		return err
	}

	errC := make(chan error, 1)
	decoratedError := newErrorChan(name, errC)

	go func() {
		defer close(errC)

		err := stepFn(pipe.ctx, input.Output)
		if err != nil {
			pushError(errC, err)

			return
		}

		err = pipe.afterSink(details)
		if err != nil {
			pushError(errC, err)
		}
	}()

	pipe.errcList.add(decoratedError)

	return nil
}
