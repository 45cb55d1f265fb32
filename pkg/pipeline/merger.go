package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-ssscraper/pkg/pipeline/model"
)

func prepareMerger[I any](pipe *Pipeline, output chan I, name string, steps ...*model.Step[I]) (*model.Step[I], error) {
	if pipe == nil {
		return nil, ErrPipelineMustBeSet
	}

	outputStep := &model.Step[I]{
		Details: &model.StepInfo{
			Type:       model.MergerStepType,
			Name:       name,
			Concurrent: 1,
		},
		Output: output,
	}

	stepInfos := make([]*model.StepInfo, len(steps))

	for i, step := range steps {
		if step == nil {
			return nil, ErrInputMustBeSet
		}

		stepInfos[i] = step.Info()
	}

	for _, opt := range pipe.opts {
		err := opt.PrepareMerger(stepInfos, outputStep.Details)
		if err != nil {
			return nil, errors.Wrap(err, "unable to run before merger function")
		}
	}

	return outputStep, nil
}

func runStepMerger[I any](ctx context.Context, pipe *Pipeline, errC chan error, step, outputStep *model.Step[I]) {
	for {
		startIter := time.Now()
		select {
		case <-ctx.Done():
			pushError(errC, ctx.Err())

			return
		case entry, ok := <-step.Output:
			if !ok {
				return
			}

			select {
			case <-ctx.Done():
				pushError(errC, ctx.Err())

				return
			case outputStep.Output <- entry:
				endIter := time.Since(startIter)

				for _, opt := range pipe.opts {
					err := opt.OnMergerOutput(step.Info(), outputStep.Details, endIter)
					if err != nil {
						pushError(errC, errors.Wrap(err, "unable to run merger output function"))

						return
					}
				}
			}
		}
	}
}

// AddMerger adds a merger step to the pipeline. It merges the output of the steps into a single channel.
// The merger goroutines start when the pipeline runs.
func AddMerger[I any](pipe *Pipeline, name string, steps ...*model.Step[I]) (*model.Step[I], error) {
	output := make(chan I)

	outputStep, err := prepareMerger(pipe, output, name, steps...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to prepare merger")
	}

	errC := make(chan error, len(steps))
	decoratedError := newErrorChan(name, errC)
	wgrp := sync.WaitGroup{}
	wgrp.Add(len(steps))

	pipe.goFn = append(pipe.goFn, func(context.Context) {
		wgrp.Wait()
		close(errC)
		close(output)
	})

	for _, step := range steps {
		pipe.goFn = append(pipe.goFn, func(ctx context.Context) {
			defer wgrp.Done()
			runStepMerger(ctx, pipe, errC, step, outputStep)
		})
	}

	pipe.errcList.add(decoratedError)

	return outputStep, nil
}
