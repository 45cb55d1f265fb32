package pipeline

import (
	"context"
	"reflect"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-ssscraper/pkg/pipeline/model"
)

// outputHook is called every time a value is pushed to the output of a step.
type outputHook func(parent, step *model.StepInfo, iteration, computation time.Duration) error

func noHook(_, _ *model.StepInfo, _, _ time.Duration) error { return nil }

func concurrency[O any](step *model.Step[O]) int {
	if step.Details == nil || step.Details.Concurrent < 1 {
		return 1
	}

	return step.Details.Concurrent
}

func isZero[O any](out O) bool {
	return reflect.ValueOf(&out).Elem().IsZero()
}

// runConcurrently starts the sequential consumer as many times as the output step concurrency.
// Each consumer stops as soon as one of them fails.
func runConcurrently[O any](ctx context.Context, output *model.Step[O], fn func(ctx context.Context, goIdx int) error) error {
	conc := concurrency(output)
	if conc == 1 {
		return fn(ctx, 1)
	}

	errGrp, dCtx := errgroup.WithContext(ctx)
	errGrp.SetLimit(conc)

	for goIdx := range conc {
		errGrp.Go(func() error {
			return fn(dCtx, goIdx)
		})
	}

	return errGrp.Wait()
}

func sequentialOneToOne[I, O any](ctx context.Context, goIdx int, hook outputHook, input *model.Step[I], output *model.Step[O],
	oneToOneFn func(context.Context, I) (O, error), skipZero bool,
) error {
	for {
		startIter := time.Now()
		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "go routine %d", goIdx)
		case in, ok := <-input.Output:
			if !ok {
				return nil
			}

			startFn := time.Now()

			out, err := oneToOneFn(ctx, in)
			if err != nil {
				return errors.Wrapf(err, "go routine %d", goIdx)
			}

			endFn := time.Since(startFn)

			if skipZero && isZero(out) {
				continue
			}

			// the context is checked again so that running goroutines stop
			// adding new elements to the pipeline
			select {
			case <-ctx.Done():
				return errors.Wrapf(ctx.Err(), "go routine %d", goIdx)
			case output.Output <- out:
				err := hook(input.Info(), output.Info(), time.Since(startIter)-endFn, endFn)
				if err != nil {
					return err
				}
			}
		}
	}
}

func runOneToOne[I, O any](ctx context.Context, hook outputHook, input *model.Step[I], output *model.Step[O],
	oneToOneFn func(context.Context, I) (O, error), skipZero bool,
) error {
	return runConcurrently(ctx, output, func(ctx context.Context, goIdx int) error {
		return sequentialOneToOne(ctx, goIdx, hook, input, output, oneToOneFn, skipZero)
	})
}

func sequentialOneToMany[I, O any](ctx context.Context, goIdx int, hook outputHook, input *model.Step[I], output *model.Step[O],
	oneToManyFn func(context.Context, I) ([]O, error),
) error {
	for {
		startIter := time.Now()
		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "go routine %d", goIdx)
		case in, ok := <-input.Output:
			if !ok {
				return nil
			}

			startFn := time.Now()

			outs, err := oneToManyFn(ctx, in)
			if err != nil {
				return errors.Wrapf(err, "go routine %d", goIdx)
			}

			endFn := time.Since(startFn)
			iteration := time.Since(startIter) - endFn

			for _, out := range outs {
				select {
				case <-ctx.Done():
					return errors.Wrapf(ctx.Err(), "go routine %d", goIdx)
				case output.Output <- out:
					err := hook(input.Info(), output.Info(), iteration/time.Duration(len(outs)), endFn/time.Duration(len(outs)))
					if err != nil {
						return err
					}
				}
			}
		}
	}
}

func runOneToMany[I, O any](ctx context.Context, hook outputHook, input *model.Step[I], output *model.Step[O],
	oneToManyFn func(context.Context, I) ([]O, error),
) error {
	return runConcurrently(ctx, output, func(ctx context.Context, goIdx int) error {
		return sequentialOneToMany(ctx, goIdx, hook, input, output, oneToManyFn)
	})
}

func prepareStep[I, O any](pipe *Pipeline, name string, input *model.Step[I], opts ...StepOption[O]) (*model.Step[O], error) {
	if pipe == nil {
		return nil, ErrPipelineMustBeSet
	}

	if input == nil {
		return nil, ErrInputMustBeSet
	}

	step := &model.Step[O]{
		Details: &model.StepInfo{
			Type:       model.NormalStepType,
			Name:       name,
			Concurrent: 1,
		},
	}

	for _, opt := range opts {
		opt(step)
	}

	step.Output = make(chan O, step.Details.BufferSize)

	for _, opt := range pipe.opts {
		err := opt.PrepareStep(input.Info(), step.Details)
		if err != nil {
			return nil, errors.Wrap(err, "unable to run before step function")
		}
	}

	return step, nil
}

func addStep[I, O any](pipe *Pipeline, input *model.Step[I], step *model.Step[O],
	stepToStepFn func(ctx context.Context, input *model.Step[I], output *model.Step[O]) error,
) *model.Step[O] {
	errC := make(chan error, 1)
	decoratedError := newErrorChan(step.Details.Name, errC)

	go func() {
		defer func() {
			close(step.Output)
			close(errC)
		}()

		err := stepToStepFn(pipe.ctx, input, step)
		if err != nil {
			pushError(errC, err)
		}
	}()

	pipe.errcList.add(decoratedError)

	return step
}

// AddStepOneToOne adds a step producing exactly one output per input.
func AddStepOneToOne[I, O any](pipe *Pipeline, name string, input *model.Step[I], oneToOneFn func(context.Context, I) (O, error),
	opts ...StepOption[O],
) (*model.Step[O], error) {
	step, err := prepareStep(pipe, name, input, opts...)
	if err != nil {
		return nil, err
	}

	return addStep(pipe, input, step, func(ctx context.Context, in *model.Step[I], out *model.Step[O]) error {
		return runOneToOne(ctx, pipe.onStepOutput, in, out, oneToOneFn, false)
	}), nil
}

// AddStepOneToOneOrZero adds a step producing at most one output per input.
// Zero values returned by oneToOneFn are not forwarded.
func AddStepOneToOneOrZero[I, O any](pipe *Pipeline, name string, input *model.Step[I], oneToOneFn func(context.Context, I) (O, error),
	opts ...StepOption[O],
) (*model.Step[O], error) {
	step, err := prepareStep(pipe, name, input, opts...)
	if err != nil {
		return nil, err
	}

	return addStep(pipe, input, step, func(ctx context.Context, in *model.Step[I], out *model.Step[O]) error {
		return runOneToOne(ctx, pipe.onStepOutput, in, out, oneToOneFn, true)
	}), nil
}

// AddStepOneToMany adds a step producing any number of outputs per input.
// The outputs of one input are forwarded in order.
func AddStepOneToMany[I, O any](pipe *Pipeline, name string, input *model.Step[I], oneToManyFn func(context.Context, I) ([]O, error),
	opts ...StepOption[O],
) (*model.Step[O], error) {
	step, err := prepareStep(pipe, name, input, opts...)
	if err != nil {
		return nil, err
	}

	return addStep(pipe, input, step, func(ctx context.Context, in *model.Step[I], out *model.Step[O]) error {
		return runOneToMany(ctx, pipe.onStepOutput, in, out, oneToManyFn)
	}), nil
}
