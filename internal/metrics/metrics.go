// Package metrics exposes scan pipeline activity as Prometheus metrics.
package metrics

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"

	"github.com/askiada/go-ssscraper/pkg/pipeline/model"
)

const namespace = "ssscan"

// Collector records pipeline hooks into a private registry.
type Collector struct {
	registry *prometheus.Registry

	StepOutputs       *prometheus.CounterVec
	StepDuration      *prometheus.HistogramVec
	TransportDuration *prometheus.HistogramVec
	StepTotalDuration *prometheus.GaugeVec
	PipelineRuns      prometheus.Counter
}

// New registers the scan metrics on a fresh registry.
func New() *Collector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,
		StepOutputs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "step_outputs_total",
				Help:      "Total number of values produced by a pipeline step",
			},
			[]string{"step", "type"},
		),
		StepDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "step_duration_seconds",
				Help:      "Time spent computing one output of a pipeline step",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"step"},
		),
		TransportDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transport_duration_seconds",
				Help:      "Time between two values received from a parent step",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"parent", "step"},
		),
		StepTotalDuration: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sink_total_duration_seconds",
				Help:      "Wall time of a sink from start to end of input",
			},
			[]string{"step"},
		),
		PipelineRuns: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pipeline_runs_total",
				Help:      "Total number of pipelines started",
			},
		),
	}
}

// Registry returns the registry the collector writes to.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteText writes every metric family in the text exposition format.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return errors.Wrap(err, "unable to gather metrics")
	}

	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return errors.Wrapf(err, "unable to write metric %s", family.GetName())
		}
	}

	return nil
}

// PipelineOption returns the collector as a pipeline option.
func (c *Collector) PipelineOption() model.PipelineOption {
	return &pipelineMetrics{c}
}

type pipelineMetrics struct {
	*Collector
}

func (pm *pipelineMetrics) New() error {
	pm.PipelineRuns.Inc()

	return nil
}

func (pm *pipelineMetrics) observe(parentStep, step *model.StepInfo, iterationDuration, computationDuration time.Duration) {
	pm.StepOutputs.WithLabelValues(step.Name, string(step.Type)).Inc()
	pm.StepDuration.WithLabelValues(step.Name).Observe(computationDuration.Seconds())
	pm.TransportDuration.WithLabelValues(parentStep.Name, step.Name).Observe(iterationDuration.Seconds())
}

func (pm *pipelineMetrics) PrepareStep(_, _ *model.StepInfo) error { return nil }

func (pm *pipelineMetrics) OnStepOutput(parentStep, step *model.StepInfo, iterationDuration, computationDuration time.Duration) error {
	pm.observe(parentStep, step, iterationDuration, computationDuration)

	return nil
}

func (pm *pipelineMetrics) PrepareSplitter(_, _ *model.StepInfo) error { return nil }

func (pm *pipelineMetrics) OnSplitterOutput(parentStep, splitterStep *model.StepInfo, iterationDuration, computationDuration time.Duration) error {
	pm.observe(parentStep, splitterStep, iterationDuration, computationDuration)

	return nil
}

func (pm *pipelineMetrics) PrepareMerger(_ []*model.StepInfo, _ *model.StepInfo) error { return nil }

func (pm *pipelineMetrics) OnMergerOutput(parentStep *model.StepInfo, outputStep *model.StepInfo, iterationDuration time.Duration) error {
	pm.StepOutputs.WithLabelValues(outputStep.Name, string(outputStep.Type)).Inc()
	pm.TransportDuration.WithLabelValues(parentStep.Name, outputStep.Name).Observe(iterationDuration.Seconds())

	return nil
}

func (pm *pipelineMetrics) PrepareSink(_, _ *model.StepInfo) error { return nil }

func (pm *pipelineMetrics) OnSinkOutput(parentStep, step *model.StepInfo, iterationDuration, computationDuration time.Duration) error {
	pm.observe(parentStep, step, iterationDuration, computationDuration)

	return nil
}

func (pm *pipelineMetrics) AfterSink(step *model.StepInfo, totalDuration time.Duration) error {
	pm.StepTotalDuration.WithLabelValues(step.Name).Set(totalDuration.Seconds())

	return nil
}

func (pm *pipelineMetrics) Finish() error { return nil }
