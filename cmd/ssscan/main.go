// Command ssscan scans a directory of secondary-structure dataset files and
// writes the lines whose amino-acid and structure fields are valid.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/askiada/go-ssscraper/internal/config"
	"github.com/askiada/go-ssscraper/internal/export"
	"github.com/askiada/go-ssscraper/internal/logging"
	"github.com/askiada/go-ssscraper/internal/metrics"
	"github.com/askiada/go-ssscraper/pkg/pipeline/drawer"
	"github.com/askiada/go-ssscraper/pkg/pipeline/measure"
	"github.com/askiada/go-ssscraper/pkg/pipeline/model"
	"github.com/askiada/go-ssscraper/pkg/scraper"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}

type flags struct {
	config      string
	directory   string
	output      string
	graph       string
	concurrency int
	strict      bool
	metrics     bool
}

func parseFlags(args []string, stderr io.Writer) (*flags, *flag.FlagSet, error) {
	f := &flags{}

	fs := flag.NewFlagSet("ssscan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.config, "config", "", "path to a JSON config file")
	fs.StringVar(&f.directory, "dir", "", "directory holding the .dat files (overrides config)")
	fs.StringVar(&f.output, "out", "", `output file, "-" for stdout, *.arrow for Arrow IPC (overrides config)`)
	fs.StringVar(&f.graph, "graph", "", "write the scan pipeline as a DOT file (overrides config)")
	fs.IntVar(&f.concurrency, "concurrency", 0, "number of files read in parallel (overrides config)")
	fs.BoolVar(&f.strict, "strict", false, "fail on lines with fewer than 6 fields")
	fs.BoolVar(&f.metrics, "metrics", false, "dump Prometheus metrics to stderr when done")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs, nil
}

func loadConfig(f *flags, fs *flag.FlagSet) (config.Config, error) {
	cfg := config.Defaults()

	if f.config != "" {
		var err error

		cfg, err = config.Load(f.config)
		if err != nil {
			return cfg, err
		}
	}

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "dir":
			cfg.Directory = f.directory
		case "out":
			cfg.Output = f.output
		case "graph":
			cfg.GraphFile = f.graph
		case "concurrency":
			cfg.Concurrency = f.concurrency
		case "strict":
			cfg.StrictFields = f.strict
		}
	})

	return cfg, cfg.Validate()
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	f, fs, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}

		return 2
	}

	cfg, err := loadConfig(f, fs)
	if err != nil {
		fmt.Fprintf(stderr, "ssscan: %v\n", err)

		return 1
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "ssscan: %v\n", err)

		return 1
	}
	defer logger.Sync() //nolint:errcheck

	collector := metrics.New()

	err = scan(ctx, cfg, logger, collector, stdout)
	if f.metrics {
		if mErr := collector.WriteText(stderr); mErr != nil {
			logger.Error("unable to write metrics", zap.Error(mErr))
		}
	}

	if err != nil {
		logger.Error("scan failed", zap.Error(err))

		return 1
	}

	return 0
}

func scan(ctx context.Context, cfg config.Config, logger *zap.Logger, collector *metrics.Collector, stdout io.Writer) error {
	pipelineOpts := []model.PipelineOption{collector.PipelineOption()}

	if cfg.GraphFile != "" {
		msr := measure.NewDefaultMeasure()
		pipelineOpts = append(pipelineOpts,
			drawer.PipelineDrawer(drawer.NewDOTDrawer(cfg.GraphFile), msr),
			measure.PipelineMeasure(msr),
		)
	}

	res, err := scraper.Scan(ctx, cfg.Directory,
		scraper.ScanConcurrency(cfg.Concurrency),
		scraper.ScanLogger(logger),
		scraper.ScanReadOptions(cfg.ReadOptions()...),
		scraper.ScanPipelineOptions(pipelineOpts...),
	)
	if err != nil {
		return err
	}

	return writeOutput(cfg.Output, res.Lines, stdout)
}

func writeOutput(output string, lines []scraper.Line, stdout io.Writer) error {
	if output == "-" {
		return export.Write(stdout, export.FormatText, lines)
	}

	file, err := os.Create(output)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", output)
	}

	err = export.Write(file, export.FormatFor(output), lines)
	if cErr := file.Close(); err == nil && cErr != nil {
		err = errors.Wrapf(cErr, "unable to close %s", output)
	}

	return err
}
