// Package config loads the ssscan configuration file.
package config

import (
	"encoding/json"
	"os"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-ssscraper/internal/logging"
	"github.com/askiada/go-ssscraper/pkg/scraper"
)

var (
	// ErrInvalidConfig is returned by Validate.
	ErrInvalidConfig = errors.New("invalid config")
)

// Config is the ssscan configuration.
type Config struct {
	Directory    string         `json:"directory"`
	Concurrency  int            `json:"concurrency"`
	StrictFields bool           `json:"strict_fields"`
	MaxLineSize  int            `json:"max_line_size"`
	Output       string         `json:"output"`
	GraphFile    string         `json:"graph_file"`
	Logging      logging.Config `json:"logging"`
}

// Defaults returns the configuration used when no file is given.
func Defaults() Config {
	return Config{
		Concurrency: 4,
		MaxLineSize: scraper.DefaultMaxLineSize,
		Output:      "-",
		Logging: logging.Config{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a JSON file on top of Defaults. Unknown fields are rejected.
func Load(path string) (Config, error) {
	cfg := Defaults()

	f, err := os.Open(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "unable to open config %s", path)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&cfg); err != nil {
		return cfg, errors.Wrapf(err, "unable to decode config %s", path)
	}

	return cfg, nil
}

// Validate checks the values a scan cannot run without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Directory) == "" {
		return errors.Wrap(ErrInvalidConfig, "directory is required")
	}

	if c.Concurrency < 1 {
		return errors.Wrapf(ErrInvalidConfig, "concurrency must be at least 1, got %d", c.Concurrency)
	}

	if c.MaxLineSize < 1 {
		return errors.Wrapf(ErrInvalidConfig, "max_line_size must be positive, got %d", c.MaxLineSize)
	}

	if c.Output == "" {
		return errors.Wrap(ErrInvalidConfig, "output is required")
	}

	if c.Logging.Format != "" && !slices.Contains(logging.Formats, c.Logging.Format) {
		return errors.Wrapf(ErrInvalidConfig, "unknown logging format %q", c.Logging.Format)
	}

	return nil
}

// ReadOptions converts the reader settings into scraper options.
func (c Config) ReadOptions() []scraper.ReadOption {
	opts := []scraper.ReadOption{scraper.WithMaxLineSize(c.MaxLineSize)}
	if c.StrictFields {
		opts = append(opts, scraper.WithStrictFields())
	}

	return opts
}
