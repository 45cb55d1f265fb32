package scraper

import (
	"bufio"
	"context"
	"os"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// DefaultMaxLineSize bounds the length of a dataset line.
const DefaultMaxLineSize = 1 << 20

// Line is a line of a dataset file.
type Line struct {
	Path string
	// Number is 1-based.
	Number int
	Text   string
}

type readOptions struct {
	strict      bool
	maxLineSize int
}

// ReadOption configures ReadLines and StreamLines.
type ReadOption func(o *readOptions)

// WithStrictFields makes a line with fewer than six fields abort the read
// with ErrMalformedLine instead of being skipped.
func WithStrictFields() ReadOption {
	return func(o *readOptions) {
		o.strict = true
	}
}

// WithMaxLineSize sets the longest line accepted before the read fails.
func WithMaxLineSize(size int) ReadOption {
	return func(o *readOptions) {
		if size > 0 {
			o.maxLineSize = size
		}
	}
}

func newReadOptions(opts ...ReadOption) readOptions {
	o := readOptions{maxLineSize: DefaultMaxLineSize}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// scanLines calls fn for every line of path, valid or not. The file is closed
// before returning.
func scanLines(ctx context.Context, path string, o readOptions, fn func(line Line) error) error {
	file, err := os.Open(path)
	if err != nil {
		return &DatasetError{Kind: ErrOpen, Path: path, Err: err}
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, min(64*1024, o.maxLineSize)), o.maxLineSize)

	number := 0
	for scanner.Scan() {
		number++

		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "reading %s", path)
		}

		text := scanner.Text()
		if !utf8.ValidString(text) {
			return &DatasetError{Kind: ErrRead, Path: path, Line: number, Err: errors.New("invalid UTF-8")}
		}

		if o.strict {
			if _, err := ParseLine(text); errors.Is(err, ErrMalformedLine) {
				return &DatasetError{Kind: ErrMalformedLine, Path: path, Line: number, Err: err}
			}
		}

		err := fn(Line{Path: path, Number: number, Text: text})
		if err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return &DatasetError{Kind: ErrRead, Path: path, Line: number + 1, Err: err}
	}

	return nil
}

// StreamLines calls fn, in file order, for every line of path that passes
// CheckIfCorrect. It stops on the first error returned by fn, when ctx is
// done, or when a line cannot be read; the file is closed in every case.
func StreamLines(ctx context.Context, path string, fn func(line Line) error, opts ...ReadOption) error {
	return scanLines(ctx, path, newReadOptions(opts...), func(line Line) error {
		if !CheckIfCorrect(line.Text) {
			return nil
		}

		return fn(line)
	})
}

// ReadLines returns the lines of path that pass CheckIfCorrect, in file order.
//
// Failing to open the file or to read one of its lines aborts the whole read:
// no partial result is returned.
func ReadLines(path string, opts ...ReadOption) ([]string, error) {
	lines := []string{}

	err := StreamLines(context.Background(), path, func(line Line) error {
		lines = append(lines, line.Text)

		return nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	return lines, nil
}
