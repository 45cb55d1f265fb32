package scraper

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrCollect is returned when a dataset directory cannot be listed.
	ErrCollect = errors.New("unable to collect dataset files")
	// ErrOpen is returned when a dataset file cannot be opened.
	ErrOpen = errors.New("unable to open dataset file")
	// ErrRead is returned when a line of a dataset file cannot be read.
	ErrRead = errors.New("unable to read dataset line")
	// ErrMalformedLine marks a line with fewer fields than a dataset record.
	ErrMalformedLine = errors.New("malformed line")
	// ErrInvalidAminoAcid marks a residue outside AminoAcidAlphabet.
	ErrInvalidAminoAcid = errors.New("invalid amino acid")
	// ErrInvalidStructure marks a code outside SecondaryStructureAlphabet.
	ErrInvalidStructure = errors.New("invalid secondary structure")
)

// DatasetError locates a failure in a dataset directory or file.
// errors.Is matches both Kind and the underlying error.
type DatasetError struct {
	Kind error
	Path string
	// Line is 1-based, 0 when the failure is not tied to a line.
	Line int
	Err  error
}

func (e *DatasetError) Error() string {
	loc := e.Path
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}

	switch {
	case e.Err == nil:
		return e.Kind.Error() + ": " + loc
	case errors.Is(e.Err, e.Kind):
		return loc + ": " + e.Err.Error()
	default:
		return e.Kind.Error() + ": " + loc + ": " + e.Err.Error()
	}
}

func (e *DatasetError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}
