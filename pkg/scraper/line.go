package scraper

import (
	"strings"

	"github.com/pkg/errors"
)

const (
	aminoAcidField = 4
	structureField = 5
	minFields      = structureField + 1
)

// Record is a dataset line split into its fields.
type Record struct {
	Fields     []string
	AminoAcids string
	Structure  string
}

// ParseLine splits line on runs of whitespace and checks the amino-acid and
// secondary-structure fields.
//
// It returns ErrMalformedLine when the line has fewer than six fields, and
// ErrInvalidAminoAcid or ErrInvalidStructure for the first code outside its
// alphabet.
func ParseLine(line string) (Record, error) {
	fields := strings.Fields(line)
	if len(fields) < minFields {
		return Record{}, errors.Wrapf(ErrMalformedLine, "%d fields, want at least %d", len(fields), minFields)
	}

	rec := Record{
		Fields:     fields,
		AminoAcids: fields[aminoAcidField],
		Structure:  fields[structureField],
	}

	if pos, r := aminoAcids.firstInvalid(rec.AminoAcids); pos > 0 {
		return rec, errors.Wrapf(ErrInvalidAminoAcid, "residue %q at position %d", r, pos)
	}

	if pos, r := secondaryStructures.firstInvalid(rec.Structure); pos > 0 {
		return rec, errors.Wrapf(ErrInvalidStructure, "code %q at position %d", r, pos)
	}

	return rec, nil
}

// CheckIfCorrect reports whether line is a well-formed dataset record whose
// sequences only use the recognized alphabets. Lines with fewer than six
// fields are not correct.
func CheckIfCorrect(line string) bool {
	_, err := ParseLine(line)

	return err == nil
}
