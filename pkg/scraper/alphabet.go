package scraper

import "unicode/utf8"

const (
	// AminoAcidAlphabet holds the one-letter codes of the 20 standard residues.
	AminoAcidAlphabet = "ARNDCQEGHILKMFPSTWYV"
	// SecondaryStructureAlphabet holds the helix (H), strand (E) and coil (C) codes.
	SecondaryStructureAlphabet = "HEC"
)

type alphabet [utf8.RuneSelf]bool

func newAlphabet(codes string) *alphabet {
	var a alphabet
	for i := range len(codes) {
		a[codes[i]] = true
	}

	return &a
}

func (a *alphabet) contains(r rune) bool {
	return r >= 0 && r < utf8.RuneSelf && a[r]
}

// firstInvalid returns the 1-based position and value of the first rune of seq
// outside the alphabet, or 0 when every rune belongs to it.
func (a *alphabet) firstInvalid(seq string) (int, rune) {
	pos := 0
	for _, r := range seq {
		pos++
		if !a.contains(r) {
			return pos, r
		}
	}

	return 0, 0
}

var (
	aminoAcids          = newAlphabet(AminoAcidAlphabet)
	secondaryStructures = newAlphabet(SecondaryStructureAlphabet)
)

// ValidAminoAcids reports whether every residue of seq is a standard amino-acid code.
// The empty sequence is valid.
func ValidAminoAcids(seq string) bool {
	pos, _ := aminoAcids.firstInvalid(seq)

	return pos == 0
}

// ValidStructure reports whether every code of seq is H, E or C.
// The empty sequence is valid.
func ValidStructure(seq string) bool {
	pos, _ := secondaryStructures.firstInvalid(seq)

	return pos == 0
}
