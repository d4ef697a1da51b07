// Package seq holds the alignment model and the packed sequence encoder.
//
// Raw alignment characters are converted into word-packed buffers so the
// distance engines can compare whole machine words instead of branching per
// character. DNA packs 2-bit base codes plus a parallel gap-filter bitmask;
// protein packs one byte per residue. Both encodings pad to a fixed block
// granularity so downstream word loops never bounds-check.
package seq

import (
	"fmt"
	"math/rand"

	"github.com/phylotools/arbornj/errs"
	"github.com/phylotools/arbornj/format"
)

// Gap is the resolved gap character. Every character that is not a valid
// symbol for the declared sequence type resolves to Gap; this includes
// ambiguity codes, which are deliberately not rejected (permissive parsing,
// kept for compatibility with existing alignments).
const Gap = '-'

// Sequence is one named row of an alignment. The character buffer is owned by
// the caller and treated as read-only.
type Sequence struct {
	Name string
	Data []byte
	Type format.SequenceType
}

// Resolve maps a raw alignment character to its comparison character.
//
// For DNA only A, C, G, T and U (any case) are valid bases; everything else
// resolves to Gap. For protein the explicit gap/ambiguity set {-, ., X, Z, B,
// J, ?} resolves to Gap and all other characters pass through unchanged.
// SequenceUnknown resolves like protein.
func Resolve(t format.SequenceType, c byte) byte {
	if t == format.SequenceDNA {
		switch c {
		case 'a', 'A', 'c', 'C', 'g', 'G', 't', 'T', 'u', 'U':
			return c
		default:
			return Gap
		}
	}

	switch c {
	case '-', '.', 'X', 'x', 'Z', 'z', 'B', 'b', 'J', 'j', '?':
		return Gap
	default:
		return c
	}
}

// Alignment is a set of equal-length sequences over a shared coordinate
// system. It owns its character buffers and supports in-place column
// resampling for bootstrap replicates.
type Alignment struct {
	Names  []string
	Type   format.SequenceType
	Length int

	rows [][]byte
	// orig preserves the pristine columns across resampling rounds; allocated
	// lazily on the first Resample call.
	orig [][]byte
}

// NewAlignment validates and assembles an alignment from parallel name and
// sequence slices. The sequence buffers are copied, so later mutation of the
// caller's slices does not affect the alignment.
//
// Returns an InputError if the counts mismatch, the alignment is empty, or
// the rows differ in length.
func NewAlignment(names []string, rows [][]byte, t format.SequenceType) (*Alignment, error) {
	if len(names) != len(rows) {
		return nil, fmt.Errorf("%w: %d names, %d sequences", errs.ErrSequenceCountMismatch, len(names), len(rows))
	}
	if len(rows) == 0 {
		return nil, errs.ErrEmptyAlignment
	}
	if t != format.SequenceDNA && t != format.SequenceProtein && t != format.SequenceUnknown {
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidSequenceType, t)
	}

	length := len(rows[0])
	owned := make([][]byte, len(rows))
	for i, row := range rows {
		if len(row) != length {
			return nil, fmt.Errorf("%w: sequence %q has length %d, expected %d",
				errs.ErrUnequalSequenceLength, names[i], len(row), length)
		}
		owned[i] = append([]byte(nil), row...)
	}

	return &Alignment{
		Names:  append([]string(nil), names...),
		Type:   t,
		Length: length,
		rows:   owned,
	}, nil
}

// Count returns the number of sequences in the alignment.
func (a *Alignment) Count() int {
	return len(a.rows)
}

// Sequence returns the i-th row as a Sequence value. The returned buffer
// aliases the alignment and must not be modified.
func (a *Alignment) Sequence(i int) Sequence {
	return Sequence{Name: a.Names[i], Data: a.rows[i], Type: a.Type}
}

// Encode packs every row of the alignment.
func (a *Alignment) Encode() ([]*Encoded, error) {
	encoded := make([]*Encoded, len(a.rows))
	for i := range a.rows {
		e, err := Encode(a.Sequence(i))
		if err != nil {
			return nil, err
		}
		encoded[i] = e
	}

	return encoded, nil
}

// Resample redraws every column of the alignment with replacement from the
// original columns, in place. The pristine column data is retained
// internally, so repeated calls always sample from the original alignment
// rather than from a previous replicate.
func (a *Alignment) Resample(rng *rand.Rand) {
	if a.orig == nil {
		a.orig = make([][]byte, len(a.rows))
		for i, row := range a.rows {
			a.orig[i] = append([]byte(nil), row...)
		}
	}

	for col := 0; col < a.Length; col++ {
		src := rng.Intn(a.Length)
		for i := range a.rows {
			a.rows[i][col] = a.orig[i][src]
		}
	}
}
