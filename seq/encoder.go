package seq

import (
	"fmt"

	"github.com/phylotools/arbornj/errs"
	"github.com/phylotools/arbornj/format"
)

// Block granularity constants. A DNA block is two 64-bit words holding 64
// two-bit base codes; a protein block is two words holding 16 residue bytes.
// The two-word block width is inherited from the 128-bit SIMD lanes the
// packing was originally sized for and keeps word loops free of tail
// handling.
const (
	DNABasesPerWord = 32 // 2-bit codes per uint64
	DNABlockBases   = 2 * DNABasesPerWord

	ProteinCharsPerWord = 8 // one byte per residue
	ProteinBlockChars   = 2 * ProteinCharsPerWord
)

// Two-bit base codes. A is zero so valid-but-A positions contribute nothing
// to the bitstring, exactly like gaps; the gap filter is what distinguishes
// them.
const (
	codeA = 0x0
	codeC = 0x1
	codeG = 0x2
	codeT = 0x3
)

// gapFilterBit marks a valid (non-gap) base at the low bit of its 2-bit
// group, one set bit per base position.
const gapFilterBit = 0x1

// Encoded is the packed form of one sequence.
//
// For DNA, Bits holds 2-bit base codes (32 per word) and GapFilter holds one
// set bit per position that carries a valid base; gap and padding positions
// are zero in both buffers. For protein, Bits holds resolved residue bytes
// (8 per word), gap and padding positions hold the Gap sentinel byte, and
// GapFilter is nil.
type Encoded struct {
	Name   string
	Type   format.SequenceType
	Length int // original character count

	// PaddedLength is Length rounded up to the block granularity; the unit is
	// bases for DNA and residue bytes for protein.
	PaddedLength int

	Bits      []uint64
	GapFilter []uint64
}

// Encode packs a sequence into its comparison-ready form.
//
// Encoding is deterministic: the same characters always produce byte-identical
// buffers. Malformed characters are not rejected; they resolve to gaps (see
// Resolve).
func Encode(s Sequence) (*Encoded, error) {
	switch s.Type {
	case format.SequenceDNA:
		return encodeDNA(s), nil
	case format.SequenceProtein, format.SequenceUnknown:
		return encodeProtein(s), nil
	default:
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidSequenceType, s.Type)
	}
}

func encodeDNA(s Sequence) *Encoded {
	length := len(s.Data)
	blocks := (length + DNABlockBases - 1) / DNABlockBases
	if blocks == 0 {
		blocks = 1
	}
	words := blocks * (DNABlockBases / DNABasesPerWord)

	e := &Encoded{
		Name:         s.Name,
		Type:         format.SequenceDNA,
		Length:       length,
		PaddedLength: blocks * DNABlockBases,
		Bits:         make([]uint64, words),
		GapFilter:    make([]uint64, words),
	}

	for i := 0; i < length; i++ {
		word := i / DNABasesPerWord
		shift := uint(i%DNABasesPerWord) * 2

		// Gaps and ambiguity codes leave both buffers zero at this position.
		switch s.Data[i] {
		case 'A', 'a':
			e.GapFilter[word] |= gapFilterBit << shift
		case 'C', 'c':
			e.Bits[word] |= codeC << shift
			e.GapFilter[word] |= gapFilterBit << shift
		case 'G', 'g':
			e.Bits[word] |= codeG << shift
			e.GapFilter[word] |= gapFilterBit << shift
		case 'T', 't', 'U', 'u':
			e.Bits[word] |= codeT << shift
			e.GapFilter[word] |= gapFilterBit << shift
		}
	}

	// Padding positions stay zero in both buffers: they are masked out by the
	// gap filter and contribute nothing to distance accumulation.
	return e
}

func encodeProtein(s Sequence) *Encoded {
	length := len(s.Data)
	blocks := (length + ProteinBlockChars - 1) / ProteinBlockChars
	if blocks == 0 {
		blocks = 1
	}
	words := blocks * (ProteinBlockChars / ProteinCharsPerWord)

	e := &Encoded{
		Name:         s.Name,
		Type:         s.Type,
		Length:       length,
		PaddedLength: blocks * ProteinBlockChars,
		Bits:         make([]uint64, words),
	}

	for i := 0; i < e.PaddedLength; i++ {
		var c byte = Gap
		if i < length {
			c = Resolve(s.Type, s.Data[i])
		}
		word := i / ProteinCharsPerWord
		shift := uint(i%ProteinCharsPerWord) * 8
		e.Bits[word] |= uint64(c) << shift
	}

	return e
}

// BaseValid reports whether the gap-filter bit for position p is set.
// Only meaningful for DNA encodings; positions at or beyond PaddedLength
// report false.
func (e *Encoded) BaseValid(p int) bool {
	if e.GapFilter == nil || p < 0 || p >= e.PaddedLength {
		return false
	}
	word := p / DNABasesPerWord
	shift := uint(p%DNABasesPerWord) * 2

	return e.GapFilter[word]>>shift&gapFilterBit != 0
}

// BaseCode returns the 2-bit code stored at position p of a DNA encoding.
func (e *Encoded) BaseCode(p int) uint64 {
	word := p / DNABasesPerWord
	shift := uint(p%DNABasesPerWord) * 2

	return e.Bits[word] >> shift & 0x3
}

// ResidueAt returns the packed residue byte at position p of a protein
// encoding.
func (e *Encoded) ResidueAt(p int) byte {
	word := p / ProteinCharsPerWord
	shift := uint(p%ProteinCharsPerWord) * 8

	return byte(e.Bits[word] >> shift)
}
