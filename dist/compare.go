package dist

import (
	"math/bits"

	"github.com/phylotools/arbornj/seq"
)

// evenBits selects the low bit of every 2-bit base group.
const evenBits = 0x5555555555555555

// dnaCounts compares two packed DNA sequences word-wise.
//
// valid counts positions where both sequences carry a real base (the AND of
// the gap filters), diffs counts mismatching bases among those, and
// transitions counts the A<->G and C<->T subset of the mismatches. With the
// 2-bit code assignment {A:00, C:01, G:10, T:11} a transition XORs to 10 and
// a transversion to 01 or 11, so the split falls out of two masked popcounts.
func dnaCounts(a, b *seq.Encoded) (valid, diffs, transitions int) {
	for w := range a.Bits {
		filter := a.GapFilter[w] & b.GapFilter[w]
		// Expand the per-base filter bit over both bits of its group.
		mask := filter | filter<<1

		valid += bits.OnesCount64(filter)

		x := (a.Bits[w] ^ b.Bits[w]) & mask
		if x == 0 {
			continue
		}

		diffs += bits.OnesCount64((x | x>>1) & evenBits)
		transitions += bits.OnesCount64((x >> 1) & ^x & evenBits)
	}

	return valid, diffs, transitions
}

// proteinCounts compares two byte-packed protein sequences.
//
// A position is valid when neither side holds the gap sentinel; padding is
// all-gap on both sides and therefore contributes nothing.
func proteinCounts(a, b *seq.Encoded) (valid, diffs int) {
	for w := range a.Bits {
		wa := a.Bits[w]
		wb := b.Bits[w]
		for s := uint(0); s < 64; s += 8 {
			ca := byte(wa >> s)
			cb := byte(wb >> s)
			if ca == seq.Gap || cb == seq.Gap {
				continue
			}
			valid++
			if ca != cb {
				diffs++
			}
		}
	}

	return valid, diffs
}
