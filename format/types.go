package format

type (
	// SequenceType declares the alphabet of an alignment.
	SequenceType uint8
	// Model selects the evolutionary distance correction.
	Model uint8
	// Strategy tags one of the tree-construction algorithms.
	Strategy uint8
	// CompressionType selects the codec applied to disk matrix row pages.
	CompressionType uint8
)

const (
	SequenceDNA     SequenceType = 0x1 // SequenceDNA is a nucleotide alignment.
	SequenceProtein SequenceType = 0x2 // SequenceProtein is an amino-acid alignment.
	SequenceUnknown SequenceType = 0x3 // SequenceUnknown is treated as protein for encoding purposes.

	ModelJukesCantor Model = 0x1 // ModelJukesCantor is the Jukes-Cantor correction.
	ModelKimura      Model = 0x2 // ModelKimura is the Kimura two-parameter (DNA) or protein correction.

	StrategyFull    Strategy = 0x1 // StrategyFull keeps a fully sorted auxiliary structure per row.
	StrategyBounded Strategy = 0x2 // StrategyBounded keeps k < n sorted auxiliary columns per row.
	StrategyNaive   Strategy = 0x3 // StrategyNaive scans rows exhaustively, no auxiliary structure.
	StrategyDisk    Strategy = 0x4 // StrategyDisk pages the matrix to a scratch directory.

	CompressionNone CompressionType = 0x1 // CompressionNone stores row pages raw.
	CompressionZstd CompressionType = 0x2 // CompressionZstd compresses row pages with Zstandard.
	CompressionS2   CompressionType = 0x3 // CompressionS2 compresses row pages with S2.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 compresses row pages with LZ4.
)

func (t SequenceType) String() string {
	switch t {
	case SequenceDNA:
		return "DNA"
	case SequenceProtein:
		return "Protein"
	case SequenceUnknown:
		return "Unknown"
	default:
		return "Invalid"
	}
}

func (m Model) String() string {
	switch m {
	case ModelJukesCantor:
		return "JukesCantor"
	case ModelKimura:
		return "Kimura"
	default:
		return "Unknown"
	}
}

func (s Strategy) String() string {
	switch s {
	case StrategyFull:
		return "Full"
	case StrategyBounded:
		return "Bounded"
	case StrategyNaive:
		return "Naive"
	case StrategyDisk:
		return "Disk"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
