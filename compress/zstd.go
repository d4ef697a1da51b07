package compress

// ZstdCompressor provides Zstandard compression for disk matrix row pages.
//
// This compressor favors compression ratio over speed, making it the right
// choice when the scratch directory lives on slow or space-constrained
// storage and each row is written once but read many times during clustering.
//
// Two implementations are provided: a cgo-backed one (valyala/gozstd) and a
// pure-Go fallback (klauspost/compress/zstd), selected by build tags.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
