package matrix

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/phylotools/arbornj/compress"
	"github.com/phylotools/arbornj/endian"
	"github.com/phylotools/arbornj/errs"
	"github.com/phylotools/arbornj/format"
	"github.com/phylotools/arbornj/internal/hash"
	"github.com/phylotools/arbornj/internal/options"
	"github.com/phylotools/arbornj/internal/pool"
)

// rowsFileName is the single data file holding all row pages inside the
// scratch directory.
const rowsFileName = "rows.anj"

// pageHeaderSize is the fixed prefix of every row page: an xxHash64 checksum
// of the payload.
const pageHeaderSize = 8

// DiskStore pages matrix rows to a scratch directory instead of holding the
// full n x n matrix in memory.
//
// Each WriteRow serializes the row little-endian, runs it through the
// configured codec and appends it as a checksummed page to a single data
// file; an in-memory index maps rows to their latest page. Rewriting a row
// (the disk clustering strategy updates rows after merges) appends a fresh
// page and abandons the old one, which keeps writes sequential at the cost of
// dead space that lives only as long as the scratch directory.
//
// The scratch directory is exclusive to one in-flight build. Concurrent
// builds must use distinct directories.
type DiskStore struct {
	n      int
	dir    string
	file   *os.File
	engine endian.EndianEngine
	codec  compress.Codec

	mu      sync.Mutex
	end     int64 // append offset
	offsets []int64
	lengths []int32
	written []bool
	closed  bool
}

var _ Store = (*DiskStore)(nil)

// DiskOption configures a DiskStore.
type DiskOption = options.Option[*DiskStore]

// WithPageCompression selects the codec applied to row pages.
// The default is no compression.
func WithPageCompression(t format.CompressionType) DiskOption {
	return options.New(func(s *DiskStore) error {
		codec, err := compress.GetCodec(t)
		if err != nil {
			return err
		}
		s.codec = codec

		return nil
	})
}

// NewDiskStore creates (or reuses) the scratch directory and opens a disk
// store sized for n rows.
//
// Failure to create or write the directory is fatal: the error is surfaced
// immediately, never retried, and no partial matrix is made available.
func NewDiskStore(dir string, n int, opts ...DiskOption) (*DiskStore, error) {
	s := &DiskStore{
		n:       n,
		dir:     dir,
		engine:  endian.GetLittleEndianEngine(),
		codec:   compress.NewNoOpCompressor(),
		offsets: make([]int64, n),
		lengths: make([]int32, n),
		written: make([]bool, n),
	}
	if err := options.Apply(s, opts...); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errs.ErrCacheDirUnusable, dir, err)
	}

	file, err := os.OpenFile(filepath.Join(dir, rowsFileName), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errs.ErrCacheDirUnusable, dir, err)
	}
	s.file = file

	return s, nil
}

// Len returns the matrix dimension.
func (s *DiskStore) Len() int {
	return s.n
}

// Dir returns the scratch directory backing the store.
func (s *DiskStore) Dir() string {
	return s.dir
}

// WriteRow serializes row i and appends it as a new page.
func (s *DiskStore) WriteRow(i int, values []float64) error {
	if i < 0 || i >= s.n {
		return fmt.Errorf("%w: row %d of %d", errs.ErrRowOutOfRange, i, s.n)
	}
	if len(values) < s.n {
		return fmt.Errorf("%w: row %d has %d values, want %d", errs.ErrMalformedMatrix, i, len(values), s.n)
	}

	raw := pool.GetRowBuffer()
	defer pool.PutRowBuffer(raw)
	for _, v := range values[:s.n] {
		raw.B = s.engine.AppendUint64(raw.B, math.Float64bits(v))
	}

	payload, err := s.codec.Compress(raw.Bytes())
	if err != nil {
		return fmt.Errorf("%w: compressing row %d: %v", errs.ErrCacheDirUnusable, i, err)
	}

	page := make([]byte, pageHeaderSize+len(payload))
	s.engine.PutUint64(page[:pageHeaderSize], hash.Sum(payload))
	copy(page[pageHeaderSize:], payload)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errs.ErrStoreClosed
	}
	offset := s.end
	s.end += int64(len(page))
	s.mu.Unlock()

	if _, err := s.file.WriteAt(page, offset); err != nil {
		return fmt.Errorf("%w: writing row %d: %v", errs.ErrCacheDirUnusable, i, err)
	}

	// Publish the page only after the write completed, so a reader never
	// observes a partially written row.
	s.mu.Lock()
	s.offsets[i] = offset
	s.lengths[i] = int32(len(page))
	s.written[i] = true
	s.mu.Unlock()

	return nil
}

// ReadRow reads row i back into out, verifying the page checksum.
func (s *DiskStore) ReadRow(i int, out []float64) error {
	if i < 0 || i >= s.n {
		return fmt.Errorf("%w: row %d of %d", errs.ErrRowOutOfRange, i, s.n)
	}
	if len(out) < s.n {
		return fmt.Errorf("%w: output buffer has %d cells, want %d", errs.ErrMalformedMatrix, len(out), s.n)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errs.ErrStoreClosed
	}
	if !s.written[i] {
		s.mu.Unlock()
		return fmt.Errorf("%w: row %d", errs.ErrRowNotWritten, i)
	}
	offset := s.offsets[i]
	length := s.lengths[i]
	s.mu.Unlock()

	page := make([]byte, length)
	if _, err := s.file.ReadAt(page, offset); err != nil {
		return fmt.Errorf("%w: reading row %d: %v", errs.ErrCacheDirUnusable, i, err)
	}

	payload := page[pageHeaderSize:]
	if s.engine.Uint64(page[:pageHeaderSize]) != hash.Sum(payload) {
		return fmt.Errorf("%w: row %d", errs.ErrRowCorrupted, i)
	}

	raw, err := s.codec.Decompress(payload)
	if err != nil {
		return fmt.Errorf("%w: row %d: %v", errs.ErrRowCorrupted, i, err)
	}
	if len(raw) != s.n*8 {
		return fmt.Errorf("%w: row %d has %d payload bytes, want %d", errs.ErrRowCorrupted, i, len(raw), s.n*8)
	}

	for j := 0; j < s.n; j++ {
		out[j] = math.Float64frombits(s.engine.Uint64(raw[j*8 : (j+1)*8]))
	}

	return nil
}

// Close releases the file handle. The scratch directory itself is left in
// place for any remaining consumers; delete it with os.RemoveAll once the
// tree builder and any matrix printer are done.
func (s *DiskStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	return s.file.Close()
}
