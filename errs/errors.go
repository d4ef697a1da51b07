// Package errs defines the sentinel errors and failure classification used
// across arbornj.
//
// Every fatal condition belongs to exactly one Kind. Callers that need to
// distinguish configuration mistakes from storage failures should use KindOf
// rather than matching individual sentinels:
//
//	if errs.KindOf(err) == errs.KindStorage {
//	    // scratch directory problem, nothing to retry
//	}
//
// Individual sentinels remain matchable with errors.Is for fine-grained
// handling and for tests.
package errs

import "errors"

// Kind classifies a fatal error into one of the four failure categories.
type Kind uint8

const (
	KindUnknown       Kind = iota // KindUnknown is returned for errors arbornj did not produce.
	KindConfiguration             // KindConfiguration covers invalid build configuration.
	KindInput                     // KindInput covers unreadable or malformed input data.
	KindResource                  // KindResource covers advisory memory-budget conditions.
	KindStorage                   // KindStorage covers scratch-directory and disk-page failures.
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "Configuration"
	case KindInput:
		return "Input"
	case KindResource:
		return "Resource"
	case KindStorage:
		return "Storage"
	default:
		return "Unknown"
	}
}

// kindError is a sentinel error tagged with its Kind.
type kindError struct {
	msg  string
	kind Kind
}

func (e *kindError) Error() string { return e.msg }

func newConfig(msg string) error  { return &kindError{msg: msg, kind: KindConfiguration} }
func newInput(msg string) error   { return &kindError{msg: msg, kind: KindInput} }
func newStorage(msg string) error { return &kindError{msg: msg, kind: KindStorage} }

// Configuration errors.
var (
	// ErrUnknownModel indicates an evolution model id outside the closed set.
	ErrUnknownModel = newConfig("unknown sequence evolution model")

	// ErrInvalidPercentage indicates an auxiliary-memory percentage outside [0,100].
	ErrInvalidPercentage = newConfig("memory use percentage must be >=0 and <=100")

	// ErrInvalidSequenceType indicates a sequence type outside the closed set.
	ErrInvalidSequenceType = newConfig("invalid sequence type")

	// ErrBootstrapWithoutAlignment indicates bootstrap replicates were requested
	// on a pre-supplied distance matrix, which has no alignment to resample.
	ErrBootstrapWithoutAlignment = newConfig("bootstrap requires an alignment, not a distance matrix")

	// ErrConflictingStrategies indicates more than one force-strategy flag was set.
	ErrConflictingStrategies = newConfig("conflicting strategy flags")
)

// Input errors.
var (
	// ErrSequenceCountMismatch indicates the name and sequence slices disagree in length.
	ErrSequenceCountMismatch = newInput("sequence and name counts do not match")

	// ErrUnequalSequenceLength indicates alignment rows of differing length.
	ErrUnequalSequenceLength = newInput("alignment sequences must share one length")

	// ErrEmptyAlignment indicates an alignment with no sequences.
	ErrEmptyAlignment = newInput("alignment contains no sequences")

	// ErrMalformedMatrix indicates an unreadable or inconsistent distance matrix.
	ErrMalformedMatrix = newInput("malformed distance matrix")

	// ErrRowNotWritten indicates a matrix row was read before being written.
	ErrRowNotWritten = newInput("matrix row has not been written")

	// ErrRowOutOfRange indicates a row index outside [0,n).
	ErrRowOutOfRange = newInput("matrix row index out of range")
)

// Storage errors.
var (
	// ErrCacheDirUnusable indicates the disk matrix scratch directory could not
	// be created or written. Fatal; never retried.
	ErrCacheDirUnusable = newStorage("matrix cache directory not usable")

	// ErrRowCorrupted indicates a disk row page failed its checksum on read-back.
	ErrRowCorrupted = newStorage("matrix row page corrupted")

	// ErrStoreClosed indicates an operation on a closed matrix store.
	ErrStoreClosed = newStorage("matrix store is closed")
)

// KindOf reports the Kind of err, unwrapping as needed.
// Errors not produced by arbornj report KindUnknown.
func KindOf(err error) Kind {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind
	}

	return KindUnknown
}
