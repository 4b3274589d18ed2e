// Package errs defines the error kinds shared across the pipeline's
// components.
package errs

import "errors"

// Sentinel error kinds. Components return one of these (possibly wrapped
// with additional context via fmt.Errorf("...: %w", err)) so that callers
// can classify failures with errors.Is.
var (
	// ErrInvalidParameters covers k, m outside valid range, or otherwise
	// inconsistent with the configured chunk size.
	ErrInvalidParameters = errors.New("saorsafec: invalid parameters")

	// ErrShardCorruption covers AEAD tag mismatches, header version or
	// field mismatches, and shard length mismatches.
	ErrShardCorruption = errors.New("saorsafec: shard corruption")

	// ErrInsufficientShards is returned when fewer than k valid shards
	// are available for a chunk, or the chosen reconstruction submatrix
	// is singular.
	ErrInsufficientShards = errors.New("saorsafec: insufficient shards")

	// ErrBackendError covers transient I/O failures from the storage
	// backend.
	ErrBackendError = errors.New("saorsafec: backend error")

	// ErrCryptoFailure covers AEAD or KDF primitive failures. Reaching
	// this indicates a programming error, not attacker-controlled input.
	ErrCryptoFailure = errors.New("saorsafec: crypto failure")

	// ErrFormatError covers a FileMeta record that cannot be parsed or
	// fails its invariants.
	ErrFormatError = errors.New("saorsafec: format error")

	// ErrNotFound is returned by storage backends when a CID is unknown.
	ErrNotFound = errors.New("saorsafec: not found")
)

// ChunkError reports a user-visible chunk failure: the failing chunk
// index, the shard counts involved, and the underlying error kind.
type ChunkError struct {
	ChunkIndex uint32
	Present    int
	Required   int
	Kind       error
}

func (e *ChunkError) Error() string {
	return "saorsafec: chunk " + itoa(e.ChunkIndex) + ": " + e.Kind.Error() +
		" (" + itoa(uint32(e.Present)) + "/" + itoa(uint32(e.Required)) + " shards)"
}

func (e *ChunkError) Unwrap() error {
	return e.Kind
}

func itoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
