// Package chunk implements a byte-stream chunker: fixed-size plaintext
// chunks with a zero-padded final short chunk.
package chunk

import (
	"fmt"
	"io"

	"github.com/saorsa-labs/saorsa-fec/errs"
)

// Chunker reads fixed-size chunks of at most Size bytes from an
// underlying reader, ending with io.EOF once the stream is exhausted.
type Chunker struct {
	r    io.Reader
	size int
}

// New returns a Chunker reading chunks of size bytes from r. size must
// be positive.
func New(r io.Reader, size int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", errs.ErrInvalidParameters, size)
	}
	return &Chunker{r: r, size: size}, nil
}

// Next reads the next chunk. It returns the chunk bytes (length <=
// Size, exactly Size for every chunk but possibly the last) and
// io.EOF once the underlying reader is exhausted, consistent with
// io.Reader's own convention: a final short chunk is returned
// together with a nil error, and the following call returns
// (nil, io.EOF).
func (c *Chunker) Next() ([]byte, error) {
	buf := make([]byte, c.size)
	n, err := io.ReadFull(c.r, buf)
	switch {
	case err == nil:
		return buf, nil
	case err == io.ErrUnexpectedEOF:
		return buf[:n], nil
	case err == io.EOF:
		return nil, io.EOF
	default:
		return nil, fmt.Errorf("%w: %v", errs.ErrBackendError, err)
	}
}

// ShardSize returns s = ceil(chunkSize / k), the per-shard byte size
// shared by every chunk of a file. It is a function of the pipeline's
// configured chunk size and k alone — not of any individual chunk's
// actual (possibly short) plaintext length — so that every shard of
// every chunk shares the same length s across the whole file,
// including its final short chunk.
func ShardSize(chunkSize, k int) int {
	if chunkSize <= 0 {
		return 0
	}
	return (chunkSize + k - 1) / k
}

// PadAndSplit zero-pads plaintext up to k*shardSize and splits it into
// k contiguous slices of shardSize bytes each.
func PadAndSplit(plaintext []byte, k, shardSize int) [][]byte {
	padded := make([]byte, k*shardSize)
	copy(padded, plaintext)

	slices := make([][]byte, k)
	for i := 0; i < k; i++ {
		slices[i] = padded[i*shardSize : (i+1)*shardSize]
	}
	return slices
}
