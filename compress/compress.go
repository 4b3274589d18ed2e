// Package compress implements optional pre-stage compression, flagged
// by header.FlagCompressed: a plain streaming zstd pass applied to a
// whole file's plaintext before it is handed to the chunker, using
// github.com/klauspost/compress/zstd.
//
// A single-stream seekable container (such as
// github.com/SaveTheRbtz/zstd-seekable-format-go) was considered and
// dropped: this pipeline needs independently decodable, fixed-size
// plaintext chunks, and a seekable-zstd container's internal frame
// boundaries don't line up with chunk boundaries, so plain streaming
// zstd — applied once, before chunking, and decompressed once, after
// reassembly — is the simpler fit.
package compress

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/saorsa-labs/saorsa-fec/errs"
)

// NewWriter wraps w so that bytes written to the returned writer are
// zstd-compressed before reaching w. Callers MUST call Close to flush
// the final frame.
func NewWriter(w io.Writer) (*zstd.Encoder, error) {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCryptoFailure, err)
	}
	return enc, nil
}

// NewReader wraps r so that reads from the returned reader yield the
// decompressed plaintext stream. Callers MUST call Close when done to
// release the decoder's goroutines.
func NewReader(r io.Reader) (*zstd.Decoder, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrFormatError, err)
	}
	return dec, nil
}
