// Package keyshare splits a persisted chunk key into Shamir shares so
// that it can be recovered from a threshold of custodians instead of a
// single persisted copy.
package keyshare

import (
	"fmt"

	"github.com/hashicorp/vault/shamir"

	"github.com/saorsa-labs/saorsa-fec/errs"
)

// Split divides a 32-byte key into n shares, any threshold of which
// can reconstruct it. n and threshold follow shamir's own limits
// (2 <= threshold <= n <= 255).
func Split(key [32]byte, n, threshold int) ([][]byte, error) {
	if threshold < 2 || n < threshold || n > 255 {
		return nil, fmt.Errorf("%w: invalid shamir parameters n=%d threshold=%d", errs.ErrInvalidParameters, n, threshold)
	}
	shares, err := shamir.Split(key[:], n, threshold)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCryptoFailure, err)
	}
	return shares, nil
}

// Combine reconstructs the original key from a threshold-sized (or
// larger) subset of shares produced by Split.
func Combine(shares [][]byte) ([32]byte, error) {
	var key [32]byte
	secret, err := shamir.Combine(shares)
	if err != nil {
		return key, fmt.Errorf("%w: %v", errs.ErrCryptoFailure, err)
	}
	if len(secret) != 32 {
		return key, fmt.Errorf("%w: reconstructed secret has length %d, want 32", errs.ErrFormatError, len(secret))
	}
	copy(key[:], secret)
	return key, nil
}
