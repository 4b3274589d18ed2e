package rs

import "github.com/saorsa-labs/saorsa-fec/errs"

// Codec is a pluggable RS backend interface so a pure, from-scratch
// implementation and an accelerated/SIMD one can be swapped without
// touching the wire format, which is invariant to the choice.
type Codec interface {
	// NSpec returns the (k, m) this codec was built for.
	NSpec() NSpec

	// Encode takes exactly k data shards of equal length s and returns
	// m parity shards of the same length.
	Encode(dataShards [][]byte) (parityShards [][]byte, error error)

	// Reconstruct takes a slice of k+m shard slots (nil for a missing
	// shard; the Accelerated codec also treats a zero-length slice as
	// missing, the Pure codec only nil) and fills in every missing slot,
	// both data and parity, from whichever >=k shards are present. It
	// returns errs.ErrInsufficientShards if fewer than k shards are
	// present, and errs.ErrShardCorruption if the present shards differ
	// in length.
	Reconstruct(shards [][]byte) error
}

// New returns a Codec for NSpec s. accelerated selects the
// klauspost/reedsolomon-backed implementation (the CLI's default);
// when accelerated is false, the from-scratch Pure codec (package gf)
// is used instead.
func New(s NSpec, accelerated bool) (Codec, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if accelerated {
		return newAccelerated(s)
	}
	return newPure(s)
}

// shardLengths returns the common non-zero shard length among the
// present shards, or an error if shards disagree.
func shardLengths(shards [][]byte) (length int, present []int, err error) {
	for i, sh := range shards {
		if sh == nil {
			continue
		}
		present = append(present, i)
		if length == 0 {
			length = len(sh)
		} else if len(sh) != length {
			return 0, nil, errs.ErrShardCorruption
		}
	}
	return length, present, nil
}
