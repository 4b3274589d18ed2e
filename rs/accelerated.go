package rs

import (
	"errors"
	"fmt"

	klauspost "github.com/klauspost/reedsolomon"

	"github.com/saorsa-labs/saorsa-fec/errs"
)

// acceleratedCodec wraps github.com/klauspost/reedsolomon, a
// SIMD-optimised systematic codec that can substitute for the
// from-scratch Pure codec: both implement the same systematic-code,
// k-of-n recovery contract.
type acceleratedCodec struct {
	spec NSpec
	enc  klauspost.Encoder
}

func newAccelerated(s NSpec) (*acceleratedCodec, error) {
	enc, err := klauspost.New(s.K, s.M)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidParameters, err)
	}
	return &acceleratedCodec{spec: s, enc: enc}, nil
}

func (c *acceleratedCodec) NSpec() NSpec { return c.spec }

func (c *acceleratedCodec) Encode(dataShards [][]byte) ([][]byte, error) {
	if len(dataShards) != c.spec.K {
		return nil, fmt.Errorf("%w: expected %d data shards, got %d", errs.ErrInvalidParameters, c.spec.K, len(dataShards))
	}
	size := len(dataShards[0])

	shards := make([][]byte, c.spec.N())
	copy(shards, dataShards)
	for i := c.spec.K; i < c.spec.N(); i++ {
		shards[i] = make([]byte, size)
	}

	if err := c.enc.Encode(shards); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCryptoFailure, err)
	}
	return shards[c.spec.K:], nil
}

func (c *acceleratedCodec) Reconstruct(shards [][]byte) error {
	if len(shards) != c.spec.N() {
		return fmt.Errorf("%w: expected %d shard slots, got %d", errs.ErrInvalidParameters, c.spec.N(), len(shards))
	}
	if err := c.enc.Reconstruct(shards); err != nil {
		if errors.Is(err, klauspost.ErrShardSize) {
			return fmt.Errorf("%w: %v", errs.ErrShardCorruption, err)
		}
		return fmt.Errorf("%w: %v", errs.ErrInsufficientShards, err)
	}
	return nil
}
