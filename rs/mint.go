package rs

import (
	"fmt"

	"github.com/saorsa-labs/saorsa-fec/errs"
	"github.com/saorsa-labs/saorsa-fec/gf"
)

// MintParity computes extra additional parity shards for a chunk
// already encoded under spec, without touching the data shards or any
// previously-computed parity. buildGenerator's Vandermonde rows depend
// only on a row's own index, so the generator built for {spec.K,
// spec.M+extra} has the exact same first spec.N() rows as the one
// built for spec — only the new rows at spec.N()..spec.N()+extra-1
// are new. This only holds against the shared generator cache's
// matrices, so it is only meaningful for the Pure codec's systematic
// encoding; MintParity does not accept an Accelerated codec's output,
// since klauspost/reedsolomon builds its own generator internally and
// offers no guarantee that its rows are stable under a growing m.
func MintParity(spec NSpec, dataShards [][]byte, extra int) ([][]byte, error) {
	if extra <= 0 {
		return nil, fmt.Errorf("%w: extra must be positive", errs.ErrInvalidParameters)
	}
	widened := NSpec{K: spec.K, M: spec.M + extra}
	if err := widened.Validate(); err != nil {
		return nil, err
	}
	if len(dataShards) != spec.K {
		return nil, fmt.Errorf("%w: expected %d data shards, got %d", errs.ErrInvalidParameters, spec.K, len(dataShards))
	}
	size := len(dataShards[0])
	for _, d := range dataShards {
		if len(d) != size {
			return nil, fmt.Errorf("%w: data shard length mismatch", errs.ErrShardCorruption)
		}
	}

	gen, err := generatorFor(widened)
	if err != nil {
		return nil, err
	}

	minted := make([][]byte, extra)
	for p := 0; p < extra; p++ {
		acc := make([]byte, size)
		row := spec.N() + p
		for col := 0; col < spec.K; col++ {
			gf.VecMac(acc, dataShards[col], gen.at(row, col))
		}
		minted[p] = acc
	}
	return minted, nil
}
