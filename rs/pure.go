package rs

import (
	"fmt"
	"sync"

	"github.com/saorsa-labs/saorsa-fec/errs"
	"github.com/saorsa-labs/saorsa-fec/gf"
)

// genCache holds generator matrices shared-immutable after first use
// per NSpec, so readers need no locking once a matrix is populated.
var genCache sync.Map // NSpec -> *matrix

func generatorFor(s NSpec) (*matrix, error) {
	if cached, ok := genCache.Load(s); ok {
		return cached.(*matrix), nil
	}
	gen, err := buildGenerator(s)
	if err != nil {
		return nil, err
	}
	// Another goroutine may have raced us; LoadOrStore keeps whichever
	// was stored first so all callers share one matrix instance.
	actual, _ := genCache.LoadOrStore(s, gen)
	return actual.(*matrix), nil
}

type pureCodec struct {
	spec NSpec
	gen  *matrix
}

func newPure(s NSpec) (*pureCodec, error) {
	gen, err := generatorFor(s)
	if err != nil {
		return nil, err
	}
	return &pureCodec{spec: s, gen: gen}, nil
}

func (c *pureCodec) NSpec() NSpec { return c.spec }

func (c *pureCodec) Encode(dataShards [][]byte) ([][]byte, error) {
	if len(dataShards) != c.spec.K {
		return nil, fmt.Errorf("%w: expected %d data shards, got %d", errs.ErrInvalidParameters, c.spec.K, len(dataShards))
	}
	size := len(dataShards[0])
	for _, d := range dataShards {
		if len(d) != size {
			return nil, fmt.Errorf("%w: data shard length mismatch", errs.ErrShardCorruption)
		}
	}

	parity := make([][]byte, c.spec.M)
	for p := 0; p < c.spec.M; p++ {
		acc := make([]byte, size)
		row := c.spec.K + p
		for col := 0; col < c.spec.K; col++ {
			gf.VecMac(acc, dataShards[col], c.gen.at(row, col))
		}
		parity[p] = acc
	}
	return parity, nil
}

func (c *pureCodec) Reconstruct(shards [][]byte) error {
	if len(shards) != c.spec.N() {
		return fmt.Errorf("%w: expected %d shard slots, got %d", errs.ErrInvalidParameters, c.spec.N(), len(shards))
	}

	size, present, err := shardLengths(shards)
	if err != nil {
		return err
	}
	if len(present) < c.spec.K {
		return fmt.Errorf("%w: have %d, need %d", errs.ErrInsufficientShards, len(present), c.spec.K)
	}

	chosen := chooseShards(present, c.spec.K)
	subGen := c.gen.submatrixRows(chosen)
	subInv, err := subGen.invert()
	if err != nil {
		return fmt.Errorf("%w: reconstruction matrix singular", errs.ErrInsufficientShards)
	}

	dataShards := make([][]byte, c.spec.K)
	for d := 0; d < c.spec.K; d++ {
		if shards[d] != nil {
			dataShards[d] = shards[d]
			continue
		}
		acc := make([]byte, size)
		for j, idx := range chosen {
			gf.VecMac(acc, shards[idx], subInv.at(d, j))
		}
		dataShards[d] = acc
		shards[d] = acc
	}

	for i := c.spec.K; i < c.spec.N(); i++ {
		if shards[i] != nil {
			continue
		}
		acc := make([]byte, size)
		for col := 0; col < c.spec.K; col++ {
			gf.VecMac(acc, dataShards[col], c.gen.at(i, col))
		}
		shards[i] = acc
	}

	return nil
}

// chooseShards prefers data shards over parity shards to minimise
// inversion cost, then breaks further ties by ascending shard index.
func chooseShards(present []int, k int) []int {
	chosen := make([]int, 0, k)
	for _, idx := range present {
		if idx < k {
			chosen = append(chosen, idx)
			if len(chosen) == k {
				return chosen
			}
		}
	}
	for _, idx := range present {
		if idx >= k {
			chosen = append(chosen, idx)
			if len(chosen) == k {
				return chosen
			}
		}
	}
	return chosen
}
