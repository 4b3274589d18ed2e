package rs_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saorsa-labs/saorsa-fec/rs"
)

// TestMintParityMatchesWidenedEncode checks that minting 2 extra
// parity shards for a {k:4, m:2} chunk produces exactly the trailing
// rows a from-scratch {k:4, m:4} Pure encode of the same data would
// have produced.
func TestMintParityMatchesWidenedEncode(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	spec := rs.NSpec{K: 4, M: 2}
	data := randomShards(rng, spec.K, 48)

	minted, err := rs.MintParity(spec, data, 2)
	require.NoError(t, err)
	require.Len(t, minted, 2)

	widenedCodec, err := rs.New(rs.NSpec{K: 4, M: 4}, false)
	require.NoError(t, err)
	widenedParity, err := widenedCodec.Encode(data)
	require.NoError(t, err)
	require.Len(t, widenedParity, 4)

	require.Equal(t, widenedParity[2:], minted, "minted rows must match the trailing rows of a from-scratch widened encode")
}

func TestMintParityRejectsNonPositiveExtra(t *testing.T) {
	spec := rs.NSpec{K: 3, M: 2}
	data := randomShards(rand.New(rand.NewSource(8)), spec.K, 16)
	_, err := rs.MintParity(spec, data, 0)
	require.Error(t, err)
}
