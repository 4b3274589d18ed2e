package rs_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saorsa-labs/saorsa-fec/rs"
)

var codecsUnderTest = []struct {
	name        string
	accelerated bool
}{
	{"pure", false},
	{"accelerated", true},
}

func randomShards(rng *rand.Rand, k, size int) [][]byte {
	shards := make([][]byte, k)
	for i := range shards {
		shards[i] = make([]byte, size)
		rng.Read(shards[i])
	}
	return shards
}

// TestSystematic checks that the first k output shards equal the k
// input data shards byte-for-byte.
func TestSystematic(t *testing.T) {
	for _, tc := range codecsUnderTest {
		t.Run(tc.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(1))
			spec := rs.NSpec{K: 4, M: 2}
			codec, err := rs.New(spec, tc.accelerated)
			require.NoError(t, err)

			data := randomShards(rng, spec.K, 64)
			original := make([][]byte, spec.K)
			for i := range data {
				original[i] = append([]byte(nil), data[i]...)
			}

			parity, err := codec.Encode(data)
			require.NoError(t, err)
			require.Len(t, parity, spec.M)
			for i := range data {
				require.Equal(t, original[i], data[i], "data shard %d must be unchanged by Encode", i)
			}
		})
	}
}

// TestReconstructAnyKOfN checks that for a selection of k-subsets of
// the n shards (data only, parity only, and mixed), reconstruction
// recovers the original data shards exactly.
func TestReconstructAnyKOfN(t *testing.T) {
	for _, tc := range codecsUnderTest {
		t.Run(tc.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(2))
			spec := rs.NSpec{K: 3, M: 3}
			codec, err := rs.New(spec, tc.accelerated)
			require.NoError(t, err)

			data := randomShards(rng, spec.K, 32)
			parity, err := codec.Encode(data)
			require.NoError(t, err)

			all := append(append([][]byte{}, data...), parity...)

			for _, drop := range [][]int{
				{0, 1, 2},
				{3, 4, 5},
				{0, 3, 4},
				{1, 2, 5},
			} {
				shards := make([][]byte, spec.N())
				copy(shards, all)
				for _, d := range drop {
					shards[d] = nil
				}
				require.NoError(t, codec.Reconstruct(shards))
				for i := 0; i < spec.K; i++ {
					require.Equal(t, data[i], shards[i], "dropped=%v data shard %d", drop, i)
				}
			}
		})
	}
}

// TestInsufficientShards is the failure half of T1: fewer than k
// present shards must fail cleanly.
func TestInsufficientShards(t *testing.T) {
	for _, tc := range codecsUnderTest {
		t.Run(tc.name, func(t *testing.T) {
			spec := rs.NSpec{K: 4, M: 2}
			codec, err := rs.New(spec, tc.accelerated)
			require.NoError(t, err)

			shards := make([][]byte, spec.N())
			shards[0] = make([]byte, 16)
			shards[1] = make([]byte, 16)
			shards[2] = make([]byte, 16)
			// Only 3 of 6 shards present, need 4.
			err = codec.Reconstruct(shards)
			require.Error(t, err)
		})
	}
}

func TestNSpecValidate(t *testing.T) {
	cases := []struct {
		spec  rs.NSpec
		valid bool
	}{
		{rs.NSpec{K: 1, M: 1}, true},
		{rs.NSpec{K: 255, M: 1}, true},
		{rs.NSpec{K: 200, M: 56}, true},
		{rs.NSpec{K: 200, M: 57}, false},
		{rs.NSpec{K: 0, M: 1}, false},
		{rs.NSpec{K: 1, M: 0}, false},
		{rs.NSpec{K: 256, M: 1}, false},
	}
	for _, tc := range cases {
		err := tc.spec.Validate()
		if tc.valid {
			require.NoError(t, err, "%s", tc.spec)
		} else {
			require.Error(t, err, "%s", tc.spec)
		}
	}
}

// TestPureAndAcceleratedAgree cross-checks the from-scratch codec
// against the accelerated one on the same input.
func TestPureAndAcceleratedAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	spec := rs.NSpec{K: 5, M: 3}
	pure, err := rs.New(spec, false)
	require.NoError(t, err)
	accel, err := rs.New(spec, true)
	require.NoError(t, err)

	data := randomShards(rng, spec.K, 128)
	parityPure, err := pure.Encode(data)
	require.NoError(t, err)
	parityAccel, err := accel.Encode(data)
	require.NoError(t, err)
	require.Len(t, parityPure, spec.M)
	require.Len(t, parityAccel, spec.M)
	require.Equal(t, parityPure, parityAccel)
}
