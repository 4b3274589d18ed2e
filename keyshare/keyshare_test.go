package keyshare_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saorsa-labs/saorsa-fec/keyshare"
)

func testKey() [32]byte {
	var k [32]byte
	for i := range k {
		k[i] = byte(i)
	}
	return k
}

func TestSplitCombineRoundTrip(t *testing.T) {
	key := testKey()
	shares, err := keyshare.Split(key, 5, 3)
	require.NoError(t, err)
	require.Len(t, shares, 5)

	got, err := keyshare.Combine(shares[:3])
	require.NoError(t, err)
	require.Equal(t, key, got)
}

func TestCombineAnyThresholdSubset(t *testing.T) {
	key := testKey()
	shares, err := keyshare.Split(key, 5, 3)
	require.NoError(t, err)

	got, err := keyshare.Combine([][]byte{shares[1], shares[3], shares[4]})
	require.NoError(t, err)
	require.Equal(t, key, got)
}

func TestSplitRejectsInvalidThreshold(t *testing.T) {
	key := testKey()
	_, err := keyshare.Split(key, 3, 1)
	require.Error(t, err)
	_, err = keyshare.Split(key, 2, 3)
	require.Error(t, err)
}
