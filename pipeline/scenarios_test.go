package pipeline_test

import (
	"bytes"
	"context"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saorsa-labs/saorsa-fec/backend"
	"github.com/saorsa-labs/saorsa-fec/kdf"
	"github.com/saorsa-labs/saorsa-fec/pipeline"
	"github.com/saorsa-labs/saorsa-fec/rs"
)

// TestScenarioS1 writes a 43-byte plaintext with k=4, m=2,
// chunk_size=64. It expects one chunk, six shards each of length 16,
// and the exact 43 bytes back after trimming.
func TestScenarioS1(t *testing.T) {
	ctx := context.Background()
	be := backend.NewMemory()
	p, err := pipeline.New(pipeline.Config{
		ChunkSize: 64,
		Spec:      rs.NSpec{K: 4, M: 2},
		EncMode:   kdf.Convergent,
	}, be)
	require.NoError(t, err)

	plaintext := []byte("The quick brown fox jumps over the lazy dog")
	require.Len(t, plaintext, 43)

	fm, err := p.WriteFile(ctx, bytes.NewReader(plaintext), testFileID(0x51))
	require.NoError(t, err)
	require.Len(t, fm.Chunks, 1)
	require.Equal(t, uint32(16), fm.Chunks[0].ShardLength)
	require.Len(t, fm.Chunks[0].CIDs, 6)

	for _, raw := range fm.Chunks[0].CIDs {
		blob, err := be.Get(ctx, idFromRaw(raw))
		require.NoError(t, err)
		require.Len(t, blob, 96+16)
	}

	var out bytes.Buffer
	require.NoError(t, p.ReadFile(ctx, fm, &out))
	require.Equal(t, plaintext, out.Bytes())
}

// TestScenarioS2 writes 1 MiB of zero bytes with chunk_size 64KiB,
// k=3/m=2, chunking into 16 chunks. Even though every chunk's
// plaintext is identical (all zero) and EncMode is Convergent, shard
// CIDs are distinct across chunks because chunk_index feeds the nonce
// derivation, which in turn varies each shard's ciphertext and thus
// its CID.
func TestScenarioS2(t *testing.T) {
	ctx := context.Background()
	be := backend.NewMemory()
	p, err := pipeline.New(pipeline.Config{
		ChunkSize: 65536,
		Spec:      rs.NSpec{K: 3, M: 2},
		EncMode:   kdf.Convergent,
	}, be)
	require.NoError(t, err)

	fm, err := p.WriteFile(ctx, bytes.NewReader(make([]byte, 1048576)), testFileID(0x52))
	require.NoError(t, err)
	require.Len(t, fm.Chunks, 16)

	seen := map[[32]byte]bool{}
	for _, ref := range fm.Chunks {
		for _, raw := range ref.CIDs {
			require.False(t, seen[raw], "duplicate shard CID across chunks")
			seen[raw] = true
		}
	}
}

// TestScenarioS3 writes 10 MiB of random plaintext with k=10, m=4,
// chunk_size 1 MiB, ConvergentWithSecret. Dropping shards {0,3,11,13}
// of every chunk still leaves 10 of 14 present, so reconstruction
// succeeds and bytes match exactly.
func TestScenarioS3(t *testing.T) {
	ctx := context.Background()
	be := backend.NewMemory()
	secret := bytes.Repeat([]byte{0xAB}, 32)
	p, err := pipeline.New(pipeline.Config{
		ChunkSize: 1 << 20,
		Spec:      rs.NSpec{K: 10, M: 4},
		EncMode:   kdf.ConvergentWithSecret,
		Secret:    secret,
	}, be)
	require.NoError(t, err)

	plaintext := make([]byte, 10<<20)
	_, err = io.ReadFull(rand.New(rand.NewSource(3)), plaintext)
	require.NoError(t, err)

	fm, err := p.WriteFile(ctx, bytes.NewReader(plaintext), testFileID(0x53))
	require.NoError(t, err)
	require.Len(t, fm.Chunks, 10)

	for _, ref := range fm.Chunks {
		for _, i := range []int{0, 3, 11, 13} {
			require.NoError(t, be.Delete(ctx, idFromRaw(ref.CIDs[i])))
		}
	}

	var out bytes.Buffer
	require.NoError(t, p.ReadFile(ctx, fm, &out))
	require.Equal(t, plaintext, out.Bytes())
}

// TestScenarioS4 uses the same layout as S3, but dropping {0,1,2,3,4}
// leaves only 9 of 14 shards, one short of k=10. The read must fail
// cleanly with InsufficientShards at chunk 0, and no plaintext is ever
// written to the caller past that failure.
func TestScenarioS4(t *testing.T) {
	ctx := context.Background()
	be := backend.NewMemory()
	secret := bytes.Repeat([]byte{0xAB}, 32)
	p, err := pipeline.New(pipeline.Config{
		ChunkSize: 1 << 20,
		Spec:      rs.NSpec{K: 10, M: 4},
		EncMode:   kdf.ConvergentWithSecret,
		Secret:    secret,
	}, be)
	require.NoError(t, err)

	plaintext := make([]byte, 2<<20)
	fm, err := p.WriteFile(ctx, bytes.NewReader(plaintext), testFileID(0x54))
	require.NoError(t, err)

	for _, ref := range fm.Chunks {
		for _, i := range []int{0, 1, 2, 3, 4} {
			require.NoError(t, be.Delete(ctx, idFromRaw(ref.CIDs[i])))
		}
	}

	var out bytes.Buffer
	err = p.ReadFile(ctx, fm, &out)
	require.Error(t, err)
	require.Equal(t, 0, out.Len())
}

// TestScenarioS5 tampers a shard's header (flipping the first nonce
// byte), so the stored nonce no longer matches the one derived for that
// shard and the shard is discarded;
// the read still succeeds via parity so long as at most m shards are
// discarded, and fails once more than m are.
func TestScenarioS5(t *testing.T) {
	ctx := context.Background()
	be := backend.NewMemory()
	p, err := pipeline.New(pipeline.Config{
		ChunkSize: 64,
		Spec:      rs.NSpec{K: 4, M: 2},
		EncMode:   kdf.Convergent,
	}, be)
	require.NoError(t, err)

	plaintext := bytes.Repeat([]byte{0x9A}, 64)
	fm, err := p.WriteFile(ctx, bytes.NewReader(plaintext), testFileID(0x55))
	require.NoError(t, err)
	ref := fm.Chunks[0]

	tamper := func(shardIdx int) {
		id := idFromRaw(ref.CIDs[shardIdx])
		blob, err := be.Get(ctx, id)
		require.NoError(t, err)
		tampered := append([]byte{}, blob...)
		tampered[44] ^= 0x01 // first nonce byte, offset 44 in the header.
		require.NoError(t, be.Delete(ctx, id))
		require.NoError(t, be.Put(ctx, id, tampered))
	}

	// Tamper one shard (<= m=2): read still succeeds via parity.
	tamper(0)
	var out bytes.Buffer
	require.NoError(t, p.ReadFile(ctx, fm, &out))
	require.Equal(t, plaintext, out.Bytes())

	// Tamper a second shard (== m=2): still succeeds, exactly k remain.
	tamper(1)
	out.Reset()
	require.NoError(t, p.ReadFile(ctx, fm, &out))
	require.Equal(t, plaintext, out.Bytes())

	// Tamper a third shard (> m=2): now only k-1 verify, must fail.
	tamper(2)
	out.Reset()
	err = p.ReadFile(ctx, fm, &out)
	require.Error(t, err)
}

// TestScenarioS6 writes two files whose chunk 0 plaintexts are
// byte-identical but whose file_ids differ. In Convergent mode the
// derived aead_key is identical (it depends only on plaintext), but
// the nonce depends on file_id, so ciphertexts and shard CIDs differ:
// convergent deduplication is intra-file only.
func TestScenarioS6(t *testing.T) {
	ctx := context.Background()
	be := backend.NewMemory()
	p, err := pipeline.New(pipeline.Config{
		ChunkSize: 64,
		Spec:      rs.NSpec{K: 4, M: 2},
		EncMode:   kdf.Convergent,
	}, be)
	require.NoError(t, err)

	plaintext := bytes.Repeat([]byte{0x5A}, 64)
	fmA, err := p.WriteFile(ctx, bytes.NewReader(plaintext), testFileID(0xA1))
	require.NoError(t, err)
	fmB, err := p.WriteFile(ctx, bytes.NewReader(plaintext), testFileID(0xB2))
	require.NoError(t, err)

	require.Equal(t, fmA.Chunks[0].AEADKey, fmB.Chunks[0].AEADKey, "convergent key depends on plaintext only")
	require.NotEqual(t, fmA.Chunks[0].CIDs, fmB.Chunks[0].CIDs, "nonce depends on file_id, so shard CIDs differ")

	for i := range fmA.Chunks[0].CIDs {
		okA, err := be.Exists(ctx, idFromRaw(fmA.Chunks[0].CIDs[i]))
		require.NoError(t, err)
		require.True(t, okA)
		okB, err := be.Exists(ctx, idFromRaw(fmB.Chunks[0].CIDs[i]))
		require.NoError(t, err)
		require.True(t, okB)
	}
}
