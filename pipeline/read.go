package pipeline

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/saorsa-labs/saorsa-fec/aead"
	"github.com/saorsa-labs/saorsa-fec/cid"
	"github.com/saorsa-labs/saorsa-fec/errs"
	"github.com/saorsa-labs/saorsa-fec/header"
	"github.com/saorsa-labs/saorsa-fec/kdf"
	"github.com/saorsa-labs/saorsa-fec/meta"
	"github.com/saorsa-labs/saorsa-fec/rs"
)

// ReadFile reconstructs a file's plaintext from its FileMeta, writing
// it to w in file order. Chunks are fetched and reconstructed
// concurrently subject to Config.MaxWorkers; a failure on any chunk
// aborts the read with no partial-file bytes emitted past the
// failure boundary.
func (p *Pipeline) ReadFile(ctx context.Context, fm meta.FileMeta, w io.Writer) error {
	plaintexts := make([][]byte, len(fm.Chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range fm.Chunks {
		i, ref := i, ref
		if err := p.cpuSem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer p.cpuSem.Release(1)
			pt, err := p.readChunk(gctx, fm.FileID, ref)
			if err != nil {
				return err
			}
			plaintexts[i] = pt
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, pt := range plaintexts {
		if _, err := w.Write(pt); err != nil {
			return fmt.Errorf("%w: %v", errs.ErrBackendError, err)
		}
	}
	return nil
}

// readChunk fetches and verifies every shard of one chunk, reconstructs
// any missing data shards via erasure coding, and returns the
// chunk's plaintext.
func (p *Pipeline) readChunk(ctx context.Context, fileID [32]byte, ref meta.ChunkRef) ([]byte, error) {
	k, m := int(ref.K), int(ref.M)
	n := k + m

	bodies := make([][]byte, n)
	openedData := make([][]byte, k)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			body, opened, err := p.fetchAndVerifyShard(gctx, fileID, ref, i)
			if err != nil {
				p.cfg.Logger.Warn("discarding shard",
					zap.Uint32("chunk_index", ref.ChunkIndex),
					zap.Int("shard_index", i),
					zap.Error(err))
				return nil
			}
			bodies[i] = body
			if i < k {
				openedData[i] = opened
			}
			return nil
		})
	}
	// fetchAndVerifyShard never returns a non-nil error to the group;
	// failures are discarded shard-by-shard.
	_ = g.Wait()

	present := 0
	for _, b := range bodies {
		if b != nil {
			present++
		}
	}
	if present < k {
		return nil, &errs.ChunkError{ChunkIndex: ref.ChunkIndex, Present: present, Required: k, Kind: errs.ErrInsufficientShards}
	}

	missingData := false
	for i := 0; i < k; i++ {
		if bodies[i] == nil {
			missingData = true
			break
		}
	}
	if missingData {
		codec := p.codec
		if ref.NSpec() != p.cfg.Spec {
			c, err := rs.New(ref.NSpec(), p.cfg.Accelerated)
			if err != nil {
				return nil, &errs.ChunkError{ChunkIndex: ref.ChunkIndex, Present: present, Required: k, Kind: err}
			}
			codec = c
		}
		p.cfg.Logger.Warn("reconstructing missing data shards",
			zap.Uint32("chunk_index", ref.ChunkIndex),
			zap.Int("present", present))
		if err := codec.Reconstruct(bodies); err != nil {
			return nil, &errs.ChunkError{ChunkIndex: ref.ChunkIndex, Present: present, Required: k, Kind: err}
		}
		for i := 0; i < k; i++ {
			if openedData[i] == nil {
				pt, err := p.openReconstructedDataShard(fileID, ref, i, bodies[i])
				if err != nil {
					return nil, &errs.ChunkError{ChunkIndex: ref.ChunkIndex, Present: present, Required: k, Kind: err}
				}
				openedData[i] = pt
			}
		}
	}

	plaintext := make([]byte, 0, int(ref.ShardLength)*k)
	for i := 0; i < k; i++ {
		plaintext = append(plaintext, openedData[i]...)
	}
	if uint32(len(plaintext)) < ref.PlaintextLength {
		return nil, &errs.ChunkError{ChunkIndex: ref.ChunkIndex, Present: present, Required: k, Kind: errs.ErrShardCorruption}
	}
	return plaintext[:ref.PlaintextLength], nil
}

// fetchAndVerifyShard fetches shard i by its CID, checks its header
// against ref, and verifies its AEAD tag. It returns the shard's
// ciphertext/parity body (for RS) and, for data shards, the opened
// plaintext (so it need not be decrypted twice).
func (p *Pipeline) fetchAndVerifyShard(ctx context.Context, fileID [32]byte, ref meta.ChunkRef, i int) (body, opened []byte, err error) {
	if err := p.ioSem.Acquire(ctx, 1); err != nil {
		return nil, nil, err
	}
	defer p.ioSem.Release(1)

	id := cid.CID(ref.CIDs[i])
	blob, err := p.backend.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if len(blob) < header.Size {
		return nil, nil, fmt.Errorf("%w: shard blob shorter than header", errs.ErrShardCorruption)
	}

	var h header.Header
	if err := h.UnmarshalBinary(blob[:header.Size]); err != nil {
		return nil, nil, err
	}
	shardBody := blob[header.Size:]

	if h.ChunkIndex != ref.ChunkIndex || int(h.K) != int(ref.K) || int(h.M) != int(ref.M) || h.ShardIndex != uint16(i) {
		return nil, nil, fmt.Errorf("%w: header fields inconsistent with ChunkRef", errs.ErrShardCorruption)
	}
	expectedNonce := kdf.DeriveNonce(fileID, ref.ChunkIndex, uint16(i))
	if h.Nonce != expectedNonce {
		return nil, nil, fmt.Errorf("%w: nonce mismatch", errs.ErrShardCorruption)
	}

	ad, err := h.AssociatedData()
	if err != nil {
		return nil, nil, err
	}

	k := int(ref.K)
	if i < k {
		pt, err := aead.OpenData(ref.AEADKey, h.Nonce, ad, shardBody, h.Tag[:])
		if err != nil {
			return nil, nil, err
		}
		return shardBody, pt, nil
	}

	if err := aead.VerifyParity(ref.AEADKey, h.Nonce, ad, shardBody, h.Tag[:]); err != nil {
		return nil, nil, err
	}
	return shardBody, nil, nil
}

// openReconstructedDataShard decrypts a data shard's ciphertext that
// was recovered via RS reconstruction rather than fetched directly.
// Its AEAD tag was never fetched (it lived in the header of the shard
// that is missing), but none is needed: the ciphertext was recovered
// from a linear combination of >=k shards that each independently
// passed AEAD verification, so it is already trustworthy.
func (p *Pipeline) openReconstructedDataShard(fileID [32]byte, ref meta.ChunkRef, i int, ciphertext []byte) ([]byte, error) {
	nonce := kdf.DeriveNonce(fileID, ref.ChunkIndex, uint16(i))
	pt, err := aead.DecryptRecovered(ref.AEADKey, nonce, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrShardCorruption, err)
	}
	return pt, nil
}
