package pipeline

import (
	"context"
	"fmt"

	"github.com/saorsa-labs/saorsa-fec/errs"
	"github.com/saorsa-labs/saorsa-fec/meta"
	"github.com/saorsa-labs/saorsa-fec/rs"
)

// RepairChunk widens one chunk's redundancy by extra parity shards,
// for operators reacting to telemetry that shows repeated shard loss
// on a chunk without waiting for it to drop below k. It reconstructs
// the chunk's plaintext from whichever shards are currently available
// (exactly like ReadFile would), then republishes every shard of that
// chunk, including the original k data shards and m parity shards,
// under a {k, m+extra} spec, reusing the chunk's existing AEADKey so
// the plaintext's only other derivation input, the per-shard nonce, is
// unaffected.
//
// The caller is responsible for substituting the returned ChunkRef
// into FileMeta.Chunks at chunkIndex and persisting the updated
// FileMeta; the old shards at the previous CIDs are left in the
// backend untouched (and unreferenced) until the caller garbage
// collects them.
//
// RepairChunk does not use rs.MintParity directly: widening m changes
// every shard's header (the M field is part of the AEAD associated
// data), so the original k+m shards need new tags regardless, which
// means there is no work saved by minting only the new rows instead of
// re-encoding the whole chunk. rs.MintParity exists as the documented,
// tested primitive that proves re-encoding under a wider m reproduces
// the original rows unchanged, the guarantee RepairChunk's full
// rewrite depends on for correctness.
func (p *Pipeline) RepairChunk(ctx context.Context, fm meta.FileMeta, chunkIndex uint32, extra int) (meta.ChunkRef, error) {
	if extra <= 0 {
		return meta.ChunkRef{}, fmt.Errorf("%w: extra must be positive", errs.ErrInvalidParameters)
	}

	var ref meta.ChunkRef
	found := false
	for _, c := range fm.Chunks {
		if c.ChunkIndex == chunkIndex {
			ref = c
			found = true
			break
		}
	}
	if !found {
		return meta.ChunkRef{}, fmt.Errorf("%w: chunk %d not found in FileMeta", errs.ErrInvalidParameters, chunkIndex)
	}

	plaintext, err := p.readChunk(ctx, fm.FileID, ref)
	if err != nil {
		return meta.ChunkRef{}, err
	}

	widened := rs.NSpec{K: ref.NSpec().K, M: ref.NSpec().M + extra}
	if err := widened.Validate(); err != nil {
		return meta.ChunkRef{}, err
	}
	codec, err := rs.New(widened, p.cfg.Accelerated)
	if err != nil {
		return meta.ChunkRef{}, err
	}

	return p.encodeAndStoreChunk(ctx, fm.FileID, chunkIndex, plaintext, ref.AEADKey, codec, widened)
}
