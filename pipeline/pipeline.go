package pipeline

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/saorsa-labs/saorsa-fec/aead"
	"github.com/saorsa-labs/saorsa-fec/backend"
	"github.com/saorsa-labs/saorsa-fec/chunk"
	"github.com/saorsa-labs/saorsa-fec/cid"
	"github.com/saorsa-labs/saorsa-fec/errs"
	"github.com/saorsa-labs/saorsa-fec/header"
	"github.com/saorsa-labs/saorsa-fec/kdf"
	"github.com/saorsa-labs/saorsa-fec/meta"
	"github.com/saorsa-labs/saorsa-fec/rs"
)

// Pipeline turns a plaintext stream into a FileMeta plus
// durably-stored shards, and back, against a pluggable Backend.
type Pipeline struct {
	cfg     Config
	codec   rs.Codec
	backend backend.Backend
	cpuSem  *semaphore.Weighted
	ioSem   *semaphore.Weighted
}

// New builds a Pipeline against be, using cfg's erasure-coding shape
// and key-derivation mode for every file it writes.
func New(cfg Config, be backend.Backend) (*Pipeline, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	codec, err := rs.New(cfg.Spec, cfg.Accelerated)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:     cfg,
		codec:   codec,
		backend: be,
		cpuSem:  semaphore.NewWeighted(int64(cfg.MaxWorkers)),
		ioSem:   semaphore.NewWeighted(int64(cfg.MaxInFlightIO)),
	}, nil
}

func (p *Pipeline) headerFlags() uint8 {
	h := header.New()
	h.SetEncMode(uint8(p.cfg.EncMode))
	h.Flags |= header.FlagEncrypted
	if p.cfg.Accelerated {
		h.Flags |= header.FlagAccelerated
	}
	return h.Flags
}

// WriteFile reads plaintext from r in Config.ChunkSize chunks, encodes
// each chunk, and returns the resulting FileMeta once every shard of
// every chunk has been durably put. Chunks are processed concurrently
// subject to Config.MaxWorkers, but FileMeta.Chunks is always returned
// sorted in ascending ChunkIndex order.
func (p *Pipeline) WriteFile(ctx context.Context, r io.Reader, fileID [32]byte) (meta.FileMeta, error) {
	chunker, err := chunk.New(r, p.cfg.ChunkSize)
	if err != nil {
		return meta.FileMeta{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	var (
		mu        sync.Mutex
		refs      []meta.ChunkRef
		totalSize uint64
	)

	var chunkIndex uint32
	for {
		buf, err := chunker.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return meta.FileMeta{}, err
		}

		idx := chunkIndex
		chunkIndex++
		totalSize += uint64(len(buf))

		if err := p.cpuSem.Acquire(gctx, 1); err != nil {
			break
		}
		plaintext := buf
		g.Go(func() error {
			defer p.cpuSem.Release(1)
			ref, err := p.writeChunk(gctx, fileID, idx, plaintext)
			if err != nil {
				return err
			}
			mu.Lock()
			refs = append(refs, ref)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return meta.FileMeta{}, err
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].ChunkIndex < refs[j].ChunkIndex })

	return meta.FileMeta{
		FileID:    fileID,
		TotalSize: totalSize,
		EncMode:   p.cfg.EncMode,
		Chunks:    refs,
	}, nil
}

// writeChunk encrypts one chunk's data shards, computes parity over
// the ciphertexts, authenticates every shard, and stores the results,
// under the pipeline's own configured codec and erasure-coding shape.
func (p *Pipeline) writeChunk(ctx context.Context, fileID [32]byte, chunkIndex uint32, plaintext []byte) (meta.ChunkRef, error) {
	aeadKey, err := kdf.DeriveKey(p.cfg.EncMode, plaintext, p.cfg.Secret)
	if err != nil {
		return meta.ChunkRef{}, err
	}
	return p.encodeAndStoreChunk(ctx, fileID, chunkIndex, plaintext, aeadKey, p.codec, p.cfg.Spec)
}

// encodeAndStoreChunk is writeChunk's shape factored out over an
// explicit codec/spec pair, rather than always the pipeline's own
// p.codec/Config.Spec, so RepairChunk can re-encode one chunk under a
// widened parity count while reusing the exact same encrypt-then-code
// sequence.
func (p *Pipeline) encodeAndStoreChunk(ctx context.Context, fileID [32]byte, chunkIndex uint32, plaintext []byte, aeadKey [32]byte, codec rs.Codec, spec rs.NSpec) (meta.ChunkRef, error) {
	k, m := spec.K, spec.M
	shardSize := chunk.ShardSize(p.cfg.ChunkSize, k)

	dataSlices := chunk.PadAndSplit(plaintext, k, shardSize)
	flags := p.headerFlags()

	ciphertexts := make([][]byte, k+m)
	headers := make([]*header.Header, k+m)

	for i := 0; i < k; i++ {
		h := header.New()
		h.FileID = fileID
		h.ChunkIndex = chunkIndex
		h.ShardIndex = uint16(i)
		h.K = uint8(k)
		h.M = uint8(m)
		h.Flags = flags
		h.Nonce = kdf.DeriveNonce(fileID, chunkIndex, uint16(i))

		ad, err := h.AssociatedData()
		if err != nil {
			return meta.ChunkRef{}, err
		}
		ct, tag, err := aead.SealData(aeadKey, h.Nonce, ad, dataSlices[i])
		if err != nil {
			return meta.ChunkRef{}, err
		}
		copy(h.Tag[:], tag)

		ciphertexts[i] = ct
		headers[i] = h
	}

	parity, err := codec.Encode(ciphertexts[:k])
	if err != nil {
		return meta.ChunkRef{}, err
	}
	copy(ciphertexts[k:], parity)

	for j := 0; j < m; j++ {
		idx := k + j
		h := header.New()
		h.FileID = fileID
		h.ChunkIndex = chunkIndex
		h.ShardIndex = uint16(idx)
		h.K = uint8(k)
		h.M = uint8(m)
		h.Flags = flags
		h.Nonce = kdf.DeriveNonce(fileID, chunkIndex, uint16(idx))

		ad, err := h.AssociatedData()
		if err != nil {
			return meta.ChunkRef{}, err
		}
		tag, err := aead.SealParity(aeadKey, h.Nonce, ad, parity[j])
		if err != nil {
			return meta.ChunkRef{}, err
		}
		copy(h.Tag[:], tag)

		headers[idx] = h
	}

	cids := make([]cid.CID, k+m)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < k+m; i++ {
		i := i
		hb, err := headers[i].MarshalBinary()
		if err != nil {
			return meta.ChunkRef{}, err
		}
		body := ciphertexts[i]
		id := cid.Compute(hb, body)
		cids[i] = id

		g.Go(func() error {
			if err := p.ioSem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer p.ioSem.Release(1)

			blob := make([]byte, 0, len(hb)+len(body))
			blob = append(blob, hb...)
			blob = append(blob, body...)
			return p.putWithRetry(gctx, id, blob, chunkIndex, i)
		})
	}
	if err := g.Wait(); err != nil {
		return meta.ChunkRef{}, err
	}

	return meta.NewChunkRef(chunkIndex, spec, uint32(shardSize), uint32(len(plaintext)), cids, aeadKey, flags), nil
}

// putWithRetry puts one shard's blob to the backend, retrying on
// failure with exponential backoff up to Config.MaxPutRetries times.
// Once retries are exhausted, it returns errs.ErrBackendError and the
// caller's write fails with no FileMeta published.
func (p *Pipeline) putWithRetry(ctx context.Context, id cid.CID, blob []byte, chunkIndex uint32, shardIndex int) error {
	maxRetries := p.cfg.MaxPutRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	delay := p.cfg.PutRetryBaseDelay
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		err := p.backend.Put(ctx, id, blob)
		if err == nil {
			return nil
		}
		lastErr = err

		p.cfg.Logger.Warn("backend put failed, retrying",
			zap.String("cid", id.String()),
			zap.Uint32("chunk_index", chunkIndex),
			zap.Int("shard_index", shardIndex),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return fmt.Errorf("%w: %v", errs.ErrBackendError, lastErr)
}
