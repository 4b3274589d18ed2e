// Package backend defines a CID-keyed, idempotent, content-addressed
// blob storage contract, with two implementations: an in-process
// Memory backend and a fan-out Multi backend for replication across
// several backends.
package backend

import (
	"context"
	"fmt"
	"sync"

	"github.com/orcaman/writerseeker"

	"github.com/saorsa-labs/saorsa-fec/cid"
	"github.com/saorsa-labs/saorsa-fec/errs"
)

// Backend is the storage contract shards are written to and read
// from. Implementations MUST treat a Put of bytes already stored
// under the same CID as a no-op, and MUST be safe for concurrent use:
// callers issue concurrent put/get/exists calls against the same
// backend handle.
type Backend interface {
	Put(ctx context.Context, id cid.CID, data []byte) error
	Get(ctx context.Context, id cid.CID) ([]byte, error)
	Exists(ctx context.Context, id cid.CID) (bool, error)
	Delete(ctx context.Context, id cid.CID) error
}

// Memory is an in-process Backend holding one private byte-slice copy
// per stored CID, made by writing the data through a writerseeker
// buffer on Put. It is intended for tests and the CLI's
// -backend=memory mode, avoiding the filesystem entirely for ephemeral
// data.
type Memory struct {
	mu    sync.RWMutex
	blobs map[cid.CID][]byte
}

// NewMemory returns an empty Memory backend.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[cid.CID][]byte)}
}

func (m *Memory) Put(_ context.Context, id cid.CID, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[id]; ok {
		return nil
	}

	var ws writerseeker.WriterSeeker
	if _, err := ws.Write(data); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrBackendError, err)
	}
	r := ws.BytesReader()
	buf := make([]byte, r.Len())
	if _, err := r.Read(buf); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrBackendError, err)
	}
	m.blobs[id] = buf
	return nil
}

func (m *Memory) Get(_ context.Context, id cid.CID) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: CID %s", errs.ErrNotFound, id.String())
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *Memory) Exists(_ context.Context, id cid.CID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.blobs[id]
	return ok, nil
}

func (m *Memory) Delete(_ context.Context, id cid.CID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, id)
	return nil
}

// Multi replicates writes across several backends and satisfies reads
// from the first backend that has the requested CID.
type Multi struct {
	backends []Backend
}

// NewMulti returns a Multi backend replicating across the given
// backends, in order.
func NewMulti(backends ...Backend) (*Multi, error) {
	if len(backends) == 0 {
		return nil, fmt.Errorf("%w: Multi backend requires at least one backend", errs.ErrInvalidParameters)
	}
	return &Multi{backends: backends}, nil
}

// Put writes data to every member backend, returning the first error
// encountered; earlier successful puts are left in place, since a
// retry will re-issue idempotent puts to all of them.
func (m *Multi) Put(ctx context.Context, id cid.CID, data []byte) error {
	for _, b := range m.backends {
		if err := b.Put(ctx, id, data); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the first successful result from the member backends,
// in order.
func (m *Multi) Get(ctx context.Context, id cid.CID) ([]byte, error) {
	var firstErr error
	for _, b := range m.backends {
		data, err := b.Get(ctx, id)
		if err == nil {
			return data, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

// Exists reports true if any member backend has the CID.
func (m *Multi) Exists(ctx context.Context, id cid.CID) (bool, error) {
	for _, b := range m.backends {
		ok, err := b.Exists(ctx, id)
		if err == nil && ok {
			return true, nil
		}
	}
	return false, nil
}

// Delete removes the CID from every member backend, collecting the
// first error but still attempting the rest.
func (m *Multi) Delete(ctx context.Context, id cid.CID) error {
	var firstErr error
	for _, b := range m.backends {
		if err := b.Delete(ctx, id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
