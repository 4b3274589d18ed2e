// Package meta implements FileMeta: a length-prefixed, magic-tagged
// record describing a file's chunks and the CIDs of their shards,
// serialised with vmihailenco/msgpack/v5.
//
// FileMeta always carries the per-chunk AEAD key, for every EncMode.
// Without it, the read path for Convergent and ConvergentWithSecret
// chunks would have no way to derive the key before it has already
// decrypted the plaintext the key is derived from.
package meta

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/saorsa-labs/saorsa-fec/cid"
	"github.com/saorsa-labs/saorsa-fec/errs"
	"github.com/saorsa-labs/saorsa-fec/kdf"
	"github.com/saorsa-labs/saorsa-fec/rs"
)

// Magic identifies a FileMeta record on the wire.
const Magic = "SFEC"

// CurrentVersion is the FileMeta format version this package writes.
const CurrentVersion = 1

// ChunkRef describes one chunk's shard layout and content addresses.
type ChunkRef struct {
	ChunkIndex      uint32     `msgpack:"chunk_index"`
	K               uint8      `msgpack:"k"`
	M               uint8      `msgpack:"m"`
	ShardLength     uint32     `msgpack:"shard_length"`
	PlaintextLength uint32     `msgpack:"plaintext_length"`
	CIDs            [][32]byte `msgpack:"cids"`
	// AEADKey is the 32-byte key this chunk was encrypted under,
	// carried for every EncMode so a read can decrypt without having
	// already derived the key from the plaintext it protects.
	AEADKey [32]byte `msgpack:"aead_key"`
	// Flags is the header flags byte shared by every shard of this
	// chunk (enc_mode bits, compressed, accelerated), kept so a shard
	// missing at read time can have its header reconstructed
	// byte-for-byte — including the associated-data bytes the AEAD
	// tag authenticates — without needing the original bytes on hand.
	Flags uint8 `msgpack:"flags"`
}

// NSpec returns the ChunkRef's (k, m) pair as an rs.NSpec.
func (c ChunkRef) NSpec() rs.NSpec {
	return rs.NSpec{K: int(c.K), M: int(c.M)}
}

// FileMeta is the atomic record published once all of a file's chunks
// are durably written.
type FileMeta struct {
	FileID      [32]byte          `msgpack:"file_id"`
	TotalSize   uint64            `msgpack:"total_size"`
	EncMode     kdf.EncMode       `msgpack:"enc_mode"`
	Chunks      []ChunkRef        `msgpack:"chunks"`
	UserMeta    map[string]string `msgpack:"user_meta,omitempty"`
}

// Marshal serialises m into the length-prefixed, magic-tagged wire
// format: magic (4 bytes) || version (1 byte) || length (uint32 LE)
// || msgpack(m).
func Marshal(m FileMeta) ([]byte, error) {
	body, err := msgpack.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrFormatError, err)
	}

	buf := make([]byte, 0, 4+1+4+len(body))
	buf = append(buf, Magic...)
	buf = append(buf, CurrentVersion)
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(body)))
	buf = append(buf, lenBuf[:]...)
	buf = append(buf, body...)
	return buf, nil
}

// Unmarshal parses the wire format produced by Marshal, verifying the
// magic, version, and declared length before attempting to decode the
// msgpack body.
func Unmarshal(data []byte) (FileMeta, error) {
	var m FileMeta
	if len(data) < 9 {
		return m, fmt.Errorf("%w: FileMeta record too short (%d bytes)", errs.ErrFormatError, len(data))
	}
	if !bytes.Equal(data[:4], []byte(Magic)) {
		return m, fmt.Errorf("%w: bad magic %q", errs.ErrFormatError, data[:4])
	}
	version := data[4]
	if version != CurrentVersion {
		return m, fmt.Errorf("%w: unsupported FileMeta version %d", errs.ErrFormatError, version)
	}
	length := binary.LittleEndian.Uint32(data[5:9])
	body := data[9:]
	if uint32(len(body)) != length {
		return m, fmt.Errorf("%w: FileMeta length mismatch: header says %d, got %d", errs.ErrFormatError, length, len(body))
	}

	if err := msgpack.Unmarshal(body, &m); err != nil {
		return FileMeta{}, fmt.Errorf("%w: %v", errs.ErrFormatError, err)
	}
	return m, nil
}

// NewFileID generates the default 32-byte FileID: a random UUIDv4 in
// the first 16 bytes for a human-recognisable identity, followed by
// 16 further bytes read from rnd to fill the field's entropy. Callers
// that need deterministic or externally-assigned FileIDs may skip
// this helper and build the array directly.
func NewFileID(rnd io.Reader) ([32]byte, error) {
	var fileID [32]byte
	id := uuid.New()
	copy(fileID[:16], id[:])
	if _, err := io.ReadFull(rnd, fileID[16:]); err != nil {
		return fileID, fmt.Errorf("%w: %v", errs.ErrCryptoFailure, err)
	}
	return fileID, nil
}

// NewChunkRef builds a ChunkRef from the cid.CID values produced
// while writing one chunk's shards, converting them to the raw
// [32]byte form stored on the wire so this package's wire type stays
// independent of the cid package's named type.
func NewChunkRef(chunkIndex uint32, spec rs.NSpec, shardLength, plaintextLength uint32, cids []cid.CID, aeadKey [32]byte, flags uint8) ChunkRef {
	raw := make([][32]byte, len(cids))
	for i, c := range cids {
		raw[i] = [32]byte(c)
	}
	return ChunkRef{
		ChunkIndex:      chunkIndex,
		K:               uint8(spec.K),
		M:               uint8(spec.M),
		ShardLength:     shardLength,
		PlaintextLength: plaintextLength,
		CIDs:            raw,
		AEADKey:         aeadKey,
		Flags:           flags,
	}
}
