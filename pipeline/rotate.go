package pipeline

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/saorsa-labs/saorsa-fec/errs"
	"github.com/saorsa-labs/saorsa-fec/meta"
)

// WrappedKey is a per-chunk AEAD key wrapped (encrypted) under an
// external wrapping key, for callers who persist FileMeta somewhere
// that does not itself provide confidentiality for the per-chunk keys.
// It is the 32-byte key ciphertext followed by its 16-byte GCM tag.
type WrappedKey [48]byte

// keyWrapNonce derives a deterministic per-chunk nonce for the key-wrap
// layer: SHA-256("KW" || file_id || chunk_index_le32)[0:12]. Folding in
// fileID, the same way kdf.DeriveNonce does for shards, is what lets a
// single long-lived wrapKey wrap chunk keys for many FileMetas: without
// it, chunkIndex=0 of every file wrapped under the same wrapKey would
// reuse the identical (wrapKey, nonce) pair, which is AES-GCM nonce
// reuse. The "KW" domain prefix keeps this layer's nonces out of the
// shard AEAD's own nonce space even under a shared key.
func keyWrapNonce(fileID [32]byte, chunkIndex uint32) [12]byte {
	var buf [2 + 32 + 4]byte
	buf[0], buf[1] = 'K', 'W'
	copy(buf[2:34], fileID[:])
	binary.LittleEndian.PutUint32(buf[34:38], chunkIndex)

	sum := sha256.Sum256(buf[:])
	var nonce [12]byte
	copy(nonce[:], sum[:12])
	return nonce
}

func wrapGCM(wrapKey [32]byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(wrapKey[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCryptoFailure, err)
	}
	return cipher.NewGCM(block)
}

// WrapChunkKeys wraps every chunk's AEAD key under wrapKey, producing
// the at-rest envelope a caller can persist instead of (or alongside)
// FileMeta's plaintext AEADKey fields.
func WrapChunkKeys(fm meta.FileMeta, wrapKey [32]byte) ([]WrappedKey, error) {
	gcm, err := wrapGCM(wrapKey)
	if err != nil {
		return nil, err
	}

	out := make([]WrappedKey, len(fm.Chunks))
	for i, ref := range fm.Chunks {
		nonce := keyWrapNonce(fm.FileID, ref.ChunkIndex)
		sealed := gcm.Seal(nil, nonce[:], ref.AEADKey[:], nil)
		copy(out[i][:], sealed)
	}
	return out, nil
}

// UnwrapChunkKeys reverses WrapChunkKeys, recovering each chunk's
// plaintext AEAD key in chunk order.
func UnwrapChunkKeys(fm meta.FileMeta, wrapped []WrappedKey, wrapKey [32]byte) ([][32]byte, error) {
	if len(wrapped) != len(fm.Chunks) {
		return nil, fmt.Errorf("%w: wrapped key count %d does not match chunk count %d", errs.ErrInvalidParameters, len(wrapped), len(fm.Chunks))
	}
	gcm, err := wrapGCM(wrapKey)
	if err != nil {
		return nil, err
	}

	out := make([][32]byte, len(fm.Chunks))
	for i, ref := range fm.Chunks {
		nonce := keyWrapNonce(fm.FileID, ref.ChunkIndex)
		plain, err := gcm.Open(nil, nonce[:], wrapped[i][:], nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrCryptoFailure, err)
		}
		copy(out[i][:], plain)
	}
	return out, nil
}

// RotateChunkKeys verifies that previousWrapped currently unwraps,
// under previousWrapKey, to exactly fm's live per-chunk AEAD keys, then
// returns a fresh envelope wrapped under newWrapKey. No shard is read
// or rewritten — only the at-rest protection of the key envelope
// changes.
func (p *Pipeline) RotateChunkKeys(fm meta.FileMeta, previousWrapped []WrappedKey, previousWrapKey, newWrapKey [32]byte) ([]WrappedKey, error) {
	recovered, err := UnwrapChunkKeys(fm, previousWrapped, previousWrapKey)
	if err != nil {
		return nil, err
	}
	for i, ref := range fm.Chunks {
		if recovered[i] != ref.AEADKey {
			return nil, fmt.Errorf("%w: unwrapped key for chunk %d does not match FileMeta", errs.ErrCryptoFailure, ref.ChunkIndex)
		}
	}

	return WrapChunkKeys(fm, newWrapKey)
}
