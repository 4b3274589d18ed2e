// Package kdf implements per-chunk key and nonce derivation: three
// EncMode variants (Convergent, ConvergentWithSecret, Random) dispatched
// as a sum type rather than through dynamic interface dispatch, and the
// nonce derivation shared by all three.
package kdf

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/saorsa-labs/saorsa-fec/errs"
)

// EncMode selects how the per-chunk AEAD key is derived.
type EncMode uint8

const (
	// Convergent derives the key purely from plaintext content, so
	// identical plaintext chunks produce identical keys across files
	// and users.
	Convergent EncMode = iota
	// ConvergentWithSecret additionally mixes in a user secret,
	// restricting deduplication to holders of that secret.
	ConvergentWithSecret
	// Random draws the key from a CSPRNG; the caller must persist it
	// in FileMeta since it cannot be rederived.
	Random
)

func (m EncMode) String() string {
	switch m {
	case Convergent:
		return "Convergent"
	case ConvergentWithSecret:
		return "ConvergentWithSecret"
	case Random:
		return "Random"
	default:
		return fmt.Sprintf("EncMode(%d)", uint8(m))
	}
}

// convergentSalt is the fixed domain-separation constant for plain
// Convergent mode.
var convergentSalt = []byte("saorsa-fec/convergent/v1")

const hkdfInfo = "key"

// minSecretLen is the minimum user-secret length required for
// ConvergentWithSecret.
const minSecretLen = 16

// KeySize and NonceSize are the AEAD key and nonce sizes.
const (
	KeySize   = 32
	NonceSize = 12
)

// DeriveKey computes the 32-byte AEAD key for one chunk's plaintext
// under the given mode. For Random mode, plaintext is ignored and a
// fresh CSPRNG key is returned; callers must persist it.
func DeriveKey(mode EncMode, plaintext []byte, secret []byte) ([KeySize]byte, error) {
	var key [KeySize]byte

	switch mode {
	case Convergent:
		return deriveHKDF(plaintext, convergentSalt)
	case ConvergentWithSecret:
		if len(secret) < minSecretLen {
			return key, fmt.Errorf("%w: ConvergentWithSecret requires a secret of at least %d bytes", errs.ErrInvalidParameters, minSecretLen)
		}
		return deriveHKDF(plaintext, secret)
	case Random:
		if _, err := rand.Read(key[:]); err != nil {
			return key, fmt.Errorf("%w: %v", errs.ErrCryptoFailure, err)
		}
		return key, nil
	default:
		return key, fmt.Errorf("%w: unknown EncMode %v", errs.ErrInvalidParameters, mode)
	}
}

func deriveHKDF(ikm, salt []byte) ([KeySize]byte, error) {
	var key [KeySize]byte
	r := hkdf.New(sha256.New, ikm, salt, []byte(hkdfInfo))
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return key, fmt.Errorf("%w: %v", errs.ErrCryptoFailure, err)
	}
	return key, nil
}

// DeriveNonce computes the 12-byte shard nonce:
// SHA-256(file_id || chunk_index_le32 || shard_index_le16)[0:12].
//
// file_id participates in the hash, so convergent dedup is intra-file
// only across distinct file IDs.
func DeriveNonce(fileID [32]byte, chunkIndex uint32, shardIndex uint16) [NonceSize]byte {
	var buf [32 + 4 + 2]byte
	copy(buf[:32], fileID[:])
	binary.LittleEndian.PutUint32(buf[32:36], chunkIndex)
	binary.LittleEndian.PutUint16(buf[36:38], shardIndex)

	sum := sha256.Sum256(buf[:])
	var nonce [NonceSize]byte
	copy(nonce[:], sum[:NonceSize])
	return nonce
}
