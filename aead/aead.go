// Package aead implements header-bound AES-256-GCM shard encryption,
// built directly on crypto/aes and crypto/cipher.
package aead

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"

	"github.com/saorsa-labs/saorsa-fec/errs"
)

// TagSize is the AEAD tag length, 128 bits.
const TagSize = 16

func newGCM(key [32]byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCryptoFailure, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCryptoFailure, err)
	}
	return gcm, nil
}

// SealData encrypts a data shard's plaintext slice under (key, nonce),
// authenticating headerAD (the header with its tag field zeroed, per
// header.AssociatedData) as associated data. It returns the ciphertext
// and the 16-byte tag separately, since the wire format stores the
// tag inside the header rather than appended to the ciphertext.
func SealData(key [32]byte, nonce [12]byte, headerAD, plaintext []byte) (ciphertext, tag []byte, err error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}
	sealed := gcm.Seal(nil, nonce[:], plaintext, headerAD)
	ciphertext = sealed[:len(sealed)-TagSize]
	tag = sealed[len(sealed)-TagSize:]
	return ciphertext, tag, nil
}

// OpenData decrypts and verifies a data shard. headerAD must be the
// same zeroed-tag header bytes used at seal time, and tag the 16 bytes
// stored in the header. Any mismatch returns errs.ErrShardCorruption.
func OpenData(key [32]byte, nonce [12]byte, headerAD, ciphertext, tag []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	sealed := append(append([]byte{}, ciphertext...), tag...)
	plaintext, err := gcm.Open(nil, nonce[:], sealed, headerAD)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrShardCorruption, err)
	}
	return plaintext, nil
}

// SealParity authenticates a parity shard's bytes without encrypting
// them: the AEAD input plaintext is empty and the associated data is
// headerAD||parityBytes, so the returned tag binds the header to the
// RS-derived parity payload.
func SealParity(key [32]byte, nonce [12]byte, headerAD, parityBytes []byte) (tag []byte, err error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	ad := append(append([]byte{}, headerAD...), parityBytes...)
	tag = gcm.Seal(nil, nonce[:], nil, ad)
	return tag, nil
}

// DecryptRecovered recovers the plaintext of a data shard's ciphertext
// that was obtained via erasure-coded reconstruction rather than
// fetched and AEAD-verified directly. It is only safe to call once the
// shard's ciphertext has been recovered from a linear combination of k
// already-verified shards, since it performs the GCM counter-mode
// keystream XOR (GHASH construction skipped, per NIST SP 800-38D §7.2
// for a 96-bit nonce: the ciphertext keystream begins at counter block
// nonce||2, one past the J0 block reserved for the authentication tag)
// without re-verifying a tag — there is nothing left to check that k
// independently-verified shards haven't already guaranteed.
func DecryptRecovered(key [32]byte, nonce [12]byte, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCryptoFailure, err)
	}

	var counter [16]byte
	copy(counter[:12], nonce[:])
	binary.BigEndian.PutUint32(counter[12:], 2)

	stream := cipher.NewCTR(block, counter[:])
	plaintext := make([]byte, len(ciphertext))
	stream.XORKeyStream(plaintext, ciphertext)
	return plaintext, nil
}

// VerifyParity checks a parity shard's tag against headerAD||parityBytes.
func VerifyParity(key [32]byte, nonce [12]byte, headerAD, parityBytes, tag []byte) error {
	gcm, err := newGCM(key)
	if err != nil {
		return err
	}
	ad := append(append([]byte{}, headerAD...), parityBytes...)
	if _, err := gcm.Open(nil, nonce[:], tag, ad); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrShardCorruption, err)
	}
	return nil
}
