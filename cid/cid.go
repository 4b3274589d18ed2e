// Package cid computes a shard's content identifier: a 32-byte BLAKE3
// hash over its authenticated bytes (header || shard body), using
// github.com/zeebo/blake3.
package cid

import "github.com/zeebo/blake3"

// Size is the length in bytes of a CID.
const Size = 32

// CID is a content identifier: BLAKE3(headerBytes || shardBytes).
type CID [Size]byte

// Compute derives the CID for one shard's authenticated bytes. It is a
// pure function of its input: identical (header, shard) pairs always
// produce the same CID, which is the property the storage backend
// relies on for deduplication.
func Compute(headerBytes, shardBytes []byte) CID {
	h := blake3.New()
	h.Write(headerBytes)
	h.Write(shardBytes)

	var out CID
	copy(out[:], h.Sum(nil))
	return out
}

func (c CID) String() string {
	const hextable = "0123456789abcdef"
	buf := make([]byte, 2*Size)
	for i, b := range c {
		buf[2*i] = hextable[b>>4]
		buf[2*i+1] = hextable[b&0xf]
	}
	return string(buf)
}
