// Package header implements the fixed 96-byte shard header: a
// self-describing envelope carrying the file and chunk identity,
// erasure-coding shape, and AEAD nonce/tag for one shard.
package header

import (
	"encoding"
	"encoding/binary"
	"fmt"

	"github.com/saorsa-labs/saorsa-fec/errs"
)

// Size is the fixed on-wire size of a ShardHeader in bytes.
const Size = 96

// CurrentVersion is the only version this package writes. A version
// mismatch on read is fatal.
const CurrentVersion = 3

// Flag bits within the header's flags byte.
const (
	FlagEncrypted    = 1 << 0
	flagEncModeMask  = 0b0000_0110
	flagEncModeShift = 1
	FlagCompressed   = 1 << 3
	FlagAccelerated  = 1 << 4
)

var (
	_ encoding.BinaryMarshaler   = (*Header)(nil)
	_ encoding.BinaryUnmarshaler = (*Header)(nil)
)

// Header is the parsed form of a shard's 96-byte header.
type Header struct {
	Version    uint8
	FileID     [32]byte
	ChunkIndex uint32
	ShardIndex uint16
	K          uint8
	M          uint8
	Flags      uint8
	Nonce      [12]byte
	Tag        [16]byte
}

// New returns a Header stamped with CurrentVersion and zero-valued
// otherwise; callers fill in the remaining fields before encoding.
func New() *Header {
	return &Header{Version: CurrentVersion}
}

// EncMode extracts the 2-bit enc_mode field from Flags.
func (h *Header) EncMode() uint8 {
	return (h.Flags & flagEncModeMask) >> flagEncModeShift
}

// SetEncMode packs a 2-bit enc_mode value (0..3) into Flags.
func (h *Header) SetEncMode(mode uint8) {
	h.Flags = (h.Flags &^ flagEncModeMask) | ((mode << flagEncModeShift) & flagEncModeMask)
}

// MarshalBinary encodes the header to its 96-byte wire form, with the
// reserved bytes at offsets 1, 43, and 72..95 zeroed.
func (h *Header) MarshalBinary() ([]byte, error) {
	b := make([]byte, Size)
	b[0] = h.Version
	// b[1] reserved, left zero.
	copy(b[2:34], h.FileID[:])
	binary.LittleEndian.PutUint32(b[34:38], h.ChunkIndex)
	binary.LittleEndian.PutUint16(b[38:40], h.ShardIndex)
	b[40] = h.K
	b[41] = h.M
	b[42] = h.Flags
	// b[43] reserved, left zero.
	copy(b[44:56], h.Nonce[:])
	copy(b[56:72], h.Tag[:])
	// b[72:96] reserved, left zero.
	return b, nil
}

// UnmarshalBinary decodes a 96-byte wire header. Unknown flag bits and
// non-zero reserved bytes are accepted for forward compatibility
// within version 3; only a version mismatch is fatal.
func (h *Header) UnmarshalBinary(b []byte) error {
	if len(b) != Size {
		return fmt.Errorf("%w: header must be %d bytes, got %d", errs.ErrShardCorruption, Size, len(b))
	}
	version := b[0]
	if version != CurrentVersion {
		return fmt.Errorf("%w: header version %d, want %d", errs.ErrShardCorruption, version, CurrentVersion)
	}

	h.Version = version
	copy(h.FileID[:], b[2:34])
	h.ChunkIndex = binary.LittleEndian.Uint32(b[34:38])
	h.ShardIndex = binary.LittleEndian.Uint16(b[38:40])
	h.K = b[40]
	h.M = b[41]
	h.Flags = b[42]
	copy(h.Nonce[:], b[44:56])
	copy(h.Tag[:], b[56:72])
	return nil
}

// AssociatedData returns the header's 96-byte wire form with the Tag
// field zeroed: the AEAD associated data is the header with the tag
// field zeroed during computation, then overwritten with the returned
// tag on the way out, and the same zeroed form must be recomputed to
// verify on the way in.
func (h *Header) AssociatedData() ([]byte, error) {
	clone := *h
	clone.Tag = [16]byte{}
	return clone.MarshalBinary()
}
