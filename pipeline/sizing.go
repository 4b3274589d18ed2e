package pipeline

import "github.com/saorsa-labs/saorsa-fec/rs"

// contentSizeTier is one entry of the content-size-to-shape table
// RecommendedSpec consults: up to and including maxSize bytes (or any
// size, when maxSize is negative), use this (k, m) with this chunk size.
type contentSizeTier struct {
	maxSize   int64
	spec      rs.NSpec
	chunkSize int
}

// sizeTiers holds three (k, m, chunk_size) shapes of increasing
// redundancy and chunk size for increasingly large content, each
// keeping parity at a fixed 25% of k.
var sizeTiers = []contentSizeTier{
	{maxSize: 1_000_000, spec: rs.NSpec{K: 8, M: 2}, chunkSize: 64 * 1024},
	{maxSize: 10_000_000, spec: rs.NSpec{K: 16, M: 4}, chunkSize: 128 * 1024},
	{maxSize: -1, spec: rs.NSpec{K: 20, M: 5}, chunkSize: 256 * 1024},
}

// RecommendedSpec picks a default (k, m) erasure-coding shape and
// chunk size for a file of contentSize bytes, scaling both up for
// larger content so that per-chunk overhead stays proportionate and
// shard counts stay bounded. Callers with their own durability or
// bandwidth requirements should build Config.Spec/ChunkSize directly
// instead; this is a starting point, not a requirement.
func RecommendedSpec(contentSize int64) (rs.NSpec, int) {
	for _, tier := range sizeTiers {
		if tier.maxSize < 0 || contentSize <= tier.maxSize {
			return tier.spec, tier.chunkSize
		}
	}
	last := sizeTiers[len(sizeTiers)-1]
	return last.spec, last.chunkSize
}
