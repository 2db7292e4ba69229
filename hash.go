package hibf

import "github.com/zeebo/xxh3"

// HashBytes returns the xxh3 hash of data, for feeding an InputFunc.
func HashBytes(data []byte) uint64 {
	return xxh3.Hash(data)
}

// HashString returns the xxh3 hash of s without allocating.
func HashString(s string) uint64 {
	return xxh3.HashString(s)
}

// hashSplit splits a 64-bit hash into a block index (upper 32 bits) and an
// intra-block hash (lower 32 bits).
func hashSplit(h uint64, numBlocks uint64) (blockIdx uint64, intraHash uint32) {
	blockIdx = (h >> 32) % numBlocks
	intraHash = uint32(h)
	return
}
