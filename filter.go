package hibf

import (
	"math/bits"
	"unsafe"
)

// cacheLineSize is the size of a CPU cache line in bytes.
const cacheLineSize = 64

// BinFilter is the membership filter of one technical bin.
//
// Memory is split into 512-bit blocks matching a cache line; all k probes of
// a hash land in one block, at positions derived from the same hash modulo
// k distinct partition sizes. A BinFilter is owned by the single worker
// building its IBF and is not safe for concurrent writes.
type BinFilter struct {
	raw       []byte   // keeps the aligned allocation alive
	blocks    []uint64 // BlockWords words per block
	numBlocks uint64
	k         uint32
	primes    []uint32
	offsets   []uint32
	count     uint64
}

// NewBinFilter returns an empty filter of at least sizeInBits bits probed
// with numHashes hash functions. The probe count is clamped to 3..14.
func NewBinFilter(sizeInBits uint64, numHashes int) *BinFilter {
	numBlocks, k := blockParams(sizeInBits, numHashes)
	primes := primePartitions[k]

	raw, blocks := makeAlignedUint64Slice(int(numBlocks * BlockWords))

	return &BinFilter{
		raw:       raw,
		blocks:    blocks,
		numBlocks: numBlocks,
		k:         k,
		primes:    primes,
		offsets:   computeOffsets(primes),
	}
}

// makeAlignedUint64Slice allocates a cache-line aligned slice of n words.
func makeAlignedUint64Slice(n int) ([]byte, []uint64) {
	raw := make([]byte, n*8+cacheLineSize-1)
	addr := uintptr(unsafe.Pointer(&raw[0]))
	offset := (cacheLineSize - int(addr%cacheLineSize)) % cacheLineSize
	aligned := unsafe.Slice((*uint64)(unsafe.Pointer(&raw[offset])), n)
	return raw, aligned
}

// AddHash inserts a precomputed 64-bit hash.
func (f *BinFilter) AddHash(h uint64) {
	blockIdx, intraHash := hashSplit(h, f.numBlocks)
	base := blockIdx * BlockWords

	for i := uint32(0); i < f.k; i++ {
		bitPos := f.offsets[i] + (intraHash % f.primes[i])
		f.blocks[base+uint64(bitPos/64)] |= 1 << (bitPos % 64)
	}

	f.count++
}

// AddString inserts s.
func (f *BinFilter) AddString(s string) {
	f.AddHash(HashString(s))
}

// TestHash reports whether h may have been inserted.
func (f *BinFilter) TestHash(h uint64) bool {
	blockIdx, intraHash := hashSplit(h, f.numBlocks)
	base := blockIdx * BlockWords

	for i := uint32(0); i < f.k; i++ {
		bitPos := f.offsets[i] + (intraHash % f.primes[i])
		if f.blocks[base+uint64(bitPos/64)]&(1<<(bitPos%64)) == 0 {
			return false
		}
	}
	return true
}

// TestString reports whether s may have been inserted.
func (f *BinFilter) TestString(s string) bool {
	return f.TestHash(HashString(s))
}

// Cap returns the size of the filter in bits.
func (f *BinFilter) Cap() uint64 {
	return f.numBlocks * BlockBits
}

// K returns the probe count.
func (f *BinFilter) K() uint32 {
	return f.k
}

// Count returns the number of insertions.
func (f *BinFilter) Count() uint64 {
	return f.count
}

// EstimatedFillRatio returns the proportion of set bits.
func (f *BinFilter) EstimatedFillRatio() float64 {
	var set uint64
	for _, w := range f.blocks {
		set += uint64(bits.OnesCount64(w))
	}
	return float64(set) / float64(f.Cap())
}

// EstimatedFalsePositiveRate estimates the current false positive rate from
// the number of insertions.
func (f *BinFilter) EstimatedFalsePositiveRate() float64 {
	return EstimateFalsePositiveRate(f.numBlocks, f.k, f.count)
}
