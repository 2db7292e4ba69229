package hibf

import "math"

const (
	// BlockBits is the number of bits per filter block (cache line size).
	BlockBits = 512
	// BlockWords is the number of uint64s per block.
	BlockWords = BlockBits / 64 // 8

	minPartitions = 3
	maxPartitions = 14
)

// primePartitions holds, per probe count k, k strictly distinct partition
// sizes summing to exactly 512 bits. Even k use primes only; odd k need one
// even filler since an odd count of odd numbers cannot sum to 512.
var primePartitions = map[uint32][]uint32{
	3:  {167, 173, 172},
	4:  {109, 127, 137, 139},
	5:  {97, 101, 103, 109, 102},
	6:  {61, 79, 83, 89, 97, 103},
	7:  {61, 67, 71, 79, 83, 89, 62},
	8:  {37, 47, 53, 61, 67, 71, 79, 97},
	9:  {41, 43, 47, 53, 59, 67, 71, 73, 58},
	10: {31, 37, 41, 43, 47, 53, 59, 61, 67, 73},
	11: {29, 31, 37, 41, 43, 44, 47, 53, 59, 61, 67},
	12: {17, 23, 29, 31, 37, 41, 43, 47, 53, 59, 61, 71},
	13: {17, 19, 23, 29, 31, 37, 41, 43, 47, 52, 53, 59, 61},
	14: {11, 13, 17, 19, 23, 29, 31, 37, 41, 47, 53, 59, 61, 71},
}

// BinSizeInBits returns the number of bits a technical bin needs to hold
// elements distinct values with numHashes hash functions at the given false
// positive rate:
//
//	m = ceil(-h*n / ln(1 - p^(1/h)))
//
// The result is at least 1.
func BinSizeInBits(elements uint64, numHashes int, fpr float64) uint64 {
	if elements == 0 {
		return 1
	}
	h := float64(numHashes)
	denominator := log1mexp(math.Log(fpr) / h)
	bits := math.Ceil(-h * float64(elements) / denominator)
	if bits < 1 || math.IsNaN(bits) {
		return 1
	}
	return uint64(bits)
}

// blockParams converts a bin size into a whole number of blocks and a
// supported probe count.
func blockParams(bits uint64, numHashes int) (numBlocks uint64, k uint32) {
	numBlocks = (bits + BlockBits - 1) / BlockBits
	numBlocks = max(numBlocks, 1)

	return numBlocks, uint32(effectiveHashes(numHashes))
}

// effectiveHashes returns the number of hash functions a BinFilter uses for
// numHashes configured ones.
func effectiveHashes(numHashes int) int {
	return min(max(numHashes, minPartitions), maxPartitions)
}

// computeOffsets returns the cumulative bit offset of every partition.
func computeOffsets(primes []uint32) []uint32 {
	offsets := make([]uint32, len(primes))
	var cumulative uint32
	for i, p := range primes {
		offsets[i] = cumulative
		cumulative += p
	}
	return offsets
}

// EstimateFalsePositiveRate estimates the false positive rate of a bin of
// numBlocks blocks probed k times after itemsAdded insertions:
// (1 - e^(-kn/m))^k.
func EstimateFalsePositiveRate(numBlocks uint64, k uint32, itemsAdded uint64) float64 {
	m := float64(numBlocks * BlockBits)
	n := float64(itemsAdded)
	kf := float64(k)

	if m == 0 || n == 0 {
		return 0
	}

	return math.Pow(1-math.Exp(-kf*n/m), kf)
}
