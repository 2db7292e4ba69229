package hibf

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinFilterBasic(t *testing.T) {
	f := NewBinFilter(BinSizeInBits(1000, 4, 0.01), 4)

	f.AddString("hello")
	f.AddHash(HashBytes([]byte("world")))

	assert.True(t, f.TestString("hello"))
	assert.True(t, f.TestString("world"))
	assert.True(t, f.TestHash(HashString("hello")))
	assert.Equal(t, uint64(2), f.Count())

	if f.TestString("notpresent") {
		t.Log("warning: false positive for 'notpresent'")
	}
}

func TestBinFilterFalsePositiveRate(t *testing.T) {
	const items = 10000
	const target = 0.01

	f := NewBinFilter(BinSizeInBits(items, 7, target), 7)
	for i := range items {
		f.AddString(fmt.Sprintf("item-%d", i))
	}

	var falsePositives int
	for i := range items {
		if f.TestString(fmt.Sprintf("notitem-%d", i)) {
			falsePositives++
		}
	}
	rate := float64(falsePositives) / items

	// Allow 2x margin for statistical variance
	assert.LessOrEqual(t, rate, target*2)
	t.Logf("FP rate: %.4f (target: %.4f, k=%d, bits=%d)", rate, target, f.K(), f.Cap())
}

func TestBinFilterClampsProbes(t *testing.T) {
	tests := []struct {
		hashes int
		wantK  uint32
	}{
		{1, 3},
		{2, 3},
		{3, 3},
		{7, 7},
		{14, 14},
		{40, 14},
	}
	for _, tt := range tests {
		f := NewBinFilter(4096, tt.hashes)
		assert.Equal(t, tt.wantK, f.K(), "hashes=%d", tt.hashes)

		f.AddString("x")
		assert.True(t, f.TestString("x"))
	}
}

func TestBinFilterRoundsToBlocks(t *testing.T) {
	assert.Equal(t, uint64(BlockBits), NewBinFilter(0, 2).Cap())
	assert.Equal(t, uint64(BlockBits), NewBinFilter(1, 2).Cap())
	assert.Equal(t, uint64(BlockBits), NewBinFilter(512, 2).Cap())
	assert.Equal(t, uint64(2*BlockBits), NewBinFilter(513, 2).Cap())
}

func TestBinFilterEstimates(t *testing.T) {
	f := NewBinFilter(8192, 4)
	assert.Equal(t, 0.0, f.EstimatedFillRatio())
	assert.Equal(t, 0.0, f.EstimatedFalsePositiveRate())

	for i := range 500 {
		f.AddString(fmt.Sprintf("item-%d", i))
	}
	ratio := f.EstimatedFillRatio()
	assert.Greater(t, ratio, 0.0)
	assert.Less(t, ratio, 1.0)
	assert.Greater(t, f.EstimatedFalsePositiveRate(), 0.0)
}

func TestPrimePartitions(t *testing.T) {
	for k := uint32(minPartitions); k <= maxPartitions; k++ {
		primes := primePartitions[k]
		require.Len(t, primes, int(k))

		var sum uint32
		seen := make(map[uint32]bool)
		for _, p := range primes {
			require.False(t, seen[p], "k=%d: duplicate partition %d", k, p)
			seen[p] = true
			sum += p
		}
		require.Equal(t, uint32(BlockBits), sum, "k=%d", k)

		offsets := computeOffsets(primes)
		require.Equal(t, uint32(0), offsets[0])
		require.Equal(t, sum-primes[k-1], offsets[k-1])
	}
}

func TestBinFilterCacheLineAlignment(t *testing.T) {
	for _, bits := range []uint64{1, 512, 4096, 100000} {
		f := NewBinFilter(bits, 3)
		addr := uintptr(unsafe.Pointer(&f.blocks[0]))
		assert.Zero(t, addr%cacheLineSize, "bits=%d: blocks not cache-line aligned", bits)
	}
}
