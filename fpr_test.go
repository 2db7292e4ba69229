package hibf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeFPCorrectionExample(t *testing.T) {
	table, err := ComputeFPCorrection(3, 2, 0.05)
	require.NoError(t, err)
	require.Len(t, table, 4)

	assert.Equal(t, 1.0, table[1])
	assert.InDelta(t, 1.4603541107833464, table[2], 1e-12)
	assert.InDelta(t, 1.814391631282271, table[3], 1e-12)
	assert.LessOrEqual(t, table[2], table[3])
}

func TestComputeFPCorrectionProperties(t *testing.T) {
	for _, hashes := range []int{1, 2, 3, 5, 8} {
		for _, fpr := range []float64{1e-9, 0.0001, 0.01, 0.05, 0.3, 0.9, 0.999} {
			table, err := ComputeFPCorrection(128, hashes, fpr)
			require.NoError(t, err, "hashes=%d fpr=%v", hashes, fpr)

			assert.Equal(t, 1.0, table[1])
			for s := 2; s <= 128; s++ {
				require.False(t, math.IsNaN(table[s]) || math.IsInf(table[s], 0))
				require.GreaterOrEqual(t, table[s], 1.0, "hashes=%d fpr=%v split=%d", hashes, fpr, s)
				require.GreaterOrEqual(t, table[s], table[s-1], "hashes=%d fpr=%v split=%d", hashes, fpr, s)
			}
		}
	}
}

func TestComputeFPCorrectionTinyRates(t *testing.T) {
	// For p -> 0 the per-bin rate tends to p/s, so f_s tends to s^(1/h).
	for _, hashes := range []int{2, 3} {
		for _, fpr := range []float64{1e-13, 1e-15, 1e-17} {
			table, err := ComputeFPCorrection(16, hashes, fpr)
			require.NoError(t, err, "hashes=%d fpr=%v", hashes, fpr)

			for s := 2; s <= 16; s++ {
				want := math.Pow(float64(s), 1/float64(hashes))
				assert.InEpsilon(t, want, table[s], 1e-4, "hashes=%d fpr=%v split=%d", hashes, fpr, s)
			}
		}
	}
}

func TestComputeFPCorrectionSingleSplit(t *testing.T) {
	table, err := ComputeFPCorrection(1, 4, 0.01)
	require.NoError(t, err)
	assert.Equal(t, FPCorrection{0, 1}, table)
	assert.Equal(t, 1, table.MaxSplit())
}

func TestComputeFPCorrectionInvalid(t *testing.T) {
	tests := []struct {
		name     string
		maxSplit int
		hashes   int
		fpr      float64
	}{
		{"zero split", 0, 2, 0.05},
		{"zero hashes", 4, 0, 0.05},
		{"negative hashes", 4, -1, 0.05},
		{"fpr zero", 4, 2, 0},
		{"fpr one", 4, 2, 1},
		{"fpr negative", 4, 2, -0.1},
		{"fpr nan", 4, 2, math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ComputeFPCorrection(tt.maxSplit, tt.hashes, tt.fpr)
			require.ErrorIs(t, err, ErrInvalidConfig)
			require.Nil(t, table)
		})
	}
}

func TestComputeFPCorrectionDegenerate(t *testing.T) {
	// (1-p)^(1/2) rounds to exactly 1 for the smallest subnormal rate.
	_, err := ComputeFPCorrection(4, 1, math.SmallestNonzeroFloat64)
	require.ErrorIs(t, err, ErrNumericalDegeneracy)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestFPCorrectionFactor(t *testing.T) {
	table, err := ComputeFPCorrection(4, 2, 0.05)
	require.NoError(t, err)

	assert.Equal(t, 1.0, table.Factor(0))
	assert.Equal(t, 1.0, table.Factor(1))
	assert.Equal(t, table[3], table.Factor(3))
	assert.Equal(t, table[4], table.Factor(9))

	var empty FPCorrection
	assert.Equal(t, 1.0, empty.Factor(5))
	assert.Equal(t, 0, empty.MaxSplit())
}

func TestBuildDataComputeFPCorrection(t *testing.T) {
	d := NewBuildData(DefaultConfig(), NewTree(NoSlot))
	require.NoError(t, d.ComputeFPCorrection(3, 2, 0.05))
	assert.Len(t, d.FPCorrection, 4)

	require.ErrorIs(t, d.ComputeFPCorrection(3, 2, 1.5), ErrInvalidConfig)
	assert.Len(t, d.FPCorrection, 4, "failed computation keeps the previous table")
}

func TestBinSizeInBits(t *testing.T) {
	assert.Equal(t, uint64(7903), BinSizeInBits(1000, 2, 0.05))
	assert.Equal(t, uint64(1), BinSizeInBits(0, 2, 0.05))

	// Lower rates need more bits.
	assert.Greater(t, BinSizeInBits(1000, 2, 0.001), BinSizeInBits(1000, 2, 0.05))

	// m/n tends to h*p^(-1/h) for tiny rates.
	assert.InEpsilon(t, 2*math.Pow(1e-16, -0.5)*1000, float64(BinSizeInBits(1000, 2, 1e-16)), 1e-6)
}
