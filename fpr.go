package hibf

import (
	"fmt"
	"math"
)

// FPCorrection holds, for every split count s, the factor by which each of
// the s technical bins of a split user bin must grow so that querying all s
// bins still meets the desired false positive rate.
//
// Index 0 is unused and index 1 is exactly 1.
type FPCorrection []float64

// ComputeFPCorrection precomputes the correction factors for split counts
// 1..maxSplit.
//
// Querying s bins is s independent trials, so each bin must reach the
// per-bin rate p_s = 1 - (1-p)^(1/s). With h hash functions the bin size
// for rate q is proportional to 1/log(1 - q^(1/h)), giving
//
//	f_s = log(1 - p^(1/h)) / log(1 - p_s^(1/h))
//
// Every log(1 - e^x) term goes through log1mexp, which stays accurate both
// for x near zero (tiny rates, large splits) and for very negative x.
func ComputeFPCorrection(maxSplit, numHashes int, fpr float64) (FPCorrection, error) {
	if maxSplit < 1 {
		return nil, fmt.Errorf("%w: max split factor %d < 1", ErrInvalidConfig, maxSplit)
	}
	if numHashes < 1 {
		return nil, fmt.Errorf("%w: hash function count %d < 1", ErrInvalidConfig, numHashes)
	}
	if !(fpr > 0 && fpr < 1) {
		return nil, fmt.Errorf("%w: false positive rate %v not in (0, 1)", ErrInvalidConfig, fpr)
	}

	h := float64(numHashes)
	table := make(FPCorrection, maxSplit+1)
	table[1] = 1.0

	numerator := log1mexp(math.Log(fpr) / h)
	if !isFinite(numerator) || numerator == 0 {
		return nil, fmt.Errorf("%w: %w (fpr=%v, hashes=%d)", ErrInvalidConfig, ErrNumericalDegeneracy, fpr, numHashes)
	}

	for split := 2; split <= maxSplit; split++ {
		logTarget := log1mexp(math.Log1p(-fpr) / float64(split))
		factor := numerator / log1mexp(logTarget/h)
		if !isFinite(factor) {
			return nil, fmt.Errorf("%w: %w (split=%d)", ErrInvalidConfig, ErrNumericalDegeneracy, split)
		}
		table[split] = factor
	}

	return table, nil
}

// Factor returns the correction for a user bin split into split technical
// bins. Splits beyond the table reuse its last entry; anything below 2
// needs no correction.
func (c FPCorrection) Factor(split int) float64 {
	if split < 2 || len(c) < 3 {
		return 1.0
	}
	return c[min(split, len(c)-1)]
}

// MaxSplit returns the largest split count the table was computed for.
func (c FPCorrection) MaxSplit() int {
	return max(len(c)-1, 0)
}

// log1mexp returns log(1 - e^x) for x <= 0. Above -ln 2 the subtraction
// 1 - e^x cancels, so expm1 takes over from exp.
func log1mexp(x float64) float64 {
	if x > -math.Ln2 {
		return math.Log(-math.Expm1(x))
	}
	return math.Log1p(-math.Exp(x))
}

func isFinite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
