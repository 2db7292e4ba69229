package hibf

import "math"

// Sketch is a cardinality estimator, typically a HyperLogLog over the
// hashes of one user bin.
type Sketch interface {
	Estimate() float64
}

// EstimateCounts returns the rounded estimate of every sketch, in order.
// Negative or non-finite estimates count as zero.
func EstimateCounts(sketches []Sketch) []uint64 {
	counts := make([]uint64, len(sketches))
	for i, s := range sketches {
		e := s.Estimate()
		if e > 0 && !math.IsInf(e, 0) {
			counts[i] = uint64(math.Round(e))
		}
	}
	return counts
}
