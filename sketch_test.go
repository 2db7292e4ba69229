package hibf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fixedSketch float64

func (s fixedSketch) Estimate() float64 { return float64(s) }

func TestEstimateCounts(t *testing.T) {
	counts := EstimateCounts([]Sketch{
		fixedSketch(0),
		fixedSketch(41.6),
		fixedSketch(1e6),
		fixedSketch(-3),
		fixedSketch(math.NaN()),
		fixedSketch(math.Inf(1)),
	})
	assert.Equal(t, []uint64{0, 42, 1000000, 0, 0, 0}, counts)
	assert.Empty(t, EstimateCounts(nil))
}
