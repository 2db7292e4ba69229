package hibf

import (
	"fmt"
	"runtime"
)

// Config holds the caller supplied parameters of a build run.
type Config struct {
	// MaxSplitFactor bounds the number of technical bins one user bin may be
	// split into. The FPR correction table covers 1..MaxSplitFactor.
	MaxSplitFactor int

	// HashFunctionCount is the number of hash functions per IBF.
	HashFunctionCount int

	// FalsePositiveRate is the desired false positive rate per user bin.
	FalsePositiveRate float64

	// Threads limits the number of concurrent IBF construction workers.
	// Values <= 0 use GOMAXPROCS.
	Threads int
}

// DefaultConfig returns a configuration with the defaults of the layout
// tool: two hash functions and a 5% false positive rate.
func DefaultConfig() Config {
	return Config{
		MaxSplitFactor:    64,
		HashFunctionCount: 2,
		FalsePositiveRate: 0.05,
	}
}

// Validate reports whether the configuration can be used for a build.
func (c Config) Validate() error {
	if c.MaxSplitFactor < 1 {
		return fmt.Errorf("%w: max split factor %d < 1", ErrInvalidConfig, c.MaxSplitFactor)
	}
	if c.HashFunctionCount < 1 {
		return fmt.Errorf("%w: hash function count %d < 1", ErrInvalidConfig, c.HashFunctionCount)
	}
	if !(c.FalsePositiveRate > 0 && c.FalsePositiveRate < 1) {
		return fmt.Errorf("%w: false positive rate %v not in (0, 1)", ErrInvalidConfig, c.FalsePositiveRate)
	}
	return nil
}

func (c Config) threads() int {
	if c.Threads <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return c.Threads
}
