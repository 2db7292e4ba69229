package hibf

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// Counter hands out a dense sequence of identities 0, 1, 2, ... to any
// number of concurrent callers.
//
// The value sits alone on its cache line so that two counters incremented
// by different goroutines never share a line.
type Counter struct {
	_ cpu.CacheLinePad
	n atomic.Uint64
	_ cpu.CacheLinePad
}

// Next returns a value never returned before by this counter.
func (c *Counter) Next() uint64 {
	return c.n.Add(1) - 1
}

// Load returns how many identities have been handed out.
func (c *Counter) Load() uint64 {
	return c.n.Load()
}

// BuildData is the state shared by all workers of one build run.
//
// The tree, config and correction table are read-only once workers start.
// The counters are the only state mutated concurrently, and each IBF slot
// of the index is written by exactly one worker.
type BuildData struct {
	ibfs     Counter
	userBins Counter

	Tree         *Tree
	Config       Config
	Index        *Index
	FPCorrection FPCorrection
}

// NewBuildData returns a context for a build run over t.
func NewBuildData(cfg Config, t *Tree) *BuildData {
	return &BuildData{
		Tree:   t,
		Config: cfg,
	}
}

// AllocateIBF returns a fresh IBF identity.
func (d *BuildData) AllocateIBF() uint64 {
	return d.ibfs.Next()
}

// AllocateUserBin returns a fresh user bin identity.
func (d *BuildData) AllocateUserBin() uint64 {
	return d.userBins.Next()
}

// NumIBFs returns the number of IBF identities allocated so far.
func (d *BuildData) NumIBFs() uint64 {
	return d.ibfs.Load()
}

// NumUserBins returns the number of user bin identities allocated so far.
func (d *BuildData) NumUserBins() uint64 {
	return d.userBins.Load()
}

// ComputeFPCorrection fills the correction table. It must run before any
// worker reads the table.
func (d *BuildData) ComputeFPCorrection(maxSplit, numHashes int, fpr float64) error {
	table, err := ComputeFPCorrection(maxSplit, numHashes, fpr)
	if err != nil {
		return err
	}
	d.FPCorrection = table
	return nil
}
