package hibf

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// InputFunc streams the hashes of one user bin into insert. It is called
// from worker goroutines, possibly several times for the same user bin, and
// must be safe for concurrent use.
type InputFunc func(ub UserBin, insert func(hash uint64)) error

type buildOptions struct {
	logger *Logger
}

// BuildOption configures Build.
type BuildOption func(*buildOptions)

// WithLogger sets the logger used by Build. A nil logger disables logging.
func WithLogger(l *Logger) BuildOption {
	return func(o *buildOptions) {
		o.logger = l
	}
}

// Build turns a layout into an Index.
//
// counts holds the estimated number of distinct hashes of every user bin,
// in layout order (see EstimateCounts). Configuration, correction table,
// tree assembly and user bin attachment are all checked before the first
// worker starts; then one job per tree node builds its IBF concurrently,
// limited to cfg.Threads workers.
func Build(ctx context.Context, cfg Config, l *Layout, counts []uint64, input InputFunc, opts ...BuildOption) (*Index, error) {
	o := buildOptions{}
	for _, fn := range opts {
		fn(&o)
	}
	log := o.logger
	if log == nil {
		log = NoopLogger()
	}

	start := time.Now()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if split := l.MaxSplit(); split > cfg.MaxSplitFactor {
		return nil, fmt.Errorf("%w: layout splits a user bin into %d bins, max split factor is %d",
			ErrInvalidConfig, split, cfg.MaxSplitFactor)
	}
	if len(counts) != len(l.UserBins) {
		return nil, fmt.Errorf("%w: %d estimates for %d user bins", ErrInvalidConfig, len(counts), len(l.UserBins))
	}
	for i, ub := range l.UserBins {
		if ub.Index < 0 || ub.Index >= len(counts) {
			return nil, &RecordError{Kind: KindUserBin, Index: i, Path: ub.Path,
				cause: fmt.Errorf("%w: estimate index %d out of range", ErrMalformedRecord, ub.Index)}
		}
	}

	table, err := ComputeFPCorrection(cfg.MaxSplitFactor, effectiveHashes(cfg.HashFunctionCount), cfg.FalsePositiveRate)
	if err != nil {
		return nil, err
	}

	tree, err := AssembleLayout(l)
	log.LogAssemble(ctx, len(l.MaxBins), treeLen(tree), err)
	if err != nil {
		return nil, err
	}

	data := NewBuildData(cfg, tree)
	data.FPCorrection = table

	err = Attach(tree, l.UserBins, data)
	log.LogAttach(ctx, len(l.UserBins), err)
	if err != nil {
		return nil, err
	}

	data.Index = newIndex(tree)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.threads())
	for i := range tree.Len() {
		node := NodeID(i)
		g.Go(func() error {
			id, ibf, err := buildIBF(gctx, data, node, counts, input)
			if err == nil {
				err = data.Index.store(id, ibf)
			}
			var bins int
			var binBits uint64
			if ibf != nil {
				bins, binBits = ibf.NumBins(), ibf.BinBits
			}
			log.LogIBF(gctx, id, node, bins, binBits, err)
			return err
		})
	}
	err = g.Wait()
	log.LogBuild(ctx, data.NumIBFs(), data.NumUserBins(), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	return data.Index, nil
}

func treeLen(t *Tree) int {
	if t == nil {
		return 0
	}
	return t.Len()
}

// buildIBF builds the IBF of one node. Every technical bin gets the size of
// the largest one; split user bins are inflated by the correction factor of
// their split count. Sizes use the probe count the bins are queried with,
// which may exceed the configured hash function count.
func buildIBF(ctx context.Context, data *BuildData, node NodeID, counts []uint64, input InputFunc) (uint64, *IBF, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	id := data.AllocateIBF()
	cfg := data.Config
	k := effectiveHashes(cfg.HashFunctionCount)
	n := data.Tree.Node(node)

	numBins := 0
	for _, ub := range n.Data.Records {
		numBins = max(numBins, ub.Slot()+ub.SlotCount)
	}
	for _, c := range n.Children {
		numBins = max(numBins, data.Tree.Data(c).ParentSlot+1)
	}

	ibf := &IBF{
		Node:      node,
		Bins:      make([]*BinFilter, numBins),
		UserBinOf: make([]int64, numBins),
		ChildOf:   make([]NodeID, numBins),
	}
	for i := range numBins {
		ibf.UserBinOf[i] = -1
		ibf.ChildOf[i] = NoNode
	}

	var binBits uint64
	for _, ub := range n.Data.Records {
		perBin := ceilDiv(counts[ub.Index], uint64(ub.SlotCount))
		bits := BinSizeInBits(perBin, k, cfg.FalsePositiveRate)
		bits = uint64(float64(bits) * data.FPCorrection.Factor(ub.SlotCount))
		binBits = max(binBits, bits)
	}
	for _, c := range n.Children {
		var elements uint64
		data.Index.Covered(c).Iterate(func(ubID uint32) bool {
			elements += counts[data.Index.UserBin(uint64(ubID)).Index]
			return true
		})
		binBits = max(binBits, BinSizeInBits(elements, k, cfg.FalsePositiveRate))
	}
	binBits = max(binBits, 1)
	ibf.BinBits = binBits

	for i := range numBins {
		ibf.Bins[i] = NewBinFilter(binBits, k)
	}

	for _, ub := range n.Data.Records {
		if err := insertUserBin(ibf, ub, input); err != nil {
			return id, nil, fmt.Errorf("hibf: user bin %d: %w", ub.ID, err)
		}
		if err := ctx.Err(); err != nil {
			return id, nil, err
		}
	}

	for _, c := range n.Children {
		slot := data.Tree.Data(c).ParentSlot
		ibf.ChildOf[slot] = c
		bin := ibf.Bins[slot]

		var err error
		data.Index.Covered(c).Iterate(func(ubID uint32) bool {
			err = input(data.Index.UserBin(uint64(ubID)), bin.AddHash)
			return err == nil && ctx.Err() == nil
		})
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			return id, nil, fmt.Errorf("hibf: merged bin %d of node %d: %w", slot, node, err)
		}
	}

	return id, ibf, nil
}

// insertUserBin stores ub in its technical bins. A split user bin's hashes
// are divided into SlotCount consecutive chunks, one per bin.
func insertUserBin(ibf *IBF, ub UserBin, input InputFunc) error {
	first := ub.Slot()
	for s := first; s < first+ub.SlotCount; s++ {
		ibf.UserBinOf[s] = ub.ID
	}

	if ub.SlotCount == 1 {
		return input(ub, ibf.Bins[first].AddHash)
	}

	var hashes []uint64
	if err := input(ub, func(h uint64) { hashes = append(hashes, h) }); err != nil {
		return err
	}
	chunk := ceilDiv(uint64(len(hashes)), uint64(ub.SlotCount))
	for i, h := range hashes {
		ibf.Bins[first+int(uint64(i)/max(chunk, 1))].AddHash(h)
	}
	return nil
}

func ceilDiv(a, b uint64) uint64 {
	return (a + b - 1) / b
}
