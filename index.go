package hibf

import (
	"fmt"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"
)

// IBF is one built node of the hierarchy: a row of equally sized technical
// bins.
type IBF struct {
	Node    NodeID
	BinBits uint64
	Bins    []*BinFilter

	// UserBinOf maps each technical bin to the identity of the user bin it
	// stores, or -1 for merged and unused bins.
	UserBinOf []int64

	// ChildOf maps each merged technical bin to the node continuing it, and
	// every other bin to NoNode.
	ChildOf []NodeID
}

// NumBins returns the number of technical bins.
func (b *IBF) NumBins() int {
	return len(b.Bins)
}

// Index is the output of a build run.
//
// During the build every IBF slot and every node entry is written by exactly
// one worker; readers must wait for Build to return.
type Index struct {
	tree     *Tree
	ibfs     []atomic.Pointer[IBF] // by IBF identity
	nodeIBF  []uint64              // by node
	coverage []*roaring.Bitmap     // by node, user bin identities below it (< MaxUserBins)
	userBins []UserBin             // by user bin identity
}

// newIndex prepares an index for t, whose user bins must already be
// attached.
func newIndex(t *Tree) *Index {
	x := &Index{
		tree:     t,
		ibfs:     make([]atomic.Pointer[IBF], t.Len()),
		nodeIBF:  make([]uint64, t.Len()),
		coverage: make([]*roaring.Bitmap, t.Len()),
	}

	var numUserBins int
	for i := range t.Len() {
		numUserBins += len(t.Data(NodeID(i)).Records)
	}
	x.userBins = make([]UserBin, numUserBins)

	x.cover(Root)
	return x
}

// cover fills the coverage bitmaps of id's subtree in post-order.
func (x *Index) cover(id NodeID) *roaring.Bitmap {
	bm := roaring.New()
	for _, ub := range x.tree.Data(id).Records {
		bm.Add(uint32(ub.ID))
		x.userBins[ub.ID] = ub
	}
	for _, c := range x.tree.Node(id).Children {
		bm.Or(x.cover(c))
	}
	bm.RunOptimize()
	x.coverage[id] = bm
	return bm
}

// store publishes the IBF built for node under identity id.
func (x *Index) store(id uint64, ibf *IBF) error {
	if id >= uint64(len(x.ibfs)) {
		return fmt.Errorf("hibf: ibf identity %d out of range [0, %d)", id, len(x.ibfs))
	}
	if !x.ibfs[id].CompareAndSwap(nil, ibf) {
		return fmt.Errorf("%w: %d", ErrSlotWritten, id)
	}
	x.nodeIBF[ibf.Node] = id
	return nil
}

// Tree returns the build tree the index was built from.
func (x *Index) Tree() *Tree {
	return x.tree
}

// Len returns the number of IBFs.
func (x *Index) Len() int {
	return len(x.ibfs)
}

// IBF returns the IBF with the given identity, or nil if it was not built.
func (x *Index) IBF(id uint64) *IBF {
	return x.ibfs[id].Load()
}

// IBFOf returns the identity of the IBF built for node.
func (x *Index) IBFOf(node NodeID) uint64 {
	return x.nodeIBF[node]
}

// Next returns the identity of the IBF continuing technical bin bin of IBF
// id, if bin is a merged bin.
func (x *Index) Next(id uint64, bin int) (uint64, bool) {
	ibf := x.IBF(id)
	if ibf == nil || bin < 0 || bin >= len(ibf.ChildOf) || ibf.ChildOf[bin] == NoNode {
		return 0, false
	}
	return x.nodeIBF[ibf.ChildOf[bin]], true
}

// Covered returns the identities of all user bins stored in node or below
// it. The bitmap must not be modified.
func (x *Index) Covered(node NodeID) *roaring.Bitmap {
	return x.coverage[node]
}

// UserBin returns the user bin with the given identity.
func (x *Index) UserBin(id uint64) UserBin {
	return x.userBins[id]
}

// NumUserBins returns the number of user bins in the index.
func (x *Index) NumUserBins() int {
	return len(x.userBins)
}
