package hibf

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// MaxUserBins is the number of user bin identities a build run can hand out.
// Coverage bitmaps store identities as uint32.
const MaxUserBins = math.MaxUint32 + 1

// Attach stores every user bin in the node its path addresses and gives it a
// fresh user bin identity from data. It must run after assembly and before
// any worker reads the tree.
//
// The path prefix is resolved with the same rule as Assemble; the last path
// element is the first storage slot. A user bin occupying a slot that a
// merged-bin child continues, or a slot another user bin of the same owner
// already occupies, is rejected.
//
// All records are checked before the first one is attached: on error
// neither t nor data is modified.
func Attach(t *Tree, bins []UserBin, data *BuildData) error {
	if n := data.NumUserBins() + uint64(len(bins)); n > MaxUserBins {
		return fmt.Errorf("%w: %d user bins exceed the limit of %d", ErrInvalidConfig, n, uint64(MaxUserBins))
	}

	owners := make([]NodeID, len(bins))
	occupied := make(map[NodeID]*roaring.Bitmap)
	for i, ub := range bins {
		owner, err := placeUserBin(t, ub, occupied)
		if err != nil {
			return &RecordError{Kind: KindUserBin, Index: i, Path: ub.Path, cause: err}
		}
		owners[i] = owner
	}

	for i, ub := range bins {
		ub.ID = int64(data.AllocateUserBin())
		od := t.Data(owners[i])
		od.Records = append(od.Records, ub)
	}
	return nil
}

// placeUserBin returns the owner of ub and marks its slots in occupied.
func placeUserBin(t *Tree, ub UserBin, occupied map[NodeID]*roaring.Bitmap) (NodeID, error) {
	if len(ub.Path) == 0 {
		return NoNode, ErrEmptyPath
	}
	if err := checkPath(ub.Path); err != nil {
		return NoNode, err
	}
	if ub.SlotCount < 1 {
		return NoNode, ErrMalformedRecord
	}
	first := ub.Slot()
	if uint64(first)+uint64(ub.SlotCount) > math.MaxUint32 {
		return NoNode, fmt.Errorf("%w: slots [%d, %d) out of range", ErrMalformedRecord, first, first+ub.SlotCount)
	}

	prefix := ub.Path[:len(ub.Path)-1]
	owner, consumed := t.resolve(prefix)
	if consumed != len(prefix) {
		return NoNode, ErrUnresolvedPath
	}

	slots := occupied[owner]
	if slots == nil {
		slots = roaring.New()
		for _, rec := range t.Data(owner).Records {
			slots.AddRange(uint64(rec.Slot()), uint64(rec.Slot()+rec.SlotCount))
		}
		occupied[owner] = slots
	}

	for slot := first; slot < first+ub.SlotCount; slot++ {
		if _, merged := t.ChildAt(owner, slot); merged {
			return NoNode, fmt.Errorf("%w: slot %d continues a merged bin", ErrSlotConflict, slot)
		}
		if slots.Contains(uint32(slot)) {
			return NoNode, fmt.Errorf("%w: slot %d holds another user bin", ErrSlotConflict, slot)
		}
	}
	slots.AddRange(uint64(first), uint64(first+ub.SlotCount))
	return owner, nil
}

// checkPath rejects negative path elements.
func checkPath(path []int) error {
	for _, p := range path {
		if p < 0 {
			return fmt.Errorf("%w: negative slot %d", ErrMalformedRecord, p)
		}
	}
	return nil
}
