package hibf

import (
	"cmp"
	"slices"
)

// Assemble builds the skeleton tree from merged-bin header records. The
// root has no maximum slot, so it never gets a favourite child.
//
// See AssembleLayout.
func Assemble(records []MaxBin) (*Tree, error) {
	t := NewTree(NoSlot)
	if err := insertMaxBins(t, records); err != nil {
		return nil, err
	}
	return t, nil
}

// AssembleLayout builds the skeleton tree of l. The root's maximum slot is
// taken from the layout's high-level header.
//
// Records are inserted in ascending order of path length, ties keeping
// their layout order, so the parent of every record already exists when the
// record is inserted. The caller's slice is not reordered. A record whose
// parent cannot be reached or whose slot is already continued by another
// node fails the whole assembly with a *RecordError.
func AssembleLayout(l *Layout) (*Tree, error) {
	t := NewTree(l.TopLevelMaxBin)
	if err := insertMaxBins(t, l.MaxBins); err != nil {
		return nil, err
	}
	return t, nil
}

func insertMaxBins(t *Tree, records []MaxBin) error {
	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(len(records[a].Path), len(records[b].Path))
	})

	for _, i := range order {
		if err := insertMaxBin(t, records[i]); err != nil {
			return &RecordError{Kind: KindMaxBin, Index: i, Path: records[i].Path, cause: err}
		}
	}
	return nil
}

func insertMaxBin(t *Tree, rec MaxBin) error {
	if len(rec.Path) == 0 {
		return ErrEmptyPath
	}
	if err := checkPath(rec.Path); err != nil {
		return err
	}

	prefix, slot := rec.Path[:len(rec.Path)-1], rec.Path[len(rec.Path)-1]
	parent, consumed := t.resolve(prefix)
	if consumed != len(prefix) {
		return ErrUnresolvedPath
	}
	if _, taken := t.ChildAt(parent, slot); taken {
		return ErrDuplicateSlot
	}

	child := t.addChild(parent, NodeData{
		ParentSlot:     slot,
		MaxSlot:        rec.MaxSlot,
		FavouriteChild: NoNode,
	})

	// The only mutation of an existing node.
	if p := t.Data(parent); p.MaxSlot != NoSlot && p.MaxSlot == slot {
		p.FavouriteChild = child
	}
	return nil
}
