package hibf

import (
	"strconv"
	"strings"
)

// NoSlot marks an undefined slot index, e.g. the maximum slot of a root
// whose layout carries no high-level header.
const NoSlot = -1

// MaxBin is a merged-bin header record. It creates one node of the build
// tree.
//
// Path lists the technical bin indices from the root down to the new node:
// Path[:len(Path)-1] addresses the parent and the last element is the
// parent slot the new node continues. len(Path) is the depth of the node.
type MaxBin struct {
	Path    []int
	MaxSlot int // slot of the new node holding its largest content
}

// UserBin is one leaf dataset record.
//
// Path[:len(Path)-1] addresses the node owning the dataset and the last
// element is the first of SlotCount consecutive technical bins it occupies.
type UserBin struct {
	Files     []string
	Path      []int
	SlotCount int

	// Index is the position of the record in the layout. Cardinality
	// estimates are looked up by it.
	Index int

	// ID is the user bin identity allocated when the record is attached to
	// the tree. It is -1 before attachment.
	ID int64
}

// Slot returns the first technical bin the user bin occupies in its owner.
func (ub UserBin) Slot() int {
	return ub.Path[len(ub.Path)-1]
}

// GroupKind classifies how a user bin is stored.
type GroupKind uint8

const (
	// HighLevel bins are stored in a single slot of the root IBF.
	HighLevel GroupKind = iota
	// SplitBin bins are spread over more than one technical bin.
	SplitBin
	// MergedBin bins live inside a lower-level IBF.
	MergedBin
)

func (k GroupKind) String() string {
	switch k {
	case HighLevel:
		return "HIGH_LEVEL_IBF"
	case SplitBin:
		return "SPLIT_BIN"
	case MergedBin:
		return "MERGED_BIN"
	default:
		return "UNKNOWN"
	}
}

// Kind reports the grouping of the user bin. A split bin below a merged
// bin reports SplitBin.
func (ub UserBin) Kind() GroupKind {
	switch {
	case ub.SlotCount > 1:
		return SplitBin
	case len(ub.Path) > 1:
		return MergedBin
	default:
		return HighLevel
	}
}

// Layout is the parsed partition plan.
type Layout struct {
	// TopLevelMaxBin is the maximum slot of the root IBF, or NoSlot.
	TopLevelMaxBin int
	MaxBins        []MaxBin
	UserBins       []UserBin
}

// Files returns the source identifiers of every user bin in layout order.
func (l *Layout) Files() [][]string {
	files := make([][]string, len(l.UserBins))
	for i, ub := range l.UserBins {
		files[i] = ub.Files
	}
	return files
}

// MaxSplit returns the largest number of technical bins any user bin
// occupies, at least 1.
func (l *Layout) MaxSplit() int {
	maxSplit := 1
	for _, ub := range l.UserBins {
		maxSplit = max(maxSplit, ub.SlotCount)
	}
	return maxSplit
}

func formatPath(path []int) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, p := range path {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(strconv.Itoa(p))
	}
	sb.WriteByte(']')
	return sb.String()
}
