package hibf

// NodeID addresses a node of a Tree. IDs are assigned in insertion order and
// never change.
type NodeID int

const (
	// Root is the ID of the root node. It exists in every tree.
	Root NodeID = 0
	// NoNode marks an absent node reference.
	NoNode NodeID = -1
)

// NodeData is the routing metadata of one build tree node. Each node is
// built into exactly one IBF.
type NodeData struct {
	// ParentSlot is the technical bin of the parent this node continues.
	// It is NoSlot for the root.
	ParentSlot int

	// MaxSlot is the technical bin of this node holding its largest content,
	// or NoSlot.
	MaxSlot int

	// FavouriteChild is the child continuing MaxSlot, or NoNode.
	FavouriteChild NodeID

	// Records are the user bins stored directly in this node.
	Records []UserBin
}

// Node is one vertex of the build tree.
type Node struct {
	Parent   NodeID
	Children []NodeID
	Data     NodeData
}

// Tree is the build tree. Nodes live in an arena and refer to each other by
// NodeID, so a finished tree can be shared by concurrent readers without
// synchronisation.
//
// A Tree is mutated only by Assemble and Attach.
type Tree struct {
	nodes []Node
}

// NewTree returns a tree holding only a root with the given maximum slot.
func NewTree(rootMaxSlot int) *Tree {
	return &Tree{
		nodes: []Node{{
			Parent: NoNode,
			Data: NodeData{
				ParentSlot:     NoSlot,
				MaxSlot:        rootMaxSlot,
				FavouriteChild: NoNode,
			},
		}},
	}
}

// Len returns the number of nodes, which is the number of IBFs to build.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns the node with the given ID. The returned pointer must not be
// used to mutate the tree once assembly has finished.
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// Data returns the metadata of node id.
func (t *Tree) Data(id NodeID) *NodeData {
	return &t.nodes[id].Data
}

// ChildAt returns the child of id continuing the given slot.
func (t *Tree) ChildAt(id NodeID, slot int) (NodeID, bool) {
	for _, c := range t.nodes[id].Children {
		if t.nodes[c].Data.ParentSlot == slot {
			return c, true
		}
	}
	return NoNode, false
}

// Depth returns the number of edges between the root and id.
func (t *Tree) Depth(id NodeID) int {
	depth := 0
	for n := id; t.nodes[n].Parent != NoNode; n = t.nodes[n].Parent {
		depth++
	}
	return depth
}

// Path rebuilds the bin index path of id by following parent slots up to
// the root. The root's path is empty.
func (t *Tree) Path(id NodeID) []int {
	path := make([]int, t.Depth(id))
	for n, i := id, len(path)-1; n != Root; n, i = t.nodes[n].Parent, i-1 {
		path[i] = t.nodes[n].Data.ParentSlot
	}
	return path
}

// Walk calls fn for every node in depth-first pre-order, starting at id.
// Walking stops early when fn returns false.
func (t *Tree) Walk(id NodeID, fn func(NodeID) bool) bool {
	if !fn(id) {
		return false
	}
	for _, c := range t.nodes[id].Children {
		if !t.Walk(c, fn) {
			return false
		}
	}
	return true
}

// resolve follows path from the root, choosing at every step the child that
// continues the path element. It returns the node reached and how many
// elements were consumed.
func (t *Tree) resolve(path []int) (NodeID, int) {
	cur := Root
	for i, slot := range path {
		next, ok := t.ChildAt(cur, slot)
		if !ok {
			return cur, i
		}
		cur = next
	}
	return cur, len(path)
}

// addChild appends a new node below parent and returns its ID.
func (t *Tree) addChild(parent NodeID, data NodeData) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, Node{Parent: parent, Data: data})
	t.nodes[parent].Children = append(t.nodes[parent].Children, id)
	return id
}
