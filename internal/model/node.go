package model

// Node is a single node in the document tree: either an element with a name
// and children, or a text node carrying character data. The undo core counts
// offsets in child slots, so text content is stored as one text node per
// character (see NewTextRun).
type Node struct {
	name     string
	data     string
	children []*Node
}

// NewElement creates an element node with the given name and children.
func NewElement(name string, children ...*Node) *Node {
	return &Node{name: name, children: children}
}

// NewText creates a single text node.
func NewText(data string) *Node {
	return &Node{data: data}
}

// NewTextRun explodes a string into one text node per rune so that every
// character occupies exactly one child slot.
func NewTextRun(s string) []*Node {
	nodes := make([]*Node, 0, len(s))
	for _, r := range s {
		nodes = append(nodes, NewText(string(r)))
	}
	return nodes
}

// IsText reports whether the node is a text node.
func (n *Node) IsText() bool { return n.name == "" }

// Name returns the element name, or "" for text nodes.
func (n *Node) Name() string { return n.name }

// Data returns the character data of a text node.
func (n *Node) Data() string { return n.data }

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return len(n.children) }

// Child returns the child at the given offset, or nil if out of bounds.
func (n *Node) Child(offset int) *Node {
	if offset < 0 || offset >= len(n.children) {
		return nil
	}
	return n.children[offset]
}

// Children returns a copy of the child slice.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Text concatenates the data of all text children, recursing into elements.
func (n *Node) Text() string {
	if n.IsText() {
		return n.data
	}
	var s string
	for _, c := range n.children {
		s += c.Text()
	}
	return s
}

// insertChildren splices nodes into the child list at the given offset.
func (n *Node) insertChildren(offset int, nodes []*Node) {
	children := make([]*Node, 0, len(n.children)+len(nodes))
	children = append(children, n.children[:offset]...)
	children = append(children, nodes...)
	children = append(children, n.children[offset:]...)
	n.children = children
}

// removeChildren detaches howMany nodes starting at offset and returns them.
func (n *Node) removeChildren(offset, howMany int) []*Node {
	removed := make([]*Node, howMany)
	copy(removed, n.children[offset:offset+howMany])
	n.children = append(n.children[:offset], n.children[offset+howMany:]...)
	return removed
}
