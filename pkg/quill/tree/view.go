package tree

// View is a cursor over a flattened node list.
type View struct {
	nodes  []Node
	cursor int
}

// NewView returns a view with the cursor on the first node.
func NewView(nodes []Node) *View {
	v := &View{}
	v.Refresh(nodes)
	return v
}

// Refresh replaces the node list and keeps the cursor in bounds.
func (v *View) Refresh(nodes []Node) {
	v.nodes = nodes
	if v.cursor >= len(v.nodes) {
		v.cursor = len(v.nodes) - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
}

// Nodes returns the current node list.
func (v *View) Nodes() []Node { return v.nodes }

// Cursor returns the cursor index.
func (v *View) Cursor() int { return v.cursor }

// MoveUp moves the cursor up one row, stopping at the top.
func (v *View) MoveUp() {
	if v.cursor > 0 {
		v.cursor--
	}
}

// MoveDown moves the cursor down one row, stopping at the bottom.
func (v *View) MoveDown() {
	if v.cursor < len(v.nodes)-1 {
		v.cursor++
	}
}

// Select moves the cursor to the node with path, if present.
func (v *View) Select(path string) bool {
	for i, n := range v.nodes {
		if n.Path == path {
			v.cursor = i
			return true
		}
	}
	return false
}

// Selected returns the node under the cursor, or nil for an empty view.
func (v *View) Selected() *Node {
	if len(v.nodes) == 0 {
		return nil
	}
	return &v.nodes[v.cursor]
}
