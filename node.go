package reel

import "errors"

// Structural invariant violations. Attach rejects these at the call site;
// the tree is left unchanged.
var (
	ErrNilNode    = errors.New("reel: nil node")
	ErrSelfParent = errors.New("reel: node cannot be its own child")
	ErrCycle      = errors.New("reel: attach would create a cycle")
)

// NodeType distinguishes simulation and rendering behavior for a Node.
// The core set is closed; registry-contributed types use NodeTypeCustom
// and are identified by TypeName.
type NodeType uint8

const (
	NodeTypeGroup       NodeType = iota // pure container, no visual output
	NodeTypeSprite                      // textured quad
	NodeTypeText                        // text content
	NodeTypeButton                      // labeled interactive region
	NodeTypeCamera2D                    // 2D camera anchor
	NodeTypeParticles2D                 // particle emitter
	NodeTypePostChain                   // post-processing chain marker
	NodeTypeCustom                      // module-contributed type, see TypeName
)

// coreNodeTypes maps the wire names of the closed core set.
var coreNodeTypes = map[string]NodeType{
	"Group":       NodeTypeGroup,
	"Sprite":      NodeTypeSprite,
	"Text":        NodeTypeText,
	"Button":      NodeTypeButton,
	"Camera2D":    NodeTypeCamera2D,
	"Particles2D": NodeTypeParticles2D,
	"PostChain":   NodeTypePostChain,
}

// Node is one entity in a scene tree. A single flat struct is used for all
// node types to avoid interface dispatch on the hot path; per-type payload
// fields are interpreted by the rendering collaborator.
type Node struct {
	// Identity
	ID       string
	Type     NodeType
	TypeName string // wire name; "Group", "Sprite", ... or a registered custom name

	// Hierarchy. Children are exclusively owned; Parent is a non-owning
	// back-reference used only for ancestry queries.
	Parent   *Node
	children []*Node

	// Transform (local)
	X, Y           float64
	ScaleX, ScaleY float64
	Rotation       float64
	SkewX, SkewY   float64
	Alpha          float64
	Visible        bool

	// Behavior
	Actions  []Action
	Triggers []Trigger

	// Payload (per-type)
	Sprite        string // texture id (Sprite, Particles2D)
	Text          string // content or label (Text, Button)
	Width, Height float64
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ScaleX = 1
	n.ScaleY = 1
	n.Alpha = 1
	n.Visible = true
}

// NewNode creates a node of the named type. Names outside the core set
// produce NodeTypeCustom; a pre-run Registry.ValidateTree pass decides
// whether such a type is actually supported.
func NewNode(id, typeName string) *Node {
	t, ok := coreNodeTypes[typeName]
	if !ok {
		t = NodeTypeCustom
	}
	n := &Node{ID: id, Type: t, TypeName: typeName}
	nodeDefaults(n)
	return n
}

// NewGroup creates a container node with no visual representation.
func NewGroup(id string) *Node {
	return NewNode(id, "Group")
}

// NewSprite creates a sprite node referencing a texture id.
func NewSprite(id, texture string) *Node {
	n := NewNode(id, "Sprite")
	n.Sprite = texture
	return n
}

// NewText creates a text node with the given content.
func NewText(id, content string) *Node {
	n := NewNode(id, "Text")
	n.Text = content
	return n
}

// NewButton creates a button node with the given label.
func NewButton(id, label string) *Node {
	n := NewNode(id, "Button")
	n.Text = label
	return n
}

// --- Tree manipulation ---

// AddChild appends child to this node's children. If child already has a
// parent, it is detached from that parent first. Returns ErrSelfParent or
// ErrCycle without mutating either tree when the attach would violate the
// tree invariants.
func (n *Node) AddChild(child *Node) error {
	if child == nil {
		return ErrNilNode
	}
	if child == n {
		return ErrSelfParent
	}
	if isAncestor(child, n) {
		return ErrCycle
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	return nil
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.removeChildByPtr(n)
	n.Parent = nil
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// Walk visits n and its descendants depth-first, parents before children.
// Traversal stops early when fn returns false. Each call re-walks the live
// tree; no iterator state survives a mutation.
func (n *Node) Walk(fn func(*Node) bool) {
	n.walk(fn)
}

func (n *Node) walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, child := range n.children {
		if !child.walk(fn) {
			return false
		}
	}
	return true
}

// --- Ancestry queries (via the non-owning parent reference) ---

// Root returns the topmost ancestor of this node (itself if detached).
func (n *Node) Root() *Node {
	r := n
	for r.Parent != nil {
		r = r.Parent
	}
	return r
}

// Depth returns the number of ancestors above this node.
func (n *Node) Depth() int {
	d := 0
	for p := n.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}

// --- Helpers ---

// isAncestor reports whether candidate is node or an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}
