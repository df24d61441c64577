package reel

import "fmt"

// Scene owns one node tree plus a non-owning id index kept in sync with the
// tree. Every structural change goes through Attach/Detach so no reader ever
// observes a half-updated index.
type Scene struct {
	Name  string
	root  *Node
	index map[string]*Node
}

// NewScene creates an empty scene with a pre-created root group node.
func NewScene(name string) *Scene {
	root := NewGroup("root")
	return &Scene{
		Name:  name,
		root:  root,
		index: map[string]*Node{root.ID: root},
	}
}

// NewSceneWithRoot wraps an existing tree in a scene, building the id index.
// Fails if two nodes in the tree share an id.
func NewSceneWithRoot(name string, root *Node) (*Scene, error) {
	if root == nil {
		return nil, ErrNilNode
	}
	s := &Scene{Name: name, root: root, index: make(map[string]*Node)}
	var dup error
	root.Walk(func(n *Node) bool {
		if prev, ok := s.index[n.ID]; ok && prev != n {
			dup = fmt.Errorf("reel: scene %q: duplicate node id %q", name, n.ID)
			return false
		}
		s.index[n.ID] = n
		return true
	})
	if dup != nil {
		return nil, dup
	}
	return s, nil
}

// Root returns the scene's root node.
func (s *Scene) Root() *Node {
	return s.root
}

// FindByID returns the node with the given id, or nil if not found.
func (s *Scene) FindByID(id string) *Node {
	return s.index[id]
}

// Attach parents child under parent and indexes child's entire subtree.
// Reparenting within the scene detaches the child from its old parent
// first. Fails without mutating anything on a self-parent, a cycle, or
// when an incoming subtree id collides with a different indexed node.
func (s *Scene) Attach(parent, child *Node) error {
	if parent == nil || child == nil {
		return ErrNilNode
	}
	var collision error
	child.Walk(func(n *Node) bool {
		if prev, ok := s.index[n.ID]; ok && prev != n {
			collision = fmt.Errorf("reel: scene %q: duplicate node id %q", s.Name, n.ID)
			return false
		}
		return true
	})
	if collision != nil {
		return collision
	}
	if err := parent.AddChild(child); err != nil {
		return err
	}
	child.Walk(func(n *Node) bool {
		s.index[n.ID] = n
		return true
	})
	return nil
}

// Detach removes n from its parent and drops n plus its entire subtree from
// the id index. No-op if n has no parent.
func (s *Scene) Detach(n *Node) {
	if n == nil || n.Parent == nil {
		return
	}
	n.RemoveFromParent()
	n.Walk(func(d *Node) bool {
		if s.index[d.ID] == d {
			delete(s.index, d.ID)
		}
		return true
	})
}

// Walk visits every node depth-first, parents before children, starting at
// the root. Traversal stops early when fn returns false.
func (s *Scene) Walk(fn func(*Node) bool) {
	s.root.Walk(fn)
}

// Nodes returns the current tree flattened in depth-first order. The slice
// is built fresh on every call.
func (s *Scene) Nodes() []*Node {
	out := make([]*Node, 0, len(s.index))
	s.Walk(func(n *Node) bool {
		out = append(out, n)
		return true
	})
	return out
}
