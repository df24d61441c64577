package reel

import "fmt"

// ActionHandler executes a module-contributed action. A returned error is
// logged and the action skipped; it never aborts the trigger chain.
type ActionHandler func(a Action, ctx *Context) error

// Module is an external contributor of node types, trigger events and
// actions. Modules register themselves into a Registry at construction time.
type Module interface {
	Register(r *Registry)
}

// coreActions are the action types handled directly by the interpreter.
// Modules cannot shadow them.
var coreActions = map[string]bool{
	"gotoScene":  true,
	"spawn":      true,
	"despawn":    true,
	"setVar":     true,
	"incVar":     true,
	"randomInt":  true,
	"if":         true,
	"tween":      true,
	"startTimer": true,
	"stopTimer":  true,
	"playSfx":    true,
	"playMusic":  true,
	"stopMusic":  true,
}

// Registry is the capability table consulted by the loader's pre-run
// validation pass and by the interpreter for extension actions. It is an
// explicitly constructed instance, not a process singleton: build one,
// apply modules, hand it to the runtime. It is read-only during simulation.
type Registry struct {
	nodeTypes     map[string]bool
	triggerEvents map[string]bool
	actions       map[string]ActionHandler
}

// NewRegistry creates a registry pre-populated with the core node types and
// trigger events, then applies the given modules in order.
func NewRegistry(mods ...Module) *Registry {
	r := &Registry{
		nodeTypes:     make(map[string]bool, len(coreNodeTypes)),
		triggerEvents: make(map[string]bool, 8),
		actions:       make(map[string]ActionHandler),
	}
	for name := range coreNodeTypes {
		r.nodeTypes[name] = true
	}
	for _, ev := range []string{EventStart, EventTick, EventKey, EventPointer, EventTimer} {
		r.triggerEvents[ev] = true
	}
	for _, m := range mods {
		m.Register(r)
	}
	return r
}

// RegisterNodeType marks a node type name as supported.
func (r *Registry) RegisterNodeType(name string) {
	r.nodeTypes[name] = true
}

// RegisterTriggerEvent marks a trigger event name as supported.
func (r *Registry) RegisterTriggerEvent(name string) {
	r.triggerEvents[name] = true
}

// RegisterAction binds an extension action type to its handler. Fails if the
// name is a core action or already registered.
func (r *Registry) RegisterAction(name string, h ActionHandler) error {
	if coreActions[name] {
		return fmt.Errorf("reel: action type %q is built in", name)
	}
	if _, ok := r.actions[name]; ok {
		return fmt.Errorf("reel: action type %q already registered", name)
	}
	r.actions[name] = h
	return nil
}

// SupportsNodeType reports whether the named node type can appear in a tree.
func (r *Registry) SupportsNodeType(name string) bool {
	return r.nodeTypes[name]
}

// SupportsTriggerEvent reports whether the named event can appear in a trigger.
func (r *Registry) SupportsTriggerEvent(name string) bool {
	return r.triggerEvents[name]
}

// ActionHandler returns the handler for an extension action type.
func (r *Registry) ActionHandler(name string) (ActionHandler, bool) {
	h, ok := r.actions[name]
	return h, ok
}

// ValidateTree walks the tree rooted at root and fails on the first node
// whose type or trigger event is unsupported. Run before the first tick;
// a failure here is a hard stop.
func (r *Registry) ValidateTree(root *Node) error {
	if root == nil {
		return ErrNilNode
	}
	var err error
	root.Walk(func(n *Node) bool {
		if !r.SupportsNodeType(n.TypeName) {
			err = fmt.Errorf("reel: node %q: unsupported node type %q", n.ID, n.TypeName)
			return false
		}
		for _, t := range n.Triggers {
			if !r.SupportsTriggerEvent(t.Event) {
				err = fmt.Errorf("reel: node %q: unsupported trigger event %q", n.ID, t.Event)
				return false
			}
		}
		return true
	})
	return err
}
