package reel

// Core trigger event names. Modules may register additional event names on a
// Registry; these five are always supported.
const (
	EventStart   = "on.start"
	EventTick    = "on.tick"
	EventKey     = "on.key"
	EventPointer = "on.pointer"
	EventTimer   = "on.timer"
)

// InputKind distinguishes the two classes of host input.
type InputKind uint8

const (
	InputKey     InputKind = iota // keyboard key state change
	InputPointer                  // pointer button state change
)

// InputEvent is a single host input sample fed to the dispatcher. Key events
// carry Key and Pressed; pointer events carry Button, Pressed, X and Y in
// world coordinates.
type InputEvent struct {
	Kind    InputKind
	Key     string
	Button  int
	Pressed bool
	X, Y    float64
}

// EventData carries per-delivery payload into trigger execution: the timer id
// for on.timer, the key name for on.key, and button/position for on.pointer.
type EventData struct {
	TimerID string
	Key     string
	Button  int
	X, Y    float64
}

// Context is the mutable state threaded through one event's action execution.
// Its lifetime is a single delivery; the dispatcher stamps Node and Event on
// a per-node copy before running the trigger's action list.
type Context struct {
	// Node is the triggering node. despawn and tween default to it.
	Node *Node

	// Scene is the active scene; spawn/despawn mutate it and its index.
	Scene *Scene

	// Vars is the shared variable store (number, string or bool values).
	Vars map[string]any

	// Clock supplies the seeded RNG and timing counters.
	Clock *Scheduler

	// Audio is the fire-and-forget audio collaborator.
	Audio Audio

	// Event is the payload of the event being processed.
	Event EventData

	// GotoScene, when set, requests a scene switch. The runtime defers the
	// switch to the end of the current tick.
	GotoScene func(name string)
}

// Var returns the named variable, or nil if unset.
func (c *Context) Var(name string) any {
	if c.Vars == nil {
		return nil
	}
	return c.Vars[name]
}

// toNumber coerces a variable store value to float64. JSON decoding produces
// float64 for all numbers; int variants cover values set from Go code.
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
