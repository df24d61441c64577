package reel

// Trigger binds an event name to an ordered action list on a node. For
// on.key triggers an optional Key narrows the binding to one key; an empty
// Key matches any key.
type Trigger struct {
	Event   string   `json:"event"`
	Key     string   `json:"key,omitempty"`
	Actions []Action `json:"actions"`
}

// pointerHitRadius is the fixed proximity radius (in parent-local units)
// used by the placeholder pointer hit test.
const pointerHitRadius = 32.0

// timer is one named countdown. Plain data decremented once per
// processTimers call; the stored actions run once on expiry.
type timer struct {
	id        string
	remaining float64 // milliseconds
	actions   []Action
	owner     string // id of the node that started it, "" if none
}

// Dispatcher matches lifecycle, input and timer events to node-local
// trigger declarations and feeds the matching action lists into the
// interpreter. It tracks edge state for keys and pointer buttons and owns
// the named timer table.
type Dispatcher struct {
	interp *Interpreter

	active []*Node // registration order; iteration order is deterministic
	fanBuf []*Node // reused snapshot so re-entrant (un)registration is safe

	keys    map[string]bool
	buttons map[int]bool
	timers  []*timer // slice, not map: timer expiry order must be deterministic
}

// NewDispatcher creates a dispatcher delivering matched action lists to in.
func NewDispatcher(in *Interpreter) *Dispatcher {
	return &Dispatcher{
		interp:  in,
		keys:    make(map[string]bool),
		buttons: make(map[int]bool),
	}
}

// Register adds n to the active set, making it eligible for event delivery.
// Already-registered nodes are left alone. If ctx is non-nil, on.start fires
// immediately for n only.
func (d *Dispatcher) Register(n *Node, ctx *Context) {
	if n == nil {
		return
	}
	for _, a := range d.active {
		if a == n {
			return
		}
	}
	d.active = append(d.active, n)
	if ctx != nil {
		d.deliver(n, EventStart, EventData{}, ctx)
	}
}

// Unregister removes n from the active set; no further events are delivered
// to it. Timers and tweens it started are not cancelled implicitly.
func (d *Dispatcher) Unregister(n *Node) {
	for i, a := range d.active {
		if a == n {
			copy(d.active[i:], d.active[i+1:])
			d.active[len(d.active)-1] = nil
			d.active = d.active[:len(d.active)-1]
			return
		}
	}
}

// ActiveCount returns the size of the active set.
func (d *Dispatcher) ActiveCount() int {
	return len(d.active)
}

// Tick fires on.tick for every active node, in registration order.
func (d *Dispatcher) Tick(ctx *Context) {
	d.fanBuf = append(d.fanBuf[:0], d.active...)
	for _, n := range d.fanBuf {
		d.deliver(n, EventTick, EventData{}, ctx)
	}
}

// Input processes one key or pointer event. Both are edge-triggered: a
// trigger fires only on the false-to-true transition, repeated pressed
// samples are no-ops, and releases update edge state without firing.
// Pointer events are additionally gated by a visibility + fixed-radius
// proximity hit test around each node's local position.
func (d *Dispatcher) Input(ev InputEvent, ctx *Context) {
	switch ev.Kind {
	case InputKey:
		prev := d.keys[ev.Key]
		d.keys[ev.Key] = ev.Pressed
		if !ev.Pressed || prev {
			return
		}
		data := EventData{Key: ev.Key}
		d.fanBuf = append(d.fanBuf[:0], d.active...)
		for _, n := range d.fanBuf {
			d.deliver(n, EventKey, data, ctx)
		}

	case InputPointer:
		prev := d.buttons[ev.Button]
		d.buttons[ev.Button] = ev.Pressed
		if !ev.Pressed || prev {
			return
		}
		data := EventData{Button: ev.Button, X: ev.X, Y: ev.Y}
		d.fanBuf = append(d.fanBuf[:0], d.active...)
		for _, n := range d.fanBuf {
			if !WorldVisible(n) {
				continue
			}
			dx := ev.X - n.X
			dy := ev.Y - n.Y
			if dx*dx+dy*dy > pointerHitRadius*pointerHitRadius {
				continue
			}
			d.deliver(n, EventPointer, data, ctx)
		}
	}
}

// StartTimer inserts (or restarts) a named countdown.
func (d *Dispatcher) StartTimer(id string, duration float64) {
	d.StartTimerActions(id, duration, nil, "")
}

// StartTimerActions inserts (or restarts) a named countdown carrying an
// action list to run once on expiry, with owner as the triggering node.
func (d *Dispatcher) StartTimerActions(id string, duration float64, actions []Action, owner string) {
	for _, t := range d.timers {
		if t.id == id {
			t.remaining = duration
			t.actions = actions
			t.owner = owner
			return
		}
	}
	d.timers = append(d.timers, &timer{id: id, remaining: duration, actions: actions, owner: owner})
}

// StopTimer removes a timer before it next fires. No-op for unknown ids.
func (d *Dispatcher) StopTimer(id string) {
	for i, t := range d.timers {
		if t.id == id {
			copy(d.timers[i:], d.timers[i+1:])
			d.timers[len(d.timers)-1] = nil
			d.timers = d.timers[:len(d.timers)-1]
			return
		}
	}
}

// HasTimer reports whether a timer with the given id is pending.
func (d *Dispatcher) HasTimer(id string) bool {
	for _, t := range d.timers {
		if t.id == id {
			return true
		}
	}
	return false
}

// TimerRemaining returns the remaining duration of a pending timer.
func (d *Dispatcher) TimerRemaining(id string) (float64, bool) {
	for _, t := range d.timers {
		if t.id == id {
			return t.remaining, true
		}
	}
	return 0, false
}

// Timers decrements every timer by dt milliseconds. A timer reaching zero is
// removed from the table, its stored actions run once, and on.timer fires
// (with the timer id as event data) for every active node. Timers not yet
// expired persist with the decremented value.
func (d *Dispatcher) Timers(ctx *Context, dt float64) {
	if len(d.timers) == 0 {
		return
	}
	var expired []*timer
	live := 0
	for _, t := range d.timers {
		t.remaining -= dt
		if t.remaining <= 0 {
			expired = append(expired, t)
			continue
		}
		d.timers[live] = t
		live++
	}
	for i := live; i < len(d.timers); i++ {
		d.timers[i] = nil
	}
	d.timers = d.timers[:live]

	for _, t := range expired {
		if len(t.actions) > 0 {
			tctx := *ctx
			tctx.Event = EventData{TimerID: t.id}
			if t.owner != "" && ctx.Scene != nil {
				tctx.Node = ctx.Scene.FindByID(t.owner)
			}
			d.interp.ExecuteList(t.actions, &tctx)
		}
		data := EventData{TimerID: t.id}
		d.fanBuf = append(d.fanBuf[:0], d.active...)
		for _, n := range d.fanBuf {
			d.deliver(n, EventTimer, data, ctx)
		}
	}
}

// Reset clears the active set and timer table. Edge state for keys and
// pointer buttons persists: physical keys stay held across scene switches.
func (d *Dispatcher) Reset() {
	for i := range d.active {
		d.active[i] = nil
	}
	d.active = d.active[:0]
	for i := range d.timers {
		d.timers[i] = nil
	}
	d.timers = d.timers[:0]
}

// deliver scans n's triggers in declaration order and executes the full
// action list of every trigger matching the event. All matches fire; there
// is no short-circuit.
func (d *Dispatcher) deliver(n *Node, event string, data EventData, base *Context) {
	for _, tr := range n.Triggers {
		if tr.Event != event {
			continue
		}
		if event == EventKey && tr.Key != "" && tr.Key != data.Key {
			continue
		}
		ctx := *base
		ctx.Node = n
		ctx.Event = data
		d.interp.ExecuteList(tr.Actions, &ctx)
	}
}
