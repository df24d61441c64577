package reel

// Synthetic input injection. Queued events are drained through the normal
// edge-triggered dispatch path at the top of the next Step, so injected and
// real input are indistinguishable to triggers. Useful for scripted demos
// and automated runs.

// InjectKey queues a key state change.
func (rt *Runtime) InjectKey(key string, pressed bool) {
	rt.injected = append(rt.injected, InputEvent{Kind: InputKey, Key: key, Pressed: pressed})
}

// InjectKeyPress queues a press immediately followed by a release, so the
// same key can be injected again later and still produce a rising edge.
func (rt *Runtime) InjectKeyPress(key string) {
	rt.InjectKey(key, true)
	rt.InjectKey(key, false)
}

// InjectPointer queues a pointer button state change at (x, y).
func (rt *Runtime) InjectPointer(x, y float64, button int, pressed bool) {
	rt.injected = append(rt.injected, InputEvent{
		Kind: InputPointer, Button: button, Pressed: pressed, X: x, Y: y,
	})
}

// InjectClick queues a pointer press and release at the same position.
func (rt *Runtime) InjectClick(x, y float64) {
	rt.InjectPointer(x, y, 0, true)
	rt.InjectPointer(x, y, 0, false)
}

// drainInjected feeds all queued events to the dispatcher in FIFO order.
func (rt *Runtime) drainInjected() {
	if len(rt.injected) == 0 {
		return
	}
	queue := rt.injected
	rt.injected = rt.injected[:0]
	for _, ev := range queue {
		rt.HandleInput(ev)
	}
}
