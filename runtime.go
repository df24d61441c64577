package reel

import "fmt"

// Options configures a Runtime. The zero value gets a fresh core registry,
// no-op audio and seed 0.
type Options struct {
	Registry *Registry
	Audio    Audio
	Seed     uint32
}

// Runtime wires the scene graph, interpreter, dispatcher and scheduler into
// the host-facing engine. One Runtime drives one cartridge. All methods must
// be called from the host's single update goroutine.
type Runtime struct {
	registry *Registry
	audio    Audio

	scenes map[string]*Scene
	order  []string // scene declaration order; order[0] is the start scene

	current *Scene
	vars    map[string]any

	sched  *Scheduler
	interp *Interpreter
	disp   *Dispatcher

	renderFunc   func(nodes []*Node, alpha float64)
	pendingScene string
	inTick       bool

	injected []InputEvent
}

// NewRuntime creates a runtime for a loaded cartridge. The cartridge's
// scenes must have been validated against the same registry.
func NewRuntime(cart *Cartridge, opts Options) (*Runtime, error) {
	if cart == nil || len(cart.Scenes) == 0 {
		return nil, fmt.Errorf("reel: runtime needs a cartridge with at least one scene")
	}
	rt := newRuntime(opts)
	for _, s := range cart.Scenes {
		if _, ok := rt.scenes[s.Name]; ok {
			return nil, fmt.Errorf("reel: duplicate scene id %q", s.Name)
		}
		rt.scenes[s.Name] = s
		rt.order = append(rt.order, s.Name)
	}
	for k, v := range cart.Variables {
		rt.vars[k] = v
	}
	return rt, nil
}

// NewRuntimeFromScene creates a runtime around a single hand-built scene.
// The tree is validated against the registry before the runtime is returned.
func NewRuntimeFromScene(scene *Scene, opts Options) (*Runtime, error) {
	if scene == nil {
		return nil, ErrNilNode
	}
	rt := newRuntime(opts)
	if err := rt.registry.ValidateTree(scene.Root()); err != nil {
		return nil, err
	}
	rt.scenes[scene.Name] = scene
	rt.order = append(rt.order, scene.Name)
	return rt, nil
}

func newRuntime(opts Options) *Runtime {
	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}
	audio := opts.Audio
	if audio == nil {
		audio = NopAudio{}
	}
	rt := &Runtime{
		registry: reg,
		audio:    audio,
		scenes:   make(map[string]*Scene),
		vars:     make(map[string]any),
		sched:    NewScheduler(opts.Seed),
	}
	rt.interp = NewInterpreter(reg)
	rt.disp = NewDispatcher(rt.interp)
	rt.interp.BindTimers(rt.disp)
	rt.sched.TickFunc = rt.tick
	rt.sched.RenderFunc = rt.render
	return rt
}

// baseCtx builds the shared execution context for one event's processing.
func (rt *Runtime) baseCtx() *Context {
	return &Context{
		Scene:     rt.current,
		Vars:      rt.vars,
		Clock:     rt.sched,
		Audio:     rt.audio,
		GotoScene: rt.GotoScene,
	}
}

// Start resets the scheduler and enters the first scene, firing on.start
// for every node in it.
func (rt *Runtime) Start() {
	rt.sched.Start()
	if rt.current == nil && len(rt.order) > 0 {
		rt.enterScene(rt.order[0])
	}
}

// Stop halts the scheduler; subsequent Step calls are no-ops.
func (rt *Runtime) Stop() { rt.sched.Stop() }

// Pause suspends ticking; rendering continues with interpolation 0.
func (rt *Runtime) Pause() { rt.sched.Pause() }

// Resume restarts ticking without a catch-up burst.
func (rt *Runtime) Resume() { rt.sched.Resume() }

// Running reports whether the runtime has been started and not stopped.
func (rt *Runtime) Running() bool { return rt.sched.Running() }

// Scene returns the active scene, nil before Start.
func (rt *Runtime) Scene() *Scene { return rt.current }

// Vars returns the shared variable store.
func (rt *Runtime) Vars() map[string]any { return rt.vars }

// Clock returns the scheduler, for timing counters and the seeded RNG.
func (rt *Runtime) Clock() *Scheduler { return rt.sched }

// Dispatcher returns the trigger dispatcher, for custom host wiring.
func (rt *Runtime) Dispatcher() *Dispatcher { return rt.disp }

// SetRenderFunc installs the render callback, invoked once per Step with
// the current tree in depth-first order and the interpolation fraction.
func (rt *Runtime) SetRenderFunc(fn func(nodes []*Node, alpha float64)) {
	rt.renderFunc = fn
}

// GotoScene switches to the named scene. Mid-tick requests are deferred to
// the end of the current tick so the remaining trigger chain runs against a
// stable tree. Unknown names are logged and ignored.
func (rt *Runtime) GotoScene(name string) {
	if _, ok := rt.scenes[name]; !ok {
		logger.Warn("gotoScene: unknown scene", "scene", name)
		return
	}
	if rt.inTick {
		rt.pendingScene = name
		return
	}
	rt.enterScene(name)
}

// enterScene makes the named scene current: the active set and timer table
// are cleared, then every node of the new scene is registered depth-first,
// firing on.start per node.
func (rt *Runtime) enterScene(name string) {
	scene := rt.scenes[name]
	if scene == nil {
		return
	}
	rt.disp.Reset()
	rt.current = scene
	ctx := rt.baseCtx()
	scene.Walk(func(n *Node) bool {
		rt.disp.Register(n, ctx)
		return true
	})
}

// tick runs one fixed simulation step: on.tick fan-out, timer processing,
// tween updates, then any deferred scene switch.
func (rt *Runtime) tick() {
	if rt.current == nil {
		return
	}
	rt.inTick = true
	ctx := rt.baseCtx()
	rt.disp.Tick(ctx)
	rt.disp.Timers(ctx, TickInterval)
	rt.interp.Update(TickInterval)
	rt.inTick = false
	if rt.pendingScene != "" {
		name := rt.pendingScene
		rt.pendingScene = ""
		rt.enterScene(name)
	}
}

func (rt *Runtime) render(alpha, frameTime float64) {
	_ = frameTime
	if rt.renderFunc == nil || rt.current == nil {
		return
	}
	rt.renderFunc(rt.current.Nodes(), alpha)
}

// Step advances the runtime by frameTime milliseconds: injected input is
// drained first, then the scheduler runs zero or more ticks and one render
// callback.
func (rt *Runtime) Step(frameTime float64) {
	rt.drainInjected()
	rt.sched.Step(frameTime)
}

// --- Host-facing primitives ---

// RegisterNode adds n to the active set and fires on.start for it.
func (rt *Runtime) RegisterNode(n *Node) {
	rt.disp.Register(n, rt.baseCtx())
}

// UnregisterNode removes n from event delivery.
func (rt *Runtime) UnregisterNode(n *Node) {
	rt.disp.Unregister(n)
}

// ProcessTick fires on.tick for every active node without advancing the
// scheduler. Hosts driving their own clock use this with ProcessTimers.
func (rt *Runtime) ProcessTick() {
	rt.disp.Tick(rt.baseCtx())
}

// HandleInput feeds one input event through the edge-triggered dispatcher.
func (rt *Runtime) HandleInput(ev InputEvent) {
	rt.disp.Input(ev, rt.baseCtx())
}

// ProcessTimers decrements every pending timer by dt milliseconds, firing
// on.timer for expired ones.
func (rt *Runtime) ProcessTimers(dt float64) {
	rt.disp.Timers(rt.baseCtx(), dt)
}

// ExecuteAction runs one action. A nil ctx gets the runtime's base context.
func (rt *Runtime) ExecuteAction(a Action, ctx *Context) {
	if ctx == nil {
		ctx = rt.baseCtx()
	}
	rt.interp.Execute(a, ctx)
}
