// Package reel is a deterministic runtime for declarative game cartridges.
//
// A cartridge is a JSON document describing scenes of hierarchical nodes
// with transforms, actions and triggers. Reel loads it and executes it as a
// fixed-tick interactive simulation: the same cartridge, seed and input
// sequence always produce the same simulation.
//
// # Quick start
//
// Load a cartridge and run it in a window:
//
//	cart, err := reel.LoadCartridge(data, reel.NewRegistry())
//	if err != nil {
//		log.Fatal(err)
//	}
//	rt, err := reel.NewRuntime(cart, reel.Options{Seed: 42})
//	if err != nil {
//		log.Fatal(err)
//	}
//	reel.Run(rt, reel.RunConfig{Title: "My Game", Width: 640, Height: 480})
//
// For full control, drive the runtime yourself: call [Runtime.Step] with
// the frame time in milliseconds and install a render callback via
// [Runtime.SetRenderFunc].
//
// # Scene graph
//
// Every entity is a [Node]: a string id, a type tag, a 2D transform
// (position, scale, rotation, skew, alpha), a visibility flag, owned
// children and a non-owning parent back-reference. A [Scene] owns one tree
// plus an id index maintained through [Scene.Attach] and [Scene.Detach];
// self-parenting and cycles are rejected without mutating the tree.
// [WorldTransform] and [WorldVisible] compose down the ancestor chain.
//
// # Actions and triggers
//
// Nodes declare triggers (event name to action list). The [Dispatcher]
// matches lifecycle events (on.start, on.tick), edge-triggered input
// (on.key, on.pointer) and named countdown timers (on.timer) against those
// declarations and feeds the matching lists to the [Interpreter]. The core
// action set covers variables, branching, deterministic random numbers,
// spawning and despawning, property tweens (via [gween]), timers and audio.
// A [Registry] instance lets modules contribute node types, trigger events
// and action handlers; a pre-run validation pass rejects any tree using
// unsupported ones.
//
// # Timing
//
// The [Scheduler] converts wall-clock frame time into fixed 1/60 s ticks
// with a 5-tick cap against catch-up spirals and reports a render
// interpolation fraction each frame. It owns the seeded linear congruential
// generator every randomInt action draws from.
//
// [gween]: https://github.com/tanema/gween
package reel
