package reel

import (
	"errors"
	"math"
	"testing"
)

// newTestContext builds an interpreter + dispatcher pair and a context over
// a fresh scene, the way the runtime wires them.
func newTestContext(t *testing.T) (*Interpreter, *Dispatcher, *Context) {
	t.Helper()
	in := NewInterpreter(NewRegistry())
	d := NewDispatcher(in)
	in.BindTimers(d)
	ctx := &Context{
		Scene: NewScene("test"),
		Vars:  make(map[string]any),
		Clock: NewScheduler(1),
		Audio: NopAudio{},
	}
	return in, d, ctx
}

// --- Variables ---

func TestSetVar(t *testing.T) {
	in, _, ctx := newTestContext(t)
	in.Execute(Action{Type: "setVar", Var: "score", Value: float64(10)}, ctx)
	if got := ctx.Vars["score"]; got != float64(10) {
		t.Errorf("score = %v, want 10", got)
	}
	in.Execute(Action{Type: "setVar", Var: "name", Value: "kenji"}, ctx)
	if got := ctx.Vars["name"]; got != "kenji" {
		t.Errorf("name = %v, want kenji", got)
	}
}

func TestIncVar(t *testing.T) {
	in, _, ctx := newTestContext(t)
	// Missing value counts as 0; missing amount counts as 1.
	in.Execute(Action{Type: "incVar", Var: "lives"}, ctx)
	if got := ctx.Vars["lives"]; got != float64(1) {
		t.Errorf("lives = %v, want 1", got)
	}
	in.Execute(Action{Type: "incVar", Var: "lives", Value: float64(2)}, ctx)
	if got := ctx.Vars["lives"]; got != float64(3) {
		t.Errorf("lives = %v, want 3", got)
	}
	// A non-numeric current value also counts as 0.
	ctx.Vars["lives"] = "many"
	in.Execute(Action{Type: "incVar", Var: "lives", Value: float64(5)}, ctx)
	if got := ctx.Vars["lives"]; got != float64(5) {
		t.Errorf("lives = %v, want 5", got)
	}
}

func TestRandomIntStoresInRange(t *testing.T) {
	in, _, ctx := newTestContext(t)
	for i := 0; i < 50; i++ {
		in.Execute(Action{Type: "randomInt", Var: "roll", Min: 1, Max: 6}, ctx)
		v, ok := toNumber(ctx.Vars["roll"])
		if !ok || v < 1 || v > 6 || v != math.Trunc(v) {
			t.Fatalf("roll = %v, want integer in [1,6]", ctx.Vars["roll"])
		}
	}
}

func TestRandomIntDeterministic(t *testing.T) {
	runOnce := func() []any {
		in, _, ctx := newTestContext(t)
		var out []any
		for i := 0; i < 10; i++ {
			in.Execute(Action{Type: "randomInt", Var: "r", Min: 0, Max: 100}, ctx)
			out = append(out, ctx.Vars["r"])
		}
		return out
	}
	a, b := runOnce(), runOnce()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("equal seeds must give equal draws (diverged at %d: %v vs %v)", i, a[i], b[i])
		}
	}
}

// --- Conditions ---

func TestPreconditionsGateAction(t *testing.T) {
	in, _, ctx := newTestContext(t)
	ctx.Vars["x"] = float64(5)

	in.Execute(Action{
		Type: "setVar", Var: "ran", Value: true,
		When: []Condition{{Var: "x", Op: "gt", Value: float64(3)}},
	}, ctx)
	if ctx.Vars["ran"] != true {
		t.Error("satisfied precondition should run the action")
	}

	delete(ctx.Vars, "ran")
	in.Execute(Action{
		Type: "setVar", Var: "ran", Value: true,
		When: []Condition{
			{Var: "x", Op: "gt", Value: float64(3)},
			{Var: "x", Op: "lt", Value: float64(4)}, // fails
		},
	}, ctx)
	if _, ok := ctx.Vars["ran"]; ok {
		t.Error("any failing precondition should skip the action entirely")
	}
}

func TestEvalConditionOps(t *testing.T) {
	vars := map[string]any{"n": float64(5), "s": "abc", "b": true}
	cases := []struct {
		cond Condition
		want bool
	}{
		{Condition{Var: "n", Op: "eq", Value: float64(5)}, true},
		{Condition{Var: "n", Op: "eq", Value: float64(6)}, false},
		{Condition{Var: "s", Op: "eq", Value: "abc"}, true},
		{Condition{Var: "b", Op: "eq", Value: true}, true},
		{Condition{Var: "n", Op: "gt", Value: float64(3)}, true},
		{Condition{Var: "n", Op: "gt", Value: float64(5)}, false},
		{Condition{Var: "n", Op: "lt", Value: float64(6)}, true},
		{Condition{Var: "n", Op: "lt", Value: float64(5)}, false},
		{Condition{Var: "n", Op: "exists"}, true},
		{Condition{Var: "missing", Op: "exists"}, false},
		{Condition{Var: "missing", Op: "eq", Value: float64(0)}, false},
		{Condition{Var: "s", Op: "gt", Value: float64(1)}, false},
		{Condition{Var: "n", Op: "between", Value: float64(1)}, false}, // unknown op
	}
	for i, c := range cases {
		if got := evalCondition(c.cond, vars); got != c.want {
			t.Errorf("case %d: evalCondition(%+v) = %v, want %v", i, c.cond, got, c.want)
		}
	}
}

// --- if ---

func TestIfThenBranch(t *testing.T) {
	in, _, ctx := newTestContext(t)
	ctx.Vars["x"] = float64(5)
	in.Execute(Action{
		Type: "if",
		Cond: &Condition{Var: "x", Op: "gt", Value: float64(3)},
		Then: []Action{{Type: "setVar", Var: "branch", Value: "then"}},
		Else: []Action{{Type: "setVar", Var: "branch", Value: "else"}},
	}, ctx)
	if ctx.Vars["branch"] != "then" {
		t.Errorf("branch = %v, want then", ctx.Vars["branch"])
	}
}

func TestIfElseBranch(t *testing.T) {
	in, _, ctx := newTestContext(t)
	ctx.Vars["x"] = float64(2)
	in.Execute(Action{
		Type: "if",
		Cond: &Condition{Var: "x", Op: "gt", Value: float64(3)},
		Then: []Action{{Type: "setVar", Var: "branch", Value: "then"}},
		Else: []Action{{Type: "setVar", Var: "branch", Value: "else"}},
	}, ctx)
	if ctx.Vars["branch"] != "else" {
		t.Errorf("branch = %v, want else", ctx.Vars["branch"])
	}
}

func TestIfNested(t *testing.T) {
	in, _, ctx := newTestContext(t)
	ctx.Vars["x"] = float64(5)
	// Nested if runs synchronously in the same call stack.
	in.Execute(Action{
		Type: "if",
		Cond: &Condition{Var: "x", Op: "exists"},
		Then: []Action{{
			Type: "if",
			Cond: &Condition{Var: "x", Op: "lt", Value: float64(10)},
			Then: []Action{{Type: "incVar", Var: "depth"}},
		}},
	}, ctx)
	if ctx.Vars["depth"] != float64(1) {
		t.Errorf("depth = %v, want 1", ctx.Vars["depth"])
	}
}

// --- spawn / despawn ---

func TestSpawnAttachesAndRegisters(t *testing.T) {
	in, d, ctx := newTestContext(t)
	in.Execute(Action{
		Type: "spawn",
		Node: &NodeDoc{ID: "enemy", Type: "Sprite", X: 10},
	}, ctx)
	n := ctx.Scene.FindByID("enemy")
	if n == nil {
		t.Fatal("spawned node should be indexed")
	}
	if n.Parent != ctx.Scene.Root() {
		t.Error("default spawn parent should be the scene root")
	}
	if d.ActiveCount() != 1 {
		t.Errorf("ActiveCount = %d, want 1", d.ActiveCount())
	}
}

func TestSpawnUnderNamedParent(t *testing.T) {
	in, _, ctx := newTestContext(t)
	if err := ctx.Scene.Attach(ctx.Scene.Root(), NewGroup("layer")); err != nil {
		t.Fatal(err)
	}
	in.Execute(Action{
		Type:   "spawn",
		Node:   &NodeDoc{ID: "coin", Type: "Sprite"},
		Parent: "layer",
	}, ctx)
	n := ctx.Scene.FindByID("coin")
	if n == nil || n.Parent.ID != "layer" {
		t.Error("spawn should attach under the named parent")
	}
}

func TestSpawnUnsupportedTypeSkipped(t *testing.T) {
	in, _, ctx := newTestContext(t)
	in.Execute(Action{
		Type: "spawn",
		Node: &NodeDoc{ID: "w", Type: "Weather"},
	}, ctx)
	if ctx.Scene.FindByID("w") != nil {
		t.Error("rejected spawn must not attach")
	}
}

func TestDespawnDefaultsToTriggeringNode(t *testing.T) {
	in, d, ctx := newTestContext(t)
	n := NewSprite("n", "tex")
	if err := ctx.Scene.Attach(ctx.Scene.Root(), n); err != nil {
		t.Fatal(err)
	}
	d.Register(n, nil)
	ctx.Node = n

	in.Execute(Action{Type: "despawn"}, ctx)
	if ctx.Scene.FindByID("n") != nil {
		t.Error("despawn should remove the triggering node from the index")
	}
	if d.ActiveCount() != 0 {
		t.Error("despawn should unregister the removed node")
	}
}

func TestDespawnNamedTargetCascades(t *testing.T) {
	in, d, ctx := newTestContext(t)
	parent := NewGroup("parent")
	child := NewGroup("child")
	mustAdd(t, parent, child)
	if err := ctx.Scene.Attach(ctx.Scene.Root(), parent); err != nil {
		t.Fatal(err)
	}
	d.Register(parent, nil)
	d.Register(child, nil)

	in.Execute(Action{Type: "despawn", Target: "parent"}, ctx)
	if ctx.Scene.FindByID("parent") != nil || ctx.Scene.FindByID("child") != nil {
		t.Error("despawn should drop the whole subtree from the index")
	}
	if d.ActiveCount() != 0 {
		t.Errorf("ActiveCount = %d, want 0", d.ActiveCount())
	}
}

func TestDespawnMissingTargetSkipped(t *testing.T) {
	in, _, ctx := newTestContext(t)
	in.Execute(Action{Type: "despawn", Target: "ghost"}, ctx) // logged, not fatal
}

// --- tween ---

func TestTweenLinearMidpointAndRetire(t *testing.T) {
	in, _, ctx := newTestContext(t)
	n := NewSprite("n", "tex")
	if err := ctx.Scene.Attach(ctx.Scene.Root(), n); err != nil {
		t.Fatal(err)
	}
	ctx.Node = n
	n.X = 0

	in.Execute(Action{Type: "tween", Property: "x", To: 100, Duration: 1000, Easing: "linear"}, ctx)
	if in.ActiveTweens() != 1 {
		t.Fatalf("ActiveTweens = %d, want 1", in.ActiveTweens())
	}

	in.Update(500)
	if n.X != 50 {
		t.Errorf("X at 500ms = %v, want 50", n.X)
	}
	in.Update(500)
	if n.X != 100 {
		t.Errorf("X at 1000ms = %v, want exactly 100", n.X)
	}
	if in.ActiveTweens() != 0 {
		t.Error("finished tween should be retired")
	}
}

func TestTweenEaseInSlowStart(t *testing.T) {
	in, _, ctx := newTestContext(t)
	n := NewSprite("n", "tex")
	if err := ctx.Scene.Attach(ctx.Scene.Root(), n); err != nil {
		t.Fatal(err)
	}
	ctx.Node = n

	in.Execute(Action{Type: "tween", Property: "y", To: 100, Duration: 1000, Easing: "easeIn"}, ctx)
	in.Update(500)
	// easeIn is t^2: halfway through time, only a quarter of the distance.
	if math.Abs(n.Y-25) > 0.01 {
		t.Errorf("Y at 500ms = %v, want ~25", n.Y)
	}
}

func TestTweenNamedTarget(t *testing.T) {
	in, _, ctx := newTestContext(t)
	n := NewSprite("other", "tex")
	if err := ctx.Scene.Attach(ctx.Scene.Root(), n); err != nil {
		t.Fatal(err)
	}
	in.Execute(Action{Type: "tween", Target: "other", Property: "alpha", To: 0, Duration: 100}, ctx)
	in.Update(100)
	if n.Alpha != 0 {
		t.Errorf("Alpha = %v, want 0", n.Alpha)
	}
}

func TestTweenZeroDurationAppliesImmediately(t *testing.T) {
	in, _, ctx := newTestContext(t)
	n := NewSprite("n", "tex")
	if err := ctx.Scene.Attach(ctx.Scene.Root(), n); err != nil {
		t.Fatal(err)
	}
	ctx.Node = n
	in.Execute(Action{Type: "tween", Property: "x", To: 42}, ctx)
	if n.X != 42 {
		t.Errorf("X = %v, want 42", n.X)
	}
	if in.ActiveTweens() != 0 {
		t.Error("zero-duration tween should not be tracked")
	}
}

func TestTweenBadTargetOrPropertySkipped(t *testing.T) {
	in, _, ctx := newTestContext(t)
	in.Execute(Action{Type: "tween", Target: "ghost", Property: "x", To: 1, Duration: 100}, ctx)
	n := NewSprite("n", "tex")
	if err := ctx.Scene.Attach(ctx.Scene.Root(), n); err != nil {
		t.Fatal(err)
	}
	ctx.Node = n
	in.Execute(Action{Type: "tween", Property: "visible", To: 1, Duration: 100}, ctx)
	if in.ActiveTweens() != 0 {
		t.Error("invalid tweens should be skipped")
	}
}

func TestUnknownEasingFallsBackToLinear(t *testing.T) {
	in, _, ctx := newTestContext(t)
	n := NewSprite("n", "tex")
	if err := ctx.Scene.Attach(ctx.Scene.Root(), n); err != nil {
		t.Fatal(err)
	}
	ctx.Node = n
	in.Execute(Action{Type: "tween", Property: "x", To: 100, Duration: 1000, Easing: "bounce"}, ctx)
	in.Update(500)
	if n.X != 50 {
		t.Errorf("X = %v, want 50 (linear fallback)", n.X)
	}
}

// --- timers (delegation) ---

func TestStartStopTimerDelegates(t *testing.T) {
	in, d, ctx := newTestContext(t)
	in.Execute(Action{Type: "startTimer", ID: "t1", Duration: 1000}, ctx)
	if !d.HasTimer("t1") {
		t.Fatal("startTimer should insert into the dispatcher table")
	}
	in.Execute(Action{Type: "stopTimer", ID: "t1"}, ctx)
	if d.HasTimer("t1") {
		t.Error("stopTimer should remove the entry")
	}
}

// --- audio ---

type recordingAudio struct {
	sfx, music, stops int
	fail              bool
}

func (a *recordingAudio) PlaySfx(string, float64) error {
	a.sfx++
	if a.fail {
		return errTestAudio
	}
	return nil
}

func (a *recordingAudio) PlayMusic(string, bool, float64) error {
	a.music++
	return nil
}

func (a *recordingAudio) StopMusic() error {
	a.stops++
	return nil
}

var errTestAudio = errors.New("audio backend unavailable")

func TestAudioActionsForwarded(t *testing.T) {
	in, _, ctx := newTestContext(t)
	rec := &recordingAudio{}
	ctx.Audio = rec
	in.Execute(Action{Type: "playSfx", ID: "blip", Volume: 0.5}, ctx)
	in.Execute(Action{Type: "playMusic", ID: "theme", Loop: true, Volume: 1}, ctx)
	in.Execute(Action{Type: "stopMusic"}, ctx)
	if rec.sfx != 1 || rec.music != 1 || rec.stops != 1 {
		t.Errorf("calls = (%d, %d, %d), want (1, 1, 1)", rec.sfx, rec.music, rec.stops)
	}
}

func TestAudioFailureDoesNotAbortChain(t *testing.T) {
	in, _, ctx := newTestContext(t)
	ctx.Audio = &recordingAudio{fail: true}
	in.ExecuteList([]Action{
		{Type: "playSfx", ID: "blip"},
		{Type: "setVar", Var: "after", Value: true},
	}, ctx)
	if ctx.Vars["after"] != true {
		t.Error("sibling actions must run after a collaborator failure")
	}
}

// --- unknown and extension actions ---

func TestUnknownActionSkipped(t *testing.T) {
	in, _, ctx := newTestContext(t)
	in.ExecuteList([]Action{
		{Type: "teleport"},
		{Type: "setVar", Var: "after", Value: true},
	}, ctx)
	if ctx.Vars["after"] != true {
		t.Error("unknown action must not stop the chain")
	}
}

func TestExtensionActionDispatch(t *testing.T) {
	reg := NewRegistry(weatherModule{})
	in := NewInterpreter(reg)
	ctx := &Context{Scene: NewScene("test"), Vars: make(map[string]any)}
	in.Execute(Action{Type: "setWeather", Value: "rain"}, ctx)
	if ctx.Vars["weather"] != "rain" {
		t.Errorf("weather = %v, want rain", ctx.Vars["weather"])
	}
}
