package reel

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Action is one typed, parameterized operation executed against a Context.
// A single flat struct carries the parameters of every core action type
// (unused fields stay at their zero value in the JSON document); extension
// actions receive the whole record and typically read Params.
type Action struct {
	Type string      `json:"type"`
	When []Condition `json:"when,omitempty"` // preconditions; all must hold

	// setVar / incVar / randomInt
	Var   string `json:"var,omitempty"`
	Value any    `json:"value,omitempty"`
	Min   int    `json:"min,omitempty"`
	Max   int    `json:"max,omitempty"`

	// gotoScene
	Scene string `json:"scene,omitempty"`

	// spawn / despawn / tween
	Node   *NodeDoc `json:"node,omitempty"`   // spawn payload
	Parent string   `json:"parent,omitempty"` // spawn parent id; "" = scene root
	Target string   `json:"target,omitempty"` // despawn/tween target id; "" = triggering node

	// tween
	Property string  `json:"property,omitempty"`
	To       float64 `json:"to,omitempty"`
	Duration float64 `json:"duration,omitempty"` // milliseconds
	Easing   string  `json:"easing,omitempty"`

	// if
	Cond *Condition `json:"cond,omitempty"`
	Then []Action   `json:"then,omitempty"`
	Else []Action   `json:"else,omitempty"`

	// startTimer / stopTimer / playSfx / playMusic
	ID      string   `json:"id,omitempty"`
	Actions []Action `json:"actions,omitempty"` // run once when the timer expires
	Volume  float64  `json:"volume,omitempty"`
	Loop    bool     `json:"loop,omitempty"`

	// extension actions
	Params map[string]any `json:"params,omitempty"`
}

// Condition compares a variable against a literal.
type Condition struct {
	Var   string `json:"var"`
	Op    string `json:"op"` // eq, gt, lt, exists
	Value any    `json:"value,omitempty"`
}

// evalCondition evaluates one condition against the variable store.
// Unknown operators evaluate to false.
func evalCondition(c Condition, vars map[string]any) bool {
	cur, exists := vars[c.Var]
	switch c.Op {
	case "exists":
		return exists
	case "eq":
		if !exists {
			return false
		}
		if a, ok := toNumber(cur); ok {
			b, ok := toNumber(c.Value)
			return ok && a == b
		}
		return cur == c.Value
	case "gt":
		a, aok := toNumber(cur)
		b, bok := toNumber(c.Value)
		return aok && bok && a > b
	case "lt":
		a, aok := toNumber(cur)
		b, bok := toNumber(c.Value)
		return aok && bok && a < b
	}
	logger.Warn("unknown condition operator", "op", c.Op, "var", c.Var)
	return false
}

// easingFunc maps an easing name onto its gween function.
// Unknown names fall back to linear.
func easingFunc(name string) ease.TweenFunc {
	switch name {
	case "", "linear":
		return ease.Linear
	case "easeIn":
		return ease.InQuad
	case "easeOut":
		return ease.OutQuad
	case "easeInOut":
		return ease.InOutQuad
	}
	logger.Warn("unknown easing, using linear", "easing", name)
	return ease.Linear
}

// tweenState is one in-flight tween: a gween continuation plus the resolved
// field pointer it writes back through. Plain data polled once per tick;
// no captured closures.
type tweenState struct {
	tw    *gween.Tween
	field *float64
}

// Interpreter executes actions and owns in-progress tweens.
type Interpreter struct {
	registry   *Registry
	dispatcher *Dispatcher // timer table; bound by the runtime
	tweens     []*tweenState
}

// NewInterpreter creates an interpreter consulting reg for extension actions.
func NewInterpreter(reg *Registry) *Interpreter {
	return &Interpreter{registry: reg}
}

// BindTimers wires the dispatcher whose timer table the startTimer and
// stopTimer actions delegate to.
func (in *Interpreter) BindTimers(d *Dispatcher) {
	in.dispatcher = d
}

// ExecuteList runs every action in order. Actions skipped by their
// preconditions or by action-local errors do not stop the rest of the list.
func (in *Interpreter) ExecuteList(actions []Action, ctx *Context) {
	for _, a := range actions {
		in.Execute(a, ctx)
	}
}

// Execute runs a single action. Preconditions are evaluated first; if any
// fails the action is skipped with no side effects. Invalid parameters and
// missing targets are logged and skipped, never fatal.
func (in *Interpreter) Execute(a Action, ctx *Context) {
	for _, c := range a.When {
		if !evalCondition(c, ctx.Vars) {
			return
		}
	}

	switch a.Type {
	case "setVar":
		if a.Var == "" {
			logger.Warn("setVar: missing var name")
			return
		}
		ctx.Vars[a.Var] = a.Value

	case "incVar":
		if a.Var == "" {
			logger.Warn("incVar: missing var name")
			return
		}
		cur, _ := toNumber(ctx.Vars[a.Var]) // missing or non-numeric counts as 0
		amount := 1.0
		if v, ok := toNumber(a.Value); ok {
			amount = v
		}
		ctx.Vars[a.Var] = cur + amount

	case "randomInt":
		if a.Var == "" || ctx.Clock == nil {
			logger.Warn("randomInt: missing var name or clock")
			return
		}
		ctx.Vars[a.Var] = float64(ctx.Clock.RandomInt(a.Min, a.Max))

	case "if":
		if a.Cond == nil {
			logger.Warn("if: missing condition")
			return
		}
		// One branch runs synchronously within the same tick.
		if evalCondition(*a.Cond, ctx.Vars) {
			in.ExecuteList(a.Then, ctx)
		} else {
			in.ExecuteList(a.Else, ctx)
		}

	case "gotoScene":
		if ctx.GotoScene == nil {
			logger.Warn("gotoScene: no scene switcher bound", "scene", a.Scene)
			return
		}
		ctx.GotoScene(a.Scene)

	case "spawn":
		in.execSpawn(a, ctx)

	case "despawn":
		target := ctx.Node
		if a.Target != "" {
			target = ctx.Scene.FindByID(a.Target)
		}
		if target == nil {
			logger.Warn("despawn: target not found", "target", a.Target)
			return
		}
		ctx.Scene.Detach(target)
		if in.dispatcher != nil {
			target.Walk(func(n *Node) bool {
				in.dispatcher.Unregister(n)
				return true
			})
		}

	case "tween":
		in.execTween(a, ctx)

	case "startTimer":
		if in.dispatcher == nil {
			logger.Warn("startTimer: no dispatcher bound", "id", a.ID)
			return
		}
		owner := ""
		if ctx.Node != nil {
			owner = ctx.Node.ID
		}
		in.dispatcher.StartTimerActions(a.ID, a.Duration, a.Actions, owner)

	case "stopTimer":
		if in.dispatcher == nil {
			return
		}
		in.dispatcher.StopTimer(a.ID)

	case "playSfx":
		if ctx.Audio == nil {
			return
		}
		if err := ctx.Audio.PlaySfx(a.ID, a.Volume); err != nil {
			logger.Warn("playSfx failed", "id", a.ID, "err", err)
		}

	case "playMusic":
		if ctx.Audio == nil {
			return
		}
		if err := ctx.Audio.PlayMusic(a.ID, a.Loop, a.Volume); err != nil {
			logger.Warn("playMusic failed", "id", a.ID, "err", err)
		}

	case "stopMusic":
		if ctx.Audio == nil {
			return
		}
		if err := ctx.Audio.StopMusic(); err != nil {
			logger.Warn("stopMusic failed", "err", err)
		}

	default:
		if h, ok := in.registry.ActionHandler(a.Type); ok {
			if err := h(a, ctx); err != nil {
				logger.Warn("action failed", "type", a.Type, "err", err)
			}
			return
		}
		logger.Warn("unknown action type", "type", a.Type)
	}
}

func (in *Interpreter) execSpawn(a Action, ctx *Context) {
	if a.Node == nil || ctx.Scene == nil {
		logger.Warn("spawn: missing node payload or scene")
		return
	}
	node, err := buildNode(*a.Node)
	if err != nil {
		logger.Warn("spawn: bad node payload", "err", err)
		return
	}
	if err := in.registry.ValidateTree(node); err != nil {
		logger.Warn("spawn: rejected by registry", "err", err)
		return
	}
	parent := ctx.Scene.Root()
	if a.Parent != "" {
		parent = ctx.Scene.FindByID(a.Parent)
		if parent == nil {
			logger.Warn("spawn: parent not found", "parent", a.Parent)
			return
		}
	}
	if err := ctx.Scene.Attach(parent, node); err != nil {
		logger.Warn("spawn: attach failed", "id", node.ID, "err", err)
		return
	}
	if in.dispatcher != nil {
		node.Walk(func(n *Node) bool {
			in.dispatcher.Register(n, ctx)
			return true
		})
	}
}

func (in *Interpreter) execTween(a Action, ctx *Context) {
	target := ctx.Node
	if a.Target != "" {
		target = ctx.Scene.FindByID(a.Target)
	}
	if target == nil {
		logger.Warn("tween: target not found", "target", a.Target)
		return
	}
	field := numericField(target, a.Property)
	if field == nil {
		logger.Warn("tween: property is not numeric", "property", a.Property)
		return
	}
	if a.Duration <= 0 {
		*field = a.To
		return
	}
	in.tweens = append(in.tweens, &tweenState{
		tw:    gween.New(float32(*field), float32(a.To), float32(a.Duration), easingFunc(a.Easing)),
		field: field,
	})
}

// Update advances every live tween by dt milliseconds, writing the eased
// value back through its field pointer. Tweens that reach their end value
// are retired after this final write. Called once per tick.
func (in *Interpreter) Update(dt float64) {
	if len(in.tweens) == 0 {
		return
	}
	live := 0
	for _, t := range in.tweens {
		v, done := t.tw.Update(float32(dt))
		*t.field = float64(v)
		if !done {
			in.tweens[live] = t
			live++
		}
	}
	for i := live; i < len(in.tweens); i++ {
		in.tweens[i] = nil
	}
	in.tweens = in.tweens[:live]
}

// ActiveTweens returns the number of in-flight tweens.
func (in *Interpreter) ActiveTweens() int {
	return len(in.tweens)
}
