package reel

// Transform2D is a composed ("world") transform. Composition down the
// ancestor chain is per component: translation is scaled by the parent's
// accumulated scale, scale and alpha accumulate multiplicatively, rotation
// and skew accumulate additively.
type Transform2D struct {
	X, Y           float64
	ScaleX, ScaleY float64
	Rotation       float64
	SkewX, SkewY   float64
	Alpha          float64
}

// IdentityTransform returns the neutral transform.
func IdentityTransform() Transform2D {
	return Transform2D{ScaleX: 1, ScaleY: 1, Alpha: 1}
}

// compose applies n's local transform under parent world transform p.
func compose(p Transform2D, n *Node) Transform2D {
	return Transform2D{
		X:        p.X + n.X*p.ScaleX,
		Y:        p.Y + n.Y*p.ScaleY,
		ScaleX:   p.ScaleX * n.ScaleX,
		ScaleY:   p.ScaleY * n.ScaleY,
		Rotation: p.Rotation + n.Rotation,
		SkewX:    p.SkewX + n.SkewX,
		SkewY:    p.SkewY + n.SkewY,
		Alpha:    p.Alpha * n.Alpha,
	}
}

// WorldTransform composes transforms from the root down to n. O(depth).
func WorldTransform(n *Node) Transform2D {
	if n == nil {
		return IdentityTransform()
	}
	if n.Parent == nil {
		return compose(IdentityTransform(), n)
	}
	return compose(WorldTransform(n.Parent), n)
}

// WorldVisible reports whether n is effectively visible: the logical AND of
// the visibility flags along the ancestor chain, n included.
func WorldVisible(n *Node) bool {
	for p := n; p != nil; p = p.Parent {
		if !p.Visible {
			return false
		}
	}
	return true
}

// numericField resolves a tweenable property name to a pointer into the
// node. The same pointer is used to read the start value and to write
// interpolated values back, so reads and writes cannot diverge.
func numericField(n *Node, prop string) *float64 {
	switch prop {
	case "x":
		return &n.X
	case "y":
		return &n.Y
	case "scaleX":
		return &n.ScaleX
	case "scaleY":
		return &n.ScaleY
	case "rotation":
		return &n.Rotation
	case "skewX":
		return &n.SkewX
	case "skewY":
		return &n.SkewY
	case "alpha":
		return &n.Alpha
	case "width":
		return &n.Width
	case "height":
		return &n.Height
	}
	return nil
}
