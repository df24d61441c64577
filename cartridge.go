package reel

import (
	"encoding/json"
	"fmt"
)

// NodeDoc is the JSON form of one node, used both in cartridge scene trees
// and as the payload of spawn actions. Scale, alpha and visibility use
// pointers so an absent field keeps its default (1, 1, true).
type NodeDoc struct {
	ID       string   `json:"id"`
	Type     string   `json:"type,omitempty"` // defaults to "Group"
	X        float64  `json:"x,omitempty"`
	Y        float64  `json:"y,omitempty"`
	ScaleX   *float64 `json:"scaleX,omitempty"`
	ScaleY   *float64 `json:"scaleY,omitempty"`
	Rotation float64  `json:"rotation,omitempty"`
	SkewX    float64  `json:"skewX,omitempty"`
	SkewY    float64  `json:"skewY,omitempty"`
	Alpha    *float64 `json:"alpha,omitempty"`
	Visible  *bool    `json:"visible,omitempty"`

	Sprite string  `json:"sprite,omitempty"`
	Text   string  `json:"text,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	Children []NodeDoc `json:"children,omitempty"`
	Actions  []Action  `json:"actions,omitempty"`
	Triggers []Trigger `json:"triggers,omitempty"`
}

type sceneDoc struct {
	ID   string  `json:"id"`
	Root NodeDoc `json:"root"`
}

type cartridgeDoc struct {
	Version   int             `json:"version"`
	Title     string          `json:"title"`
	Scenes    []sceneDoc      `json:"scenes"`
	Variables map[string]any  `json:"variables"`
	Theme     json.RawMessage `json:"theme"`
	Assets    json.RawMessage `json:"assets"`
}

// Cartridge is a loaded, validated declarative game document. Theme and
// assets are carried as raw JSON for the rendering and asset collaborators;
// the core never interprets them.
type Cartridge struct {
	Version   int
	Title     string
	Scenes    []*Scene
	Variables map[string]any
	Theme     json.RawMessage
	Assets    json.RawMessage
}

// LoadCartridge decodes a cartridge document, builds its scene trees, and
// runs the registry validation pass over every tree. Any unsupported node
// type or trigger event anywhere aborts the load; nothing here is
// recoverable at runtime.
func LoadCartridge(data []byte, reg *Registry) (*Cartridge, error) {
	var doc cartridgeDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("reel: parse cartridge: %w", err)
	}
	if doc.Version == 0 {
		return nil, fmt.Errorf("reel: parse cartridge: missing version")
	}
	if len(doc.Scenes) == 0 {
		return nil, fmt.Errorf("reel: parse cartridge: no scenes")
	}
	if reg == nil {
		reg = NewRegistry()
	}

	cart := &Cartridge{
		Version:   doc.Version,
		Title:     doc.Title,
		Variables: doc.Variables,
		Theme:     doc.Theme,
		Assets:    doc.Assets,
	}
	if cart.Variables == nil {
		cart.Variables = make(map[string]any)
	}

	for _, sd := range doc.Scenes {
		if sd.ID == "" {
			return nil, fmt.Errorf("reel: parse cartridge: scene with empty id")
		}
		root, err := buildNode(sd.Root)
		if err != nil {
			return nil, fmt.Errorf("reel: scene %q: %w", sd.ID, err)
		}
		if err := reg.ValidateTree(root); err != nil {
			return nil, err
		}
		scene, err := NewSceneWithRoot(sd.ID, root)
		if err != nil {
			return nil, err
		}
		cart.Scenes = append(cart.Scenes, scene)
	}
	return cart, nil
}

// buildNode converts a NodeDoc subtree into a live node tree.
func buildNode(doc NodeDoc) (*Node, error) {
	if doc.ID == "" {
		return nil, fmt.Errorf("node with empty id")
	}
	typeName := doc.Type
	if typeName == "" {
		typeName = "Group"
	}
	n := NewNode(doc.ID, typeName)
	n.X = doc.X
	n.Y = doc.Y
	if doc.ScaleX != nil {
		n.ScaleX = *doc.ScaleX
	}
	if doc.ScaleY != nil {
		n.ScaleY = *doc.ScaleY
	}
	n.Rotation = doc.Rotation
	n.SkewX = doc.SkewX
	n.SkewY = doc.SkewY
	if doc.Alpha != nil {
		n.Alpha = *doc.Alpha
	}
	if doc.Visible != nil {
		n.Visible = *doc.Visible
	}
	n.Sprite = doc.Sprite
	n.Text = doc.Text
	n.Width = doc.Width
	n.Height = doc.Height
	n.Actions = doc.Actions
	n.Triggers = doc.Triggers

	for _, cd := range doc.Children {
		child, err := buildNode(cd)
		if err != nil {
			return nil, err
		}
		if err := n.AddChild(child); err != nil {
			return nil, err
		}
	}
	return n, nil
}
