package engine

import (
	"fmt"

	"github.com/chazu/facecut/pkg/scene"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

type builtinFunc = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// registerBuiltins installs the scene forms into a zygomys environment.
// The forms add nodes to b as they run; b.Build is left to the caller.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *scene.Builder) {
	r := &registry{b: b}
	for name, fn := range map[string]builtinFunc{
		"vec3":        r.vec3,
		"face":        r.face,
		"edge":        r.edge,
		"text":        r.text,
		"group":       r.group,
		"box":         r.box,
		"define":      r.define,
		"instance":    r.instance,
		"select":      r.selectNodes,
		"select_path": r.selectPath,
		"hide":        r.hide,
		"units":       r.units,
		"translate":   r.translate,
		"rotate":      r.rotate,
		"scale":       r.scale,
		"compose":     r.compose,
	} {
		env.AddFunction(name, fn)
	}
}

type registry struct {
	b *scene.Builder
}

func nodeRef(id scene.NodeID, kind scene.NodeKind) zygo.Sexp {
	return &sexpNodeRef{id: id, kind: kind}
}

// common applies the :name and :hidden keywords shared by node forms.
func (r *registry) common(form string, id scene.NodeID, pa kwArgs) error {
	if v, ok := pa.kw["name"]; ok {
		s, err := toString(v)
		if err != nil {
			return fmt.Errorf("%s: name: %w", form, err)
		}
		if err := r.b.Name(id, s); err != nil {
			return fmt.Errorf("%s: %w", form, err)
		}
	}
	if v, ok := pa.kw["hidden"]; ok {
		h, err := toBool(v)
		if err != nil {
			return fmt.Errorf("%s: hidden: %w", form, err)
		}
		if h {
			if err := r.b.Hide(id); err != nil {
				return fmt.Errorf("%s: %w", form, err)
			}
		}
	}
	return nil
}

// transformArg reads the :transform keyword, defaulting to identity.
func transformArg(form string, pa kwArgs) (sdf.M44, error) {
	v, ok := pa.kw["transform"]
	if !ok {
		return sdf.Identity3d(), nil
	}
	m, err := toMatrix(v)
	if err != nil {
		return sdf.M44{}, fmt.Errorf("%s: transform: %w", form, err)
	}
	return m, nil
}

// ---------------------------------------------------------------------------
// (vec3 1 2 3)
// ---------------------------------------------------------------------------

func (r *registry) vec3(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 3 {
		return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
	}
	var c [3]float64
	for i, axis := range []string{"x", "y", "z"} {
		f, err := toFloat64(args[i])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
		}
		c[i] = f
	}
	return &sexpVec3{vec: v3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
}

// ---------------------------------------------------------------------------
// (face v1 v2 v3 ... :holes (list (list v ...)) :name "lid" :hidden true)
// (face (list v1 v2 v3 ...) (list h1 h2 h3 ...))
// ---------------------------------------------------------------------------

func (r *registry) face(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if err := pa.unknownKeyword("holes", "name", "hidden"); err != nil {
		return zygo.SexpNull, fmt.Errorf("face: %w", err)
	}
	if len(pa.positional) == 0 {
		return zygo.SexpNull, fmt.Errorf("face requires vertices")
	}

	var loops [][]v3.Vec
	if isList(pa.positional[0]) {
		for i, p := range pa.positional {
			loop, err := toLoop(p)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("face: loop %d: %w", i, err)
			}
			loops = append(loops, loop)
		}
	} else {
		outer := make([]v3.Vec, len(pa.positional))
		for i, p := range pa.positional {
			v, err := toVec3(p)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("face: vertex %d: %w", i, err)
			}
			outer[i] = v
		}
		loops = append(loops, outer)
	}

	if v, ok := pa.kw["holes"]; ok {
		items, err := sexpListToSlice(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("face: holes: %w", err)
		}
		for i, item := range items {
			loop, err := toLoop(item)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("face: hole %d: %w", i, err)
			}
			loops = append(loops, loop)
		}
	}

	id := r.b.Face(loops[0], loops[1:]...)
	if err := r.common("face", id, pa); err != nil {
		return zygo.SexpNull, err
	}
	return nodeRef(id, scene.NodeFace), nil
}

// ---------------------------------------------------------------------------
// (edge (vec3 0 0 0) (vec3 10 0 0) :hidden true)
// ---------------------------------------------------------------------------

func (r *registry) edge(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if err := pa.unknownKeyword("name", "hidden"); err != nil {
		return zygo.SexpNull, fmt.Errorf("edge: %w", err)
	}
	if len(pa.positional) != 2 {
		return zygo.SexpNull, fmt.Errorf("edge requires 2 endpoints, got %d", len(pa.positional))
	}
	a, err := toVec3(pa.positional[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("edge: start: %w", err)
	}
	c, err := toVec3(pa.positional[1])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("edge: end: %w", err)
	}
	id := r.b.Edge(a, c)
	if err := r.common("edge", id, pa); err != nil {
		return zygo.SexpNull, err
	}
	return nodeRef(id, scene.NodeEdge), nil
}

// ---------------------------------------------------------------------------
// (text "LID" (vec3 20 20 0) :vector (vec3 0 0 1))
// ---------------------------------------------------------------------------

func (r *registry) text(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if err := pa.unknownKeyword("vector", "name", "hidden"); err != nil {
		return zygo.SexpNull, fmt.Errorf("text: %w", err)
	}
	if len(pa.positional) != 2 {
		return zygo.SexpNull, fmt.Errorf("text requires a string and an anchor point")
	}
	s, err := toString(pa.positional[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("text: %w", err)
	}
	at, err := toVec3(pa.positional[1])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("text: anchor: %w", err)
	}
	dir := v3.Vec{Z: 1}
	if v, ok := pa.kw["vector"]; ok {
		if dir, err = toVec3(v); err != nil {
			return zygo.SexpNull, fmt.Errorf("text: vector: %w", err)
		}
	}
	id := r.b.Text(s, at, dir)
	if err := r.common("text", id, pa); err != nil {
		return zygo.SexpNull, err
	}
	return nodeRef(id, scene.NodeText), nil
}

// ---------------------------------------------------------------------------
// (group "lid" child ... :transform (translate 0 0 10) :hidden false)
// ---------------------------------------------------------------------------

func (r *registry) group(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if err := pa.unknownKeyword("transform", "name", "hidden"); err != nil {
		return zygo.SexpNull, fmt.Errorf("group: %w", err)
	}
	children := pa.positional
	groupName := ""
	if len(children) > 0 {
		if s, ok := children[0].(*zygo.SexpStr); ok {
			groupName = s.S
			children = children[1:]
		}
	}
	refs, err := flattenRefs(children)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("group: %w", err)
	}
	m, err := transformArg("group", pa)
	if err != nil {
		return zygo.SexpNull, err
	}
	id, err := r.b.Group(groupName, m, nodeIDs(refs)...)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("group: %w", err)
	}
	if err := r.common("group", id, pa); err != nil {
		return zygo.SexpNull, err
	}
	return nodeRef(id, scene.NodeGroup), nil
}

// ---------------------------------------------------------------------------
// (box "crate" 100 60 40 :transform (translate 0 0 5))
// A group of six outward-facing rectangles spanning [0,w]x[0,d]x[0,h].
// ---------------------------------------------------------------------------

func (r *registry) box(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if err := pa.unknownKeyword("transform", "name", "hidden"); err != nil {
		return zygo.SexpNull, fmt.Errorf("box: %w", err)
	}
	dims := pa.positional
	boxName := ""
	if len(dims) > 0 {
		if s, ok := dims[0].(*zygo.SexpStr); ok {
			boxName = s.S
			dims = dims[1:]
		}
	}
	if len(dims) != 3 {
		return zygo.SexpNull, fmt.Errorf("box requires width, depth and height")
	}
	var size [3]float64
	for i, label := range []string{"width", "depth", "height"} {
		f, err := toFloat64(dims[i])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %s: %w", label, err)
		}
		if f <= 0 {
			return zygo.SexpNull, fmt.Errorf("box: %s must be positive, got %g", label, f)
		}
		size[i] = f
	}
	m, err := transformArg("box", pa)
	if err != nil {
		return zygo.SexpNull, err
	}

	var faces []scene.NodeID
	for _, bf := range boxFaces(size[0], size[1], size[2]) {
		id := r.b.Face(bf.loop)
		if err := r.b.Name(id, bf.name); err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		faces = append(faces, id)
	}
	id, err := r.b.Group(boxName, m, faces...)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("box: %w", err)
	}
	if err := r.common("box", id, pa); err != nil {
		return zygo.SexpNull, err
	}
	return nodeRef(id, scene.NodeGroup), nil
}

type boxFace struct {
	name string
	loop []v3.Vec
}

// boxFaces returns the sides of an axis-aligned box, each wound
// counter-clockwise seen from outside.
func boxFaces(w, d, h float64) []boxFace {
	p := func(x, y, z float64) v3.Vec { return v3.Vec{X: x, Y: y, Z: z} }
	return []boxFace{
		{"bottom", []v3.Vec{p(0, 0, 0), p(0, d, 0), p(w, d, 0), p(w, 0, 0)}},
		{"top", []v3.Vec{p(0, 0, h), p(w, 0, h), p(w, d, h), p(0, d, h)}},
		{"front", []v3.Vec{p(0, 0, 0), p(w, 0, 0), p(w, 0, h), p(0, 0, h)}},
		{"back", []v3.Vec{p(0, d, 0), p(0, d, h), p(w, d, h), p(w, d, 0)}},
		{"left", []v3.Vec{p(0, 0, 0), p(0, 0, h), p(0, d, h), p(0, d, 0)}},
		{"right", []v3.Vec{p(w, 0, 0), p(w, d, 0), p(w, d, h), p(w, 0, h)}},
	}
}

// ---------------------------------------------------------------------------
// (define "leg" child ...)
// (instance leg :transform (translate 100 0 0) :name "front-left")
// ---------------------------------------------------------------------------

func (r *registry) define(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) < 1 {
		return zygo.SexpNull, fmt.Errorf("define requires a name")
	}
	defName, err := toString(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("define: name: %w", err)
	}
	refs, err := flattenRefs(args[1:])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("define: %w", err)
	}
	id, err := r.b.Define(defName, nodeIDs(refs)...)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("define: %w", err)
	}
	return &sexpDefRef{id: id, name: defName}, nil
}

func (r *registry) instance(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if err := pa.unknownKeyword("transform", "name", "hidden"); err != nil {
		return zygo.SexpNull, fmt.Errorf("instance: %w", err)
	}
	if len(pa.positional) != 1 {
		return zygo.SexpNull, fmt.Errorf("instance requires one definition")
	}
	def, err := toDefRef(pa.positional[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("instance: %w", err)
	}
	m, err := transformArg("instance", pa)
	if err != nil {
		return zygo.SexpNull, err
	}
	id, err := r.b.Instance(def.id, m)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("instance: %w", err)
	}
	if err := r.common("instance", id, pa); err != nil {
		return zygo.SexpNull, err
	}
	return nodeRef(id, scene.NodeInstance), nil
}

// ---------------------------------------------------------------------------
// (select lid base)
// (select-path left-leg plank)
// (hide e1 e2)
// (units :in)
// ---------------------------------------------------------------------------

func (r *registry) selectNodes(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	refs, err := flattenRefs(args)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("select: %w", err)
	}
	if err := r.b.Select(nodeIDs(refs)...); err != nil {
		return zygo.SexpNull, fmt.Errorf("select: %w", err)
	}
	return zygo.SexpNull, nil
}

// selectPath selects one occurrence: the containers to pass through,
// outermost first, then the node itself.
func (r *registry) selectPath(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	refs, err := flattenRefs(args)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("select-path: %w", err)
	}
	if len(refs) == 0 {
		return zygo.SexpNull, fmt.Errorf("select-path requires at least one node")
	}
	ids := nodeIDs(refs)
	r.b.SelectRef(scene.Ref{ID: ids[len(ids)-1], Path: ids[:len(ids)-1]})
	return zygo.SexpNull, nil
}

func (r *registry) hide(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	refs, err := flattenRefs(args)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("hide: %w", err)
	}
	if err := r.b.Hide(nodeIDs(refs)...); err != nil {
		return zygo.SexpNull, fmt.Errorf("hide: %w", err)
	}
	return zygo.SexpNull, nil
}

func (r *registry) units(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return zygo.SexpNull, fmt.Errorf("units requires one of :mm or :in")
	}
	u, err := toUnit(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("units: %w", err)
	}
	if err := r.b.SetUnit(u); err != nil {
		return zygo.SexpNull, fmt.Errorf("units: %w", err)
	}
	return zygo.SexpNull, nil
}

// ---------------------------------------------------------------------------
// Transforms
//
// (translate 10 0 0) or (translate (vec3 10 0 0))
// (rotate :z 90)      degrees
// (scale 2) or (scale 1 2 1)
// (compose a b c)     applies c first, then b, then a
// ---------------------------------------------------------------------------

func vecArgs(form string, args []zygo.Sexp) (v3.Vec, error) {
	switch len(args) {
	case 1:
		if v, err := toVec3(args[0]); err == nil {
			return v, nil
		}
		f, err := toFloat64(args[0])
		if err != nil {
			return v3.Vec{}, fmt.Errorf("%s: expected vec3 or number: %w", form, err)
		}
		return v3.Vec{X: f, Y: f, Z: f}, nil
	case 3:
		var c [3]float64
		for i := range c {
			f, err := toFloat64(args[i])
			if err != nil {
				return v3.Vec{}, fmt.Errorf("%s: component %d: %w", form, i, err)
			}
			c[i] = f
		}
		return v3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
	}
	return v3.Vec{}, fmt.Errorf("%s requires a vec3 or 3 numbers, got %d arguments", form, len(args))
}

func (r *registry) translate(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) == 1 {
		if _, err := toVec3(args[0]); err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
	}
	v, err := vecArgs("translate", args)
	if err != nil {
		return zygo.SexpNull, err
	}
	return &sexpMatrix{m: sdf.Translate3d(v)}, nil
}

func (r *registry) rotate(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 2 {
		return zygo.SexpNull, fmt.Errorf("rotate requires an axis and an angle in degrees")
	}
	deg, err := toFloat64(args[1])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("rotate: angle: %w", err)
	}
	m, err := toRotation(args[0], deg)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
	}
	return &sexpMatrix{m: m}, nil
}

func (r *registry) scale(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	v, err := vecArgs("scale", args)
	if err != nil {
		return zygo.SexpNull, err
	}
	if v.X == 0 || v.Y == 0 || v.Z == 0 {
		return zygo.SexpNull, fmt.Errorf("scale: factors must be non-zero")
	}
	return &sexpMatrix{m: sdf.Scale3d(v)}, nil
}

func (r *registry) compose(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	m := sdf.Identity3d()
	for i, a := range args {
		t, err := toMatrix(a)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("compose: argument %d: %w", i, err)
		}
		m = m.Mul(t)
	}
	return &sexpMatrix{m: m}, nil
}
