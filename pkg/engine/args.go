package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/facecut/pkg/scene"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpNodeRef is returned by every form that creates a node.
type sexpNodeRef struct {
	id   scene.NodeID
	kind scene.NodeKind
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %s)", n.kind, n.id)
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

type sexpDefRef struct {
	id   scene.DefinitionID
	name string
}

func (d *sexpDefRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(definition %q)", d.name)
}
func (d *sexpDefRef) Type() *zygo.RegisteredType { return nil }

type sexpMatrix struct {
	m sdf.M44
}

func (m *sexpMatrix) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(transform %v)", m.m)
}
func (m *sexpMatrix) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments. A
// trailing keyword with no value maps to SexpNull.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// unknownKeyword reports the first keyword not in allowed.
func (a kwArgs) unknownKeyword(allowed ...string) error {
	for k := range a.kw {
		found := false
		for _, name := range allowed {
			if k == name {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown keyword :%s", k)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		// A bare trailing keyword acts as a flag.
		if v == zygo.SexpNull {
			return true, nil
		}
	}
	return false, fmt.Errorf("expected boolean, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// toRotation builds a rotation of deg degrees about the axis named by s.
func toRotation(s zygo.Sexp, deg float64) (sdf.M44, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return sdf.M44{}, fmt.Errorf("expected axis keyword (:x, :y, :z): %w", err)
	}
	a := sdf.DtoR(deg)
	switch name {
	case "x":
		return sdf.RotateX(a), nil
	case "y":
		return sdf.RotateY(a), nil
	case "z":
		return sdf.RotateZ(a), nil
	}
	return sdf.M44{}, fmt.Errorf("invalid axis %q, expected x, y, or z", name)
}

func toUnit(s zygo.Sexp) (scene.Unit, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return "", fmt.Errorf("expected unit keyword (:mm, :in): %w", err)
	}
	u := scene.Unit(name)
	if !u.Valid() {
		return "", fmt.Errorf("invalid unit %q, expected mm or in", name)
	}
	return u, nil
}

func toNodeRef(s zygo.Sexp) (*sexpNodeRef, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref, nil
	}
	return nil, fmt.Errorf("expected node reference, got %T (%s)", s, s.SexpString(nil))
}

func toDefRef(s zygo.Sexp) (*sexpDefRef, error) {
	if ref, ok := s.(*sexpDefRef); ok {
		return ref, nil
	}
	return nil, fmt.Errorf("expected definition, got %T (%s)", s, s.SexpString(nil))
}

func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

func toMatrix(s zygo.Sexp) (sdf.M44, error) {
	if m, ok := s.(*sexpMatrix); ok {
		return m.m, nil
	}
	return sdf.M44{}, fmt.Errorf("expected transform, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

func isList(s zygo.Sexp) bool {
	switch v := s.(type) {
	case *zygo.SexpPair, *zygo.SexpArray:
		return true
	case *zygo.SexpSentinel:
		return v == zygo.SexpNull
	}
	return false
}

// toLoop converts a list of vec3 values.
func toLoop(s zygo.Sexp) ([]v3.Vec, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	loop := make([]v3.Vec, len(items))
	for i, item := range items {
		if loop[i], err = toVec3(item); err != nil {
			return nil, fmt.Errorf("vertex %d: %w", i, err)
		}
	}
	return loop, nil
}

// flattenRefs collects node references from args, splicing lists and
// arrays so generated children can be passed as one value.
func flattenRefs(args []zygo.Sexp) ([]*sexpNodeRef, error) {
	var refs []*sexpNodeRef
	for i, a := range args {
		if isList(a) {
			items, err := sexpListToSlice(a)
			if err != nil {
				return nil, err
			}
			inner, err := flattenRefs(items)
			if err != nil {
				return nil, err
			}
			refs = append(refs, inner...)
			continue
		}
		ref, err := toNodeRef(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func nodeIDs(refs []*sexpNodeRef) []scene.NodeID {
	ids := make([]scene.NodeID, len(refs))
	for i, r := range refs {
		ids[i] = r.id
	}
	return ids
}
