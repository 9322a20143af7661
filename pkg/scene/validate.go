package scene

import (
	"fmt"
	"maps"
	"slices"
)

// ValidationSeverity indicates whether a finding blocks export or is
// merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks export
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // offending node, zero for scene-level findings
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID, e.Message)
}

// HasErrors reports whether any finding has error severity.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate runs every structural and geometric check on s. Findings are
// ordered by node ID within each check. Validate never mutates the scene.
func Validate(s *Scene) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateReferences(s)...)
	errs = append(errs, validateInstancing(s)...)
	errs = append(errs, validateFaces(s)...)
	errs = append(errs, validateEdges(s)...)
	errs = append(errs, validateSelection(s)...)
	return errs
}

func sortedNodes(s *Scene) []*Node {
	ids := slices.Sorted(maps.Keys(s.Nodes))
	out := make([]*Node, len(ids))
	for i, id := range ids {
		out[i] = s.Nodes[id]
	}
	return out
}

// validateReferences checks that every referenced node and definition exists.
func validateReferences(s *Scene) []ValidationError {
	var errs []ValidationError
	missing := func(owner NodeID, what string, id NodeID) {
		errs = append(errs, ValidationError{
			NodeID:   owner,
			Message:  fmt.Sprintf("%s reference %s does not exist", what, id),
			Severity: SeverityError,
		})
	}

	for _, id := range s.Roots {
		if s.Nodes[id] == nil {
			missing(ZeroID, "root", id)
		}
	}
	for _, did := range slices.Sorted(maps.Keys(s.Definitions)) {
		for _, c := range s.Definitions[did].Children {
			if s.Nodes[c] == nil {
				errs = append(errs, ValidationError{
					Message:  fmt.Sprintf("definition %q child reference %s does not exist", s.Definitions[did].Name, c),
					Severity: SeverityError,
				})
			}
		}
	}

	for _, n := range sortedNodes(s) {
		for _, c := range n.Children {
			if s.Nodes[c] == nil {
				missing(n.ID, "child", c)
			}
		}
		switch d := n.Data.(type) {
		case InstanceData:
			if s.Definitions[d.Definition] == nil {
				errs = append(errs, ValidationError{
					NodeID:   n.ID,
					Message:  fmt.Sprintf("definition %d does not exist", d.Definition),
					Severity: SeverityError,
				})
			}
		case FaceData:
			for _, l := range d.Loops {
				for _, e := range l.Edges {
					if s.Nodes[e] == nil {
						missing(n.ID, "edge", e)
					}
				}
			}
		case EdgeData:
			for _, f := range d.Faces {
				if s.Nodes[f] == nil {
					missing(n.ID, "face", f)
				}
			}
		}
	}
	return errs
}

// validateInstancing detects definitions that place themselves, directly or
// through nested groups and instances, using DFS with 3-color marking.
func validateInstancing(s *Scene) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[DefinitionID]int)
	var errs []ValidationError

	var visitDef func(id DefinitionID) bool
	var visitNodes func(ids []NodeID) bool

	visitNodes = func(ids []NodeID) bool {
		for _, id := range ids {
			n := s.Nodes[id]
			if n == nil {
				continue
			}
			switch d := n.Data.(type) {
			case InstanceData:
				if visitDef(d.Definition) {
					return true
				}
			case GroupData:
				if visitNodes(n.Children) {
					return true
				}
			}
		}
		return false
	}

	visitDef = func(id DefinitionID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			name := ""
			if d := s.Definitions[id]; d != nil {
				name = d.Name
			}
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("instancing cycle: definition %q places itself", name),
				Severity: SeverityError,
			})
			return true
		}
		color[id] = gray
		def := s.Definitions[id]
		if def != nil && visitNodes(def.Children) {
			return true
		}
		color[id] = black
		return false
	}

	for _, id := range slices.Sorted(maps.Keys(s.Definitions)) {
		if color[id] == white && visitDef(id) {
			break
		}
	}
	return errs
}

// validateFaces checks loop sizes, normals and planarity.
func validateFaces(s *Scene) []ValidationError {
	var errs []ValidationError
	for _, n := range sortedNodes(s) {
		f, ok := n.Data.(FaceData)
		if !ok {
			continue
		}
		if len(f.Loops) == 0 || len(f.Loops[0].Vertices) < 3 {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  "face outer loop has fewer than 3 vertices",
				Severity: SeverityError,
			})
			continue
		}
		if !Valid(f.Normal) {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  "face has no well-defined normal (collinear or coincident vertices)",
				Severity: SeverityError,
			})
			continue
		}
		origin := f.Origin()
	loops:
		for li, l := range f.Loops {
			if li > 0 && len(l.Vertices) < 3 {
				errs = append(errs, ValidationError{
					NodeID:   n.ID,
					Message:  fmt.Sprintf("hole %d has fewer than 3 vertices", li),
					Severity: SeverityWarning,
				})
			}
			for _, v := range l.Vertices {
				if !OnPlane(v, origin, f.Normal) {
					errs = append(errs, ValidationError{
						NodeID:   n.ID,
						Message:  fmt.Sprintf("loop %d is not planar", li),
						Severity: SeverityWarning,
					})
					break loops
				}
			}
		}
	}
	return errs
}

// validateEdges warns about zero-length edges.
func validateEdges(s *Scene) []ValidationError {
	var errs []ValidationError
	for _, n := range sortedNodes(s) {
		e, ok := n.Data.(EdgeData)
		if !ok {
			continue
		}
		if e.End.Sub(e.Start).Length() <= Tolerance {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  "edge has zero length",
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// validateSelection checks that every selected occurrence resolves along
// its container path.
func validateSelection(s *Scene) []ValidationError {
	var errs []ValidationError
	for _, r := range s.Selected {
		if !s.resolves(r) {
			errs = append(errs, ValidationError{
				NodeID:   r.ID,
				Message:  fmt.Sprintf("selected occurrence %s does not resolve", r),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// resolves reports whether r names a real path from a root to its node.
func (s *Scene) resolves(r Ref) bool {
	chain := append(append([]NodeID(nil), r.Path...), r.ID)
	if !slices.Contains(s.Roots, chain[0]) {
		return false
	}
	for i := 1; i < len(chain); i++ {
		parent := s.Nodes[chain[i-1]]
		if !slices.Contains(s.Children(parent), chain[i]) {
			return false
		}
	}
	return s.Nodes[r.ID] != nil
}
