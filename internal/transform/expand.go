package transform

import (
	"fmt"

	"github.com/mapgrid/dxfgeo/internal/dxf"
)

// Expand recursively replaces every insert in the drawing's entity list
// with the transformed contents of its referenced block, producing a new
// flat entity list in world space. The drawing and its blocks are never
// mutated, so re-expansion from the same drawing is always possible.
//
// A repeated block name within one recursion branch is a cycle: that
// branch is pruned with a single cycle issue naming the block, and the
// rest of the drawing expands normally. Array inserts produce one
// transformed copy per grid cell. Inserts referencing undefined blocks
// are dropped with a validation issue.
func Expand(d *dxf.Drawing) ([]dxf.Entity, []dxf.Issue) {
	x := &expander{drawing: d}
	out := x.expandList(d.Entities, Identity(), nil)
	return out, x.issues
}

type expander struct {
	drawing *dxf.Drawing
	issues  []dxf.Issue
}

// expandList expands one entity list under the accumulated matrix.
// path holds the block names of the current recursion branch.
func (x *expander) expandList(entities []dxf.Entity, m Matrix, path []string) []dxf.Entity {
	out := make([]dxf.Entity, 0, len(entities))
	for _, e := range entities {
		ins, ok := e.(*dxf.Insert)
		if !ok {
			out = append(out, applyToEntity(e, m))
			continue
		}
		out = append(out, x.expandInsert(ins, m, path)...)
	}
	return out
}

func (x *expander) expandInsert(ins *dxf.Insert, parent Matrix, path []string) []dxf.Entity {
	block, ok := x.drawing.Blocks[ins.BlockName]
	if !ok {
		x.issues = append(x.issues, dxf.Issue{
			Kind:    dxf.IssueValidation,
			Entity:  ins.Kind(),
			Handle:  ins.Handle,
			Message: (&dxf.ErrUnknownBlock{Name: ins.BlockName}).Error(),
		})
		return nil
	}

	for _, name := range path {
		if name == ins.BlockName {
			x.issues = append(x.issues, dxf.Issue{
				Kind:    dxf.IssueCycle,
				Entity:  ins.Kind(),
				Handle:  ins.Handle,
				Message: fmt.Sprintf("block %q references itself through its ancestry, branch pruned", ins.BlockName),
			})
			return nil
		}
	}
	path = append(path, ins.BlockName)

	placement := BlockTransform(ins, block.Base)

	var out []dxf.Entity
	for row := 0; row < ins.Rows; row++ {
		for col := 0; col < ins.Columns; col++ {
			cell := placement
			if row != 0 || col != 0 {
				// Grid offsets are block-local, so they ride inside the
				// insert's rotation and scale.
				offset := Translation(float64(col)*ins.ColumnSpacing, float64(row)*ins.RowSpacing, 0)
				cell = placement.Mul(offset)
			}
			out = append(out, x.expandList(block.Entities, parent.Mul(cell), path)...)
		}
	}
	return out
}

// applyToEntity returns a transformed copy of the entity. Blocks stay
// untouched: every branch below builds a fresh struct.
func applyToEntity(e dxf.Entity, m Matrix) dxf.Entity {
	switch v := e.(type) {
	case *dxf.PointEntity:
		c := *v
		c.Location = m.Apply(v.Location)
		return &c
	case *dxf.Line:
		c := *v
		c.Start = m.Apply(v.Start)
		c.End = m.Apply(v.End)
		return &c
	case *dxf.Polyline:
		c := *v
		c.Vertices = applyToPoints(v.Vertices, m)
		return &c
	case *dxf.Circle:
		c := *v
		c.Center = m.Apply(v.Center)
		c.Radius = v.Radius * m.planarScale()
		return &c
	case *dxf.Arc:
		c := *v
		c.Center = m.Apply(v.Center)
		c.Radius = v.Radius * m.planarScale()
		rotation := m.ApplyAngle(0)
		c.StartAngle = v.StartAngle + rotation
		c.EndAngle = v.EndAngle + rotation
		return &c
	case *dxf.Ellipse:
		c := *v
		c.Center = m.Apply(v.Center)
		c.MajorAxis = m.ApplyVector(v.MajorAxis)
		return &c
	case *dxf.Spline:
		c := *v
		c.ControlPoints = applyToPoints(v.ControlPoints, m)
		return &c
	case *dxf.Text:
		c := *v
		c.Position = m.Apply(v.Position)
		c.Rotation = m.ApplyAngle(v.Rotation)
		c.Height = v.Height * m.planarScale()
		return &c
	case *dxf.MText:
		c := *v
		c.Position = m.Apply(v.Position)
		c.Rotation = m.ApplyAngle(v.Rotation)
		c.Height = v.Height * m.planarScale()
		return &c
	case *dxf.Hatch:
		c := *v
		loops := make([][]dxf.Point3, len(v.Loops))
		for i, loop := range v.Loops {
			loops[i] = applyToPoints(loop, m)
		}
		c.Loops = loops
		return &c
	case *dxf.Solid:
		c := *v
		c.Corners = applyToPoints(v.Corners, m)
		return &c
	case *dxf.Dimension:
		c := *v
		c.DefinitionPoint = m.Apply(v.DefinitionPoint)
		c.TextMidpoint = m.Apply(v.TextMidpoint)
		return &c
	case *dxf.Leader:
		c := *v
		c.Vertices = applyToPoints(v.Vertices, m)
		return &c
	case *dxf.Ray:
		c := *v
		c.Origin = m.Apply(v.Origin)
		c.Direction = m.ApplyVector(v.Direction)
		return &c
	default:
		// Kinds with no coordinates to move (3DSOLID) pass through as-is.
		return e
	}
}

func applyToPoints(points []dxf.Point3, m Matrix) []dxf.Point3 {
	out := make([]dxf.Point3, len(points))
	for i, p := range points {
		out[i] = m.Apply(p)
	}
	return out
}
