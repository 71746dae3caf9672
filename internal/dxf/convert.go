package dxf

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// converter turns raw records into typed entities. Invalid records are
// dropped with a validation issue; kinds without a branch are counted and
// reported as one aggregate warning instead of per-instance noise.
type converter struct {
	issues      *[]Issue
	unsupported map[string]int
}

func newConverter(issues *[]Issue) *converter {
	return &converter{issues: issues, unsupported: make(map[string]int)}
}

func (c *converter) reject(rec rawRecord, reason string) Entity {
	*c.issues = append(*c.issues, Issue{
		Kind:    IssueValidation,
		Line:    rec.line,
		Entity:  rec.kind,
		Handle:  rec.handle(),
		Message: reason,
	})
	return nil
}

// flush emits the aggregate unsupported-kind warning, if any kinds were seen.
func (c *converter) flush() []Issue {
	if len(c.unsupported) == 0 {
		return nil
	}
	kinds := make([]string, 0, len(c.unsupported))
	for k := range c.unsupported {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	parts := make([]string, len(kinds))
	total := 0
	for i, k := range kinds {
		parts[i] = fmt.Sprintf("%s×%d", k, c.unsupported[k])
		total += c.unsupported[k]
	}
	return []Issue{{
		Kind:    IssueUnsupported,
		Message: fmt.Sprintf("%d entities of unsupported kinds skipped: %s", total, strings.Join(parts, ", ")),
	}}
}

// convert dispatches on the record's declared kind. It returns nil when
// the record is invalid or unsupported; it never fails hard.
func (c *converter) convert(rec rawRecord) Entity {
	switch rec.kind {
	case "POINT":
		return c.point(rec)
	case "LINE":
		return c.line(rec)
	case "LWPOLYLINE":
		return c.lwpolyline(rec)
	case "POLYLINE":
		return c.polyline(rec)
	case "CIRCLE":
		return c.circle(rec)
	case "ARC":
		return c.arc(rec)
	case "ELLIPSE":
		return c.ellipse(rec)
	case "SPLINE":
		return c.spline(rec)
	case "INSERT":
		return c.insert(rec)
	case "TEXT":
		return c.text(rec)
	case "MTEXT":
		return c.mtext(rec)
	case "HATCH":
		return c.hatch(rec)
	case "SOLID", "TRACE":
		return c.solid(rec)
	case "3DSOLID":
		return c.threeDSolid(rec)
	case "DIMENSION":
		return c.dimension(rec)
	case "LEADER", "MLEADER", "MULTILEADER":
		return c.leader(rec)
	case "RAY":
		return c.ray(rec, false)
	case "XLINE":
		return c.ray(rec, true)
	default:
		c.unsupported[rec.kind]++
		return nil
	}
}

// readCommon fills shared attributes and reports whether the tag was consumed.
func readCommon(d *EntityData, t Tag) bool {
	switch t.Code {
	case 8:
		d.Layer = t.Text()
	case 5:
		d.Handle = t.Text()
	case 62:
		d.Color = t.Int()
	case 6:
		d.LineType = t.Text()
	case 370:
		d.LineWeight = t.Int()
	case 210, 220, 230:
		if d.Extrusion == nil {
			d.Extrusion = &Point3{Z: 1}
		}
		switch t.Code {
		case 210:
			d.Extrusion.X = t.Float()
		case 220:
			d.Extrusion.Y = t.Float()
		case 230:
			d.Extrusion.Z = t.Float()
		}
	default:
		return false
	}
	return true
}

func (c *converter) point(rec rawRecord) Entity {
	e := &PointEntity{}
	for _, t := range rec.tags {
		if readCommon(&e.EntityData, t) {
			continue
		}
		switch t.Code {
		case 10:
			e.Location.X = t.Float()
		case 20:
			e.Location.Y = t.Float()
		case 30:
			e.Location.Z = t.Float()
		}
	}
	return e
}

func (c *converter) line(rec rawRecord) Entity {
	e := &Line{}
	seen := map[int]bool{}
	for _, t := range rec.tags {
		if readCommon(&e.EntityData, t) {
			continue
		}
		seen[t.Code] = true
		switch t.Code {
		case 10:
			e.Start.X = t.Float()
		case 20:
			e.Start.Y = t.Float()
		case 30:
			e.Start.Z = t.Float()
		case 11:
			e.End.X = t.Float()
		case 21:
			e.End.Y = t.Float()
		case 31:
			e.End.Z = t.Float()
		}
	}
	if !seen[10] || !seen[11] {
		return c.reject(rec, "line requires both start and end points")
	}
	return e
}

func (c *converter) lwpolyline(rec rawRecord) Entity {
	e := &Polyline{}
	var x float64
	var haveX bool
	for _, t := range rec.tags {
		if readCommon(&e.EntityData, t) {
			continue
		}
		switch t.Code {
		case 10:
			x = t.Float()
			haveX = true
		case 20:
			if haveX {
				e.Vertices = append(e.Vertices, Point3{X: x, Y: t.Float()})
				haveX = false
			}
		case 70:
			e.Closed = t.Int()&1 != 0
		}
	}
	if len(e.Vertices) < 2 {
		return c.reject(rec, fmt.Sprintf("polyline requires at least 2 vertices, got %d", len(e.Vertices)))
	}
	return e
}

// polyline handles the legacy POLYLINE entity whose vertices arrive as
// separate VERTEX records terminated by SEQEND.
func (c *converter) polyline(rec rawRecord) Entity {
	e := &Polyline{}
	for _, t := range rec.tags {
		if readCommon(&e.EntityData, t) {
			continue
		}
		if t.Code == 70 {
			e.Closed = t.Int()&1 != 0
		}
	}
	for _, child := range rec.children {
		if child.kind != "VERTEX" {
			continue
		}
		var v Point3
		for _, t := range child.tags {
			switch t.Code {
			case 10:
				v.X = t.Float()
			case 20:
				v.Y = t.Float()
			case 30:
				v.Z = t.Float()
			}
		}
		e.Vertices = append(e.Vertices, v)
	}
	if len(e.Vertices) < 2 {
		return c.reject(rec, fmt.Sprintf("polyline requires at least 2 vertices, got %d", len(e.Vertices)))
	}
	return e
}

func (c *converter) circle(rec rawRecord) Entity {
	e := &Circle{}
	for _, t := range rec.tags {
		if readCommon(&e.EntityData, t) {
			continue
		}
		switch t.Code {
		case 10:
			e.Center.X = t.Float()
		case 20:
			e.Center.Y = t.Float()
		case 30:
			e.Center.Z = t.Float()
		case 40:
			e.Radius = t.Float()
		}
	}
	if e.Radius <= 0 {
		return c.reject(rec, fmt.Sprintf("circle requires a positive radius, got %g", e.Radius))
	}
	return e
}

func (c *converter) arc(rec rawRecord) Entity {
	e := &Arc{EndAngle: 360}
	for _, t := range rec.tags {
		if readCommon(&e.EntityData, t) {
			continue
		}
		switch t.Code {
		case 10:
			e.Center.X = t.Float()
		case 20:
			e.Center.Y = t.Float()
		case 30:
			e.Center.Z = t.Float()
		case 40:
			e.Radius = t.Float()
		case 50:
			e.StartAngle = t.Float()
		case 51:
			e.EndAngle = t.Float()
		}
	}
	if e.Radius <= 0 {
		return c.reject(rec, fmt.Sprintf("arc requires a positive radius, got %g", e.Radius))
	}
	return e
}

func (c *converter) ellipse(rec rawRecord) Entity {
	e := &Ellipse{EndParam: 2 * math.Pi}
	for _, t := range rec.tags {
		if readCommon(&e.EntityData, t) {
			continue
		}
		switch t.Code {
		case 10:
			e.Center.X = t.Float()
		case 20:
			e.Center.Y = t.Float()
		case 30:
			e.Center.Z = t.Float()
		case 11:
			e.MajorAxis.X = t.Float()
		case 21:
			e.MajorAxis.Y = t.Float()
		case 31:
			e.MajorAxis.Z = t.Float()
		case 40:
			e.Ratio = t.Float()
		case 41:
			e.StartParam = t.Float()
		case 42:
			e.EndParam = t.Float()
		}
	}
	if e.MajorAxis.X == 0 && e.MajorAxis.Y == 0 {
		return c.reject(rec, "ellipse requires a non-zero major axis")
	}
	if e.Ratio <= 0 || e.Ratio > 1 {
		return c.reject(rec, fmt.Sprintf("ellipse axis ratio must be in (0, 1], got %g", e.Ratio))
	}
	return e
}

func (c *converter) spline(rec rawRecord) Entity {
	e := &Spline{}
	var x, y float64
	var haveX, haveY bool
	for _, t := range rec.tags {
		if readCommon(&e.EntityData, t) {
			continue
		}
		switch t.Code {
		case 70:
			e.Closed = t.Int()&1 != 0
		case 71:
			e.Degree = t.Int()
		case 40:
			e.Knots = append(e.Knots, t.Float())
		case 41:
			e.Weights = append(e.Weights, t.Float())
		case 10:
			x = t.Float()
			haveX = true
		case 20:
			y = t.Float()
			haveY = true
		case 30:
			if haveX && haveY {
				e.ControlPoints = append(e.ControlPoints, Point3{X: x, Y: y, Z: t.Float()})
				haveX, haveY = false, false
			}
		}
	}
	// Some writers omit the 30 code for planar splines.
	if haveX && haveY {
		e.ControlPoints = append(e.ControlPoints, Point3{X: x, Y: y})
	}
	if len(e.ControlPoints) < 2 {
		return c.reject(rec, fmt.Sprintf("spline requires at least 2 control points, got %d", len(e.ControlPoints)))
	}
	return e
}

func (c *converter) insert(rec rawRecord) Entity {
	e := &Insert{Scale: Point3{X: 1, Y: 1, Z: 1}, Rows: 1, Columns: 1}
	for _, t := range rec.tags {
		if readCommon(&e.EntityData, t) {
			continue
		}
		switch t.Code {
		case 2:
			e.BlockName = t.Text()
		case 10:
			e.Position.X = t.Float()
		case 20:
			e.Position.Y = t.Float()
		case 30:
			e.Position.Z = t.Float()
		case 41:
			e.Scale.X = t.Float()
		case 42:
			e.Scale.Y = t.Float()
		case 43:
			e.Scale.Z = t.Float()
		case 50:
			e.Rotation = t.Float()
		case 70:
			e.Columns = t.Int()
		case 71:
			e.Rows = t.Int()
		case 44:
			e.ColumnSpacing = t.Float()
		case 45:
			e.RowSpacing = t.Float()
		}
	}
	if e.BlockName == "" {
		return c.reject(rec, "insert requires a block name")
	}
	if e.Rows < 1 {
		e.Rows = 1
	}
	if e.Columns < 1 {
		e.Columns = 1
	}
	return e
}

func (c *converter) text(rec rawRecord) Entity {
	e := &Text{}
	for _, t := range rec.tags {
		if readCommon(&e.EntityData, t) {
			continue
		}
		switch t.Code {
		case 10:
			e.Position.X = t.Float()
		case 20:
			e.Position.Y = t.Float()
		case 30:
			e.Position.Z = t.Float()
		case 1:
			e.Content = t.Value
		case 40:
			e.Height = t.Float()
		case 50:
			e.Rotation = t.Float()
		}
	}
	return e
}

func (c *converter) mtext(rec rawRecord) Entity {
	e := &MText{}
	var content strings.Builder
	for _, t := range rec.tags {
		if readCommon(&e.EntityData, t) {
			continue
		}
		switch t.Code {
		case 10:
			e.Position.X = t.Float()
		case 20:
			e.Position.Y = t.Float()
		case 30:
			e.Position.Z = t.Float()
		case 3, 1:
			// Code 3 tags carry continuation chunks, code 1 the final one.
			content.WriteString(t.Value)
		case 40:
			e.Height = t.Float()
		case 50:
			e.Rotation = t.Float()
		}
	}
	e.Content = content.String()
	return e
}

// hatch keeps only the boundary loop vertices. Loop starts are marked by
// group code 92 (boundary path type flag).
func (c *converter) hatch(rec rawRecord) Entity {
	e := &Hatch{}
	var loop []Point3
	var x float64
	var haveX bool
	flush := func() {
		if len(loop) >= 3 {
			e.Loops = append(e.Loops, loop)
		}
		loop = nil
	}
	for _, t := range rec.tags {
		if readCommon(&e.EntityData, t) {
			continue
		}
		switch t.Code {
		case 92:
			flush()
		case 10:
			x = t.Float()
			haveX = true
		case 20:
			if haveX {
				loop = append(loop, Point3{X: x, Y: t.Float()})
				haveX = false
			}
		}
	}
	flush()
	if len(e.Loops) == 0 {
		return c.reject(rec, "hatch requires at least one boundary loop with 3 or more vertices")
	}
	return e
}

func (c *converter) solid(rec rawRecord) Entity {
	e := &Solid{}
	corners := [4]Point3{}
	seen := [4]bool{}
	for _, t := range rec.tags {
		if readCommon(&e.EntityData, t) {
			continue
		}
		switch t.Code {
		case 10, 11, 12, 13:
			corners[t.Code-10].X = t.Float()
			seen[t.Code-10] = true
		case 20, 21, 22, 23:
			corners[t.Code-20].Y = t.Float()
		case 30, 31, 32, 33:
			corners[t.Code-30].Z = t.Float()
		}
	}
	// DXF stores solid corners in a Z order: 1, 2, 4, 3. Reorder so the
	// outline does not self-intersect.
	if seen[0] && seen[1] && seen[2] {
		e.Corners = append(e.Corners, corners[0], corners[1])
		if seen[3] {
			e.Corners = append(e.Corners, corners[3])
		}
		e.Corners = append(e.Corners, corners[2])
	}
	if len(e.Corners) < 3 {
		return c.reject(rec, "solid requires at least 3 corners")
	}
	return e
}

func (c *converter) threeDSolid(rec rawRecord) Entity {
	e := &ThreeDSolid{}
	for _, t := range rec.tags {
		readCommon(&e.EntityData, t)
	}
	return e
}

func (c *converter) dimension(rec rawRecord) Entity {
	e := &Dimension{}
	for _, t := range rec.tags {
		if readCommon(&e.EntityData, t) {
			continue
		}
		switch t.Code {
		case 10:
			e.DefinitionPoint.X = t.Float()
		case 20:
			e.DefinitionPoint.Y = t.Float()
		case 30:
			e.DefinitionPoint.Z = t.Float()
		case 11:
			e.TextMidpoint.X = t.Float()
		case 21:
			e.TextMidpoint.Y = t.Float()
		case 31:
			e.TextMidpoint.Z = t.Float()
		}
	}
	return e
}

func (c *converter) leader(rec rawRecord) Entity {
	e := &Leader{}
	var x float64
	var haveX bool
	for _, t := range rec.tags {
		if readCommon(&e.EntityData, t) {
			continue
		}
		switch t.Code {
		case 10:
			x = t.Float()
			haveX = true
		case 20:
			if haveX {
				e.Vertices = append(e.Vertices, Point3{X: x, Y: t.Float()})
				haveX = false
			}
		}
	}
	if len(e.Vertices) == 0 {
		return c.reject(rec, "leader requires at least one vertex")
	}
	return e
}

func (c *converter) ray(rec rawRecord, infinite bool) Entity {
	e := &Ray{Infinite: infinite}
	for _, t := range rec.tags {
		if readCommon(&e.EntityData, t) {
			continue
		}
		switch t.Code {
		case 10:
			e.Origin.X = t.Float()
		case 20:
			e.Origin.Y = t.Float()
		case 30:
			e.Origin.Z = t.Float()
		case 11:
			e.Direction.X = t.Float()
		case 21:
			e.Direction.Y = t.Float()
		case 31:
			e.Direction.Z = t.Float()
		}
	}
	if e.Direction.X == 0 && e.Direction.Y == 0 && e.Direction.Z == 0 {
		return c.reject(rec, "ray requires a non-zero direction")
	}
	return e
}
