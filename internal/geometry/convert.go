// Package geometry converts typed drawing entities into map geometry
// primitives, tessellating curved entities into straight segments.
package geometry

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/mapgrid/dxfgeo/internal/dxf"
)

// DefaultSegmentCount is the tessellation segment count for a full
// circle; arcs and partial ellipses scale proportionally to their span.
const DefaultSegmentCount = 72

// rayExtent is the representative length drawn for unbounded RAY/XLINE
// entities, in drawing units.
const rayExtent = 1000.0

// Convert turns one world-space entity into a geometry primitive.
//
// Inserts must already have been expanded; encountering one here is a
// validation issue. A nil geometry with a nil issue means the entity has
// no map representation at all (e.g. 3DSOLID); a nil geometry with an
// issue means conversion failed. Returned geometries are always valid:
// rings are closed and meet minimum point counts.
func Convert(e dxf.Entity, segments int) (orb.Geometry, *dxf.Issue) {
	if segments <= 0 {
		segments = DefaultSegmentCount
	}
	switch v := e.(type) {
	case *dxf.PointEntity:
		return orb.Point{v.Location.X, v.Location.Y}, nil

	case *dxf.Line:
		return orb.LineString{
			{v.Start.X, v.Start.Y},
			{v.End.X, v.End.Y},
		}, nil

	case *dxf.Polyline:
		if v.Closed {
			return ringFromPoints(v.Vertices, e)
		}
		ls := lineFromPoints(v.Vertices)
		if len(ls) < 2 {
			return nil, invalid(e, "polyline needs at least 2 vertices")
		}
		return ls, nil

	case *dxf.Circle:
		ring := make(orb.Ring, 0, segments+1)
		for i := 0; i <= segments; i++ {
			a := 2 * math.Pi * float64(i) / float64(segments)
			ring = append(ring, orb.Point{
				v.Center.X + v.Radius*math.Cos(a),
				v.Center.Y + v.Radius*math.Sin(a),
			})
		}
		ring[len(ring)-1] = ring[0]
		return orb.Polygon{ring}, nil

	case *dxf.Arc:
		start := v.StartAngle * math.Pi / 180
		end := v.EndAngle * math.Pi / 180
		// Arcs run counterclockwise; wrap once when the end lags the start.
		for end <= start {
			end += 2 * math.Pi
		}
		span := end - start
		n := proportionalSegments(span, segments)
		ls := make(orb.LineString, 0, n+1)
		for i := 0; i <= n; i++ {
			a := start + span*float64(i)/float64(n)
			ls = append(ls, orb.Point{
				v.Center.X + v.Radius*math.Cos(a),
				v.Center.Y + v.Radius*math.Sin(a),
			})
		}
		return ls, nil

	case *dxf.Ellipse:
		return convertEllipse(v, segments)

	case *dxf.Spline:
		// Linear approximation along the control polygon; true basis
		// evaluation is not needed for preview fidelity.
		if v.Closed {
			return ringFromPoints(v.ControlPoints, e)
		}
		ls := lineFromPoints(v.ControlPoints)
		if len(ls) < 2 {
			return nil, invalid(e, "spline needs at least 2 control points")
		}
		return ls, nil

	case *dxf.Insert:
		return nil, invalid(e, fmt.Sprintf("insert of block %q reached geometry conversion unexpanded", v.BlockName))

	case *dxf.Text:
		return orb.Point{v.Position.X, v.Position.Y}, nil

	case *dxf.MText:
		return orb.Point{v.Position.X, v.Position.Y}, nil

	case *dxf.Hatch:
		return convertHatch(v, e)

	case *dxf.Solid:
		return ringFromPoints(v.Corners, e)

	case *dxf.ThreeDSolid:
		// Opaque ACIS body, nothing to draw.
		return nil, nil

	case *dxf.Dimension:
		if v.DefinitionPoint == v.TextMidpoint {
			return orb.Point{v.DefinitionPoint.X, v.DefinitionPoint.Y}, nil
		}
		return orb.LineString{
			{v.DefinitionPoint.X, v.DefinitionPoint.Y},
			{v.TextMidpoint.X, v.TextMidpoint.Y},
		}, nil

	case *dxf.Leader:
		if len(v.Vertices) == 1 {
			return orb.Point{v.Vertices[0].X, v.Vertices[0].Y}, nil
		}
		return lineFromPoints(v.Vertices), nil

	case *dxf.Ray:
		length := math.Hypot(v.Direction.X, v.Direction.Y)
		if length == 0 {
			return nil, invalid(e, "ray direction is zero-length")
		}
		dx := v.Direction.X / length * rayExtent
		dy := v.Direction.Y / length * rayExtent
		start := orb.Point{v.Origin.X, v.Origin.Y}
		if v.Infinite {
			start = orb.Point{v.Origin.X - dx, v.Origin.Y - dy}
		}
		return orb.LineString{start, {v.Origin.X + dx, v.Origin.Y + dy}}, nil

	default:
		return nil, invalid(e, "no geometry conversion for kind "+e.Kind())
	}
}

func convertEllipse(v *dxf.Ellipse, segments int) (orb.Geometry, *dxf.Issue) {
	major := orb.Point{v.MajorAxis.X, v.MajorAxis.Y}
	// The minor axis is the major axis rotated 90° and shrunk by the ratio.
	minor := orb.Point{-major[1] * v.Ratio, major[0] * v.Ratio}

	start, end := v.StartParam, v.EndParam
	for end <= start {
		end += 2 * math.Pi
	}
	span := end - start
	full := span >= 2*math.Pi-1e-9

	n := proportionalSegments(span, segments)
	points := make([]orb.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		t := start + span*float64(i)/float64(n)
		cos, sin := math.Cos(t), math.Sin(t)
		points = append(points, orb.Point{
			v.Center.X + cos*major[0] + sin*minor[0],
			v.Center.Y + cos*major[1] + sin*minor[1],
		})
	}
	if full {
		ring := orb.Ring(points)
		ring[len(ring)-1] = ring[0]
		return orb.Polygon{ring}, nil
	}
	return orb.LineString(points), nil
}

func convertHatch(v *dxf.Hatch, e dxf.Entity) (orb.Geometry, *dxf.Issue) {
	poly := make(orb.Polygon, 0, len(v.Loops))
	for _, loop := range v.Loops {
		ring := closedRing(loop)
		if ring == nil {
			continue
		}
		poly = append(poly, ring)
	}
	if len(poly) == 0 {
		return nil, invalid(e, "hatch has no valid boundary loop")
	}
	return poly, nil
}

// proportionalSegments scales the full-circle segment count by the
// angular span, with a floor of 2 so short arcs stay drawable.
func proportionalSegments(span float64, fullCircle int) int {
	n := int(math.Ceil(float64(fullCircle) * span / (2 * math.Pi)))
	if n < 2 {
		n = 2
	}
	return n
}

// ringFromPoints validates and closes a polygon ring: at least 3 distinct
// vertices, first coordinate forced equal to last.
func ringFromPoints(points []dxf.Point3, e dxf.Entity) (orb.Geometry, *dxf.Issue) {
	ring := closedRing(points)
	if ring == nil {
		return nil, invalid(e, fmt.Sprintf("closed outline needs at least 3 vertices, got %d", len(points)))
	}
	return orb.Polygon{ring}, nil
}

func closedRing(points []dxf.Point3) orb.Ring {
	if len(points) < 3 {
		return nil
	}
	ring := make(orb.Ring, 0, len(points)+1)
	for _, p := range points {
		ring = append(ring, orb.Point{p.X, p.Y})
	}
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	if len(ring) < 4 {
		return nil
	}
	return ring
}

func lineFromPoints(points []dxf.Point3) orb.LineString {
	ls := make(orb.LineString, 0, len(points))
	for _, p := range points {
		ls = append(ls, orb.Point{p.X, p.Y})
	}
	return ls
}

func invalid(e dxf.Entity, reason string) *dxf.Issue {
	return &dxf.Issue{
		Kind:    dxf.IssueValidation,
		Entity:  e.Kind(),
		Handle:  e.Common().Handle,
		Message: reason,
	}
}
