package dxfgeo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Feature is one geo-referenced vector feature produced from a drawing
// entity: a geometry plus the properties the preview map needs.
//
// Coordinates follow GeoJSON convention: for WGS84 features each position
// is [longitude, latitude].
type Feature struct {
	id       int64
	layer    string
	kind     string
	geometry orb.Geometry
	source   ReferenceSystem
	warnings []string
}

// ID returns the feature's identifier, unique within one import.
func (f *Feature) ID() int64 { return f.id }

// Layer returns the source layer name; never empty, "0" by default.
func (f *Feature) Layer() string { return f.layer }

// EntityKind returns the DXF entity kind the feature came from.
func (f *Feature) EntityKind() string { return f.kind }

// Geometry returns the feature's geometry: an orb.Point, orb.LineString
// or orb.Polygon.
func (f *Feature) Geometry() orb.Geometry { return f.geometry }

// SourceSystem returns the reference system the coordinates are in.
func (f *Feature) SourceSystem() ReferenceSystem { return f.source }

// Warnings returns accumulated per-feature warnings, such as a failed
// coordinate transform that left the feature at its original position.
func (f *Feature) Warnings() []string { return f.warnings }

// Bound returns the feature's axis-aligned bounding box.
func (f *Feature) Bound() Bounds {
	return boundsFromOrb(f.geometry.Bound())
}

// GeoJSON converts the feature, carrying layer, entity kind, source
// system and warnings as properties.
func (f *Feature) GeoJSON() *geojson.Feature {
	gf := geojson.NewFeature(f.geometry)
	gf.ID = f.id
	gf.Properties = geojson.Properties{
		"layer":                 f.layer,
		"entity":                f.kind,
		"sourceReferenceSystem": f.source.Code(),
	}
	if len(f.warnings) > 0 {
		gf.Properties["warnings"] = f.warnings
	}
	return gf
}

// withGeometry returns a copy of the feature carrying new coordinates.
func (f *Feature) withGeometry(g orb.Geometry, system ReferenceSystem) *Feature {
	c := *f
	c.geometry = g
	c.source = system
	return &c
}

// addWarning returns a copy of the feature with one more warning.
func (f *Feature) addWarning(w string) *Feature {
	c := *f
	c.warnings = append(append([]string(nil), f.warnings...), w)
	return &c
}

// geometryPoints flattens a feature geometry into its coordinate list.
func geometryPoints(g orb.Geometry) []orb.Point {
	switch v := g.(type) {
	case orb.Point:
		return []orb.Point{v}
	case orb.LineString:
		return v
	case orb.Polygon:
		var out []orb.Point
		for _, ring := range v {
			out = append(out, ring...)
		}
		return out
	default:
		return nil
	}
}

// rebuildGeometry reassembles a geometry of the same shape from a flat
// coordinate list produced by geometryPoints.
func rebuildGeometry(g orb.Geometry, points []orb.Point) orb.Geometry {
	switch v := g.(type) {
	case orb.Point:
		return points[0]
	case orb.LineString:
		return orb.LineString(points)
	case orb.Polygon:
		out := make(orb.Polygon, 0, len(v))
		i := 0
		for _, ring := range v {
			out = append(out, orb.Ring(points[i:i+len(ring)]))
			i += len(ring)
		}
		return out
	default:
		return g
	}
}
