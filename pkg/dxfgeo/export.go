package dxfgeo

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/paulmach/orb/geojson"
	flatgeobuf "github.com/tingold/orb-flatgeobuf"
)

// FeatureCollection converts the grouped preview into one GeoJSON
// feature collection, points first, then lines, then polygons.
func (c *Collections) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, group := range [][]*Feature{c.Points, c.Lines, c.Polygons} {
		for _, f := range group {
			fc.Append(f.GeoJSON())
		}
	}
	return fc
}

// GeoJSON encodes the preview as a GeoJSON feature collection.
func (c *Collections) GeoJSON() ([]byte, error) {
	data, err := json.Marshal(c.FeatureCollection())
	if err != nil {
		return nil, fmt.Errorf("encode geojson: %w", err)
	}
	return data, nil
}

// WriteFlatGeobuf encodes the preview as a FlatGeobuf layer. The CRS
// header field is set when the collections are in WGS84; projected and
// local coordinates are written without one.
func (c *Collections) WriteFlatGeobuf(w io.Writer, name string) error {
	fc := c.FeatureCollection()
	if len(fc.Features) == 0 {
		return fmt.Errorf("write flatgeobuf: no features to write")
	}
	opts := &flatgeobuf.Options{
		Name:         name,
		IncludeIndex: true,
	}
	if c.System == SystemWGS84 {
		opts.CRS = flatgeobuf.WGS84()
	}
	if err := flatgeobuf.WriteFeatures(w, fc, opts); err != nil {
		return fmt.Errorf("write flatgeobuf: %w", err)
	}
	return nil
}
