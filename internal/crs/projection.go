package crs

// Projection converts between a source system's native coordinates and
// WGS84 longitude/latitude in degrees. All conversions route through
// WGS84 as the hub, so each system needs only this one pair.
type Projection interface {
	// ToWGS84 converts native coordinates to (lon, lat) degrees. For
	// Easting/Northing systems x is the Easting and y the Northing.
	ToWGS84(x, y float64) (lon, lat float64)

	// FromWGS84 converts (lon, lat) degrees to native coordinates.
	FromWGS84(lon, lat float64) (x, y float64)
}

// wgs84Identity is the no-op projection for data already in EPSG:4326.
type wgs84Identity struct{}

func (wgs84Identity) ToWGS84(x, y float64) (float64, float64)       { return x, y }
func (wgs84Identity) FromWGS84(lon, lat float64) (float64, float64) { return lon, lat }

// swissProjection implements the swisstopo approximation series for the
// Swiss oblique Mercator projection. The same series covers both LV95
// and LV03; they differ only in the false origin. Accuracy is about one
// meter, which is ample for map preview.
type swissProjection struct {
	falseEasting  float64 // 2600000 for LV95, 600000 for LV03
	falseNorthing float64 // 1200000 for LV95, 200000 for LV03
}

func (p swissProjection) ToWGS84(e, n float64) (lon, lat float64) {
	// Auxiliary values in 1000 km units relative to Bern.
	y := (e - p.falseEasting) / 1e6
	x := (n - p.falseNorthing) / 1e6

	lonPrime := 2.6779094 +
		4.728982*y +
		0.791484*y*x +
		0.1306*y*x*x -
		0.0436*y*y*y
	latPrime := 16.9023892 +
		3.238272*x -
		0.270978*y*y -
		0.002528*x*x -
		0.0447*y*y*x -
		0.0140*x*x*x

	// The series yields units of 10000 arc-seconds; ×100/36 gives degrees.
	return lonPrime * 100 / 36, latPrime * 100 / 36
}

func (p swissProjection) FromWGS84(lon, lat float64) (e, n float64) {
	// Auxiliary values: arc-seconds relative to Bern, in 10000" units.
	lonPrime := (lon*3600 - 26782.5) / 10000
	latPrime := (lat*3600 - 169028.66) / 10000

	e = p.falseEasting + 72.37 +
		211455.93*lonPrime -
		10938.51*lonPrime*latPrime -
		0.36*lonPrime*latPrime*latPrime -
		44.54*lonPrime*lonPrime*lonPrime
	n = p.falseNorthing + 147.07 +
		308807.95*latPrime +
		3745.25*lonPrime*lonPrime +
		76.63*latPrime*latPrime -
		194.56*lonPrime*lonPrime*latPrime +
		119.79*latPrime*latPrime*latPrime
	return e, n
}
