package crs

import (
	"math"

	"github.com/paulmach/orb"
)

// SampleCap bounds how many raw points the detector inspects.
const SampleCap = 100

// envelopeThreshold is the fraction of sampled points that must fall
// inside a system's characteristic envelope before it is accepted.
const envelopeThreshold = 0.8

// Detection is the detector's classification of a coordinate sample.
type Detection struct {
	System     System
	Confidence float64
}

// DetectOptions steers classification precedence.
type DetectOptions struct {
	// Override, when set, wins outright: the caller knows the system.
	Override    System
	HasOverride bool

	// HeaderCode is an EPSG-style identifier declared by the drawing
	// header, if one was found. It is honored only when the sample is
	// consistent with the declared system.
	HeaderCode string
}

// Detect classifies a sample of raw, pre-transform points. Precedence:
// explicit override, then a consistent header declaration, then point
// envelope heuristics, then None (local coordinates, passed through).
// Detect never mutates the sample and never fails; an unclassifiable
// sample is simply None with zero confidence.
func (r *Registry) Detect(points []orb.Point, opts DetectOptions) Detection {
	if opts.HasOverride {
		return Detection{System: opts.Override, Confidence: 1}
	}

	if len(points) > SampleCap {
		points = points[:SampleCap]
	}

	if opts.HeaderCode != "" {
		if def, ok := r.ByCode(opts.HeaderCode); ok {
			ratio := r.envelopeRatio(def, points)
			if len(points) == 0 || ratio >= envelopeThreshold {
				if len(points) == 0 {
					ratio = 1
				}
				return Detection{System: def.System, Confidence: ratio}
			}
			// Header contradicts the data; fall through to heuristics.
		}
	}

	if len(points) == 0 {
		return Detection{System: None}
	}

	// Projected systems first: their 6-7 digit ranges cannot be confused
	// with degree values, while small local coordinates could fall inside
	// the WGS84 range by accident.
	for _, sys := range []System{SwissLV95, SwissLV03, WGS84} {
		def := r.defs[sys]
		if ratio := r.envelopeRatio(def, points); ratio >= envelopeThreshold {
			return Detection{System: sys, Confidence: ratio}
		}
	}
	return Detection{System: None}
}

// envelopeRatio is the fraction of points inside the definition's
// characteristic envelope.
func (r *Registry) envelopeRatio(def *Definition, points []orb.Point) float64 {
	if len(points) == 0 {
		return 0
	}
	hits := 0
	for _, p := range points {
		if !def.contains(p[0], p[1]) {
			continue
		}
		// Degree values from real surveys carry fractional parts; pairs
		// of whole numbers near the origin are drawing units, not WGS84.
		if def.System == WGS84 && isIntegral(p[0]) && isIntegral(p[1]) {
			continue
		}
		hits++
	}
	return float64(hits) / float64(len(points))
}

func isIntegral(v float64) bool {
	return v == math.Trunc(v)
}
